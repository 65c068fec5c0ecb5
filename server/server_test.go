package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleNewRequiresAuthWhenSecretSet(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, []byte("secret"))

	req := httptest.NewRequest(http.MethodPost, "/new", strings.NewReader(`{"dbName":"a"}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleNewAndStatus(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)

	req := httptest.NewRequest(http.MethodPost, "/new", strings.NewReader(`{"dbName":"a"}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	_, err := os.Stat(filepath.Join(dir, "a.adb"))
	require.NoError(t, err)

	req2 := httptest.NewRequest(http.MethodGet, "/status?dbName=a", nil)
	w2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(w2, req2)
	require.Equal(t, http.StatusOK, w2.Code)
}

func TestHandleQueryUnknownTypeReturnsBadRequest(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)

	newReq := httptest.NewRequest(http.MethodPost, "/new", strings.NewReader(`{"dbName":"a"}`))
	newW := httptest.NewRecorder()
	s.Handler().ServeHTTP(newW, newReq)
	require.Equal(t, http.StatusCreated, newW.Code)

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"dbName":"a","qType":"bogus"}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
