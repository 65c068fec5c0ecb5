// Package server exposes audioDB's two RPC operations over HTTP+JSON
// (spec.md §6's "external collaborator" surface), plus a websocket
// progress channel for long-running mutations and a protobuf result
// encoding alternative to JSON.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/smhanov/audiodb/db"
)

// Server mirrors the teacher's rest.go Server type: a mutex-guarded map
// of open handles, one per database name, addressed by the data folder
// they live in.
type Server struct {
	DataFolder string
	jwtSecret  []byte

	mu  sync.Mutex
	dbs map[string]*db.DB

	progress *progressHub
}

// New creates a Server rooted at dataFolder. An empty jwtSecret disables
// bearer-token authentication on mutating endpoints.
func New(dataFolder string, jwtSecret []byte) *Server {
	return &Server{
		DataFolder: dataFolder,
		jwtSecret:  jwtSecret,
		dbs:        make(map[string]*db.DB),
		progress:   newProgressHub(),
	}
}

func (s *Server) path(name string) string {
	return filepath.Join(s.DataFolder, name+".adb")
}

func (s *Server) open(name string) (*db.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.dbs[name]; ok {
		return h, nil
	}
	h, err := db.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	s.dbs[name] = h
	return h, nil
}

// Handler returns the complete routing table: status/query are
// read-only; new/insert/batchinsert/l2norm mutate and are JWT-gated when
// a secret is configured; /progress is the websocket channel.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/new", s.requireAuth(s.handleNew))
	mux.HandleFunc("/insert", s.requireAuth(s.handleInsert))
	mux.HandleFunc("/batchinsert", s.requireAuth(s.handleBatchInsert))
	mux.HandleFunc("/l2norm", s.requireAuth(s.handleL2Norm))
	mux.HandleFunc("/progress", s.progress.handleWS)
	return mux
}

// handleStatus implements the RPC surface's status(dbName) -> int,
// reporting numFiles as the headline integer (spec.md §6), with the
// fuller db.Status alongside for callers that want more than the count.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("dbName")
	h, err := s.open(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	seqLen, _ := strconv.Atoi(r.URL.Query().Get("sequenceLength"))
	if seqLen <= 0 {
		seqLen = 16
	}
	st := h.Status(seqLen)
	json.NewEncoder(w).Encode(struct {
		Result int       `json:"result"`
		Status db.Status `json:"status"`
	}{Result: int(st.NumFiles), Status: st})
}

type queryRequest struct {
	DBName        string `json:"dbName"`
	QKey          string `json:"qKey"`
	KeyList       string `json:"keyList"`
	TimesFileName string `json:"timesFileName"`
	QType         string `json:"qType"`
	QPos          int    `json:"qPos"`
	Exhaustive    bool   `json:"exhaustive"`
	PointNN       int    `json:"pointNN"`
	SegNN         int    `json:"segNN"`
	SeqLen        int    `json:"seqLen"`
	SequenceHop   int    `json:"sequenceHop"`
}

type queryResponse struct {
	Rlist []string  `json:"Rlist"`
	Dist  []float64 `json:"Dist"`
	Qpos  []int     `json:"Qpos"`
	Spos  []int     `json:"Spos"`
}

// handleQuery implements the RPC surface's
// query(dbName, qKey, keyList, timesFileName, qType, qPos, pointNN, segNN, seqLen)
// operation, dispatching to the engine named by qType.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h, err := s.open(req.DBName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	opts := db.QueryOptions{
		QueryFile:      req.QKey,
		TimesPath:      req.TimesFileName,
		KeyList:        req.KeyList,
		QPoint:         req.QPos,
		Exhaustive:     req.Exhaustive,
		PointNN:        req.PointNN,
		SegNN:          req.SegNN,
		SequenceLength: req.SeqLen,
		SequenceHop:    req.SequenceHop,
	}

	var results []db.Result
	switch req.QType {
	case "point":
		results, err = h.QueryPoint(opts)
	case "segment":
		results, err = h.QuerySegment(opts)
	case "sequence":
		results, err = h.QuerySequence(opts)
	default:
		err = db.ErrUnknownQueryType
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := queryResponse{
		Rlist: make([]string, len(results)),
		Dist:  make([]float64, len(results)),
		Qpos:  make([]int, len(results)),
		Spos:  make([]int, len(results)),
	}
	for i, res := range results {
		resp.Rlist[i] = res.Key
		resp.Dist[i] = res.Distance
		resp.Qpos[i] = res.QPos
		resp.Spos[i] = res.SPos
	}

	if r.Header.Get("Accept") == "application/x-protobuf" {
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.Write(encodeResultsProtobuf(resp))
		return
	}
	json.NewEncoder(w).Encode(resp)
}

type newRequest struct {
	DBName string `json:"dbName"`
	Size   int64  `json:"size"`
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	var req newRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	size := req.Size
	if size == 0 {
		size = db.DefaultDBSize
	}
	if err := os.MkdirAll(s.DataFolder, 0755); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h, err := db.Create(s.path(req.DBName), size)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.dbs[req.DBName] = h
	s.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
}

type insertRequest struct {
	DBName    string `json:"dbName"`
	Feature   string `json:"feature"`
	Key       string `json:"key"`
	TimesPath string `json:"timesPath"`
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h, err := s.open(req.DBName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := h.Insert(req.Feature, db.InsertOptions{Key: req.Key, TimesPath: req.TimesPath}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type batchInsertRequest struct {
	DBName      string `json:"dbName"`
	FeatureList string `json:"featureList"`
	KeyList     string `json:"keyList"`
	TimesList   string `json:"timesList"`
}

func (s *Server) handleBatchInsert(w http.ResponseWriter, r *http.Request) {
	var req batchInsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h, err := s.open(req.DBName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	opts := db.BatchInsertOptions{
		FeatureList: req.FeatureList,
		KeyList:     req.KeyList,
		TimesList:   req.TimesList,
		Progress: func(done, total int) {
			s.progress.broadcast(ProgressEvent{DB: req.DBName, Op: "batchinsert", Done: uint64(done), Total: uint64(total)})
		},
	}
	if err := h.BatchInsert(opts); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type l2normRequest struct {
	DBName string `json:"dbName"`
}

func (s *Server) handleL2Norm(w http.ResponseWriter, r *http.Request) {
	var req l2normRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h, err := s.open(req.DBName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	progress := func(done, total uint64) {
		s.progress.broadcast(ProgressEvent{DB: req.DBName, Op: "l2norm", Done: done, Total: total})
	}
	if err := h.L2Norm(progress); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}
