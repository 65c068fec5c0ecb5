// Package wire implements the external, file-based interfaces consumed by
// the insertion path: the binary feature-file format, the ASCII times-file
// format, and the list-file format used by batch insert.
package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/edsrzf/mmap-go"
)

// ErrTruncated is returned when a feature file is shorter than its declared
// dimension implies.
var ErrTruncated = errors.New("wire: feature file truncated")

// FeatureFile is a read-only mapping of a vector-file: [int32 dim][double
// x dim x N]. It is mapped once and kept open for the duration of an
// insert or query so that the payload can be copied straight out of the
// mapping without an intermediate read into a Go slice.
type FeatureFile struct {
	f    *os.File
	data mmap.MMap
	dim  uint32
}

// OpenFeatureFile maps path read-only and parses its leading dimension.
func OpenFeatureFile(path string) (*FeatureFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	if len(data) < 4 {
		data.Unmap()
		f.Close()
		return nil, ErrTruncated
	}
	dim := binary.LittleEndian.Uint32(data[:4])
	return &FeatureFile{f: f, data: data, dim: dim}, nil
}

// Dim returns the dimension declared in the file's first 4 bytes.
func (ff *FeatureFile) Dim() uint32 { return ff.dim }

// Size returns the total file size in bytes, including the 4-byte header.
func (ff *FeatureFile) Size() int64 { return int64(len(ff.data)) }

// NumVectors returns (size-4)/(8*dim), i.e. how many full vectors the
// payload holds given dim. Callers pass the database's dimension so a
// dimension mismatch is detected by the caller, not silently here.
func (ff *FeatureFile) NumVectors(dim uint32) int {
	if dim == 0 {
		return 0
	}
	payload := int64(len(ff.data)) - 4
	if payload <= 0 {
		return 0
	}
	return int(payload / (8 * int64(dim)))
}

// Payload returns the raw vector bytes (everything after the 4-byte
// dimension header), to be memcpy'd directly into the database payload
// region.
func (ff *FeatureFile) Payload() []byte {
	return ff.data[4:]
}

// Close unmaps the file.
func (ff *FeatureFile) Close() error {
	if ff.data != nil {
		ff.data.Unmap()
		ff.data = nil
	}
	if ff.f != nil {
		err := ff.f.Close()
		ff.f = nil
		return err
	}
	return nil
}

// ReadTimes streams ASCII whitespace-separated doubles from r, writing up
// to want of them into dst and tolerating up to two trailing extra values
// (the "[want, want+2]" tolerance carried over from the original reference
// implementation's intent, which was never made precise there either).
// It returns the count of values actually consumed (capped at want) and
// the total count seen, so the caller can apply ErrTimesCountMismatch.
func ReadTimes(r io.Reader, dst []float64) (consumed, total int, err error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	want := len(dst)
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return consumed, total, err
		}
		if total < want {
			dst[total] = v
			consumed++
		}
		total++
	}
	if err := sc.Err(); err != nil {
		return consumed, total, err
	}
	return consumed, total, nil
}
