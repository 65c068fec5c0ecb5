// Package mmapfile provides a fixed-size, memory-mapped byte region with
// typed read/write accessors. It is the single owner of the mapping: every
// exit path (including errors) must call Close to release it.
package mmapfile

import (
	"encoding/binary"
	"errors"
	"os"

	"github.com/go-mmap/mmap"
)

// ErrShortFile is returned when Open finds a file that does not have the
// requested fixed size.
var ErrShortFile = errors.New("mmapfile: file is not the expected fixed size")

// Region is a fixed-size file mapped read-write into the process. Unlike a
// growable record store, a Region never changes size after creation: callers
// that need more space must have sized the file correctly up front.
type Region struct {
	f    *mmap.File
	name string
	size int64
}

// CreateFixed creates a new file of exactly size bytes (truncated from
// nothing, so the contents start zeroed) and maps it read-write.
func CreateFixed(name string, size int64) (*Region, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, err
	}
	f.Close()

	mf, err := mmap.OpenFile(name, mmap.Read|mmap.Write)
	if err != nil {
		return nil, err
	}
	return &Region{f: mf, name: name, size: size}, nil
}

// Open maps an existing file read-write. size is the size the caller
// expects (the database's fixed DBSIZE); a mismatch is reported as
// ErrShortFile rather than silently truncating or growing the file.
func Open(name string, size int64) (*Region, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if fi.Size() != size {
		return nil, ErrShortFile
	}

	mf, err := mmap.OpenFile(name, mmap.Read|mmap.Write)
	if err != nil {
		return nil, err
	}
	return &Region{f: mf, name: name, size: size}, nil
}

// Close unmaps the region. Safe to call more than once.
func (r *Region) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// Size returns the fixed size of the mapped region.
func (r *Region) Size() int64 { return r.size }

// Sync flushes pending writes to the backing file.
func (r *Region) Sync() error {
	return r.f.Sync()
}

func (r *Region) ReadAt(p []byte, off int64) (int, error) {
	return r.f.ReadAt(p, off)
}

func (r *Region) WriteAt(p []byte, off int64) (int, error) {
	return r.f.WriteAt(p, off)
}

// ReadUint32 reads a little-endian uint32 at off.
func (r *Region) ReadUint32(off int64) uint32 {
	var buf [4]byte
	r.f.ReadAt(buf[:], off)
	return binary.LittleEndian.Uint32(buf[:])
}

// WriteUint32 writes a little-endian uint32 at off.
func (r *Region) WriteUint32(off int64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	r.f.WriteAt(buf[:], off)
}

// ReadUint64 reads a little-endian uint64 at off.
func (r *Region) ReadUint64(off int64) uint64 {
	var buf [8]byte
	r.f.ReadAt(buf[:], off)
	return binary.LittleEndian.Uint64(buf[:])
}

// WriteUint64 writes a little-endian uint64 at off.
func (r *Region) WriteUint64(off int64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	r.f.WriteAt(buf[:], off)
}

// ReadFloat64 reads a little-endian IEEE-754 double at off.
func (r *Region) ReadFloat64(off int64) float64 {
	return bitsToFloat(r.ReadUint64(off))
}

// WriteFloat64 writes a little-endian IEEE-754 double at off.
func (r *Region) WriteFloat64(off int64, v float64) {
	r.WriteUint64(off, floatToBits(v))
}

// ReadFloat64s reads n consecutive doubles starting at off into dst.
func (r *Region) ReadFloat64s(off int64, dst []float64) {
	buf := make([]byte, 8*len(dst))
	r.f.ReadAt(buf, off)
	for i := range dst {
		dst[i] = bitsToFloat(binary.LittleEndian.Uint64(buf[i*8 : i*8+8]))
	}
}

// WriteFloat64s writes the doubles in src starting at off.
func (r *Region) WriteFloat64s(off int64, src []float64) {
	buf := make([]byte, 8*len(src))
	for i, v := range src {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], floatToBits(v))
	}
	r.f.WriteAt(buf, off)
}

// CopyFrom copies raw bytes from src into the region at off.
func (r *Region) CopyFrom(off int64, src []byte) {
	r.f.WriteAt(src, off)
}

// CopyInto copies n bytes from the region at off into a fresh slice.
func (r *Region) CopyInto(off int64, n int) []byte {
	buf := make([]byte, n)
	r.f.ReadAt(buf, off)
	return buf
}
