// mmap.go -- memory-mapped ReaderAt, for the zero-copy decode path
//
// (c) Sudhi Herle 2018
//
// License GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package cdb64

import (
	"io"
	"os"

	"github.com/opencoff/go-mmap"
)

// MmapReader memory-maps an entire file read-only and answers positional
// reads by sub-slicing the mapping -- no syscall, no copy, per probe step.
// Reader.Get takes this path automatically whenever the Reader was opened
// with WithMmap.
type MmapReader struct {
	mm  *mmap.Mapping
	bs  []byte
	fd  *os.File
	own bool
}

// NewMmapReader maps fd's entire contents for reading. If own is true,
// Close also closes fd.
func NewMmapReader(fd *os.File, own bool) (*MmapReader, error) {
	st, err := fd.Stat()
	if err != nil {
		return nil, err
	}

	sz := st.Size()
	m := mmap.New(fd)
	mapping, err := m.Map(sz, 0, mmap.PROT_READ, mmap.F_READAHEAD)
	if err != nil {
		return nil, err
	}

	return &MmapReader{
		mm:  mapping,
		bs:  mapping.Bytes(),
		fd:  fd,
		own: own,
	}, nil
}

func (r *MmapReader) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.bs)) {
		return 0, io.EOF
	}
	n := copy(buf, r.bs[off:])
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

// Bytes returns the full mapped region, for callers (Reader, Iterator)
// that want to sub-slice directly instead of copying through ReadAt.
func (r *MmapReader) Bytes() []byte { return r.bs }

// Close unmaps the region and, if this MmapReader owns the underlying
// file handle, closes it too.
func (r *MmapReader) Close() error {
	err := r.mm.Unmap()
	if r.own {
		if cerr := r.fd.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
