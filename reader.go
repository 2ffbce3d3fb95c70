// reader.go -- point lookups against a previously built database
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
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	arc "github.com/hashicorp/golang-lru/arc/v2"
)

// byteser is implemented by ReaderAt sources that additionally expose
// their whole backing region as a slice, enabling the zero-copy decode
// path: MemReader and MmapReader.
type byteser interface {
	Bytes() []byte
}

// readerConfig collects ReaderOption settings before a Reader is built.
type readerConfig struct {
	hash      Hash
	cacheSize int
	mmap      bool
}

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*readerConfig)

// WithReaderHash selects the Hash a Reader uses to place keys. It must
// match the Hash the database was built with (WithBuilderHash).
func WithReaderHash(h Hash) ReaderOption {
	return func(c *readerConfig) { c.hash = h }
}

// WithCache enables an opportunistic LRU/ARC cache of up to n most
// recently retrieved values, keyed by the query's key bytes (not its
// hash -- two distinct keys are explicitly allowed to collide at the
// hash level, and the cache must not conflate them).
func WithCache(n int) ReaderOption {
	return func(c *readerConfig) { c.cacheSize = n }
}

// WithMmap opens the database over a memory map instead of positional
// reads, enabling the zero-copy decode path (see MmapReader). Only
// meaningful with Open, which has a file to map.
func WithMmap() ReaderOption {
	return func(c *readerConfig) { c.mmap = true }
}

// Reader answers point lookups and sequential iteration against a
// previously built, immutable database. After Open/New, the directory is
// fixed; Reader is safe for concurrent Get/Find calls from multiple
// goroutines provided the underlying ReaderAt is itself safe for
// concurrent positional reads (true of *os.File and MmapReader).
type Reader struct {
	dir     directory
	ra      ReaderAt
	bs      []byte // non-nil iff ra implements byteser: zero-copy path
	hash    Hash
	cache   *arc.ARCCache[string, []byte]
	dataEnd uint64 // start of the first slot array (or DirectorySize if empty)

	fd *os.File
	mm *MmapReader
}

// Open opens the database file at path for reading.
func Open(path string, opts ...ReaderOption) (rd *Reader, err error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			fd.Close()
		}
	}()

	cfg := readerConfig{hash: DJB64}
	for _, o := range opts {
		o(&cfg)
	}

	var ra ReaderAt = fd
	var mm *MmapReader
	if cfg.mmap {
		mm, err = NewMmapReader(fd, false)
		if err != nil {
			return nil, err
		}
		ra = mm
	}

	rd, err = newReader(ra, cfg)
	if err != nil {
		if mm != nil {
			mm.Close()
		}
		return nil, err
	}
	rd.fd = fd
	rd.mm = mm
	return rd, nil
}

// New opens a database from an arbitrary ReaderAt (for example a
// MemReader holding an in-memory database). The caller retains ownership
// of src; Close on the returned Reader does not close it.
func New(src ReaderAt, opts ...ReaderOption) (*Reader, error) {
	cfg := readerConfig{hash: DJB64}
	for _, o := range opts {
		o(&cfg)
	}
	return newReader(src, cfg)
}

func newReader(ra ReaderAt, cfg readerConfig) (*Reader, error) {
	var hdr [DirectorySize]byte
	if err := readFullAt(ra, hdr[:], 0); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, ErrTooSmall
		}
		return nil, err
	}

	dir := decodeDirectory(hdr[:])

	dataEnd := uint64(DirectorySize)
	found := false
	for _, e := range dir {
		if e.length == 0 {
			continue
		}
		if !found || e.offset < dataEnd {
			dataEnd = e.offset
			found = true
		}
	}
	if !found {
		dataEnd = DirectorySize
	}

	rd := &Reader{
		dir:     dir,
		ra:      ra,
		hash:    cfg.hash,
		dataEnd: dataEnd,
	}
	if b, ok := ra.(byteser); ok {
		rd.bs = b.Bytes()
	}
	if cfg.cacheSize > 0 {
		c, err := arc.NewARC[string, []byte](cfg.cacheSize)
		if err != nil {
			return nil, err
		}
		rd.cache = c
	}
	return rd, nil
}

// Len reports the total number of records stored, derived from the
// directory's per-subtable slot counts (each subtable holds 2n slots for
// n records).
func (rd *Reader) Len() uint64 {
	var n uint64
	for _, e := range rd.dir {
		n += e.length / 2
	}
	return n
}

// Close releases the resources Open acquired. Readers constructed with
// New over a caller-supplied ReaderAt have nothing to release.
func (rd *Reader) Close() error {
	if rd.cache != nil {
		rd.cache.Purge()
	}

	var err error
	if rd.mm != nil {
		err = rd.mm.Close()
	}
	if rd.fd != nil {
		if e := rd.fd.Close(); err == nil {
			err = e
		}
	}
	return err
}

// Get looks up key and reports whether it was found. It is equivalent to
// Find but reports absence as (nil, false) instead of an error.
func (rd *Reader) Get(key []byte) ([]byte, bool) {
	v, err := rd.Find(key)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Find looks up key and returns its value, or ErrNotFound if key is
// absent. Any I/O or corruption error from the underlying storage is
// returned as-is.
func (rd *Reader) Find(key []byte) ([]byte, error) {
	h := rd.hash.Sum64(key)

	if rd.cache != nil {
		if v, ok := rd.cache.Get(string(key)); ok {
			return v, nil
		}
	}

	e := rd.dir[table(h)]
	if e.length == 0 {
		return nil, ErrNotFound
	}

	s0 := startSlot(h, e.length)
	var slotBuf [slotSize]byte

	for i := uint64(0); i < e.length; i++ {
		s := (s0 + i) % e.length
		slotOff := e.offset + s*slotSize

		var slotHash, dataOff uint64
		if rd.bs != nil {
			if slotOff+slotSize > uint64(len(rd.bs)) {
				return nil, errCorrupt("slot at %d truncated", slotOff)
			}
			slotHash, dataOff = decodeSlot(rd.bs[slotOff : slotOff+slotSize])
		} else {
			if err := readFullAt(rd.ra, slotBuf[:], int64(slotOff)); err != nil {
				return nil, err
			}
			slotHash, dataOff = decodeSlot(slotBuf[:])
		}

		if slotHash == 0 && dataOff == 0 {
			return nil, ErrNotFound
		}
		if slotHash != h {
			continue
		}

		val, ok, err := rd.matchRecord(dataOff, key)
		if err != nil {
			return nil, err
		}
		if ok {
			if rd.cache != nil {
				rd.cache.Add(string(key), val)
			}
			return val, nil
		}
		// same hash, different key: keep probing
	}

	return nil, ErrNotFound
}

// matchRecord reads the record at off and reports whether its key equals
// key. ok is false (with a nil error) on a plain mismatch; err is set
// only for I/O failure or a structurally corrupt record.
func (rd *Reader) matchRecord(off uint64, key []byte) (val []byte, ok bool, err error) {
	if off < DirectorySize || off >= rd.dataEnd {
		return nil, false, errCorrupt("record offset %#x out of bounds", off)
	}

	var kLen, vLen uint32
	if rd.bs != nil {
		if off+recordHeaderSize > uint64(len(rd.bs)) {
			return nil, false, errCorrupt("record header at %#x truncated", off)
		}
		kLen, vLen = decodeRecordHeader(rd.bs[off : off+recordHeaderSize])
	} else {
		var hdrBuf [recordHeaderSize]byte
		if err := readFullAt(rd.ra, hdrBuf[:], int64(off)); err != nil {
			return nil, false, err
		}
		kLen, vLen = decodeRecordHeader(hdrBuf[:])
	}

	if uint64(kLen) != uint64(len(key)) {
		return nil, false, nil
	}

	recEnd := off + recordHeaderSize + uint64(kLen) + uint64(vLen)
	if recEnd > rd.dataEnd {
		return nil, false, errCorrupt("record at %#x overruns data region", off)
	}

	keyOff := off + recordHeaderSize
	valOff := keyOff + uint64(kLen)

	if kLen > 0 {
		var gotKey []byte
		if rd.bs != nil {
			gotKey = rd.bs[keyOff : keyOff+uint64(kLen)]
		} else {
			gotKey = make([]byte, kLen)
			if err := readFullAt(rd.ra, gotKey, int64(keyOff)); err != nil {
				return nil, false, err
			}
		}
		if !bytes.Equal(gotKey, key) {
			return nil, false, nil
		}
	}

	if vLen == 0 {
		return []byte{}, true, nil
	}

	if rd.bs != nil {
		src := rd.bs[valOff : valOff+uint64(vLen)]
		val = make([]byte, len(src))
		copy(val, src)
	} else {
		val = make([]byte, vLen)
		if err := readFullAt(rd.ra, val, int64(valOff)); err != nil {
			return nil, false, err
		}
	}
	return val, true, nil
}

// Desc returns a one-line human-readable summary of the database.
func (rd *Reader) Desc() string {
	return fmt.Sprintf("cdb64: %d records, data region [%d,%d)", rd.Len(), DirectorySize, rd.dataEnd)
}

// DumpMeta writes a per-subtable occupancy report to w, for diagnostics.
func (rd *Reader) DumpMeta(w io.Writer) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rd.Desc())
	for i, e := range rd.dir {
		if e.length == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %3d: %d slots at %#x\n", i, e.length, e.offset)
	}
	io.WriteString(w, b.String())
}
