// iterator.go -- sequential traversal of every stored record
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

// Iterator walks every record in a database, in the exact order Put
// wrote them. It borrows its Reader: the reader may still answer
// concurrent Get/Find calls while an Iterator is in progress. An
// Iterator is finite and single-pass; to start over, call Reader.Iter
// again.
type Iterator struct {
	rd     *Reader
	cursor uint64
	end    uint64
	err    error
}

// Iter returns an Iterator positioned at the start of the data region.
func (rd *Reader) Iter() *Iterator {
	return &Iterator{rd: rd, cursor: DirectorySize, end: rd.dataEnd}
}

// Next returns the next (key, value) pair. ok is false once the
// iterator is exhausted; a non-nil err (returned alongside ok == false)
// means the database is corrupt or an I/O error occurred, and is sticky
// -- further calls to Next return the same error.
func (it *Iterator) Next() (key, val []byte, ok bool, err error) {
	if it.err != nil {
		return nil, nil, false, it.err
	}
	if it.cursor >= it.end {
		return nil, nil, false, nil
	}

	off := it.cursor
	rd := it.rd

	var kLen, vLen uint32
	if rd.bs != nil {
		if off+recordHeaderSize > it.end || off+recordHeaderSize > uint64(len(rd.bs)) {
			it.err = errCorrupt("record header at %#x overruns data region", off)
			return nil, nil, false, it.err
		}
		kLen, vLen = decodeRecordHeader(rd.bs[off : off+recordHeaderSize])
	} else {
		var hdrBuf [recordHeaderSize]byte
		if e := readFullAt(rd.ra, hdrBuf[:], int64(off)); e != nil {
			it.err = e
			return nil, nil, false, e
		}
		kLen, vLen = decodeRecordHeader(hdrBuf[:])
	}

	recEnd := off + recordHeaderSize + uint64(kLen) + uint64(vLen)
	if recEnd > it.end || (rd.bs != nil && recEnd > uint64(len(rd.bs))) {
		it.err = errCorrupt("record at %#x overruns data region", off)
		return nil, nil, false, it.err
	}

	keyOff := off + recordHeaderSize
	valOff := keyOff + uint64(kLen)

	if rd.bs != nil {
		key = append([]byte(nil), rd.bs[keyOff:keyOff+uint64(kLen)]...)
		val = append([]byte(nil), rd.bs[valOff:valOff+uint64(vLen)]...)
	} else {
		key = make([]byte, kLen)
		if e := readFullAt(rd.ra, key, int64(keyOff)); e != nil {
			it.err = e
			return nil, nil, false, e
		}
		val = make([]byte, vLen)
		if e := readFullAt(rd.ra, val, int64(valOff)); e != nil {
			it.err = e
			return nil, nil, false, e
		}
	}

	it.cursor = recEnd
	return key, val, true, nil
}

// ForEach drives the iterator to completion, calling fp for every
// record. It stops at the first error, either from the iterator itself
// or returned by fp.
func (it *Iterator) ForEach(fp func(key, val []byte) error) error {
	for {
		k, v, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fp(k, v); err != nil {
			return err
		}
	}
}
