// errors.go - public errors exposed by cdb64
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
	"errors"
	"fmt"
)

func errShortWrite(who string, n, want int) error {
	return fmt.Errorf("%s: incomplete write; exp %d, saw %d", who, want, n)
}

func errCorrupt(format string, args ...interface{}) error {
	return fmt.Errorf("cdb64: corrupt database: "+format, args...)
}

var (
	// ErrFinalized is returned when attempting to Put a new record into
	// a Builder that has already been finalized.
	ErrFinalized = errors.New("cdb64: builder already finalized")

	// ErrNotFinalized is returned by IntoWriter when called before
	// Finalize has completed successfully.
	ErrNotFinalized = errors.New("cdb64: builder not finalized")

	// ErrValueTooLarge is returned if a value is larger than 2^32-1
	// bytes.
	ErrValueTooLarge = errors.New("cdb64: value is larger than 2^32-1 bytes")

	// ErrKeyTooLarge is returned if a key is larger than 2^32-1 bytes.
	ErrKeyTooLarge = errors.New("cdb64: key is larger than 2^32-1 bytes")

	// ErrNotFound is returned by Find when the requested key is absent.
	// Get reports the same condition as a plain boolean, not an error.
	ErrNotFound = errors.New("cdb64: no such key")

	// ErrTooSmall is returned when a file is too short to hold even an
	// empty directory.
	ErrTooSmall = errors.New("cdb64: file too small to be a valid database")
)
