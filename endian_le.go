// endian_le.go -- endian conversion routines for little-endian arch.
// This file is for little endian systems; thus conversion _to_ little-endian
// format is idempotent.
// We build this file into all arch's that are LE. We list them in the build
// constraints below
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

//go:build 386 || amd64 || arm || arm64 || ppc64le || mipsle || mips64le
// +build 386 amd64 arm arm64 ppc64le mipsle mips64le

package cdb64

// toLEUint64 interprets v as a native-endian read of 8 LE-ordered bytes
// and returns the value those bytes actually encode. On a little-endian
// host this is the identity.
func toLEUint64(v uint64) uint64 {
	return v
}
