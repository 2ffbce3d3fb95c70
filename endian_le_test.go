// endian_le_test.go -- test suite for endian-convertors:
// Run this on Little-endian machines!
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

import (
	"testing"
)

func TestEndianOnLE(t *testing.T) {
	assert := newAsserter(t) // this is in helpers_test.go

	a1 := uint64(0xabcd1234baadf00d)
	b1 := toLEUint64(a1)
	assert(a1 == b1, "uint64 %d != %d", a1, b1)
}
