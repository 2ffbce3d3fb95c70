// hash_siphash.go -- an alternate, keyed Hash implementation
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
	"github.com/dchest/siphash"
)

// SipHash64 is an alternate Hash implementation built on siphash-2-4,
// keyed by a 128-bit secret. Unlike DJB64 it is not predictable from the
// key bytes alone, which matters when keys are attacker-controlled and
// the subtable/slot placement must not be steerable into worst-case probe
// chains.
//
// A database built with a SipHash64 instance must be reopened with a
// SipHash64 instance carrying the identical k0/k1 -- the key material is
// never stored in the file.
type SipHash64 struct {
	k0, k1 uint64
}

// NewSipHash64 returns a Hash keyed by k0, k1. Both halves of the key
// should come from a cryptographically random source (see
// NewRandomKeyed, which draws a fresh key from crypto/rand).
func NewSipHash64(k0, k1 uint64) SipHash64 {
	return SipHash64{k0: k0, k1: k1}
}

func (s SipHash64) Sum64(key []byte) uint64 {
	return siphash.Hash(s.k0, s.k1, key)
}

// NewRandomKeyed mints a fresh SipHash64 key from crypto/rand. Callers
// must retain the returned instance to reopen the database later -- the
// key is never stored in the file.
func NewRandomKeyed() SipHash64 {
	return NewKeyed(randbytes(16))
}

// NewKeyed returns a SipHash64 keyed from 16 bytes of caller-supplied
// key material, e.g. randbytes(16).
func NewKeyed(key []byte) SipHash64 {
	var k0, k1 uint64
	for i := 0; i < 8 && i < len(key); i++ {
		k0 |= uint64(key[i]) << (8 * uint(i))
	}
	for i := 8; i < 16 && i < len(key); i++ {
		k1 |= uint64(key[i]) << (8 * uint(i-8))
	}
	return NewSipHash64(k0, k1)
}
