// unsafeslice.go -- zero-copy byte-slice <-> uint64-slice reinterpretation
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package cdb64

import "unsafe"

// bsToUint64Slice reinterprets b (whose length must be a multiple of 8)
// as a []uint64 without copying. Each resulting word is the machine's
// native-endian read of 8 consecutive bytes; callers on a big-endian
// host must still run each word through toLEUint64 to recover the
// little-endian value the file format specifies.
func bsToUint64Slice(b []byte) []uint64 {
	n := len(b) / 8
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n)
}
