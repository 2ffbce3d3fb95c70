// roundtrip_test.go -- end-to-end Builder -> Reader/Iterator scenarios
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
	"testing"
)

func buildMem(t *testing.T, pairs [][2]string, opts ...BuilderOption) MemReader {
	t.Helper()
	assert := newAsserter(t)

	mw := NewMemWriter()
	b, err := NewBuilder(mw, opts...)
	assert(err == nil, "NewBuilder: %s", err)

	for _, p := range pairs {
		assert(b.Put([]byte(p[0]), []byte(p[1])) == nil, "Put(%q,%q) failed", p[0], p[1])
	}
	assert(b.Finalize() == nil, "Finalize failed")
	return MemReader(mw.Bytes())
}

func TestTwoRecordRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	pairs := [][2]string{{"foo", "bar"}, {"baz", "quuuux"}}
	buf := buildMem(t, pairs)

	rd, err := New(buf)
	assert(err == nil, "New: %s", err)

	v, ok := rd.Get([]byte("foo"))
	assert(ok, "get(foo): not found")
	assert(string(v) == "bar", "get(foo): exp bar, saw %q", v)

	v, ok = rd.Get([]byte("baz"))
	assert(ok, "get(baz): not found")
	assert(string(v) == "quuuux", "get(baz): exp quuuux, saw %q", v)

	_, ok = rd.Get([]byte("qux"))
	assert(!ok, "get(qux): unexpectedly found")

	it := rd.Iter()
	for i, want := range pairs {
		k, v, ok, err := it.Next()
		assert(err == nil, "Next(%d): %s", i, err)
		assert(ok, "Next(%d): exp a record", i)
		assert(string(k) == want[0], "Next(%d) key: exp %q, saw %q", i, want[0], k)
		assert(string(v) == want[1], "Next(%d) val: exp %q, saw %q", i, want[1], v)
	}
	_, _, ok, err = it.Next()
	assert(err == nil, "final Next: %s", err)
	assert(!ok, "final Next: exp exhausted")
}

// TestDJB64CompatibilityFixture is the cross-implementation compatibility
// anchor: nine pairs, including a same-subtable-or-not collision pair
// ("crystal"/"CRYSTAL") and both an empty value and an empty key.
func TestDJB64CompatibilityFixture(t *testing.T) {
	assert := newAsserter(t)

	pairs := [][2]string{
		{"foo", "bar"},
		{"baz", "quuuux"},
		{"playwright", "wow"},
		{"crystal", "CASTLES"},
		{"CRYSTAL", "castles"},
		{"snush", "collision!"},
		{"a", "a"},
		{"empty_value", ""},
		{"", "empty_key"},
	}
	buf := buildMem(t, pairs)

	rd, err := New(buf)
	assert(err == nil, "New: %s", err)
	assert(rd.Len() == uint64(len(pairs)), "Len: exp %d, saw %d", len(pairs), rd.Len())

	for _, p := range pairs {
		v, ok := rd.Get([]byte(p[0]))
		assert(ok, "get(%q): not found", p[0])
		assert(string(v) == p[1], "get(%q): exp %q, saw %q", p[0], p[1], v)
	}

	_, ok := rd.Get([]byte("not in the table"))
	assert(!ok, "get(\"not in the table\"): unexpectedly found")
}

// TestOversizedRecordAlongsideSmallRecord exercises the large-record
// scenario from the round-trip acceptance list: a 10,000-byte key with a
// 100,000-byte value, stored next to an ordinary small record, both
// surviving Finalize and reopening intact.
func TestOversizedRecordAlongsideSmallRecord(t *testing.T) {
	assert := newAsserter(t)

	bigKey := randbytes(10_000)
	bigVal := randbytes(100_000)
	smallKey, smallVal := []byte("small"), []byte("v")

	mw := NewMemWriter()
	b, err := NewBuilder(mw)
	assert(err == nil, "NewBuilder: %s", err)
	assert(b.Put(bigKey, bigVal) == nil, "Put(big) failed")
	assert(b.Put(smallKey, smallVal) == nil, "Put(small) failed")
	assert(b.Finalize() == nil, "Finalize failed")

	rd, err := New(MemReader(mw.Bytes()))
	assert(err == nil, "New: %s", err)
	assert(rd.Len() == 2, "Len: exp 2, saw %d", rd.Len())

	v, ok := rd.Get(bigKey)
	assert(ok, "get(bigKey): not found")
	assert(bytes.Equal(v, bigVal), "get(bigKey): value mismatch, len exp %d saw %d", len(bigVal), len(v))

	v, ok = rd.Get(smallKey)
	assert(ok, "get(smallKey): not found")
	assert(bytes.Equal(v, smallVal), "get(smallKey): exp %q, saw %q", smallVal, v)

	seen := make(map[string][]byte, 2)
	err = rd.Iter().ForEach(func(k, v []byte) error {
		seen[string(k)] = append([]byte(nil), v...)
		return nil
	})
	assert(err == nil, "ForEach: %s", err)
	assert(len(seen) == 2, "iteration: exp 2 records, saw %d", len(seen))
	assert(bytes.Equal(seen[string(bigKey)], bigVal), "iteration: big record value mismatch")
	assert(bytes.Equal(seen[string(smallKey)], smallVal), "iteration: small record value mismatch")
}

func TestLargeDatasetCoversManySubtables(t *testing.T) {
	assert := newAsserter(t)

	n := 5000
	pairs := make([][2]string, n)
	for i := 0; i < n; i++ {
		pairs[i] = [2]string{fmt.Sprintf("key-%06d", i), fmt.Sprintf("value-%06d", i)}
	}
	buf := buildMem(t, pairs)

	rd, err := New(buf)
	assert(err == nil, "New: %s", err)
	assert(rd.Len() == uint64(n), "Len: exp %d, saw %d", n, rd.Len())

	touched := make(map[int]bool)
	for i, p := range pairs {
		h := DJB64.Sum64([]byte(p[0]))
		touched[int(table(h))] = true

		v, ok := rd.Get([]byte(p[0]))
		assert(ok, "get(%q): not found", p[0])
		assert(string(v) == p[1], "get(%d): exp %q, saw %q", i, p[1], v)
	}
	assert(len(touched) > 1, "expected records to spread across more than one subtable")

	seen := make(map[string]string, n)
	err = rd.Iter().ForEach(func(k, v []byte) error {
		seen[string(k)] = string(v)
		return nil
	})
	assert(err == nil, "ForEach: %s", err)
	assert(len(seen) == n, "iteration: exp %d records, saw %d", n, len(seen))
	for _, p := range pairs {
		assert(seen[p[0]] == p[1], "iteration missed or mangled %q", p[0])
	}
}

func TestDuplicateKeysKeepBothRecordsFirstWins(t *testing.T) {
	assert := newAsserter(t)

	pairs := [][2]string{{"dup", "first"}, {"dup", "second"}}
	buf := buildMem(t, pairs)

	rd, err := New(buf)
	assert(err == nil, "New: %s", err)
	assert(rd.Len() == 2, "Len: exp 2, saw %d", rd.Len())

	v, ok := rd.Get([]byte("dup"))
	assert(ok, "get(dup): not found")
	assert(string(v) == "first", "get(dup): exp first match to win, saw %q", v)

	n := 0
	err = rd.Iter().ForEach(func(k, v []byte) error {
		if string(k) == "dup" {
			n++
		}
		return nil
	})
	assert(err == nil, "ForEach: %s", err)
	assert(n == 2, "exp both duplicate records to survive iteration, saw %d", n)
}

func TestSipHash64BuiltDatabase(t *testing.T) {
	assert := newAsserter(t)

	k := NewRandomKeyed()
	pairs := [][2]string{{"foo", "bar"}, {"baz", "quuuux"}, {"x", "y"}}

	mw := NewMemWriter()
	b, err := NewBuilder(mw, WithBuilderHash(k))
	assert(err == nil, "NewBuilder: %s", err)
	for _, p := range pairs {
		assert(b.Put([]byte(p[0]), []byte(p[1])) == nil, "Put(%q) failed", p[0])
	}
	assert(b.Finalize() == nil, "Finalize failed")

	rd, err := New(MemReader(mw.Bytes()), WithReaderHash(k))
	assert(err == nil, "New: %s", err)
	for _, p := range pairs {
		v, ok := rd.Get([]byte(p[0]))
		assert(ok, "get(%q): not found", p[0])
		assert(string(v) == p[1], "get(%q): exp %q, saw %q", p[0], p[1], v)
	}

	// opening with the default hash must not find the siphash-placed keys
	wrong, err := New(MemReader(mw.Bytes()))
	assert(err == nil, "New: %s", err)
	_, ok := wrong.Get([]byte("foo"))
	assert(!ok, "get(foo) with mismatched hash unexpectedly succeeded")
}

func TestMmapRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	path := dir + "/mmap.cdb"

	b, err := Create(path)
	assert(err == nil, "Create: %s", err)
	for _, s := range keyw {
		assert(b.Put([]byte(s), []byte("v-"+s)) == nil, "Put(%q) failed", s)
	}
	assert(b.Finalize() == nil, "Finalize failed")

	w, err := b.IntoWriter()
	assert(err == nil, "IntoWriter: %s", err)
	if c, ok := w.(interface{ Close() error }); ok {
		c.Close()
	}

	rd, err := Open(path, WithMmap())
	assert(err == nil, "Open(mmap): %s", err)
	defer rd.Close()

	for _, s := range keyw {
		v, ok := rd.Get([]byte(s))
		assert(ok, "mmap get(%q): not found", s)
		assert(string(v) == "v-"+s, "mmap get(%q): exp %q, saw %q", s, "v-"+s, v)
	}
}

func TestCachedReaderReturnsSameValues(t *testing.T) {
	assert := newAsserter(t)

	pairs := [][2]string{{"foo", "bar"}, {"baz", "quuuux"}, {"a", "a"}}
	buf := buildMem(t, pairs)

	rd, err := New(buf, WithCache(2))
	assert(err == nil, "New: %s", err)

	for round := 0; round < 2; round++ {
		for _, p := range pairs {
			v, ok := rd.Get([]byte(p[0]))
			assert(ok, "round %d get(%q): not found", round, p[0])
			assert(string(v) == p[1], "round %d get(%q): exp %q, saw %q", round, p[0], p[1], v)
		}
	}
}
