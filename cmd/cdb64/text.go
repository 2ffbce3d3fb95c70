// text.go -- read key/value pairs from text or CSV files and feed a Builder
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

package main

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/opencoff/go-cdb64"
)

type record struct {
	key []byte
	val []byte
}

// AddTextFile adds contents from text file 'fn' where key and value are
// separated by one of the characters in 'delim'. Empty lines and comment
// lines ('#' prefix) are skipped. Returns number of records added.
func AddTextFile(w *cdb64.Builder, fn string, delim string) (uint64, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return 0, err
	}
	defer fd.Close()

	if len(delim) == 0 {
		delim = " \t"
	}

	return AddTextStream(w, fd, delim)
}

// AddTextStream adds contents from text stream 'fd' where key and value are
// separated by one of the characters in 'delim'. Lines with no value are
// stored with an empty value rather than skipped. Returns number of
// records added.
func AddTextStream(w *cdb64.Builder, fd io.Reader, delim string) (uint64, error) {
	rd := bufio.NewReader(fd)
	sc := bufio.NewScanner(rd)
	ch := make(chan *record, 10)

	go func(sc *bufio.Scanner, ch chan *record) {
		var empty string

		for sc.Scan() {
			s := strings.TrimSpace(sc.Text())
			if len(s) == 0 || s[0] == '#' {
				continue
			}

			var k, v string
			i := strings.IndexAny(s, delim)
			if i > 0 {
				k = s[:i]
				v = strings.TrimLeft(s[i:], delim)
			} else {
				k = s
				v = empty
			}

			ch <- &record{key: []byte(k), val: []byte(v)}
		}

		close(ch)
	}(sc, ch)

	return addFromChan(w, ch)
}

// AddCSVFile adds contents from CSV file 'fn'. kwfield and valfield select
// the key and value columns (default 0, 1). comma and comment configure the
// CSV reader's delimiter and comment rune. Returns number of records added.
func AddCSVFile(w *cdb64.Builder, fn string, comma, comment rune, kwfield, valfield int) (uint64, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return 0, err
	}
	defer fd.Close()

	return AddCSVStream(w, fd, comma, comment, kwfield, valfield)
}

// AddCSVStream is the streaming counterpart of AddCSVFile.
func AddCSVStream(w *cdb64.Builder, fd io.Reader, comma, comment rune, kwfield, valfield int) (uint64, error) {
	if kwfield < 0 {
		kwfield = 0
	}
	if valfield < 0 {
		valfield = 1
	}

	max := valfield
	if kwfield > valfield {
		max = kwfield
	}
	max++

	ch := make(chan *record, 10)
	cr := csv.NewReader(fd)
	cr.Comma = comma
	cr.Comment = comment
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	go func(cr *csv.Reader, ch chan *record) {
		for {
			v, err := cr.Read()
			if err != nil {
				break
			}
			if len(v) < max {
				continue
			}
			ch <- &record{key: []byte(v[kwfield]), val: []byte(v[valfield])}
		}
		close(ch)
	}(cr, ch)

	return addFromChan(w, ch)
}

func addFromChan(w *cdb64.Builder, ch chan *record) (uint64, error) {
	var n uint64
	for r := range ch {
		if err := w.Put(r.key, r.val); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// vim: ft=go:sw=4:ts=4:noexpandtab:tw=78:
