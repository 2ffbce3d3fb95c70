// main.go -- build, inspect and query cdb64 databases from the command line
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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/opencoff/go-cdb64"

	flag "github.com/opencoff/pflag"
)

func main() {
	var verify, dump, text, siphash, mmapFlag bool
	var getKey, cacheN string

	usage := fmt.Sprintf(
		`%s - build and query a cdb64 constant database

Usage: %s [options] OUTPUT [INPUT ...]
       %s -d|-V FILENAME
       %s -g KEY FILENAME

The first form builds a cdb64 database from one or more INPUTs.
INPUT can be a file ending in:
   .txt: a key/value per line delimited by white space
   .csv: a CSV text file

The second form dumps a database's subtable layout or verifies it opens.
The third form looks up a single key and prints its value.

Options:
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])

	flag.BoolVarP(&verify, "verify", "V", false, "Verify a cdb64 database opens cleanly")
	flag.BoolVarP(&dump, "dump-meta", "d", false, "Dump database subtable layout")
	flag.BoolVarP(&text, "text", "t", false, "Assume unsuffixed input file(s) are text")
	flag.BoolVarP(&siphash, "siphash", "s", false, "Use a randomly keyed SipHash64 instead of DJB64")
	flag.BoolVarP(&mmapFlag, "mmap", "m", false, "Open for reads via mmap instead of positional reads")
	flag.StringVarP(&getKey, "get", "g", "", "Look up `KEY` and print its value")
	flag.StringVarP(&cacheN, "cache", "c", "", "Cache up to `N` most recently read values")
	flag.Usage = func() {
		fmt.Print(usage)
		flag.PrintDefaults()
	}

	flag.Parse()
	args := flag.Args()

	if verify || dump || len(getKey) > 0 {
		if len(args) < 1 {
			die("no file name given\nUsage: %s", usage)
		}

		fn := args[0]
		opts := readerOpts(mmapFlag, cacheN)
		db, err := cdb64.Open(fn, opts...)
		if err != nil {
			die("can't open %s: %s", fn, err)
		}
		defer db.Close()

		switch {
		case len(getKey) > 0:
			v, ok := db.Get([]byte(getKey))
			if !ok {
				die("%s: key not found", getKey)
			}
			os.Stdout.Write(v)
			os.Stdout.WriteString("\n")

		case verify:
			fmt.Printf("%s\n", db.Desc())

		case dump:
			db.DumpMeta(os.Stdout)
		}
		return
	}

	if len(args) < 1 {
		die("no output file name given\nUsage: %s", usage)
	}

	fn := args[0]
	inputs := args[1:]

	var bopts []cdb64.BuilderOption
	if siphash {
		bopts = append(bopts, cdb64.WithBuilderHash(cdb64.NewRandomKeyed()))
	}

	db, err := cdb64.Create(fn, bopts...)
	if err != nil {
		die("can't create %s: %s", fn, err)
	}

	var tot uint64
	if len(inputs) > 0 {
		var n uint64
		for _, f := range inputs {
			switch {
			case strings.HasSuffix(f, ".txt"):
				n, err = AddTextFile(db, f, " \t")

			case strings.HasSuffix(f, ".csv"):
				n, err = AddCSVFile(db, f, ',', '#', 0, 1)

			default:
				if !text {
					warn("don't know how to add %s", f)
					continue
				}
				n, err = AddTextFile(db, f, " \t")
			}

			if err != nil {
				warn("can't add %s: %s", f, err)
				continue
			}

			fmt.Printf("+ %s: %d records\n", f, n)
			tot += n
		}
	} else {
		var n uint64

		n, err = AddTextStream(db, os.Stdin, " \t")
		if err != nil {
			db.Abort()
			die("can't add <stdin>: %s", err)
		}

		fmt.Printf("+ <stdin>: %d records\n", n)
		tot += n
	}

	start := time.Now()
	err = db.Finalize()
	if err != nil {
		db.Abort()
		die("can't write db %s: %s", fn, err)
	}
	delta := time.Since(start)
	speed := (1.0e6 * float64(tot)) / float64(delta.Microseconds()+1)
	fmt.Printf("%d keys, %s (%3.2f keys/sec)\n", tot, delta, speed)
}

func readerOpts(mmapFlag bool, cacheN string) []cdb64.ReaderOption {
	var opts []cdb64.ReaderOption
	if mmapFlag {
		opts = append(opts, cdb64.WithMmap())
	}
	if n := atoiOrZero(cacheN); n > 0 {
		opts = append(opts, cdb64.WithCache(n))
	}
	return opts
}

func atoiOrZero(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func die(f string, v ...interface{}) {
	warn(f, v...)
	os.Exit(1)
}

func warn(f string, v ...interface{}) {
	z := fmt.Sprintf("%s: %s", os.Args[0], f)
	s := fmt.Sprintf(z, v...)
	if n := len(s); n == 0 || s[n-1] != '\n' {
		s += "\n"
	}

	os.Stderr.WriteString(s)
	os.Stderr.Sync()
}

// vim: ft=go:sw=4:ts=4:noexpandtab:tw=78:
