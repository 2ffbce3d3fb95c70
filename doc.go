// doc.go - top level documentation
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

// Package cdb64 implements a read-optimized, immutable on-disk key/value
// store in the spirit of D. J. Bernstein's cdb, widened to 64-bit hash
// values and offsets so a database may exceed four gigabytes.
//
// A database is built once, in a single pass, with a Builder; thereafter
// it is served by a Reader that answers point lookups in at most two
// random reads per probe step. There is no in-place mutation, no
// concurrent-writer support and no transactional semantics -- the store
// is meant for data that changes rarely and is read very often.
//
// The on-disk format is a fixed 4096-byte directory of 256 hash subtables,
// followed by a data region holding records in insertion order, followed
// by the 256 subtables' open-addressed slot arrays. See Builder and Reader
// for the construction and query APIs, and Iterator for sequential
// traversal of every stored record.
package cdb64
