// Package testing provides fixtures for exercising grunt plans in tests:
// a terse row constructor, counting wrappers over the datasource boundary,
// and failure injectors for the load and store paths.
package testing

import (
	"sync/atomic"

	"github.com/go-grunt/grunt"
)

// Row builds a Row from alternating field, value pairs
func Row(pairs ...interface{}) *grunt.Row {
	row := grunt.NewRow()
	for i := 0; i+1 < len(pairs); i += 2 {
		row = row.With(pairs[i].(string), pairs[i+1])
	}
	return row
}

// CountingLoader wraps a Loader, counting location listings, reader
// initializations and reader closes, so tests can assert that load side
// effects happen exactly once per location regardless of consumer fan-out
type CountingLoader struct {
	Inner grunt.Loader

	locations int32
	inits     int32
	closes    int32
}

// Locations delegates to the wrapped Loader
func (c *CountingLoader) Locations() ([]string, error) {
	atomic.AddInt32(&c.locations, 1)
	return c.Inner.Locations()
}

// InitReader delegates to the wrapped Loader
func (c *CountingLoader) InitReader(location string) (grunt.RowReader, error) {
	atomic.AddInt32(&c.inits, 1)
	reader, err := c.Inner.InitReader(location)
	if err != nil {
		return nil, err
	}
	return &countingReader{inner: reader, closes: &c.closes}, nil
}

// LocationCalls returns how many times Locations was invoked
func (c *CountingLoader) LocationCalls() int { return int(atomic.LoadInt32(&c.locations)) }

// ReaderInits returns how many readers were initialized
func (c *CountingLoader) ReaderInits() int { return int(atomic.LoadInt32(&c.inits)) }

// ReaderCloses returns how many readers were closed
func (c *CountingLoader) ReaderCloses() int { return int(atomic.LoadInt32(&c.closes)) }

type countingReader struct {
	inner  grunt.RowReader
	closes *int32
}

func (r *countingReader) Read() (*grunt.Row, error) { return r.inner.Read() }

func (r *countingReader) Close() error {
	atomic.AddInt32(r.closes, 1)
	return r.inner.Close()
}

// FailingLoader emits the given Rows from a single location, then fails
// with Err instead of completing
type FailingLoader struct {
	Rows []*grunt.Row
	Err  error
}

// Locations returns a single location descriptor
func (l *FailingLoader) Locations() ([]string, error) {
	return []string{"failing-0"}, nil
}

// InitReader opens a reader which errors once the Rows run out
func (l *FailingLoader) InitReader(location string) (grunt.RowReader, error) {
	return &failingReader{rows: l.Rows, err: l.Err}, nil
}

type failingReader struct {
	rows []*grunt.Row
	pos  int
	err  error
}

func (r *failingReader) Read() (*grunt.Row, error) {
	if r.pos >= len(r.rows) {
		return nil, r.err
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *failingReader) Close() error { return nil }

// BlockingLoader serves an endless stream of copies of one Row from a
// single location, for cancellation tests. Reads never fail and never end.
type BlockingLoader struct {
	Row *grunt.Row

	closes int32
}

// Locations returns a single location descriptor
func (l *BlockingLoader) Locations() ([]string, error) {
	return []string{"endless-0"}, nil
}

// InitReader opens the endless reader
func (l *BlockingLoader) InitReader(location string) (grunt.RowReader, error) {
	return &endlessReader{row: l.Row, closes: &l.closes}, nil
}

// ReaderCloses returns how many readers were closed
func (l *BlockingLoader) ReaderCloses() int { return int(atomic.LoadInt32(&l.closes)) }

type endlessReader struct {
	row    *grunt.Row
	closes *int32
}

func (r *endlessReader) Read() (*grunt.Row, error) { return r.row, nil }

func (r *endlessReader) Close() error {
	atomic.AddInt32(r.closes, 1)
	return nil
}

// FailingStorer fails after FailAfter successful writes
type FailingStorer struct {
	FailAfter int
	Err       error

	inits  int32
	closes int32
}

// InitWriter realizes the failure-injecting writer
func (s *FailingStorer) InitWriter() (grunt.RowWriter, error) {
	atomic.AddInt32(&s.inits, 1)
	return &failingWriter{storer: s, remaining: s.FailAfter}, nil
}

// Inits returns how many writers were realized
func (s *FailingStorer) Inits() int { return int(atomic.LoadInt32(&s.inits)) }

// Closes returns how many writers were closed
func (s *FailingStorer) Closes() int { return int(atomic.LoadInt32(&s.closes)) }

type failingWriter struct {
	storer    *FailingStorer
	remaining int
}

func (w *failingWriter) Write(row *grunt.Row) error {
	if w.remaining <= 0 {
		return w.storer.Err
	}
	w.remaining--
	return nil
}

func (w *failingWriter) Close() error {
	atomic.AddInt32(&w.storer.closes, 1)
	return nil
}
