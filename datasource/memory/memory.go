// Package memory provides slice-backed Loader and Storer implementations,
// suitable for tests and for embedding the engine over in-process data.
package memory

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-grunt/grunt"
)

// Loader serves Rows from in-memory partitions, one location per partition
type Loader struct {
	partitions [][]*grunt.Row
	index      map[string]int
}

// NewLoader produces a Loader with one location per given partition
func NewLoader(partitions ...[]*grunt.Row) *Loader {
	l := &Loader{partitions: partitions, index: make(map[string]int, len(partitions))}
	for i := range partitions {
		l.index[fmt.Sprintf("mem-%d", i)] = i
	}
	return l
}

// Locations returns one descriptor per partition, in partition order
func (l *Loader) Locations() ([]string, error) {
	out := make([]string, len(l.partitions))
	for i := range l.partitions {
		out[i] = fmt.Sprintf("mem-%d", i)
	}
	return out, nil
}

// InitReader opens a reader over the partition behind the given location
func (l *Loader) InitReader(location string) (grunt.RowReader, error) {
	i, ok := l.index[location]
	if !ok {
		return nil, fmt.Errorf("unknown location %s", location)
	}
	return &reader{rows: l.partitions[i]}, nil
}

type reader struct {
	rows []*grunt.Row
	pos  int
}

func (r *reader) Read() (*grunt.Row, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *reader) Close() error { return nil }

// Storer collects written Rows in memory and counts writer lifecycle
// events, so tests can assert on lazy initialization and close-once
// semantics
type Storer struct {
	mu     sync.Mutex
	rows   []*grunt.Row
	inits  int
	closes int
}

// NewStorer produces an empty collecting Storer
func NewStorer() *Storer {
	return &Storer{}
}

// InitWriter realizes a writer over this Storer
func (s *Storer) InitWriter() (grunt.RowWriter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inits++
	return &writer{storer: s}, nil
}

// Rows returns the Rows written so far, in write order
func (s *Storer) Rows() []*grunt.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*grunt.Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Inits returns how many writers were realized
func (s *Storer) Inits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inits
}

// Closes returns how many writers were closed
func (s *Storer) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

type writer struct {
	storer *Storer
}

func (w *writer) Write(row *grunt.Row) error {
	w.storer.mu.Lock()
	defer w.storer.mu.Unlock()
	w.storer.rows = append(w.storer.rows, row)
	return nil
}

func (w *writer) Close() error {
	w.storer.mu.Lock()
	defer w.storer.mu.Unlock()
	w.storer.closes++
	return nil
}
