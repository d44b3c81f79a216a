// Package parser defines the pluggable row parser boundary of the file
// datasource
package parser

import (
	"io"

	"github.com/go-grunt/grunt"
)

// RowParser turns the byte stream of one location into a sequence of Rows.
// The returned RowReader does not own the underlying stream; the datasource
// closes it.
type RowParser interface {
	Open(r io.Reader) (grunt.RowReader, error)
}
