// Package file provides a glob-based Loader and a part-file Storer over
// local files, with a pluggable RowParser per format and transparent lz4
// decompression of .lz4 inputs.
package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-grunt/grunt"
	"github.com/go-grunt/grunt/datasource/parser"
	"github.com/pierrec/lz4"
)

// Loader reads Rows from every file matching a glob, in lexical order
type Loader struct {
	glob   string
	parser parser.RowParser
}

// NewLoader produces a Loader over the files matching glob, parsed with p
func NewLoader(glob string, p parser.RowParser) *Loader {
	return &Loader{glob: glob, parser: p}
}

// Locations returns the matching file paths in lexical order
func (l *Loader) Locations() ([]string, error) {
	matches, err := filepath.Glob(l.glob)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("glob %s produced 0 files", l.glob)
	}
	sort.Strings(matches)
	return matches, nil
}

// InitReader opens the file behind the given location, decompressing it
// when the path carries an .lz4 suffix
func (l *Loader) InitReader(location string) (grunt.RowReader, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	var r io.Reader = f
	if strings.HasSuffix(location, ".lz4") {
		r = lz4.NewReader(f)
	}
	inner, err := l.parser.Open(r)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileReader{file: f, inner: inner}, nil
}

type fileReader struct {
	file  *os.File
	inner grunt.RowReader
}

func (r *fileReader) Read() (*grunt.Row, error) {
	return r.inner.Read()
}

func (r *fileReader) Close() error {
	if err := r.inner.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Storer writes Rows into a fresh part file under a directory, one value
// per field in field order, joined by the configured delimiter
type Storer struct {
	dir       string
	delimiter string
}

// NewStorer produces a Storer writing part files under dir. An empty
// delimiter selects tab.
func NewStorer(dir string, delimiter string) *Storer {
	if delimiter == "" {
		delimiter = "\t"
	}
	return &Storer{dir: dir, delimiter: delimiter}
}

// InitWriter creates a uniquely-named part file under the Storer's directory
func (s *Storer) InitWriter() (grunt.RowWriter, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, "part-"+grunt.NewCommandID("w"))
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &fileWriter{file: f, delimiter: s.delimiter}, nil
}

type fileWriter struct {
	file      *os.File
	delimiter string
}

func (w *fileWriter) Write(row *grunt.Row) error {
	values := make([]string, 0, row.Len())
	for _, f := range row.Fields() {
		v, _ := row.Get(f)
		values = append(values, fmt.Sprintf("%v", v))
	}
	_, err := fmt.Fprintln(w.file, strings.Join(values, w.delimiter))
	return err
}

func (w *fileWriter) Close() error {
	return w.file.Close()
}
