// Package jsonl provides a RowParser for JSON-lines data, parsed lazily
// with gjson
package jsonl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-grunt/grunt"
	"github.com/tidwall/gjson"
)

// ParserConf configures a JSONL Parser
type ParserConf struct {
	MaxLineSize int // maximum size in bytes of one line. Defaults to bufio.MaxScanTokenSize.
}

// Parser produces Rows from JSON-lines data: one object per line, one field
// per top-level key. Numbers surface as float64, per JSON.
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new JSONL Parser
func CreateParser(conf *ParserConf) *Parser {
	if conf.MaxLineSize == 0 {
		conf.MaxLineSize = bufio.MaxScanTokenSize
	}
	return &Parser{conf: conf}
}

// Open wraps r in a RowReader over its JSON lines
func (p *Parser) Open(r io.Reader) (grunt.RowReader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), p.conf.MaxLineSize)
	return &jsonlReader{scanner: scanner}, nil
}

type jsonlReader struct {
	scanner *bufio.Scanner
	line    int
}

func (r *jsonlReader) Read() (*grunt.Row, error) {
	for r.scanner.Scan() {
		r.line++
		data := r.scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("invalid JSON on line %d", r.line)
		}
		row := grunt.NewRow()
		gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
			row = row.With(key.String(), value.Value())
			return true
		})
		return row, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *jsonlReader) Close() error { return nil }
