// Package dsv provides a RowParser for delimiter-separated values data
package dsv

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/go-grunt/grunt"
)

// ParserConf configures a DSV Parser
type ParserConf struct {
	Delimiter   string // the field delimiter. Defaults to tab.
	HeaderLine  bool   // when true, the first line of each location names the fields; otherwise fields are named f0..fn-1
	Comment     string // lines beginning with this prefix are ignored. Defaults to no comment prefix.
	MaxLineSize int    // maximum size in bytes of one line. Defaults to bufio.MaxScanTokenSize.
}

// Parser produces Rows from DSV data. Values are kept as raw strings;
// typing them is the planner's business.
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new DSV Parser
func CreateParser(conf *ParserConf) *Parser {
	if conf.Delimiter == "" {
		conf.Delimiter = "\t"
	}
	if conf.MaxLineSize == 0 {
		conf.MaxLineSize = bufio.MaxScanTokenSize
	}
	return &Parser{conf: conf}
}

// Open wraps r in a RowReader over its DSV lines
func (p *Parser) Open(r io.Reader) (grunt.RowReader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), p.conf.MaxLineSize)
	reader := &dsvReader{conf: p.conf, scanner: scanner}
	if p.conf.HeaderLine {
		line, ok, err := reader.nextLine()
		if err != nil {
			return nil, err
		}
		if ok {
			reader.header = strings.Split(line, p.conf.Delimiter)
		}
	}
	return reader, nil
}

type dsvReader struct {
	conf    *ParserConf
	scanner *bufio.Scanner
	header  []string
}

func (r *dsvReader) Read() (*grunt.Row, error) {
	line, ok, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io.EOF
	}
	values := strings.Split(line, r.conf.Delimiter)
	row := grunt.NewRow()
	for i, v := range values {
		row = row.With(r.fieldName(i), v)
	}
	return row, nil
}

func (r *dsvReader) Close() error { return nil }

func (r *dsvReader) fieldName(i int) string {
	if i < len(r.header) {
		return r.header[i]
	}
	return "f" + strconv.Itoa(i)
}

func (r *dsvReader) nextLine() (string, bool, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if r.conf.Comment != "" && strings.HasPrefix(line, r.conf.Comment) {
			continue
		}
		if line == "" {
			continue
		}
		return line, true, nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}
