package file_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-grunt/grunt"
	"github.com/go-grunt/grunt/datasource/file"
	"github.com/go-grunt/grunt/datasource/parser/dsv"
	"github.com/go-grunt/grunt/datasource/parser/jsonl"
	gtesting "github.com/go-grunt/grunt/testing"
	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readAll(t *testing.T, loader *file.Loader) []*grunt.Row {
	locations, err := loader.Locations()
	require.Nil(t, err)
	var rows []*grunt.Row
	for _, loc := range locations {
		reader, err := loader.InitReader(loc)
		require.Nil(t, err)
		for {
			row, err := reader.Read()
			if err == io.EOF {
				break
			}
			require.Nil(t, err)
			rows = append(rows, row)
		}
		require.Nil(t, reader.Close())
	}
	return rows
}

func TestLoaderReadsDSVWithHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "people.tsv", "name\tage\nalice\t20\nbob\t28\n")
	loader := file.NewLoader(filepath.Join(dir, "*.tsv"), dsv.CreateParser(&dsv.ParserConf{HeaderLine: true}))
	rows := readAll(t, loader)
	require.Len(t, rows, 2)
	require.True(t, rows[0].Equal(gtesting.Row("name", "alice", "age", "20")))
	require.True(t, rows[1].Equal(gtesting.Row("name", "bob", "age", "28")))
}

func TestLoaderReadsDSVWithoutHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "x,1\n# a comment\ny,2\n\n")
	loader := file.NewLoader(filepath.Join(dir, "*.csv"), dsv.CreateParser(&dsv.ParserConf{
		Delimiter: ",",
		Comment:   "#",
	}))
	rows := readAll(t, loader)
	require.Len(t, rows, 2)
	require.True(t, rows[0].Equal(gtesting.Row("f0", "x", "f1", "1")))
	require.True(t, rows[1].Equal(gtesting.Row("f0", "y", "f1", "2")))
}

func TestLoaderReadsJSONL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "events.jsonl", "{\"user\":\"alice\",\"count\":3}\n\n{\"user\":\"bob\",\"count\":1}\n")
	loader := file.NewLoader(filepath.Join(dir, "*.jsonl"), jsonl.CreateParser(&jsonl.ParserConf{}))
	rows := readAll(t, loader)
	require.Len(t, rows, 2)
	// JSON numbers surface as float64
	require.True(t, rows[0].Equal(gtesting.Row("user", "alice", "count", float64(3))))
	require.True(t, rows[1].Equal(gtesting.Row("user", "bob", "count", float64(1))))
}

func TestLoaderRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.jsonl", "{\"ok\":true}\n{not json\n")
	loader := file.NewLoader(filepath.Join(dir, "*.jsonl"), jsonl.CreateParser(&jsonl.ParserConf{}))
	locations, err := loader.Locations()
	require.Nil(t, err)
	reader, err := loader.InitReader(locations[0])
	require.Nil(t, err)
	defer reader.Close()
	_, err = reader.Read()
	require.Nil(t, err)
	_, err = reader.Read()
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "line 2")
}

func TestLoaderDecompressesLZ4(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.tsv.lz4")
	f, err := os.Create(path)
	require.Nil(t, err)
	zw := lz4.NewWriter(f)
	_, err = zw.Write([]byte("alice\t20\nbob\t28\n"))
	require.Nil(t, err)
	require.Nil(t, zw.Close())
	require.Nil(t, f.Close())

	loader := file.NewLoader(filepath.Join(dir, "*.lz4"), dsv.CreateParser(&dsv.ParserConf{}))
	rows := readAll(t, loader)
	require.Len(t, rows, 2)
	require.True(t, rows[0].Equal(gtesting.Row("f0", "alice", "f1", "20")))
}

func TestLoaderOrdersLocationsLexically(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "part-1", "b\n")
	writeFile(t, dir, "part-0", "a\n")
	loader := file.NewLoader(filepath.Join(dir, "part-*"), dsv.CreateParser(&dsv.ParserConf{}))
	rows := readAll(t, loader)
	require.Len(t, rows, 2)
	v0, _ := rows[0].Get("f0")
	v1, _ := rows[1].Get("f0")
	require.Equal(t, "a", v0)
	require.Equal(t, "b", v1)
}

func TestLoaderFailsOnEmptyGlob(t *testing.T) {
	loader := file.NewLoader(filepath.Join(t.TempDir(), "*.none"), dsv.CreateParser(&dsv.ParserConf{}))
	_, err := loader.Locations()
	require.NotNil(t, err)
}

func TestStorerWritesPartFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	storer := file.NewStorer(dir, ",")
	writer, err := storer.InitWriter()
	require.Nil(t, err)
	require.Nil(t, writer.Write(gtesting.Row("name", "alice", "age", 20)))
	require.Nil(t, writer.Write(gtesting.Row("name", "bob", "age", 28)))
	require.Nil(t, writer.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "part-*"))
	require.Nil(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.Nil(t, err)
	require.Equal(t, "alice,20\nbob,28\n", string(data))
}

func TestStorerPartFilesDoNotCollide(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	storer := file.NewStorer(dir, "")
	w1, err := storer.InitWriter()
	require.Nil(t, err)
	w2, err := storer.InitWriter()
	require.Nil(t, err)
	require.Nil(t, w1.Close())
	require.Nil(t, w2.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "part-*"))
	require.Nil(t, err)
	require.Len(t, matches, 2)
}
