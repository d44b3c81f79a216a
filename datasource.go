package grunt

// Loader is the boundary to an external data source backing a load node.
// Locations returns an ordered list of location descriptors; the load
// operator opens and fully drains a reader per location, in order. Reads
// are restartable only by initializing a fresh reader.
type Loader interface {
	Locations() ([]string, error)
	InitReader(location string) (RowReader, error)
}

// RowReader reads Rows from one location of a Loader. Read returns io.EOF
// once the location is exhausted. Close releases the underlying resource
// and must be safe to call exactly once after the final Read.
type RowReader interface {
	Read() (*Row, error)
	Close() error
}

// Storer is the boundary to an external data sink backing a store node.
// The store operator initializes the writer lazily, on the first row
// actually written, so a sink with zero input rows never creates output
// artifacts.
type Storer interface {
	InitWriter() (RowWriter, error)
}

// RowWriter writes Rows to a Storer's sink. Close flushes and releases the
// sink and is called exactly once, on upstream completion, error or
// cancellation, and only if the writer was realized.
type RowWriter interface {
	Write(row *Row) error
	Close() error
}
