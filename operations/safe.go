package operations

import (
	"fmt"

	"github.com/go-grunt/grunt"
	gerrors "github.com/go-grunt/grunt/errors"
)

// SafeFilterOperation wraps a FilterOperation such that panics are recovered
// and failures surface as TransformErrors carrying the offending row
func SafeFilterOperation(fn grunt.FilterOperation) grunt.FilterOperation {
	return func(row *grunt.Row) (keep bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = gerrors.TransformError{Op: "filter", Row: row.String(), Cause: recovered(r)}
			} else if err != nil {
				err = asTransformError("filter", row, err)
			}
		}()
		keep, err = fn(row)
		return
	}
}

// SafeFlatMapOperation wraps a FlatMapOperation such that panics are
// recovered and failures surface as TransformErrors carrying the offending row
func SafeFlatMapOperation(fn grunt.FlatMapOperation) grunt.FlatMapOperation {
	return func(row *grunt.Row) (out []*grunt.Row, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = gerrors.TransformError{Op: "generate", Row: row.String(), Cause: recovered(r)}
			} else if err != nil {
				err = asTransformError("generate", row, err)
			}
		}()
		out, err = fn(row)
		return
	}
}

// SafeExtractOperation wraps an ExtractOperation such that panics are
// recovered and failures surface as TransformErrors carrying the offending row
func SafeExtractOperation(op string, fn grunt.ExtractOperation) grunt.ExtractOperation {
	return func(row *grunt.Row) (value interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = gerrors.TransformError{Op: op, Row: row.String(), Cause: recovered(r)}
			} else if err != nil {
				err = asTransformError(op, row, err)
			}
		}()
		value, err = fn(row)
		return
	}
}

func asTransformError(op string, row *grunt.Row, err error) error {
	if _, ok := err.(gerrors.TransformError); ok {
		return err
	}
	return gerrors.TransformError{Op: op, Row: row.String(), Cause: err}
}

func recovered(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
