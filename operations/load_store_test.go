package operations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-grunt/grunt"
	"github.com/go-grunt/grunt/datasource/memory"
	gerrors "github.com/go-grunt/grunt/errors"
	"github.com/go-grunt/grunt/operations"
	"github.com/go-grunt/grunt/stream"
	gtesting "github.com/go-grunt/grunt/testing"
	"github.com/stretchr/testify/require"
)

func TestLoadDrainsLocationsInOrder(t *testing.T) {
	loader := &gtesting.CountingLoader{Inner: memory.NewLoader(
		[]*grunt.Row{gtesting.Row("v", 1), gtesting.Row("v", 2)},
		[]*grunt.Row{gtesting.Row("v", 3)},
	)}
	rows, err := stream.Collect(context.Background(), operations.Load("l", loader, 0))
	require.Nil(t, err)
	require.Equal(t, []interface{}{1, 2, 3}, fieldValues(t, rows, "l/v"))
	require.Equal(t, 2, loader.ReaderInits())
	require.Equal(t, 2, loader.ReaderCloses())
}

func TestLoadSurfacesReaderFailures(t *testing.T) {
	boom := errors.New("disk on fire")
	loader := &gtesting.FailingLoader{
		Rows: []*grunt.Row{gtesting.Row("v", 1)},
		Err:  boom,
	}
	_, err := stream.Collect(context.Background(), operations.Load("l", loader, 0))
	var se gerrors.SourceIOError
	require.True(t, errors.As(err, &se))
	require.True(t, errors.Is(err, boom))
}

func TestLoadStopsPromptlyWhenConsumerUnsubscribes(t *testing.T) {
	loader := &gtesting.BlockingLoader{Row: gtesting.Row("v", 1)}
	rows, err := stream.Collect(context.Background(), stream.Take(operations.Load("l", loader, 4), 5))
	require.Nil(t, err)
	require.Len(t, rows, 5)
	require.Equal(t, 1, loader.ReaderCloses()) // the endless reader was released
}

func TestStoreMirrorsItsInput(t *testing.T) {
	storer := memory.NewStorer()
	up := stream.FromRows(intRows("a/v", 1, 2, 3)...)
	rows, err := stream.Collect(context.Background(), operations.Store(up, storer))
	require.Nil(t, err)
	require.Equal(t, []interface{}{1, 2, 3}, fieldValues(t, rows, "a/v"))
	require.Equal(t, []interface{}{1, 2, 3}, fieldValues(t, storer.Rows(), "a/v"))
	require.Equal(t, 1, storer.Inits())
	require.Equal(t, 1, storer.Closes())
}

func TestStoreWithZeroInputNeverOpensAWriter(t *testing.T) {
	storer := memory.NewStorer()
	rows, err := stream.Collect(context.Background(), operations.Store(stream.Empty(), storer))
	require.Nil(t, err)
	require.Len(t, rows, 0)
	require.Equal(t, 0, storer.Inits())
	require.Equal(t, 0, storer.Closes())
}

func TestStoreClosesRealizedWriterOnFailure(t *testing.T) {
	boom := errors.New("sink full")
	storer := &gtesting.FailingStorer{FailAfter: 1, Err: boom}
	up := stream.FromRows(intRows("a/v", 1, 2, 3)...)
	_, err := stream.Collect(context.Background(), operations.Store(up, storer))
	var se gerrors.SinkIOError
	require.True(t, errors.As(err, &se))
	require.True(t, errors.Is(err, boom))
	require.Equal(t, 1, storer.Inits())
	require.Equal(t, 1, storer.Closes()) // closed exactly once despite the failure
}

func TestStoreClosesWriterWhenConsumerStops(t *testing.T) {
	storer := memory.NewStorer()
	up := stream.FromRows(intRows("a/v", 1, 2, 3, 4)...)
	rows, err := stream.Collect(context.Background(), stream.Take(operations.Store(up, storer), 2))
	require.Nil(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 1, storer.Closes())
}
