// Package engine folds an ordered command plan into a node-id → shared
// stream mapping and drives the terminal node to completion.
package engine

import (
	"context"
	"fmt"

	"github.com/go-grunt/grunt"
	gerrors "github.com/go-grunt/grunt/errors"
	"github.com/go-grunt/grunt/logging"
	"github.com/go-grunt/grunt/operations"
	"github.com/go-grunt/grunt/stream"
	"github.com/puzpuzpuz/xsync/v3"
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger installs a lifecycle logging hook; the default discards
// everything
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithLoadBuffer sets the bounded channel capacity between each load node's
// worker and the pipeline
func WithLoadBuffer(n int) Option {
	return func(e *Engine) { e.buffer = n }
}

// WithWindow sets the in-flight row window of each node's multicast before
// backpressure is applied to its producer
func WithWindow(n int) Option {
	return func(e *Engine) { e.window = n }
}

// Engine interprets baked plans. The zero configuration is ready to use;
// an Engine is stateless across Evaluate calls and safe for concurrent use.
type Engine struct {
	log    logging.Logger
	buffer int
	window int
}

// New produces an Engine with the given options
func New(opts ...Option) *Engine {
	e := &Engine{log: logging.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs plan on a fresh Engine with the given options
func Evaluate(ctx context.Context, plan []grunt.Command, opts ...Option) ([]*grunt.Row, error) {
	return New(opts...).Evaluate(ctx, plan)
}

// Evaluate walks the plan in order, builds each command's stream over its
// already-built ancestors, wraps it in a connect-once multicast sized to
// the node's fan-out, then subscribes to the terminal node and blocks until
// it completes, returning the collected rows in arrival order. Store nodes
// contribute no rows to the result: a terminal store's rows are discarded
// and a script suppresses its store children's mirrored rows while still
// driving them. The plan must be topologically sorted by
// the caller: the engine never reorders it, and referencing an ancestor
// before it is built is a GraphIntegrityError.
func (e *Engine) Evaluate(ctx context.Context, plan []grunt.Command) ([]*grunt.Row, error) {
	if len(plan) == 0 {
		return nil, nil
	}
	index := make(map[string]grunt.Command, len(plan))
	for _, cmd := range plan {
		id := cmd.CommandID()
		if _, ok := index[id]; ok {
			return nil, gerrors.GraphIntegrityError{NodeID: id, Reason: "node id built twice"}
		}
		index[id] = cmd
	}
	terminal := plan[len(plan)-1]
	// fan-out counts only consumers reachable from the terminal. A dead
	// branch never subscribes, and counting it would leave its shared
	// ancestors waiting forever for a consumer that cannot arrive.
	reachable := make(map[string]bool, len(plan))
	queue := []string{terminal.CommandID()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		if cmd, ok := index[id]; ok {
			queue = append(queue, cmd.AncestorIDs()...)
		}
	}
	fanout := make(map[string]int, len(plan))
	for _, cmd := range plan {
		if !reachable[cmd.CommandID()] {
			continue
		}
		for _, anc := range cmd.AncestorIDs() {
			fanout[anc]++
		}
	}
	fanout[terminal.CommandID()]++ // the driver's own subscription
	nodes := xsync.NewMapOf[string, *stream.Publish]()
	for _, cmd := range plan {
		id := cmd.CommandID()
		ancestors := make([]stream.Source, 0, len(cmd.AncestorIDs()))
		for _, anc := range cmd.AncestorIDs() {
			pub, ok := nodes.Load(anc)
			if !ok {
				return nil, gerrors.GraphIntegrityError{
					NodeID: id,
					Reason: fmt.Sprintf("ancestor %s referenced before construction", anc),
				}
			}
			ancestors = append(ancestors, pub.Source())
		}
		// store children of a script are driven for their sink side effects
		// but contribute no rows to the script's output
		if sc, ok := cmd.(*grunt.ScriptCommand); ok {
			for i, anc := range sc.Ancestors {
				if _, isStore := index[anc].(*grunt.StoreCommand); isStore {
					ancestors[i] = stream.Drain(ancestors[i])
				}
			}
		}
		src, err := e.build(cmd, ancestors)
		if err != nil {
			return nil, err
		}
		nodes.Store(id, stream.NewPublish(src, fanout[id], e.window))
		e.log.Log(logging.DebugLevel, "built node %s (%T), fan-out %d", id, cmd, fanout[id])
	}
	pub, _ := nodes.Load(terminal.CommandID())
	e.log.Log(logging.InfoLevel, "driving terminal node %s", terminal.CommandID())
	rows, err := stream.Collect(ctx, pub.Source())
	if err != nil {
		e.log.Log(logging.ErrorLevel, "evaluation failed at terminal %s: %v", terminal.CommandID(), err)
		return nil, err
	}
	if _, isStore := terminal.(*grunt.StoreCommand); isStore {
		return nil, nil // store results are treated as empty
	}
	return rows, nil
}

func (e *Engine) build(cmd grunt.Command, ancestors []stream.Source) (stream.Source, error) {
	switch c := cmd.(type) {
	case *grunt.LoadCommand:
		return operations.Load(c.ID, c.Loader, e.buffer), nil
	case *grunt.StoreCommand:
		return operations.Store(ancestors[0], c.Storer), nil
	case *grunt.FilterCommand:
		return operations.Filter(ancestors[0], c.Predicate), nil
	case *grunt.GenerateCommand:
		return operations.Generate(ancestors[0], c.Fn), nil
	case *grunt.SortCommand:
		cmp := c.Compare
		if cmp == nil {
			cmp = grunt.CompareValues
		}
		return operations.Sort(c.ID, ancestors[0], c.KeyField, cmp), nil
	case *grunt.DistinctCommand:
		return operations.Distinct(c.ID, ancestors[0]), nil
	case *grunt.UnionCommand:
		return operations.Union(c.ID, ancestors...), nil
	case *grunt.LimitCommand:
		return operations.Limit(ancestors[0], c.N), nil
	case *grunt.SampleCommand:
		return operations.Sample(ancestors[0], c.Probability, c.Seed), nil
	case *grunt.RankCommand:
		return operations.Rank(c.ID, ancestors[0]), nil
	case *grunt.ReduceCommand:
		return operations.Reduce(c.ID, ancestors[0], c.Extract, c.Field), nil
	case *grunt.FoldCommand:
		return operations.Fold(c.ID, ancestors[0], c.Extract, c.Fold, c.Field), nil
	case *grunt.GroupCommand:
		return operations.CoGroup(c.ID, bindRelations(c.Relations, ancestors)), nil
	case *grunt.JoinCommand:
		return operations.Join(c.ID, bindRelations(c.Relations, ancestors)), nil
	case *grunt.ScriptCommand:
		return operations.Script(ancestors...), nil
	default:
		return nil, gerrors.GraphIntegrityError{
			NodeID: cmd.CommandID(),
			Reason: fmt.Sprintf("unknown command variant %T", cmd),
		}
	}
}

func bindRelations(declared []grunt.GroupRelation, ancestors []stream.Source) []operations.Relation {
	out := make([]operations.Relation, len(declared))
	for i, rel := range declared {
		out[i] = operations.Relation{
			Ancestor: rel.Ancestor,
			Source:   ancestors[i],
			KeyField: rel.KeyField,
			Required: rel.Required,
		}
	}
	return out
}
