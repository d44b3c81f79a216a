package grunt

import (
	"github.com/gofrs/uuid"
)

// Command is one node of a baked dataflow plan: a closed set of variants,
// one per operator kind, dispatched exhaustively by the engine. The plan is
// an ordered list of Commands, already topologically sorted by the external
// planner; the engine assumes that invariant and fails if an ancestor id is
// referenced before being built.
type Command interface {
	CommandID() string
	AncestorIDs() []string
	isCommand()
}

// NewCommandID generates a unique command id with the given kind prefix,
// for plans assembled without an external planner (typically tests)
func NewCommandID(kind string) string {
	id, err := uuid.NewV4()
	if err != nil {
		return kind
	}
	return kind + "-" + id.String()[:8]
}

// LoadCommand reads Rows from an external Loader. Its output fields are
// requalified to the load node's id.
type LoadCommand struct {
	ID     string
	Loader Loader
}

// StoreCommand writes its ancestor's Rows to an external Storer. Its own
// output mirrors its input so a store node can be chained like any other
// node; the evaluate driver discards store results.
type StoreCommand struct {
	ID       string
	Ancestor string
	Storer   Storer
}

// FilterCommand retains the Rows its predicate accepts
type FilterCommand struct {
	ID        string
	Ancestor  string
	Predicate FilterOperation
}

// GenerateCommand maps each input Row to 0..n output Rows
type GenerateCommand struct {
	ID       string
	Ancestor string
	Fn       FlatMapOperation
}

// SortCommand buffers its ancestor, orders it by the precomputed sort key
// field under the given Comparator, strips the key field and relabels.
// The whole relation is buffered in memory, so sort is unsuitable for
// unbounded streams.
type SortCommand struct {
	ID       string
	Ancestor string
	KeyField string
	Compare  Comparator
}

// DistinctCommand suppresses duplicate Rows, preserving the first-seen
// instance and the arrival order of non-duplicates
type DistinctCommand struct {
	ID       string
	Ancestor string
}

// UnionCommand interleaves its ancestors with no deterministic ordering
// across branches
type UnionCommand struct {
	ID        string
	Ancestors []string
}

// LimitCommand emits at most the first N rows; N <= 0 yields an empty stream
type LimitCommand struct {
	ID       string
	Ancestor string
	N        int
}

// SampleCommand includes each Row independently with the given probability.
// A non-nil Seed makes the draw reproducible.
type SampleCommand struct {
	ID          string
	Ancestor    string
	Probability float64
	Seed        *int64
}

// RankCommand assigns a zero-based sequential index to each Row in arrival
// order, under the reserved "index" field of the rank node's schema
type RankCommand struct {
	ID       string
	Ancestor string
}

// ReduceCommand extracts one value per Row and, if the input was non-empty,
// emits a single Row holding the full value sequence under Field
type ReduceCommand struct {
	ID       string
	Ancestor string
	Extract  ExtractOperation
	Field    string
}

// FoldCommand extracts one value per Row and folds the buffered sequence
// through the three-stage Fold, emitting a single Row holding the result
// under Field
type FoldCommand struct {
	ID       string
	Ancestor string
	Extract  ExtractOperation
	Fold     Fold
	Field    string
}

// GroupRelation declares one ancestor's participation in a group or join:
// the field its grouping key was projected into, and whether the relation
// is required (inner) or optional (outer)
type GroupRelation struct {
	Ancestor string
	KeyField string
	Required bool
}

// GroupCommand cogroups N ancestors by their declared keys, producing one
// Row per key: the key under the node's "group" field plus one
// sequence-valued field per distinct contributing field. Keys missing from
// a required relation are dropped.
type GroupCommand struct {
	ID        string
	Relations []GroupRelation
}

// JoinCommand joins N ancestors by their declared keys, emitting the cross
// product of each key's per-relation matches. A key missed by a required
// relation is dropped; a key missed by an optional relation contributes a
// single row with that relation's fields absent.
type JoinCommand struct {
	ID        string
	Relations []GroupRelation
}

// ScriptCommand is a composite node whose rows are the merge of its
// children's rows, used to drive multi-sink scripts through one terminal
type ScriptCommand struct {
	ID        string
	Ancestors []string
}

// CommandID returns the node id of this command
func (c *LoadCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *LoadCommand) AncestorIDs() []string { return nil }

// CommandID returns the node id of this command
func (c *StoreCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *StoreCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *FilterCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *FilterCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *GenerateCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *GenerateCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *SortCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *SortCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *DistinctCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *DistinctCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *UnionCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *UnionCommand) AncestorIDs() []string { return c.Ancestors }

// CommandID returns the node id of this command
func (c *LimitCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *LimitCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *SampleCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *SampleCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *RankCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *RankCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *ReduceCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *ReduceCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *FoldCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *FoldCommand) AncestorIDs() []string { return []string{c.Ancestor} }

// CommandID returns the node id of this command
func (c *GroupCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *GroupCommand) AncestorIDs() []string {
	out := make([]string, len(c.Relations))
	for i, r := range c.Relations {
		out[i] = r.Ancestor
	}
	return out
}

// CommandID returns the node id of this command
func (c *JoinCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *JoinCommand) AncestorIDs() []string {
	out := make([]string, len(c.Relations))
	for i, r := range c.Relations {
		out[i] = r.Ancestor
	}
	return out
}

// CommandID returns the node id of this command
func (c *ScriptCommand) CommandID() string { return c.ID }

// AncestorIDs returns the ids of this command's ancestors, in declaration order
func (c *ScriptCommand) AncestorIDs() []string { return c.Ancestors }

func (c *LoadCommand) isCommand()     {}
func (c *StoreCommand) isCommand()    {}
func (c *FilterCommand) isCommand()   {}
func (c *GenerateCommand) isCommand() {}
func (c *SortCommand) isCommand()     {}
func (c *DistinctCommand) isCommand() {}
func (c *UnionCommand) isCommand()    {}
func (c *LimitCommand) isCommand()    {}
func (c *SampleCommand) isCommand()   {}
func (c *RankCommand) isCommand()     {}
func (c *ReduceCommand) isCommand()   {}
func (c *FoldCommand) isCommand()     {}
func (c *GroupCommand) isCommand()    {}
func (c *JoinCommand) isCommand()     {}
func (c *ScriptCommand) isCommand()   {}
