// Package grunt is a local, in-process execution engine for relational
// dataflow graphs. A plan is an ordered list of Commands (load, filter,
// generate, sort, group, join, union, distinct, reduce, fold, sample, rank,
// limit, store) produced by an external planner. The engine materializes
// each node as a cancellable push-based stream, shares every node's output
// across its downstream consumers via a connect-once multicast, and drives
// the terminal node to completion, returning the collected rows.
//
// grunt is an in-memory reference executor: group, join, sort, reduce and
// fold buffer at least one relation's key partitions, so it is intended for
// test-scale data rather than unbounded streams.
package grunt
