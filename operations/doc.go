// Package operations implements the per-command stream transformers of the
// engine: each constructor takes the ancestor Sources a command declares,
// plus its parameters, and returns the Source for the command's own node.
package operations
