// Package model defines the core domain types for rebasekit.
//
// Rebasekit keeps history as a persistent tree of commits:
//
//   - Every commit holds one change and a pointer to exactly one parent (or
//     none, for a root). Commits are never edited; new commits are appended
//     and may share a parent with existing ones, which is how branches fork.
//     A branch is simply a head commit plus its parent chain.
//
//   - Changes are opaque. Everything the engine knows about them comes from a
//     ChangeAlgebra supplied by the caller: rebase one change over another,
//     invert a commit, compose a sequence of changes into one.
package model

import "github.com/daviddao/rebasekit/pkg/revision"

// SessionID identifies the authoring session or client of a commit.
type SessionID string

// Commit is an immutable node in the commit graph. Identity is pointer
// identity: two distinct *Commit values are different nodes even when all of
// their fields are equal.
type Commit[T any] struct {
	Revision  revision.Tag `json:"revision"`
	SessionID SessionID    `json:"session_id"`
	Change    T            `json:"change"`
	Parent    *Commit[T]   `json:"-"`
}

// Tagged returns the commit's change paired with its revision.
func (c *Commit[T]) Tagged() TaggedChange[T] {
	return TaggedChange[T]{Change: c.Change, Revision: c.Revision}
}

// IsRoot reports whether c has no parent.
func (c *Commit[T]) IsRoot() bool { return c.Parent == nil }

// Depth returns the number of parent links between c and its root.
func (c *Commit[T]) Depth() int {
	n := 0
	for p := c.Parent; p != nil; p = p.Parent {
		n++
	}
	return n
}

// TaggedChange pairs a change with the revision it originated from. A
// rollback inverse additionally records which revision it undoes in
// RollbackOf; forward changes leave it zero.
type TaggedChange[T any] struct {
	Change     T            `json:"change"`
	Revision   revision.Tag `json:"revision"`
	RollbackOf revision.Tag `json:"rollback_of,omitempty"`
}

// IsRollback reports whether tc undoes a prior commit.
func (tc TaggedChange[T]) IsRollback() bool { return !tc.RollbackOf.IsZero() }

// RebasedCommits describes how a branch rebase changed the source branch.
type RebasedCommits[T any] struct {
	// NewBase is the commit on the target branch the rebased source now
	// branches from. It is the requested target commit or one of its
	// descendants, except when there was nothing to rebase, in which case it
	// is the common ancestor.
	NewBase *Commit[T]
	// DeletedSourceCommits is the original source path, ancestor to head.
	DeletedSourceCommits []*Commit[T]
	// NewSourceCommits is the new source path from the common ancestor
	// (exclusive) to the new head: reused target commits up to NewBase,
	// then the newly minted ones.
	NewSourceCommits []*Commit[T]
}

// ChangeAlgebra is the contract a change type must satisfy to be rebased.
//
// Implementations must be pure. Rebase over a no-op must return an
// equivalent change, and rebasing over [a, b] must equal rebasing over a then
// over b. Invert must produce a change that, composed after the original,
// yields a no-op; isRollback tells the algebra the inverse undoes history
// rather than expressing a new user edit. Compose combines changes in slice
// order. Errors are returned to the rebase caller unmodified.
type ChangeAlgebra[T any] interface {
	Rebase(change T, over TaggedChange[T]) (T, error)
	Invert(commit *Commit[T], isRollback bool) (T, error)
	Compose(changes []TaggedChange[T]) (T, error)
}
