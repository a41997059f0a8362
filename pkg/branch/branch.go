// Package branch owns mutable branch heads on top of the immutable commit
// graph.
//
// The rebase engine never mutates anything; a Branch is the one place a head
// pointer moves. Each Branch serialises its own updates, so several
// goroutines may append to and rebase the same branch.
package branch

import (
	"sync"

	"github.com/golang/glog"

	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/rebase"
	"github.com/daviddao/rebasekit/pkg/revision"
)

// Branch is a named, movable head.
type Branch[T any] struct {
	name string
	alg  model.ChangeAlgebra[T]
	mint revision.Minter

	mu   sync.Mutex
	head *model.Commit[T]
}

// New returns a branch whose head is head. A nil mint uses revision.Mint.
func New[T any](name string, alg model.ChangeAlgebra[T], mint revision.Minter, head *model.Commit[T]) *Branch[T] {
	if mint == nil {
		mint = revision.Mint
	}
	return &Branch[T]{name: name, alg: alg, mint: mint, head: head}
}

// Name returns the branch name.
func (b *Branch[T]) Name() string { return b.name }

// Head returns the current head.
func (b *Branch[T]) Head() *model.Commit[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.head
}

// Reset moves the head to c unconditionally.
func (b *Branch[T]) Reset(c *model.Commit[T]) {
	b.mu.Lock()
	b.head = c
	b.mu.Unlock()
}

// Fork returns a new branch starting at b's current head.
func (b *Branch[T]) Fork(name string) *Branch[T] {
	return New(name, b.alg, b.mint, b.Head())
}

// Apply authors change on top of the head under a fresh revision and
// returns the new head.
func (b *Branch[T]) Apply(session model.SessionID, change T) *model.Commit[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = rebase.NewCommit(b.head, session, change, b.mint)
	return b.head
}

// Append adds c's revision, session and change on top of the head. It is how
// a commit received from another replica joins a local branch.
func (b *Branch[T]) Append(c *model.Commit[T]) *model.Commit[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = rebase.MintCommit(b.head, c)
	return b.head
}

// RebaseOnto rebases b onto target's current head and moves b's head to the
// result.
func (b *Branch[T]) RebaseOnto(target *Branch[T]) (rebase.BranchResult[T], error) {
	th := target.Head()
	return b.RebaseOntoCommit(th, th)
}

// RebaseOntoCommit rebases b onto targetCommit, which must lie on the branch
// ending at targetHead. On error the head is left where it was.
func (b *Branch[T]) RebaseOntoCommit(targetCommit, targetHead *model.Commit[T]) (rebase.BranchResult[T], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := rebase.RebaseBranch(b.alg, b.mint, b.head, targetCommit, targetHead)
	if err != nil {
		glog.Errorf("[branch] %s: rebase failed: %v\n", b.name, err)
		return rebase.BranchResult[T]{}, err
	}
	glog.V(1).Infof("[branch] %s: %s -> %s (%d new commit(s))\n",
		b.name, short(b.head), short(res.NewSourceHead), len(res.Commits.NewSourceCommits))
	b.head = res.NewSourceHead
	return res, nil
}

// RebaseChange rebases a change authored against authoredAgainst so that it
// applies on top of the current head.
func (b *Branch[T]) RebaseChange(change T, authoredAgainst *model.Commit[T]) (T, error) {
	head := b.Head()
	return rebase.RebaseChange(b.alg, b.mint, change, authoredAgainst, head)
}

func short[T any](c *model.Commit[T]) string {
	if c == nil {
		return "<nil>"
	}
	return c.Revision.Short()
}
