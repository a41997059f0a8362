// Package frontier summarises where a set of branches stand relative to one
// another.
//
// The heads of a set of commits form an antichain: the commits that are not
// an ancestor of any other commit in the set. Every branch that still carries
// unmerged work contributes exactly one head; a branch that is strictly
// behind another one disappears from the frontier.
//
// Compare answers the pairwise question a rebase needs before it runs: where
// did two branches fork, how much work does each carry past the fork, and
// could one of them simply fast-forward to the other.
package frontier

import (
	"github.com/daviddao/rebasekit/pkg/ancestry"
	"github.com/daviddao/rebasekit/pkg/model"
)

// Heads returns the antichain of commits in cs that are not an ancestor of
// any other commit in cs. Duplicates and nil entries are ignored; input
// order is preserved.
func Heads[T any](cs []*model.Commit[T]) []*model.Commit[T] {
	seen := make(map[*model.Commit[T]]struct{}, len(cs))
	uniq := make([]*model.Commit[T], 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}

	var heads []*model.Commit[T]
	for _, p := range uniq {
		dominated := false
		for _, q := range uniq {
			if q != p && ancestry.IsAncestor(p, q) {
				dominated = true
				break
			}
		}
		if !dominated {
			heads = append(heads, p)
		}
	}
	return heads
}

// Divergence is the result of comparing two branch heads.
type Divergence[T any] struct {
	// Ancestor is the closest common ancestor, nil for unrelated branches.
	Ancestor *model.Commit[T] `json:"-"`
	// Ahead holds the commits on a past the fork, oldest first.
	Ahead []*model.Commit[T] `json:"-"`
	// Behind holds the commits on b past the fork, oldest first.
	Behind []*model.Commit[T] `json:"-"`
	// FastForward is true when a has no commits of its own, so moving a to b
	// needs no rebase.
	FastForward bool `json:"fast_forward"`
}

// Related reports whether the two compared branches share history.
func (d Divergence[T]) Related() bool { return d.Ancestor != nil }

// InSync reports whether both heads are the same commit.
func (d Divergence[T]) InSync() bool {
	return d.Ancestor != nil && len(d.Ahead) == 0 && len(d.Behind) == 0
}

// Compare reports how a and b have diverged.
func Compare[T any](a, b *model.Commit[T]) Divergence[T] {
	var d Divergence[T]
	d.Ancestor = ancestry.FindCommonAncestor(ancestry.Into(a, &d.Ahead), ancestry.Into(b, &d.Behind))
	if d.Ancestor == nil {
		d.Ahead, d.Behind = nil, nil
		return d
	}
	d.FastForward = len(d.Ahead) == 0
	return d
}
