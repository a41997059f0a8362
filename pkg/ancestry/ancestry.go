// Package ancestry locates shared history in a commit graph.
//
// Commits only point at their parents, so every query here is an upward
// walk. FindCommonAncestor walks two chains in lockstep and stops at the
// first node one side reaches that the other side has already visited. Its
// cost is proportional to the distance from each head to the ancestor, not
// to the size of the graph or the number of other branches hanging off the
// shared history.
package ancestry

import "github.com/daviddao/rebasekit/pkg/model"

// Path names a head commit and, optionally, a slice that receives the chain
// of commits between the ancestor found and that head.
//
// A populated path is in ancestor-to-descendant order, excludes the ancestor
// and includes the head. The slice must be empty when passed in.
type Path[T any] struct {
	Head *model.Commit[T]
	Out  *[]*model.Commit[T]
}

// From returns a Path for head that records nothing.
func From[T any](head *model.Commit[T]) Path[T] {
	return Path[T]{Head: head}
}

// Into returns a Path for head that records into out.
func Into[T any](head *model.Commit[T], out *[]*model.Commit[T]) Path[T] {
	return Path[T]{Head: head, Out: out}
}

func (p Path[T]) checkEmpty() {
	if p.Out != nil && len(*p.Out) != 0 {
		panic("ancestry: output path must start empty")
	}
}

func (p Path[T]) set(reversed []*model.Commit[T]) {
	if p.Out == nil {
		return
	}
	out := (*p.Out)[:0]
	for i := len(reversed) - 1; i >= 0; i-- {
		out = append(out, reversed[i])
	}
	*p.Out = out
}

func (p Path[T]) clear() {
	if p.Out != nil {
		*p.Out = (*p.Out)[:0]
	}
}

// FindCommonAncestor returns the deepest commit reachable from both a.Head
// and b.Head, or nil if their histories are unrelated. When a path has an
// output slice it is populated as described on Path; when no ancestor
// exists the output slices are left empty.
func FindCommonAncestor[T any](a, b Path[T]) *model.Commit[T] {
	a.checkEmpty()
	b.checkEmpty()
	if a.Head == nil || b.Head == nil {
		return nil
	}
	if a.Head == b.Head {
		return a.Head
	}

	// Walked nodes in head-to-root order, per side.
	var walkA, walkB []*model.Commit[T]
	visited := make(map[*model.Commit[T]]struct{})

	cursorA, cursorB := a.Head, b.Head
	for cursorA != nil || cursorB != nil {
		if cursorA != nil {
			if _, ok := visited[cursorA]; ok {
				a.set(walkA)
				b.set(walkB[:indexOf(walkB, cursorA)])
				return cursorA
			}
			visited[cursorA] = struct{}{}
			walkA = append(walkA, cursorA)
			cursorA = cursorA.Parent
		}
		if cursorB != nil {
			if _, ok := visited[cursorB]; ok {
				b.set(walkB)
				a.set(walkA[:indexOf(walkA, cursorB)])
				return cursorB
			}
			visited[cursorB] = struct{}{}
			walkB = append(walkB, cursorB)
			cursorB = cursorB.Parent
		}
	}

	a.clear()
	b.clear()
	return nil
}

// FindAncestor walks from head (inclusive) toward the root and returns the
// first commit for which pred returns true. A nil pred matches the root.
// If out is non-nil it receives the commits after the match up to head, in
// ancestor-to-descendant order; it is left empty when nothing matches.
func FindAncestor[T any](head *model.Commit[T], out *[]*model.Commit[T], pred func(*model.Commit[T]) bool) *model.Commit[T] {
	p := Into(head, out)
	p.checkEmpty()
	if pred == nil {
		pred = (*model.Commit[T]).IsRoot
	}
	var walk []*model.Commit[T]
	for c := head; c != nil; c = c.Parent {
		if pred(c) {
			p.set(walk)
			return c
		}
		walk = append(walk, c)
	}
	p.clear()
	return nil
}

// IsAncestor reports whether ancestor is descendant or lies on its parent
// chain.
func IsAncestor[T any](ancestor, descendant *model.Commit[T]) bool {
	if ancestor == nil {
		return false
	}
	return FindAncestor(descendant, nil, func(c *model.Commit[T]) bool { return c == ancestor }) != nil
}

func indexOf[T any](walk []*model.Commit[T], c *model.Commit[T]) int {
	for i, w := range walk {
		if w == c {
			return i
		}
	}
	// Unreachable: a visited node always lies on one of the two walks.
	panic("ancestry: visited commit missing from walk")
}
