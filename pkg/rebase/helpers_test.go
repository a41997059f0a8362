package rebase

import (
	"strings"

	"github.com/daviddao/rebasekit/pkg/algebra"
	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/revision"
)

// trace is a change that remembers what it was rebased over, so tests can
// check the exact sandwich each commit went through.
type trace struct {
	Name string
	Over []string
}

type traceAlgebra struct{}

func (traceAlgebra) Rebase(c trace, over model.TaggedChange[trace]) (trace, error) {
	out := trace{Name: c.Name, Over: append(append([]string(nil), c.Over...), over.Change.Name)}
	return out, nil
}

func (traceAlgebra) Invert(c *model.Commit[trace], _ bool) (trace, error) {
	return trace{Name: "~" + c.Change.Name}, nil
}

func (traceAlgebra) Compose(cs []model.TaggedChange[trace]) (trace, error) {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Change.Name
	}
	return trace{Name: strings.Join(names, " ")}, nil
}

// recorder wraps the counter algebra, counting calls and keeping every
// change it was asked to rebase over. fail, when set, is returned from the
// named operation.
type recorder struct {
	rebases, inverts, composes int
	overs                      []model.TaggedChange[int64]
	failOn                     string
	fail                       error
}

func (r *recorder) Rebase(c int64, over model.TaggedChange[int64]) (int64, error) {
	r.rebases++
	r.overs = append(r.overs, over)
	if r.failOn == "rebase" {
		return 0, r.fail
	}
	return algebra.Counter{}.Rebase(c, over)
}

func (r *recorder) Invert(c *model.Commit[int64], rollback bool) (int64, error) {
	r.inverts++
	if r.failOn == "invert" {
		return 0, r.fail
	}
	return algebra.Counter{}.Invert(c, rollback)
}

func (r *recorder) Compose(cs []model.TaggedChange[int64]) (int64, error) {
	r.composes++
	if r.failOn == "compose" {
		return 0, r.fail
	}
	return algebra.Counter{}.Compose(cs)
}

func (r *recorder) calls() int { return r.rebases + r.inverts + r.composes }

func node[T any](parent *model.Commit[T], rev revision.Tag, change T) *model.Commit[T] {
	return &model.Commit[T]{Revision: rev, SessionID: "test", Change: change, Parent: parent}
}

func named(parent *model.Commit[trace], name string) *model.Commit[trace] {
	return node(parent, revision.Mint(), trace{Name: name})
}

func names(cs []*model.Commit[trace]) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Change.Name
	}
	return out
}

// snapshot captures the fields of every commit on head's branch so tests can
// prove a rebase did not mutate its inputs.
type frozen[T any] struct {
	c      *model.Commit[T]
	rev    revision.Tag
	parent *model.Commit[T]
}

func snapshot[T any](head *model.Commit[T]) []frozen[T] {
	var out []frozen[T]
	for c := head; c != nil; c = c.Parent {
		out = append(out, frozen[T]{c: c, rev: c.Revision, parent: c.Parent})
	}
	return out
}

func unchanged[T any](before []frozen[T]) bool {
	for _, f := range before {
		if f.c.Revision != f.rev || f.c.Parent != f.parent {
			return false
		}
	}
	return true
}
