package store

import (
	"errors"
	"testing"

	"github.com/daviddao/rebasekit/pkg/algebra"
	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/rebase"
	"github.com/daviddao/rebasekit/pkg/revision"
)

func chain(parent *model.Commit[int64], delta int64) *model.Commit[int64] {
	return &model.Commit[int64]{Revision: revision.Mint(), SessionID: "s", Change: delta, Parent: parent}
}

func TestGraphSaveLoad(t *testing.T) {
	s := newTestStore(t)
	root := chain(nil, 0)
	a := chain(root, 3)
	b := chain(a, 4)

	g := NewGraph[int64](s)
	id, err := g.Save(b)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, ok := g.ID(b); !ok || got != id {
		t.Fatal("saved commit should have an id")
	}

	fresh := NewGraph[int64](s)
	loaded, err := fresh.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", loaded.Depth())
	}
	if loaded.Revision != b.Revision || loaded.Parent.Revision != a.Revision || loaded.Parent.Parent.Revision != root.Revision {
		t.Fatal("revisions changed across storage")
	}
	if algebra.State(loaded) != 7 {
		t.Fatalf("state = %d, want 7", algebra.State(loaded))
	}
}

func TestGraphIdentityMap(t *testing.T) {
	s := newTestStore(t)
	root := chain(nil, 0)
	left := chain(root, 1)
	right := chain(root, 2)

	g := NewGraph[int64](s)
	leftID, err := g.Save(left)
	if err != nil {
		t.Fatal(err)
	}
	rightID, err := g.Save(right)
	if err != nil {
		t.Fatal(err)
	}
	if n := mustCount(t, s); n != 3 {
		t.Fatalf("shared root stored twice: %d commits", n)
	}

	fresh := NewGraph[int64](s)
	l, err := fresh.Load(leftID)
	if err != nil {
		t.Fatal(err)
	}
	r, err := fresh.Load(rightID)
	if err != nil {
		t.Fatal(err)
	}
	if l.Parent != r.Parent {
		t.Fatal("both branches must share the same root pointer")
	}
	again, _ := fresh.Load(leftID)
	if again != l {
		t.Fatal("loading an id twice must return the same pointer")
	}
}

func TestGraphLoadNotFound(t *testing.T) {
	g := NewGraph[int64](newTestStore(t))
	if _, err := g.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGraphSaveNil(t *testing.T) {
	g := NewGraph[int64](newTestStore(t))
	if _, err := g.Save(nil); err == nil {
		t.Fatal("expected error saving nil")
	}
}

func TestGraphBranches(t *testing.T) {
	s := newTestStore(t)
	g := NewGraph[int64](s)
	root := chain(nil, 0)
	main := chain(root, 1)
	if err := g.SetBranch("main", main); err != nil {
		t.Fatalf("SetBranch: %v", err)
	}
	if err := g.SetBranch("feature", chain(root, 5)); err != nil {
		t.Fatalf("SetBranch: %v", err)
	}

	fresh := NewGraph[int64](s)
	head, err := fresh.Branch("main")
	if err != nil {
		t.Fatalf("Branch: %v", err)
	}
	if head.Revision != main.Revision {
		t.Fatal("branch head revision mismatch")
	}
	all, err := fresh.Branches()
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	if len(all) != 2 || all["main"] != head {
		t.Fatal("Branches should reuse already loaded commits")
	}
	if all["feature"].Parent != head.Parent {
		t.Fatal("branches should share the loaded root")
	}
	if _, err := fresh.Branch("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// A rebase computed on loaded commits saves only the freshly minted nodes,
// and the reloaded result keeps revisions shared with the source.
func TestGraphPersistsRebase(t *testing.T) {
	s := newTestStore(t)
	g := NewGraph[int64](s)
	root := chain(nil, 0)
	if err := g.SetBranch("main", chain(chain(root, 1), 2)); err != nil {
		t.Fatal(err)
	}
	if err := g.SetBranch("feature", chain(chain(root, 10), 20)); err != nil {
		t.Fatal(err)
	}
	before := mustCount(t, s)

	fresh := NewGraph[int64](s)
	mainHead, err := fresh.Branch("main")
	if err != nil {
		t.Fatal(err)
	}
	featHead, err := fresh.Branch("feature")
	if err != nil {
		t.Fatal(err)
	}
	res, err := rebase.RebaseBranch[int64](algebra.Counter{}, revision.Mint, featHead, mainHead, mainHead)
	if err != nil {
		t.Fatalf("RebaseBranch: %v", err)
	}
	if err := fresh.SetBranch("feature", res.NewSourceHead); err != nil {
		t.Fatal(err)
	}
	if got := mustCount(t, s) - before; got != 2 {
		t.Fatalf("saved %d new commits, want 2", got)
	}

	reloaded, err := NewGraph[int64](s).Branch("feature")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Revision != featHead.Revision {
		t.Fatal("rebased head keeps its revision")
	}
	if algebra.State(reloaded) != 33 {
		t.Fatalf("state = %d, want 33", algebra.State(reloaded))
	}
	nodes, err := s.ListCommitsByRevision(featHead.Revision)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("revision should live in 2 nodes, got %d", len(nodes))
	}
}
