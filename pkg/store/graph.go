package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"

	"github.com/daviddao/rebasekit/pkg/model"
)

// Graph rebuilds typed commits from a store and writes new ones back.
//
// Ancestry queries compare commits by pointer, so a Graph keeps an identity
// map: loading the same node id twice yields the same *model.Commit[T].
// Commits created in memory get a node id the first time they are saved.
// Change payloads are encoded as JSON.
type Graph[T any] struct {
	s StoreInterface

	mu   sync.Mutex
	byID map[string]*model.Commit[T]
	ids  map[*model.Commit[T]]string
}

// NewGraph returns an empty graph session over s.
func NewGraph[T any](s StoreInterface) *Graph[T] {
	return &Graph[T]{
		s:    s,
		byID: make(map[string]*model.Commit[T]),
		ids:  make(map[*model.Commit[T]]string),
	}
}

// ID returns the node id of c, if c has been loaded or saved through g.
func (g *Graph[T]) ID(c *model.Commit[T]) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.ids[c]
	return id, ok
}

// Load returns the commit stored under id together with its whole ancestry.
func (g *Graph[T]) Load(id string) (*model.Commit[T], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.load(id)
}

func (g *Graph[T]) load(id string) (*model.Commit[T], error) {
	// Fetch upward until a cached node or a root, then link downward.
	var pending []*CommitRecord
	var base *model.Commit[T]
	for cur := id; cur != ""; {
		if c, ok := g.byID[cur]; ok {
			base = c
			break
		}
		rec, err := g.s.GetCommit(cur)
		if err != nil {
			return nil, err
		}
		pending = append(pending, rec)
		cur = rec.ParentID
	}

	parent := base
	for i := len(pending) - 1; i >= 0; i-- {
		rec := pending[i]
		var change T
		if err := json.Unmarshal(rec.Payload, &change); err != nil {
			return nil, fmt.Errorf("decode change of commit %s: %w", rec.ID, err)
		}
		c := &model.Commit[T]{
			Revision:  rec.Revision,
			SessionID: rec.SessionID,
			Change:    change,
			Parent:    parent,
		}
		g.byID[rec.ID] = c
		g.ids[c] = rec.ID
		parent = c
	}
	if len(pending) > 0 {
		glog.V(2).Infof("[store] loaded %d commit(s) ending at %s\n", len(pending), id)
	}
	return parent, nil
}

// Save stores head and every ancestor not yet stored, oldest first, and
// returns head's node id.
func (g *Graph[T]) Save(head *model.Commit[T]) (string, error) {
	if head == nil {
		return "", errors.New("store: cannot save a nil commit")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.save(head)
}

func (g *Graph[T]) save(head *model.Commit[T]) (string, error) {
	var unsaved []*model.Commit[T]
	parentID := ""
	for c := head; c != nil; c = c.Parent {
		if id, ok := g.ids[c]; ok {
			parentID = id
			break
		}
		unsaved = append(unsaved, c)
	}

	for i := len(unsaved) - 1; i >= 0; i-- {
		c := unsaved[i]
		payload, err := json.Marshal(c.Change)
		if err != nil {
			return "", fmt.Errorf("encode change of %s: %w", c.Revision.Short(), err)
		}
		rec := &CommitRecord{
			ID:        ulid.Make().String(),
			Revision:  c.Revision,
			SessionID: c.SessionID,
			ParentID:  parentID,
			Payload:   payload,
		}
		if err := g.s.PutCommit(rec); err != nil {
			return "", err
		}
		g.byID[rec.ID] = c
		g.ids[c] = rec.ID
		parentID = rec.ID
	}
	if len(unsaved) > 0 {
		glog.V(2).Infof("[store] saved %d commit(s)\n", len(unsaved))
	}
	return parentID, nil
}

// Branch loads the head of the named branch.
func (g *Graph[T]) Branch(name string) (*model.Commit[T], error) {
	b, err := g.s.GetBranch(name)
	if err != nil {
		return nil, err
	}
	return g.Load(b.HeadID)
}

// SetBranch saves head if needed and points the named branch at it.
func (g *Graph[T]) SetBranch(name string, head *model.Commit[T]) error {
	id, err := g.Save(head)
	if err != nil {
		return err
	}
	if err := g.s.SetBranch(name, id); err != nil {
		return fmt.Errorf("set branch %s: %w", name, err)
	}
	glog.V(1).Infof("[store] branch %s -> %s (%s)\n", name, id, head.Revision.Short())
	return nil
}

// Branches loads the head of every branch, keyed by name.
func (g *Graph[T]) Branches() (map[string]*model.Commit[T], error) {
	list, err := g.s.ListBranches()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.Commit[T], len(list))
	for _, b := range list {
		head, err := g.Load(b.HeadID)
		if err != nil {
			return nil, fmt.Errorf("load branch %s: %w", b.Name, err)
		}
		out[b.Name] = head
	}
	return out, nil
}
