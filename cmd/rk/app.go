package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/daviddao/rebasekit/pkg/algebra"
	"github.com/daviddao/rebasekit/pkg/ancestry"
	"github.com/daviddao/rebasekit/pkg/config"
	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/revision"
	"github.com/daviddao/rebasekit/pkg/store"
)

// app holds shared state for all CLI subcommands.
type app struct {
	cfg     *config.Config
	store   *store.Store
	graph   *store.Graph[int64]
	alg     algebra.Counter
	out     io.Writer
	jsonOut bool
}

// newApp opens the database, creating its directory if needed.
func newApp(cfg *config.Config, out io.Writer, jsonOut bool) (*app, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", cfg.DBPath, err)
	}
	glog.V(1).Infof("[rk] db=%s session=%s\n", cfg.DBPath, cfg.Session)
	return &app{
		cfg:     cfg,
		store:   s,
		graph:   store.NewGraph[int64](s),
		out:     out,
		jsonOut: jsonOut,
	}, nil
}

// Close releases the database connection.
func (a *app) Close() { a.store.Close() }

// branchOr returns name, or the configured default branch when name is empty.
func (a *app) branchOr(name string) string {
	if name != "" {
		return name
	}
	return a.cfg.DefaultBranch
}

// head loads the head of the named branch.
func (a *app) head(name string) (*model.Commit[int64], error) {
	c, err := a.graph.Branch(name)
	if err != nil {
		return nil, fmt.Errorf("branch %q: %w", name, err)
	}
	return c, nil
}

// findRevision returns the commit on head's branch carrying the revision
// written as text (a full tag or a unique suffix of one).
func findRevision(head *model.Commit[int64], text string) (*model.Commit[int64], error) {
	if tag, err := revision.Parse(text); err == nil {
		if c := ancestry.FindAncestor(head, nil, func(c *model.Commit[int64]) bool { return c.Revision == tag }); c != nil {
			return c, nil
		}
		return nil, fmt.Errorf("revision %s is not on this branch", text)
	}
	var match *model.Commit[int64]
	for c := head; c != nil; c = c.Parent {
		s := c.Revision.String()
		if len(text) > 0 && len(s) >= len(text) && s[len(s)-len(text):] == text {
			if match != nil {
				return nil, fmt.Errorf("revision suffix %q is ambiguous", text)
			}
			match = c
		}
	}
	if match == nil {
		return nil, fmt.Errorf("revision %q is not on this branch", text)
	}
	return match, nil
}

// commitView is the JSON shape of a commit.
type commitView struct {
	ID       string       `json:"id,omitempty"`
	Revision revision.Tag `json:"revision"`
	Session  string       `json:"session"`
	Delta    int64        `json:"delta"`
	Depth    int          `json:"depth"`
}

func (a *app) view(c *model.Commit[int64]) commitView {
	id, _ := a.graph.ID(c)
	return commitView{
		ID:       id,
		Revision: c.Revision,
		Session:  string(c.SessionID),
		Delta:    c.Change,
		Depth:    c.Depth(),
	}
}

func (a *app) views(cs []*model.Commit[int64]) []commitView {
	out := make([]commitView, len(cs))
	for i, c := range cs {
		out[i] = a.view(c)
	}
	return out
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func short(c *model.Commit[int64]) string {
	if c == nil {
		return "-"
	}
	if c.IsRoot() {
		return c.Revision.Short() + " (root)"
	}
	return c.Revision.Short()
}
