package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/daviddao/rebasekit/pkg/algebra"
	"github.com/daviddao/rebasekit/pkg/frontier"
)

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [branch]",
		Short: "Show a branch and how it has diverged from the default branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.app.cmdStatus(c.app.branchOr(name))
		},
	}
}

type statusView struct {
	Branch      string      `json:"branch"`
	Head        commitView  `json:"head"`
	State       int64       `json:"state"`
	Base        string      `json:"base"`
	Related     bool        `json:"related"`
	Ancestor    *commitView `json:"ancestor,omitempty"`
	Ahead       int         `json:"ahead"`
	Behind      int         `json:"behind"`
	FastForward bool        `json:"fast_forward"`
	Commits     int64       `json:"stored_commits"`
}

func (a *app) cmdStatus(name string) error {
	head, err := a.head(name)
	if err != nil {
		return err
	}
	base := a.cfg.DefaultBranch
	baseHead, err := a.head(base)
	if err != nil {
		return err
	}

	stored, err := a.store.CountCommits()
	if err != nil {
		return err
	}

	d := frontier.Compare(head, baseHead)
	v := statusView{
		Branch:      name,
		Head:        a.view(head),
		State:       algebra.State(head),
		Base:        base,
		Related:     d.Related(),
		Ahead:       len(d.Ahead),
		Behind:      len(d.Behind),
		FastForward: d.FastForward,
		Commits:     stored,
	}
	if d.Ancestor != nil {
		av := a.view(d.Ancestor)
		v.Ancestor = &av
	}

	if a.jsonOut {
		return a.printJSON(v)
	}
	a.printf("branch %s at %s (depth %d, state %d)\n", name, short(head), v.Head.Depth, v.State)
	switch {
	case name == base:
	case !d.Related():
		a.printf("  unrelated to %s\n", base)
	case d.InSync():
		a.printf("  in sync with %s\n", base)
	default:
		a.printf("  vs %s: %d ahead, %d behind, fork at %s\n", base, v.Ahead, v.Behind, short(d.Ancestor))
		if d.FastForward {
			a.printf("  can fast-forward to %s\n", base)
		}
	}
	a.printf("  %s commit(s) stored\n", humanize.Comma(v.Commits))
	return nil
}
