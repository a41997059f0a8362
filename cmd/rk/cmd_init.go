package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/rebase"
	"github.com/daviddao/rebasekit/pkg/revision"
	"github.com/daviddao/rebasekit/pkg/store"
)

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and the default branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.cmdInit()
		},
	}
}

func (a *app) cmdInit() error {
	name := a.cfg.DefaultBranch
	head, err := a.graph.Branch(name)
	created := false
	switch {
	case errors.Is(err, store.ErrNotFound):
		root := rebase.NewCommit[int64](nil, model.SessionID(a.cfg.Session), 0, revision.Mint)
		if err := a.graph.SetBranch(name, root); err != nil {
			return err
		}
		head, created = root, true
	case err != nil:
		return err
	}

	if a.jsonOut {
		return a.printJSON(map[string]interface{}{
			"db":      a.cfg.DBPath,
			"branch":  name,
			"head":    a.view(head),
			"created": created,
		})
	}
	if created {
		a.printf("initialized rebasekit (db: %s)\n", a.cfg.DBPath)
		a.printf("  branch %s at root %s\n", name, short(head))
	} else {
		a.printf("already initialized (db: %s)\n", a.cfg.DBPath)
		a.printf("  branch %s at %s\n", name, short(head))
	}
	return nil
}
