package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/daviddao/rebasekit/pkg/model"
)

func (c *cli) logCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log [branch]",
		Short: "Show the commits of a branch, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.app.cmdLog(c.app.branchOr(name), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "max commits to show (0 = all)")
	return cmd
}

type logEntry struct {
	commitView
	Root bool   `json:"root,omitempty"`
	Age  string `json:"age,omitempty"`
}

func (a *app) cmdLog(name string, limit int) error {
	head, err := a.head(name)
	if err != nil {
		return err
	}

	var entries []logEntry
	for c := head; c != nil; c = c.Parent {
		if limit > 0 && len(entries) == limit {
			break
		}
		entries = append(entries, logEntry{commitView: a.view(c), Root: c.IsRoot(), Age: a.age(c)})
	}

	if a.jsonOut {
		return a.printJSON(map[string]interface{}{"branch": name, "commits": entries, "count": len(entries)})
	}
	for _, e := range entries {
		rev := e.Revision.String()
		if e.Root {
			rev += " (root)"
		}
		a.printf("%-33s %+6d  %-12s %s\n", rev, e.Delta, truncate(e.Session, 12), e.Age)
	}
	return nil
}

// age reports how long ago c was stored, or "" if it is not stored.
func (a *app) age(c *model.Commit[int64]) string {
	id, ok := a.graph.ID(c)
	if !ok {
		return ""
	}
	rec, err := a.store.GetCommit(id)
	if err != nil {
		return ""
	}
	return humanize.Time(rec.CreatedAt)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
