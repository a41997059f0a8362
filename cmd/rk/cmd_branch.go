package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/daviddao/rebasekit/pkg/algebra"
	"github.com/daviddao/rebasekit/pkg/store"
)

func (c *cli) branchCmd() *cobra.Command {
	var from string
	var del bool
	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, or create one",
		Long: `With no name, list branches. With a name, create a branch at the head of
--from (default: the configured default branch), or delete it with --delete.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return c.app.cmdBranchList()
			}
			if del {
				return c.app.cmdBranchDelete(args[0])
			}
			return c.app.cmdBranchCreate(args[0], from)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "branch to fork from")
	cmd.Flags().BoolVarP(&del, "delete", "d", false, "delete the branch (commits are kept)")
	return cmd
}

func (a *app) cmdBranchCreate(name, from string) error {
	from = a.branchOr(from)
	if _, err := a.store.GetBranch(name); err == nil {
		return fmt.Errorf("branch %q already exists", name)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	head, err := a.head(from)
	if err != nil {
		return err
	}
	if err := a.graph.SetBranch(name, head); err != nil {
		return err
	}
	if a.jsonOut {
		return a.printJSON(map[string]interface{}{"branch": name, "from": from, "head": a.view(head)})
	}
	a.printf("created %s from %s at %s\n", name, from, short(head))
	return nil
}

func (a *app) cmdBranchDelete(name string) error {
	if err := a.store.DeleteBranch(name); err != nil {
		return fmt.Errorf("branch %q: %w", name, err)
	}
	if a.jsonOut {
		return a.printJSON(map[string]interface{}{"deleted": name})
	}
	a.printf("deleted %s\n", name)
	return nil
}

type branchView struct {
	Name    string     `json:"name"`
	Head    commitView `json:"head"`
	State   int64      `json:"state"`
	Updated string     `json:"updated"`
}

func (a *app) cmdBranchList() error {
	list, err := a.store.ListBranches()
	if err != nil {
		return err
	}
	views := make([]branchView, 0, len(list))
	for _, b := range list {
		head, err := a.graph.Load(b.HeadID)
		if err != nil {
			return fmt.Errorf("branch %q: %w", b.Name, err)
		}
		views = append(views, branchView{
			Name:    b.Name,
			Head:    a.view(head),
			State:   algebra.State(head),
			Updated: humanize.Time(b.UpdatedAt),
		})
	}

	if a.jsonOut {
		return a.printJSON(map[string]interface{}{"branches": views, "count": len(views)})
	}
	if len(views) == 0 {
		a.printf("no branches (run 'rk init')\n")
		return nil
	}
	for _, v := range views {
		marker := " "
		if v.Name == a.cfg.DefaultBranch {
			marker = "*"
		}
		a.printf("%s %-16s %s  depth=%d state=%d  (%s)\n",
			marker, v.Name, v.Head.Revision.Short(), v.Head.Depth, v.State, v.Updated)
	}
	return nil
}
