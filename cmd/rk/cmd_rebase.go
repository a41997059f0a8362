package main

import (
	"github.com/spf13/cobra"

	"github.com/daviddao/rebasekit/pkg/algebra"
	"github.com/daviddao/rebasekit/pkg/branch"
	"github.com/daviddao/rebasekit/pkg/revision"
)

func (c *cli) rebaseCmd() *cobra.Command {
	var onto string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "rebase <source> <target>",
		Short: "Rebase the source branch onto the target branch",
		Long: `Rebase the source branch onto the head of the target branch, or onto the
commit on the target branch named by --onto (a revision or a unique suffix
of one). Only the source branch moves.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.cmdRebase(args[0], args[1], onto, dryRun)
		},
	}
	cmd.Flags().StringVar(&onto, "onto", "", "revision on the target branch to rebase onto")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the rebase without saving it")
	return cmd
}

type rebaseView struct {
	Source    string       `json:"source"`
	Target    string       `json:"target"`
	OldHead   commitView   `json:"old_head"`
	NewHead   commitView   `json:"new_head"`
	NewBase   commitView   `json:"new_base"`
	Deleted   []commitView `json:"deleted"`
	Added     []commitView `json:"added"`
	NetChange *int64       `json:"net_change"`
	State     int64        `json:"state"`
	DryRun    bool         `json:"dry_run,omitempty"`
}

func (a *app) cmdRebase(source, target, onto string, dryRun bool) error {
	srcHead, err := a.head(source)
	if err != nil {
		return err
	}
	tgtHead, err := a.head(target)
	if err != nil {
		return err
	}
	tgtCommit := tgtHead
	if onto != "" {
		if tgtCommit, err = findRevision(tgtHead, onto); err != nil {
			return err
		}
	}

	b := branch.New[int64](source, a.alg, revision.Mint, srcHead)
	res, err := b.RebaseOntoCommit(tgtCommit, tgtHead)
	if err != nil {
		return err
	}
	if !dryRun && res.NewSourceHead != srcHead {
		if err := a.graph.SetBranch(source, b.Head()); err != nil {
			return err
		}
	}

	v := rebaseView{
		Source:    source,
		Target:    target,
		OldHead:   a.view(srcHead),
		NewHead:   a.view(res.NewSourceHead),
		NewBase:   a.view(res.Commits.NewBase),
		Deleted:   a.views(res.Commits.DeletedSourceCommits),
		Added:     a.views(res.Commits.NewSourceCommits),
		NetChange: res.SourceChange,
		State:     algebra.State(res.NewSourceHead),
		DryRun:    dryRun,
	}
	if a.jsonOut {
		return a.printJSON(v)
	}

	if res.NewSourceHead == srcHead {
		a.printf("%s is up to date with %s (base %s)\n", source, target, short(res.Commits.NewBase))
		return nil
	}
	verb := "rebased"
	if dryRun {
		verb = "would rebase"
	}
	a.printf("%s %s onto %s: %s -> %s\n", verb, source, target, short(srcHead), short(res.NewSourceHead))
	a.printf("  new base:  %s\n", short(res.Commits.NewBase))
	a.printf("  replaced:  %d commit(s)\n", len(res.Commits.DeletedSourceCommits))
	a.printf("  now on:    %d commit(s) past the fork\n", len(res.Commits.NewSourceCommits))
	if res.SourceChange != nil {
		a.printf("  net delta: %+d\n", *res.SourceChange)
	} else {
		a.printf("  net delta: none (reparented only)\n")
	}
	a.printf("  state:     %d\n", v.State)
	return nil
}
