package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/daviddao/rebasekit/pkg/algebra"
	"github.com/daviddao/rebasekit/pkg/ancestry"
	"github.com/daviddao/rebasekit/pkg/branch"
	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/rebase"
	"github.com/daviddao/rebasekit/pkg/revision"
)

func (c *cli) commitCmd() *cobra.Command {
	var rev string
	cmd := &cobra.Command{
		Use:   "commit <branch> <delta>",
		Short: "Append a commit carrying delta to a branch",
		Long: `Append a commit carrying delta to a branch.

--revision reuses an existing revision tag, which is how the same edit is
recorded on two branches (for example a resubmission after a reconnect).
Such commits cancel out when one branch is rebased onto the other.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("delta %q: %w", args[1], err)
			}
			return c.app.cmdCommit(args[0], delta, rev)
		},
	}
	cmd.Flags().StringVar(&rev, "revision", "", "reuse this revision tag instead of minting one")
	return cmd
}

func (a *app) cmdCommit(name string, delta int64, rev string) error {
	head, err := a.head(name)
	if err != nil {
		return err
	}
	mint := revision.Minter(revision.Mint)
	shared := 0
	if rev != "" {
		tag, err := revision.Parse(rev)
		if err != nil {
			return fmt.Errorf("revision %q: %w", rev, err)
		}
		// A tag may repeat across branches but never within one.
		if ancestry.FindAncestor(head, nil, func(c *model.Commit[int64]) bool { return c.Revision == tag }) != nil {
			return fmt.Errorf("revision %s is already on %s: %w", tag.Short(), name, rebase.ErrRevisionCollision)
		}
		recs, err := a.store.ListCommitsByRevision(tag)
		if err != nil {
			return err
		}
		shared = len(recs)
		mint = func() revision.Tag { return tag }
	}

	b := branch.New[int64](name, algebra.Counter{}, mint, head)
	c := b.Apply(model.SessionID(a.cfg.Session), delta)
	if err := a.graph.SetBranch(name, c); err != nil {
		return err
	}

	if a.jsonOut {
		return a.printJSON(map[string]interface{}{
			"branch": name,
			"commit": a.view(c),
			"state":  algebra.State(c),
			"shared": shared,
		})
	}
	a.printf("%s %s %+d (state %d)\n", name, c.Revision, delta, algebra.State(c))
	if shared > 0 {
		a.printf("  revision also held by %d stored commit(s)\n", shared)
	}
	return nil
}
