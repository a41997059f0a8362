package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/rebasekit/pkg/ancestry"
	"github.com/daviddao/rebasekit/pkg/model"
	"github.com/daviddao/rebasekit/pkg/rebase"
)

func (c *cli) ancestorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ancestor <a> <b>",
		Short: "Find the closest common ancestor of two branches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.cmdAncestor(args[0], args[1])
		},
	}
}

func (a *app) cmdAncestor(left, right string) error {
	lh, err := a.head(left)
	if err != nil {
		return err
	}
	rh, err := a.head(right)
	if err != nil {
		return err
	}
	var lp, rp []*model.Commit[int64]
	anc := ancestry.FindCommonAncestor(ancestry.Into(lh, &lp), ancestry.Into(rh, &rp))
	if anc == nil {
		return fmt.Errorf("%s and %s: %w", left, right, rebase.ErrUnrelatedBranches)
	}

	if a.jsonOut {
		return a.printJSON(map[string]interface{}{
			"ancestor": a.view(anc),
			"a":        left,
			"b":        right,
			"a_since":  len(lp),
			"b_since":  len(rp),
		})
	}
	a.printf("%s\n", short(anc))
	a.printf("  %s: %d commit(s) since\n", left, len(lp))
	a.printf("  %s: %d commit(s) since\n", right, len(rp))
	return nil
}
