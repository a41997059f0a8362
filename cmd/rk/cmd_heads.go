package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/daviddao/rebasekit/pkg/frontier"
	"github.com/daviddao/rebasekit/pkg/model"
)

func (c *cli) headsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heads",
		Short: "List the branches that carry work no other branch contains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.cmdHeads()
		},
	}
}

func (a *app) cmdHeads() error {
	byName, err := a.graph.Branches()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	all := make([]*model.Commit[int64], 0, len(names))
	for _, n := range names {
		all = append(all, byName[n])
	}
	heads := frontier.Heads(all)

	type headView struct {
		Branches []string   `json:"branches"`
		Head     commitView `json:"head"`
	}
	views := make([]headView, 0, len(heads))
	for _, h := range heads {
		var on []string
		for _, n := range names {
			if byName[n] == h {
				on = append(on, n)
			}
		}
		views = append(views, headView{Branches: on, Head: a.view(h)})
	}

	if a.jsonOut {
		return a.printJSON(map[string]interface{}{"heads": views, "count": len(views)})
	}
	for _, v := range views {
		a.printf("%s %v\n", v.Head.Revision.Short(), v.Branches)
	}
	return nil
}
