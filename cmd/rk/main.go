// Command rk drives the rebase engine over a persistent commit graph.
//
// Every commit carries a signed integer delta (the counter algebra), which
// makes the effect of a rebase easy to read off: a branch's state is the sum
// of its deltas, and a rebase reports the net delta it applied.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/daviddao/rebasekit/pkg/config"
	"github.com/daviddao/rebasekit/pkg/rebase"
)

const version = "0.3.0"

// Exit codes.
const (
	exitOK           = 0
	exitError        = 1
	exitPrecondition = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one CLI invocation and returns its exit code.
func run(args []string, stdout, stderr io.Writer) int {
	defer glog.Flush()
	c := &cli{}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	c.close()
	if err != nil {
		fmt.Fprintf(stderr, "rk: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps precondition violations to 2 and anything else to 1.
func exitCode(err error) int {
	if rebase.IsPrecondition(err) || errors.Is(err, rebase.ErrUnrelatedBranches) {
		return exitPrecondition
	}
	return exitError
}

// cli holds global flag values and the app opened for the running command.
type cli struct {
	dbPath  string
	session string
	jsonOut bool

	app *app
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rk",
		Short: "rk - rebase branches of a shared commit graph",
		Long: `rk keeps a graph of commits in SQLite and rebases branches of it.

Each commit carries an integer delta. A branch's state is the sum of the
deltas from the root to its head. Commits that share a revision on both
sides of a rebase cancel out instead of being applied twice.

Environment:
  REBASEKIT_CONFIG   config file (default: .rebasekit.yaml)
  REBASEKIT_DB       SQLite database path
  REBASEKIT_SESSION  session id stamped on new commits
  REBASEKIT_BRANCH   default branch

Exit codes:
  0  success
  1  error
  2  precondition violated (unrelated branches, unknown target)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.dbPath, "db", "", "SQLite database path (overrides config)")
	pf.StringVar(&c.session, "session", "", "session id for new commits (overrides config)")
	pf.BoolVar(&c.jsonOut, "json", false, "JSON output")
	pf.AddGoFlagSet(flag.CommandLine)

	root.AddCommand(
		c.initCmd(),
		c.commitCmd(),
		c.branchCmd(),
		c.rebaseCmd(),
		c.logCmd(),
		c.statusCmd(),
		c.ancestorCmd(),
		c.headsCmd(),
	)
	return root
}

// open resolves config, applies flag overrides and opens the store.
func (c *cli) open(cmd *cobra.Command) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	if c.session != "" {
		cfg.Session = c.session
	}
	if f := cmd.Flags().Lookup("v"); f != nil && !f.Changed && cfg.Verbosity > 0 {
		_ = flag.Set("v", strconv.Itoa(cfg.Verbosity))
	}

	a, err := newApp(cfg, cmd.OutOrStdout(), c.jsonOut)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}
