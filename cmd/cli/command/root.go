package command

// root.go defines the root command and opens the local library for subcommands.

import (
	"errors"
	"fmt"
	"os"

	"questlog/internal/app"
	"questlog/internal/config"

	"github.com/spf13/cobra"
)

type cli struct {
	dbPath  string
	verbose bool
	app     *app.App
}

// newRootCmd builds the questlog command tree. The library opened by a
// subcommand stays on the returned cli until run closes it.
func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "questlog",
		Short: "questlog - track the games you play",
		Long: `questlog keeps a local library of games pulled from IGDB, sorted into
ongoing, backlog, completed, on_hold and dropped lists that you rank yourself.

Use "questlog [command] --help" to see all available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open()
		},
	}

	// Global persistent flags = available to all subcommands
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "library database path (overrides DATABASE_PATH)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		c.discoverCmd(),
		c.listCmd(),
		c.moveCmd(),
		c.removeCmd(),
		c.reorderCmd(),
		c.rateCmd(),
		c.noteCmd(),
		c.completeCmd(),
		c.searchCmd(),
		c.importCmd(),
		c.showCmd(),
	)
	return root, c
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	root, c := newRootCmd()
	if err := c.run(root); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run executes root and closes the library even when the command fails.
// cobra skips post-run hooks after a RunE error.
func (c *cli) run(root *cobra.Command) (err error) {
	defer func() {
		if c.app != nil {
			err = errors.Join(err, c.app.Close())
		}
	}()
	return root.Execute()
}

func (c *cli) open() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.DatabasePath = c.dbPath
	}
	if !c.verbose {
		cfg.LogLevel = "error"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.app, err = app.New(cfg, cfg.NewLogger(os.Stderr))
	return err
}
