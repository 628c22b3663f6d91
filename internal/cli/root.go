// Package cli implements the mentormind command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mentormind/internal/config"
	"mentormind/internal/logging"
	"mentormind/internal/models"
)

var errNoUser = errors.New("no user selected, pass --user with an id, username or email")

// CLI carries the state shared by every command of one invocation
type CLI struct {
	opts Options
	out  io.Writer

	user    string
	json    bool
	envFile string
}

// NewRootCommand builds the command tree. Output goes to out.
func NewRootCommand(opts Options, out io.Writer) *cobra.Command {
	c := &CLI{opts: opts, out: out}

	root := &cobra.Command{
		Use:           "mentormind",
		Short:         "Study companion with XP, levels, streaks and spaced repetition",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&c.user, "user", "u", "", "user id, username or email")
	root.PersistentFlags().BoolVar(&c.json, "json", false, "print results as JSON")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load")

	root.AddCommand(
		c.migrateCmd(),
		c.userCmd(),
		c.focusCmd(),
		c.flashcardCmd(),
		c.taskCmd(),
		c.planCmd(),
		c.documentCmd(),
		c.quizCmd(),
		c.summaryCmd(),
		c.tutorCmd(),
		c.mentorCmd(),
		c.goalsCmd(),
		c.badgesCmd(),
		c.statsCmd(),
		c.backupCmd(),
		c.reportCmd(),
		c.workerCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := NewRootCommand(Options{}, out)
	root.SetArgs(args)
	root.SetErr(errOut)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}

// options fills in configuration and logger when the caller left them out
func (c *CLI) options() (Options, error) {
	opts := c.opts
	if opts.Config == nil {
		if err := config.LoadDotEnv(c.envFile); err != nil {
			return opts, err
		}
		opts.Config = config.Load()
	}
	if err := opts.Config.Validate(); err != nil {
		return opts, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.Logger == nil {
		logger, err := logging.New(opts.Config.LogLevel, opts.Config.Debug)
		if err != nil {
			return opts, err
		}
		opts.Logger = logger
	}
	return opts, nil
}

// run opens the application for the duration of fn
func (c *CLI) run(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	if c.opts.Logger == nil {
		defer func() { _ = opts.Logger.Sync() }()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			opts.Logger.Warn("failed to close database", zap.Error(err))
		}
	}()
	return fn(ctx, app)
}

// runAs is run for commands that act on the --user account
func (c *CLI) runAs(cmd *cobra.Command, fn func(ctx context.Context, app *App, user *models.User) error) error {
	if c.user == "" {
		return errNoUser
	}
	return c.run(cmd, func(ctx context.Context, app *App) error {
		user, err := app.Users.Resolve(ctx, c.user)
		if err != nil {
			return err
		}
		return fn(ctx, app, user)
	})
}
