package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mentormind/internal/jobs"
)

func (c *CLI) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(_ context.Context, app *App) error {
				return c.emit(map[string]any{"dialect": app.DB.Dialect.Name(), "applied": app.Migrations}, func(w io.Writer) {
					if len(app.Migrations) == 0 {
						fmt.Fprintf(w, "Database (%s) is up to date.\n", app.DB.Dialect.Name())
						return
					}
					for _, m := range app.Migrations {
						fmt.Fprintf(w, "Applied %s\n", m)
					}
				})
			})
		},
	}
}

func (c *CLI) backupCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "backup", Short: "Export or import all data as JSON"}

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			return c.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Backup.Export(ctx, output); err != nil {
					return err
				}
				info, err := os.Stat(output)
				if err != nil {
					return err
				}
				return c.emit(map[string]any{"output": output, "bytes": info.Size()}, func(w io.Writer) {
					fmt.Fprintf(w, "Exported to %s (%.2f MB)\n", output, float64(info.Size())/1024/1024)
				})
			})
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "output file (default backup_YYYYMMDD_HHMMSS.json)")

	var input string
	var clearData, yes bool
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Restore a JSON backup into a fresh database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file: %w", err)
			}
			if clearData && !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "This will delete all existing data. Type 'yes' to confirm: ") {
				fmt.Fprintln(c.out, "Import cancelled.")
				return nil
			}
			return c.run(cmd, func(ctx context.Context, app *App) error {
				if clearData {
					if err := app.Backup.Clear(ctx); err != nil {
						return err
					}
				}
				if err := app.Backup.Import(ctx, input); err != nil {
					return err
				}
				return c.emit(map[string]string{"input": input}, func(w io.Writer) {
					fmt.Fprintln(w, "Import complete.")
				})
			})
		},
	}
	importCmd.Flags().StringVarP(&input, "input", "i", "", "backup file")
	importCmd.Flags().BoolVar(&clearData, "clear", false, "delete existing data before importing")
	importCmd.Flags().BoolVar(&yes, "yes", false, "do not ask for confirmation")
	_ = importCmd.MarkFlagRequired("input")

	cmd.AddCommand(export, importCmd)
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}

func (c *CLI) workerCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the background jobs: keep-alive, daily reminders and generation log cleanup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, app *App) error {
				if once {
					sent, err := app.Reminders.SendDailyReminders(ctx)
					fmt.Fprintf(c.out, "%d reminder(s) sent.\n", sent)
					return err
				}

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				scheduler := jobs.New(app.Location, jobs.Config{
					KeepAliveInterval: app.Config.KeepAliveInterval,
					ReminderTime:      app.Config.ReminderTime(),
				}, app.DB, app.Reminders, app.Generation, app.Logger)
				if err := scheduler.Start(ctx); err != nil {
					return err
				}
				defer scheduler.Stop()

				<-ctx.Done()
				app.Logger.Info("shutting down worker", zap.Error(context.Cause(ctx)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "send today's reminders now and exit")
	return cmd
}
