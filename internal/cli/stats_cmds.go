package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mentormind/internal/models"
	"mentormind/internal/progression"
)

func printGoal(w io.Writer, g *models.DailyGoal) {
	fmt.Fprintf(w, "Goals for %s\n", g.Date)
	for _, field := range progression.GoalFields {
		achieved, target := g.Achieved(field), g.Target(field)
		mark := " "
		if achieved >= target {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %-14s %d/%d\n", mark, field, achieved, target)
	}
}

func (c *CLI) goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Show today's goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				goal, err := app.Progression.TodayGoals(ctx, user.ID)
				if err != nil {
					return err
				}
				return c.emit(goal, func(w io.Writer) { printGoal(w, goal) })
			})
		},
	}

	var field, date string
	var delta int
	add := &cobra.Command{
		Use:   "add",
		Short: "Add progress to a goal counter (focus_minutes, flashcards or tasks)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := progression.ParseGoalField(field)
			if err != nil {
				return err
			}
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				goal, err := app.Progression.AccumulateGoal(ctx, user.ID, day, f, delta)
				if err != nil {
					return err
				}
				return c.emit(goal, func(w io.Writer) { printGoal(w, goal) })
			})
		},
	}
	add.Flags().StringVar(&field, "field", "", "goal field")
	add.Flags().IntVar(&delta, "delta", 1, "amount to add")
	add.Flags().StringVar(&date, "date", "", "day, YYYY-MM-DD (default today)")
	_ = add.MarkFlagRequired("field")

	cmd.AddCommand(add)
	return cmd
}

func (c *CLI) badgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List badges and which ones were earned",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				badges, err := app.Progression.Badges(ctx, user.ID)
				if err != nil {
					return err
				}
				return c.emit(badges, func(w io.Writer) { printBadges(w, badges) })
			})
		},
	}
}

func printBadges(w io.Writer, badges []models.BadgeStatus) {
	for _, b := range badges {
		status := "locked"
		if b.Earned() {
			status = "earned " + b.EarnedAt.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s %-20s %-18s %s\n", b.Icon, b.Name, status, b.Description)
	}
}

func (c *CLI) statsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "stats", Short: "Progress statistics"}

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Today's overview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				d, err := app.Stats.Dashboard(ctx, user.ID)
				if err != nil {
					return err
				}
				return c.emit(d, func(w io.Writer) {
					p := d.Progress
					fmt.Fprintf(w, "%s: level %d %s %d/%d XP, streak %d day(s)\n",
						d.User.Name, p.Level, progressBar(p.Percent(), 20), p.XPIntoLevel, p.XPForNext, d.User.StreakDays)
					if d.StreakAtRisk {
						fmt.Fprintln(w, "Your streak ends unless you study today.")
					}
					fmt.Fprintf(w, "Focus today: %d min, due flashcards: %d, tasks today: %d\n",
						d.FocusToday, d.PendingFlashcards, d.PendingTasks)
					printGoal(w, d.Goal)
					fmt.Fprintln(w, "Last days:")
					for _, day := range d.LastDays {
						fmt.Fprintf(w, "  %s %4d min\n", day.Date, day.Total)
					}
				})
			})
		},
	}

	profile := &cobra.Command{
		Use:   "profile",
		Short: "Lifetime counters and badges",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				p, err := app.Stats.Profile(ctx, user.ID)
				if err != nil {
					return err
				}
				return c.emit(p, func(w io.Writer) {
					fmt.Fprintf(w, "%s (@%s), level %d, %d XP\n", p.User.Name, p.User.Username, p.Progress.Level, p.User.XP)
					fmt.Fprintf(w, "Focus: %d min in %d session(s)\n", p.User.TotalFocusMinutes, p.Stats.FocusSessions)
					fmt.Fprintf(w, "Reviews: %d, documents: %d, summaries: %d, streak: %d\n",
						p.Stats.FlashcardReviews, p.Stats.Documents, p.Stats.Summaries, p.Stats.Streak)
					printBadges(w, p.Badges)
				})
			})
		},
	}

	var byFocus bool
	ranking := &cobra.Command{
		Use:   "ranking",
		Short: "Top users by XP, or by focus minutes this week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, app *App) error {
				if byFocus {
					entries, err := app.Stats.FocusRanking(ctx)
					if err != nil {
						return err
					}
					return c.emit(entries, func(w io.Writer) {
						for _, e := range entries {
							fmt.Fprintf(w, "%2d. %-20s %6d min\n", e.Position, e.Name, e.Minutes)
						}
					})
				}
				entries, err := app.Stats.Ranking(ctx)
				if err != nil {
					return err
				}
				return c.emit(entries, func(w io.Writer) {
					for _, e := range entries {
						fmt.Fprintf(w, "%2d. %-20s level %-3d %6d XP\n", e.Position, e.Name, e.Level, e.XP)
					}
				})
			})
		},
	}
	ranking.Flags().BoolVar(&byFocus, "focus", false, "rank by focus minutes over the last 7 days")

	weak := &cobra.Command{
		Use:   "weak-points",
		Short: "Topics most often answered wrong",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				report, err := app.Stats.WeakPoints(ctx, user.ID)
				if err != nil {
					return err
				}
				return c.emit(report, func(w io.Writer) {
					for _, s := range report.BySubject {
						fmt.Fprintf(w, "%s: %d error(s) over %d topic(s)\n", s.Subject, s.TotalErrors, s.Topics)
					}
					for _, p := range report.Top {
						fmt.Fprintf(w, "  %3dx %s / %s\n", p.ErrorCount, p.Subject, p.Topic)
					}
				})
			})
		},
	}

	var days int
	reviews := &cobra.Command{
		Use:   "reviews",
		Short: "Flashcard review performance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				perf, err := app.Stats.ReviewPerformance(ctx, user.ID, days)
				if err != nil {
					return err
				}
				return c.emit(perf, func(w io.Writer) {
					fmt.Fprintf(w, "%d review(s), %.0f%% successful, average quality %.2f\n",
						perf.Reviews, perf.SuccessRate(), perf.AverageQuality)
				})
			})
		},
	}
	reviews.Flags().IntVar(&days, "days", 30, "period in days")

	cmd.AddCommand(dashboard, profile, ranking, weak, reviews)
	return cmd
}

func (c *CLI) reportCmd() *cobra.Command {
	var output string
	var days int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write an XLSX progress report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				if output == "" {
					output = fmt.Sprintf("mentormind_%s_%s.xlsx", user.Username, time.Now().Format("20060102"))
				}
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create report file: %w", err)
				}
				defer file.Close()

				if err := app.Report.WriteXLSX(ctx, user.ID, days, file); err != nil {
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				return c.emit(map[string]string{"output": output}, func(w io.Writer) {
					fmt.Fprintf(w, "Report written to %s\n", output)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default mentormind_<user>_<date>.xlsx)")
	cmd.Flags().IntVar(&days, "days", 30, "period in days")
	return cmd
}
