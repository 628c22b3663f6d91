package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mentormind/internal/models"
	"mentormind/internal/progression"
	"mentormind/internal/service"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// parseDay parses an optional YYYY-MM-DD flag; empty means zero
func parseDay(s string) (progression.Date, error) {
	if s == "" {
		return progression.Date{}, nil
	}
	return progression.ParseDate(s)
}

func (c *CLI) userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage accounts"}

	var username, email, password, name string
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, app *App) error {
				user, err := app.Users.Register(ctx, username, email, password, name)
				if err != nil {
					return err
				}
				return c.emit(user, func(w io.Writer) {
					fmt.Fprintf(w, "Registered %s (id %d)\n", user.Username, user.ID)
				})
			})
		},
	}
	register.Flags().StringVar(&username, "username", "", "login name")
	register.Flags().StringVar(&email, "email", "", "email address")
	register.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	register.Flags().StringVar(&name, "name", "", "display name")
	for _, f := range []string{"username", "email", "password", "name"} {
		_ = register.MarkFlagRequired(f)
	}

	var telegramChat int64
	var reminders bool
	settings := &cobra.Command{
		Use:   "settings",
		Short: "Change reminder settings of the selected user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				if cmd.Flags().Changed("telegram-chat") {
					if err := app.Users.SetTelegramChat(ctx, user.ID, telegramChat); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("reminders") {
					if err := app.Users.SetReminders(ctx, user.ID, reminders); err != nil {
						return err
					}
				}
				user, err := app.Users.Get(ctx, user.ID)
				if err != nil {
					return err
				}
				return c.emit(user, func(w io.Writer) {
					fmt.Fprintf(w, "Reminders: %t, Telegram chat: %d\n", user.RemindersEnabled, user.TelegramChatID)
				})
			})
		},
	}
	settings.Flags().Int64Var(&telegramChat, "telegram-chat", 0, "Telegram chat id for reminders (0 disables)")
	settings.Flags().BoolVar(&reminders, "reminders", true, "receive daily reminders")

	cmd.AddCommand(register, settings)
	return cmd
}

func (c *CLI) focusCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "focus", Short: "Focus sessions"}

	var minutes int
	var sessionType string
	complete := &cobra.Command{
		Use:   "complete",
		Short: "Record a finished focus session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				out, err := app.Progression.CompleteFocusSession(ctx, user.ID, minutes, sessionType)
				if err != nil {
					return err
				}
				return c.emit(out, func(w io.Writer) {
					fmt.Fprintf(w, "Focus session of %d min recorded.\n", minutes)
					printOutcome(w, out)
				})
			})
		},
	}
	complete.Flags().IntVarP(&minutes, "minutes", "m", 25, "session length in minutes")
	complete.Flags().StringVar(&sessionType, "type", "pomodoro", "session type")

	cmd.AddCommand(complete)
	return cmd
}

func (c *CLI) flashcardCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "flashcard", Aliases: []string{"card"}, Short: "Flashcards and reviews"}

	var front, back, deck string
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a flashcard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				card, out, err := app.Study.CreateFlashcard(ctx, user.ID, front, back, deck)
				if err != nil {
					return err
				}
				return c.emit(struct {
					Flashcard *models.Flashcard `json:"flashcard"`
					Outcome   *service.Outcome  `json:"outcome"`
				}{card, out}, func(w io.Writer) {
					fmt.Fprintf(w, "Flashcard %d added to %s.\n", card.ID, card.DeckName)
					printOutcome(w, out)
				})
			})
		},
	}
	create.Flags().StringVar(&front, "front", "", "question side")
	create.Flags().StringVar(&back, "back", "", "answer side")
	create.Flags().StringVar(&deck, "deck", "", "deck name")
	_ = create.MarkFlagRequired("front")
	_ = create.MarkFlagRequired("back")

	var limit int
	due := &cobra.Command{
		Use:   "due",
		Short: "List flashcards due for review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				cards, err := app.Study.DueFlashcards(ctx, user.ID, limit)
				if err != nil {
					return err
				}
				return c.emit(cards, func(w io.Writer) {
					if len(cards) == 0 {
						fmt.Fprintln(w, "No flashcards due.")
						return
					}
					for _, card := range cards {
						fmt.Fprintf(w, "%d\t[%s]\t%s\n", card.ID, card.DeckName, card.Front)
					}
				})
			})
		},
	}
	due.Flags().IntVar(&limit, "limit", 50, "maximum number of cards")

	var quality int
	review := &cobra.Command{
		Use:   "review <card-id>",
		Short: "Grade one recall of a card (quality 0-5)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				out, err := app.Progression.ReviewFlashcard(ctx, user.ID, id, quality)
				if err != nil {
					return err
				}
				return c.emit(out, func(w io.Writer) { printOutcome(w, out) })
			})
		},
	}
	review.Flags().IntVarP(&quality, "quality", "q", -1, "recall quality from 0 (blackout) to 5 (perfect)")
	_ = review.MarkFlagRequired("quality")

	cmd.AddCommand(create, due, review)
	return cmd
}

func (c *CLI) taskCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Study tasks"}

	var draft service.TaskDraft
	var date string
	add := &cobra.Command{
		Use:   "add",
		Short: "Schedule a standalone task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				task, err := app.Study.AddTask(ctx, user.ID, draft, day)
				if err != nil {
					return err
				}
				return c.emit(task, func(w io.Writer) {
					fmt.Fprintf(w, "Task %d scheduled on %s.\n", task.ID, task.ScheduledDate)
				})
			})
		},
	}
	add.Flags().StringVar(&draft.Title, "title", "", "task title")
	add.Flags().StringVar(&draft.Subject, "subject", "", "subject")
	add.Flags().StringVar(&draft.Description, "description", "", "description")
	add.Flags().IntVar(&draft.DurationMinutes, "minutes", 30, "expected duration")
	add.Flags().IntVar(&draft.Priority, "priority", 3, "priority from 1 to 5")
	add.Flags().StringVar(&date, "date", "", "day to schedule on, YYYY-MM-DD (default today)")
	_ = add.MarkFlagRequired("title")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List open tasks from today onward",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				tasks, err := app.Study.UpcomingTasks(ctx, user.ID, limit)
				if err != nil {
					return err
				}
				return c.emit(tasks, func(w io.Writer) {
					for _, t := range tasks {
						fmt.Fprintf(w, "%d\t%s\tP%d\t%s\t%s\n", t.ID, t.ScheduledDate, t.Priority, t.Subject, t.Title)
					}
				})
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum number of tasks")

	complete := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				out, err := app.Progression.CompleteTask(ctx, user.ID, id)
				if err != nil {
					return err
				}
				return c.emit(out, func(w io.Writer) {
					fmt.Fprintln(w, "Task completed.")
					printOutcome(w, out)
				})
			})
		},
	}

	cmd.AddCommand(add, list, complete)
	return cmd
}

func (c *CLI) planCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "plan", Short: "Study plans"}

	var in service.PlanInput
	var deadline string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a study plan; tasks are generated when a deadline and subjects are given",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(deadline)
			if err != nil {
				return err
			}
			in.Deadline = day
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				plan, tasks, out, err := app.Study.CreatePlan(ctx, user.ID, in)
				if err != nil {
					return err
				}
				return c.emit(struct {
					Plan    *models.StudyPlan  `json:"plan"`
					Tasks   []models.StudyTask `json:"tasks"`
					Outcome *service.Outcome   `json:"outcome"`
				}{plan, tasks, out}, func(w io.Writer) {
					fmt.Fprintf(w, "Plan %d %q created with %d task(s).\n", plan.ID, plan.Title, len(tasks))
					for _, t := range tasks {
						fmt.Fprintf(w, "  %s\t%s\t%s\n", t.ScheduledDate, t.Subject, t.Title)
					}
					printOutcome(w, out)
				})
			})
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "plan title")
	create.Flags().StringVar(&in.Objective, "objective", "", "what the plan is for")
	create.Flags().Float64Var(&in.DailyHours, "hours", 2, "study hours per day")
	create.Flags().StringVar(&deadline, "deadline", "", "deadline, YYYY-MM-DD")
	create.Flags().StringSliceVar(&in.Subjects, "subject", nil, "subject to cover (repeatable)")

	cmd.AddCommand(create)
	return cmd
}

func (c *CLI) documentCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "document", Short: "Study documents"}

	var name, subject string
	var pages int
	add := &cobra.Command{
		Use:   "add <text-file>",
		Short: "Register the extracted text of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read document text: %w", err)
			}
			if name == "" {
				name = args[0]
			}
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				doc, out, err := app.Study.RegisterDocument(ctx, user.ID, name, subject, string(text), pages)
				if err != nil {
					return err
				}
				return c.emit(struct {
					Document *models.Document `json:"document"`
					Outcome  *service.Outcome `json:"outcome"`
				}{doc, out}, func(w io.Writer) {
					fmt.Fprintf(w, "Document %d registered (%d characters).\n", doc.ID, len([]rune(doc.ContentText)))
					printOutcome(w, out)
				})
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "document name (default: file name)")
	add.Flags().StringVar(&subject, "subject", "", "subject")
	add.Flags().IntVar(&pages, "pages", 0, "page count of the original")

	cmd.AddCommand(add)
	return cmd
}

// readText returns the text flag, or the file's content when file is set
func readText(text, file string) (string, error) {
	if file == "" {
		return text, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return strings.TrimSpace(string(b)), nil
}
