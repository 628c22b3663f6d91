package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mentormind/internal/models"
)

func (c *CLI) quizCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "quiz", Short: "Generated quizzes"}

	var subject, topic string
	var count int
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a multiple-choice quiz",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				quiz, err := app.Generation.GenerateQuiz(ctx, user.ID, subject, topic, count)
				if err != nil {
					return err
				}
				return c.emit(quiz, func(w io.Writer) {
					fmt.Fprintf(w, "Quiz %d: %s\n", quiz.ID, quiz.Title)
					for i, q := range quiz.Questions {
						fmt.Fprintf(w, "\n%d. %s\n", i+1, q.Question)
						for j, opt := range q.Options {
							fmt.Fprintf(w, "   %d) %s\n", j, opt)
						}
					}
				})
			})
		},
	}
	generate.Flags().StringVar(&subject, "subject", "", "subject")
	generate.Flags().StringVar(&topic, "topic", "", "specific topic")
	generate.Flags().IntVarP(&count, "count", "n", 5, "number of questions (1-15)")

	var answers []int
	var seconds int
	submit := &cobra.Command{
		Use:   "submit <quiz-id>",
		Short: "Grade answers to a quiz (zero-based option indexes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				result, err := app.Progression.SubmitQuiz(ctx, user.ID, id, answers, seconds)
				if err != nil {
					return err
				}
				return c.emit(result, func(w io.Writer) {
					fmt.Fprintf(w, "Score: %d/%d (%.0f%%)\n", result.Attempt.Score, result.Attempt.Total, result.Percentage())
					for i, r := range result.Results {
						mark := "x"
						if r.IsCorrect {
							mark = "ok"
						}
						fmt.Fprintf(w, "%d. [%s] %s\n", i+1, mark, r.Question)
						if !r.IsCorrect && r.Explanation != "" {
							fmt.Fprintf(w, "   %s\n", r.Explanation)
						}
					}
					printOutcome(w, result.Outcome)
				})
			})
		},
	}
	submit.Flags().IntSliceVarP(&answers, "answers", "a", nil, "answers in question order, e.g. 0,2,1")
	submit.Flags().IntVar(&seconds, "time", 0, "seconds spent")

	cmd.AddCommand(generate, submit)
	return cmd
}

func (c *CLI) summaryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "summary", Short: "Generated summaries"}

	var documentID int64
	var text, file string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Summarize text or a registered document and create flashcards from it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readText(text, file)
			if err != nil {
				return err
			}
			var doc *int64
			if documentID > 0 {
				doc = &documentID
			}
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				result, err := app.Generation.GenerateSummary(ctx, user.ID, doc, text)
				if err != nil {
					return err
				}
				return c.emit(result, func(w io.Writer) {
					s := result.Summary
					fmt.Fprintf(w, "%s\n\n%s\n", s.Title, s.ShortSummary)
					if len(s.Topics) > 0 {
						fmt.Fprintf(w, "\nTopics: %s\n", strings.Join(s.Topics, ", "))
					}
					fmt.Fprintf(w, "%d flashcard(s) created in deck %q.\n", len(result.Flashcards), s.Title)
					printOutcome(w, result.Outcome)
				})
			})
		},
	}
	generate.Flags().Int64Var(&documentID, "document", 0, "registered document id")
	generate.Flags().StringVar(&text, "text", "", "text to summarize")
	generate.Flags().StringVar(&file, "file", "", "read the text from a file")

	cmd.AddCommand(generate)
	return cmd
}

func (c *CLI) tutorCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "tutor", Short: "Ask the AI tutor"}

	ask := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a message to the tutor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				reply, err := app.Generation.Chat(ctx, user.ID, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return c.emit(reply, func(w io.Writer) {
					fmt.Fprintln(w, reply.Reply)
					printOutcome(w, reply.Outcome)
				})
			})
		},
	}

	explain := &cobra.Command{
		Use:   "explain <text>",
		Short: "Explain a piece of text simply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				text, err := app.Generation.Explain(ctx, user.ID, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return c.emit(map[string]string{"explanation": text}, func(w io.Writer) {
					fmt.Fprintln(w, text)
				})
			})
		},
	}

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "Show the latest tutor conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				msgs, err := app.Generation.ChatHistory(ctx, user.ID, limit)
				if err != nil {
					return err
				}
				return c.emit(msgs, func(w io.Writer) {
					for _, m := range msgs {
						fmt.Fprintf(w, "%s: %s\n", m.Role, m.Content)
					}
				})
			})
		},
	}
	history.Flags().IntVar(&limit, "limit", 20, "number of messages")

	cmd.AddCommand(ask, explain, history)
	return cmd
}

func (c *CLI) mentorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mentor",
		Short: "Get a coaching message based on today's progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runAs(cmd, func(ctx context.Context, app *App, user *models.User) error {
				msg, err := app.Generation.MentorMessage(ctx, user.ID)
				if err != nil {
					return err
				}
				return c.emit(msg, func(w io.Writer) { fmt.Fprintln(w, msg.Message) })
			})
		},
	}
}
