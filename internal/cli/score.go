package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/quiz"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewScoreCmd grades an answers file against a quiz bank without a server.
func NewScoreCmd() *cobra.Command {
	var (
		quizPath    string
		quizID      string
		answersPath string
		pass        int
		explain     bool
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a YAML answers file against a quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.OutOrStdout(), quizPath, quizID, answersPath, pass, explain)
		},
	}
	cmd.Flags().StringVar(&quizPath, "quiz", "", "quiz bank file (YAML or JSON)")
	cmd.Flags().StringVar(&quizID, "id", "", "quiz id, required when the bank holds several quizzes")
	cmd.Flags().StringVar(&answersPath, "answers", "", "answers file mapping question id to answer")
	cmd.Flags().IntVar(&pass, "pass", 0, "pass percentage (default from the quiz or 70)")
	cmd.Flags().BoolVar(&explain, "explain", false, "print explanations even when the quiz hides them")
	_ = cmd.MarkFlagRequired("quiz")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func runScore(out io.Writer, quizPath, quizID, answersPath string, pass int, explain bool) error {
	quizzes, err := memory.LoadQuizFile(quizPath)
	if err != nil {
		return err
	}
	q, err := pickQuiz(quizzes, quizID)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(answersPath)
	if err != nil {
		return fmt.Errorf("read answers: %w", err)
	}
	answers := map[string]domain.Answer{}
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return fmt.Errorf("parse answers: %w", err)
	}

	var settings domain.Settings
	if q.Settings != nil {
		settings = *q.Settings
	}
	if pass > 0 {
		settings.PassPercentage = pass
	}
	settings.ShowExplanations = settings.ShowExplanations || explain
	result := quiz.CalculateScore(q.Questions, answers)
	printReport(out, q, quiz.BuildReport(result, q.Questions, settings))
	return nil
}

func pickQuiz(quizzes map[string]domain.Quiz, quizID string) (domain.Quiz, error) {
	if quizID != "" {
		q, ok := quizzes[quizID]
		if !ok {
			return domain.Quiz{}, fmt.Errorf("%w: %s", domain.ErrQuizNotFound, quizID)
		}
		return q, nil
	}
	if len(quizzes) != 1 {
		return domain.Quiz{}, fmt.Errorf("quiz bank holds %d quizzes, pass --id", len(quizzes))
	}
	for _, q := range quizzes {
		return q, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func printReport(out io.Writer, q domain.Quiz, report domain.Report) {
	title := q.Title
	if title == "" {
		title = q.ID
	}
	fmt.Fprintf(out, "%s\n", title)
	for _, a := range report.Answers {
		mark := "x"
		if a.IsCorrect {
			mark = "+"
		}
		fmt.Fprintf(out, "  [%s] %s: %s (%d pts)\n", mark, a.QuestionID, a.Answer.String(), a.Points)
	}
	fmt.Fprintf(out, "correct: %d/%d\n", report.CorrectAnswers, report.TotalQuestions)
	fmt.Fprintf(out, "points: %d/%d\n", report.EarnedPoints, report.TotalPoints)
	status := "failed"
	if report.Passed {
		status = "passed"
	}
	fmt.Fprintf(out, "score: %d%% grade %s, %s (pass mark %d%%)\n", report.Percentage, report.Grade, status, report.PassPercentage)

	ids := make([]string, 0, len(report.Explanations))
	for id := range report.Explanations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(out, "  %s: %s\n", id, report.Explanations[id])
	}
}
