package quiz

import (
	"fmt"
	"math"

	"quiz-engine/internal/domain"
)

// DefaultPassPercentage is used when a quiz does not set its own threshold.
const DefaultPassPercentage = 70

// FormatTime renders seconds as zero-padded MM:SS. Negative input renders as 00:00.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Grade maps a percentage to a letter grade.
func Grade(percentage int) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

// Passed reports whether percentage meets the threshold; a zero threshold means
// DefaultPassPercentage.
func Passed(percentage, passPercentage int) bool {
	if passPercentage <= 0 {
		passPercentage = DefaultPassPercentage
	}
	return percentage >= passPercentage
}

// Progress is the rounded share of current (1-based) over total.
func Progress(current, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(total) * 100))
}

// BuildReport attaches grade and pass flag to a scored result, plus
// explanations when the settings reveal them.
func BuildReport(result domain.QuizResult, questions []domain.Question, settings domain.Settings) domain.Report {
	passPercentage := settings.PassPercentage
	if passPercentage <= 0 {
		passPercentage = DefaultPassPercentage
	}
	report := domain.Report{
		QuizResult:     result,
		Grade:          Grade(result.Percentage),
		Passed:         Passed(result.Percentage, passPercentage),
		PassPercentage: passPercentage,
	}
	if !settings.ShowExplanations {
		return report
	}
	for _, q := range questions {
		if q.Explanation == "" {
			continue
		}
		if report.Explanations == nil {
			report.Explanations = make(map[string]string)
		}
		report.Explanations[q.ID] = q.Explanation
	}
	return report
}
