// Package quiz holds the pure scoring and validation core: shuffling,
// answer validation, scoring and the small formatting helpers built on them.
package quiz

import (
	"math/rand"

	"quiz-engine/internal/domain"
)

// Shuffle returns a Fisher-Yates permutation of items in a new slice. The input
// is never modified. Ordering is not reproducible between calls.
func Shuffle[T any](items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// ShuffleQuestions shuffles the question order and, independently, the options
// of every question that has them. Questions without options keep a nil slice.
func ShuffleQuestions(questions []domain.Question) []domain.Question {
	return ShuffleOptions(Shuffle(questions))
}

// ShuffleOptions keeps the question order and shuffles each question's options.
func ShuffleOptions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		if q.Options != nil {
			q.Options = Shuffle(q.Options)
		}
		out[i] = q
	}
	return out
}

// Arrange materializes the presentation order for one session run. Question
// and option shuffling are toggled independently.
func Arrange(questions []domain.Question, settings domain.Settings) []domain.Question {
	switch {
	case settings.ShuffleQuestions && settings.ShuffleOptions:
		return ShuffleQuestions(questions)
	case settings.ShuffleQuestions:
		return Shuffle(questions)
	case settings.ShuffleOptions:
		return ShuffleOptions(questions)
	default:
		out := make([]domain.Question, len(questions))
		copy(out, questions)
		return out
	}
}
