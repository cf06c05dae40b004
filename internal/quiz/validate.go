package quiz

import "quiz-engine/internal/domain"

// ValidateAnswer reports whether answer is an acceptable response that lets the
// taker move on. It checks well-formedness only, never correctness.
func ValidateAnswer(question domain.Question, answer domain.Answer) bool {
	if answer.IsEmpty() {
		return false
	}

	switch question.Type {
	case domain.MultipleChoice:
		for _, v := range answer.Values() {
			if !hasOptionValue(question, v) {
				return false
			}
		}
		return true
	case domain.SingleChoice:
		return !answer.IsMulti() && hasOptionValue(question, answer.Value())
	default:
		return true
	}
}

func hasOptionValue(question domain.Question, value string) bool {
	for _, opt := range question.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
