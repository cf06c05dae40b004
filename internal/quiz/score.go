package quiz

import (
	"math"

	"quiz-engine/internal/domain"
)

// CalculateScore scores questions against a sparse answer map keyed by question
// id. Missing answers and questions without a correct answer score zero. The
// returned answers follow the order of questions. TimeSpent is left unset.
func CalculateScore(questions []domain.Question, answers map[string]domain.Answer) domain.QuizResult {
	result := domain.QuizResult{
		TotalQuestions: len(questions),
		Answers:        make([]domain.QuizAnswer, 0, len(questions)),
	}

	for _, question := range questions {
		points := question.Weight()
		result.TotalPoints += points

		answer, ok := answers[question.ID]
		if !ok {
			answer = domain.Single("")
		}
		// an empty answer or answer key counts as unanswered
		if answer.IsEmpty() || question.CorrectAnswer == nil || question.CorrectAnswer.IsEmpty() {
			result.Answers = append(result.Answers, domain.QuizAnswer{
				QuestionID: question.ID,
				Answer:     answer,
			})
			continue
		}

		correct := isCorrect(question, answer)
		earned := 0
		if correct {
			result.CorrectAnswers++
			result.EarnedPoints += points
			earned = points
		}
		result.Answers = append(result.Answers, domain.QuizAnswer{
			QuestionID: question.ID,
			Answer:     answer,
			IsCorrect:  correct,
			Points:     earned,
		})
	}

	if result.TotalPoints > 0 {
		result.Percentage = int(math.Round(float64(result.EarnedPoints) / float64(result.TotalPoints) * 100))
	}
	return result
}

func isCorrect(question domain.Question, answer domain.Answer) bool {
	expected := *question.CorrectAnswer
	if question.Type != domain.MultipleChoice {
		return answer.Equal(expected)
	}

	// No partial credit: the selected set must equal the correct set.
	want := toSet(expected.Values())
	got := toSet(answer.Values())
	if len(want) != len(got) {
		return false
	}
	for v := range got {
		if _, ok := want[v]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
