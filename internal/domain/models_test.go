package domain

import (
	"errors"
	"testing"
)

func TestQuizValidate(t *testing.T) {
	four := Single("4")
	five := Single("5")
	blank := Single("")
	none := Multi()
	choice := func(id string, correct *Answer) Question {
		return Question{
			ID:   id,
			Type: SingleChoice,
			Options: []Option{
				{ID: "o1", Text: "3", Value: "3"},
				{ID: "o2", Text: "4", Value: "4"},
			},
			CorrectAnswer: correct,
		}
	}

	cases := []struct {
		name  string
		quiz  Quiz
		valid bool
	}{
		{"valid", Quiz{ID: "q", Questions: []Question{choice("q1", &four), {ID: "q2", Type: Text}}}, true},
		{"empty quiz", Quiz{ID: "q"}, true},
		{"missing id", Quiz{Questions: []Question{choice("q1", &four)}}, false},
		{"duplicate question", Quiz{ID: "q", Questions: []Question{choice("q1", &four), choice("q1", &four)}}, false},
		{"unknown type", Quiz{ID: "q", Questions: []Question{{ID: "q1", Type: "essay"}}}, false},
		{"no options", Quiz{ID: "q", Questions: []Question{{ID: "q1", Type: MultipleChoice}}}, false},
		{"correct not an option", Quiz{ID: "q", Questions: []Question{choice("q1", &five)}}, false},
		{"negative points", Quiz{ID: "q", Questions: []Question{{ID: "q1", Type: Text, Points: -1}}}, false},
		{"empty text answer key", Quiz{ID: "q", Questions: []Question{{ID: "q1", Type: Text, CorrectAnswer: &blank}}}, false},
		{"empty choice answer key", Quiz{ID: "q", Questions: []Question{{ID: "q1", Type: MultipleChoice, Options: []Option{{ID: "o1", Value: "1"}}, CorrectAnswer: &none}}}, false},
		{"survey question", Quiz{ID: "q", Questions: []Question{{ID: "q1", Type: Text, Points: 2}}}, true},
	}
	for _, tc := range cases {
		err := tc.quiz.Validate()
		if tc.valid && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.valid && !errors.Is(err, ErrInvalidQuiz) {
			t.Fatalf("%s: expected ErrInvalidQuiz, got %v", tc.name, err)
		}
	}
}

func TestQuestionWeightAndPublic(t *testing.T) {
	correct := Single("x")
	q := Question{ID: "q1", Type: Text, CorrectAnswer: &correct, Explanation: "because"}
	if q.Weight() != 1 {
		t.Fatalf("zero points should weigh 1, got %d", q.Weight())
	}
	q.Points = 3
	if q.Weight() != 3 {
		t.Fatalf("expected weight 3, got %d", q.Weight())
	}

	pub := q.Public()
	if pub.CorrectAnswer != nil || pub.Explanation != "" {
		t.Fatalf("public question leaked answer data: %+v", pub)
	}
	if q.CorrectAnswer == nil {
		t.Fatalf("Public must not modify the original")
	}
}

func TestSessionStateDerivation(t *testing.T) {
	cases := []struct {
		state SessionState
		want  State
	}{
		{SessionState{}, StateNotStarted},
		{SessionState{IsStarted: true}, StateInProgress},
		{SessionState{IsStarted: true, IsCompleted: true}, StateCompleted},
	}
	for _, tc := range cases {
		if got := tc.state.State(); got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}
