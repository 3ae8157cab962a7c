package lms

import "testing"

func TestScoreQuiz(t *testing.T) {
	questions := SampleQuizByCourse["c1"]
	if len(questions) != 3 {
		t.Fatalf("len(questions) = %d; want 3", len(questions))
	}

	tests := []struct {
		name           string
		answers        map[string]int
		wantScore      int
		wantPercentage int
	}{
		{name: "no answers", answers: map[string]int{}, wantScore: 0, wantPercentage: 0},
		{name: "all correct", answers: map[string]int{"q1": 0, "q2": 2, "q3": 0}, wantScore: 3, wantPercentage: 100},
		{name: "one correct", answers: map[string]int{"q1": 0, "q2": 1, "q3": 3}, wantScore: 1, wantPercentage: 33},
		{name: "two correct rounds up", answers: map[string]int{"q1": 0, "q2": 2, "q3": 1}, wantScore: 2, wantPercentage: 67},
		{name: "unknown question ignored", answers: map[string]int{"q1": 0, "bogus": 0}, wantScore: 1, wantPercentage: 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, maxScore, percentage := ScoreQuiz(questions, tt.answers)
			if score != tt.wantScore {
				t.Errorf("score = %d; want %d", score, tt.wantScore)
			}
			if maxScore != 3 {
				t.Errorf("maxScore = %d; want 3", maxScore)
			}
			if percentage != tt.wantPercentage {
				t.Errorf("percentage = %d; want %d", percentage, tt.wantPercentage)
			}
		})
	}
}

func TestScoreQuiz_emptyBank(t *testing.T) {
	score, maxScore, percentage := ScoreQuiz(nil, map[string]int{"q1": 0})
	if score != 0 || maxScore != 0 || percentage != 0 {
		t.Errorf("ScoreQuiz(nil) = (%d, %d, %d); want all zero", score, maxScore, percentage)
	}
}
