package lms

import "math"

type QuizQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
}

// SampleQuizByCourse holds the built-in question banks keyed by course id.
var SampleQuizByCourse = map[string][]QuizQuestion{
	"c1": {
		{
			ID:       "q1",
			Question: "What is supervised learning?",
			Options: []string{
				"Learning with labeled data",
				"Learning without labels",
				"Reinforcement learning",
				"None of the above",
			},
			Correct: 0,
		},
		{
			ID:       "q2",
			Question: "Which algorithm is commonly used for classification?",
			Options:  []string{"K-Means", "Linear Regression", "Logistic Regression", "DBSCAN"},
			Correct:  2,
		},
		{
			ID:       "q3",
			Question: "What does overfitting mean?",
			Options: []string{
				"Model performs well only on training data",
				"Model generalizes well",
				"Underfitting",
				"Perfect fit without error",
			},
			Correct: 0,
		},
	},
}

// ScoreQuiz grades answers (question id -> chosen option index) against the
// question bank. Percentage is rounded to the nearest integer.
func ScoreQuiz(questions []QuizQuestion, answers map[string]int) (score, maxScore, percentage int) {
	maxScore = len(questions)
	for _, q := range questions {
		if chosen, ok := answers[q.ID]; ok && chosen == q.Correct {
			score++
		}
	}
	if maxScore > 0 {
		percentage = int(math.Round(float64(score) / float64(maxScore) * 100))
	}
	return score, maxScore, percentage
}
