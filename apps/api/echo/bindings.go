package echoapi

import (
	"github.com/novalearn/novalearn/core"
	"github.com/novalearn/novalearn/core/auth"
	"github.com/novalearn/novalearn/core/lms"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  lms.User     `json:"user"`
	Ident auth.Identity `json:"session"`
}

type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	Identity      auth.Identity `json:"identity,omitempty"`
}

type GradeRequest struct {
	Marks    float64 `json:"marks" validate:"gte=0"`
	Feedback string  `json:"feedback"`
}

func (r *GradeRequest) Validate() error {
	r.Feedback = core.CleanString(r.Feedback)
	return core.Validate.Struct(r)
}

type QuizAnswersRequest struct {
	Answers map[string]int `json:"answers" validate:"required"`
}

func (r *QuizAnswersRequest) Validate() error { return core.Validate.Struct(r) }

type QuizResultResponse struct {
	Score      int `json:"score"`
	MaxScore   int `json:"maxScore"`
	Percentage int `json:"percentage"`
}

// QuizQuestionView is a QuizQuestion with the answer withheld.
type QuizQuestionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type SuccessResponse struct {
	Success string `json:"success"`
}
