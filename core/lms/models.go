package lms

import (
	"strings"
	"time"

	"github.com/novalearn/novalearn/core"
)

// Roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
	RoleContent    = "content"
)

// Course statuses
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
)

// Material types
const (
	MaterialTypePDF   = "pdf"
	MaterialTypeVideo = "video"
	MaterialTypeQuiz  = "quiz"
)

// Submission statuses
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
)

var AllRoles = []string{RoleStudent, RoleInstructor, RoleAdmin, RoleContent}

type (
	User struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Name     string `json:"name"`
		Disabled bool   `json:"disabled"`
		// stored as entered; see Config.PasswordScheme
		Password string `json:"password,omitempty"`
	}

	Course struct {
		ID           string    `json:"id"`
		Title        string    `json:"title"`
		Description  string    `json:"description"`
		Status       string    `json:"status"`
		Enabled      bool      `json:"enabled"`
		InstructorID string    `json:"instructorId"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	Enrollment struct {
		ID         string    `json:"id"`
		CourseID   string    `json:"courseId"`
		UserID     string    `json:"userId"`
		EnrolledAt time.Time `json:"enrolledAt"`
	}

	Material struct {
		ID        string    `json:"id"`
		CourseID  string    `json:"courseId"`
		Title     string    `json:"title"`
		Type      string    `json:"type"`
		URL       string    `json:"url,omitempty"`
		Order     int       `json:"order"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Assignment struct {
		ID        string    `json:"id"`
		CourseID  string    `json:"courseId"`
		Title     string    `json:"title"`
		DueDate   time.Time `json:"dueDate"`
		MaxMarks  float64   `json:"maxMarks"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Submission struct {
		ID           string    `json:"id"`
		AssignmentID string    `json:"assignmentId"`
		UserID       string    `json:"userId"`
		FileName     string    `json:"fileName"`
		SubmittedAt  time.Time `json:"submittedAt"`
		Status       string    `json:"status"`
		Marks        *float64  `json:"marks,omitempty"`
		Feedback     string    `json:"feedback,omitempty"`
	}

	Notification struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		Read      bool      `json:"read"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// ActivityLog entries are append-only, kept newest-first.
	ActivityLog struct {
		ID        string    `json:"id"`
		Type      string    `json:"type"`
		Message   string    `json:"message"`
		UserID    string    `json:"userId,omitempty"`
		Role      string    `json:"role,omitempty"`
		CourseID  string    `json:"courseId,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	QuizResult struct {
		ID         string    `json:"id"`
		UserID     string    `json:"userId"`
		CourseID   string    `json:"courseId"`
		Score      int       `json:"score"`
		MaxScore   int       `json:"maxScore"`
		Percentage int       `json:"percentage"`
		Timestamp  time.Time `json:"timestamp"`
	}

	Feedback struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		CourseID  string    `json:"courseId"`
		Rating    int       `json:"rating"`
		Comment   string    `json:"comment"`
		Timestamp time.Time `json:"timestamp"`
	}
)

// Sanitized returns a copy safe for API responses.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// LocalPart returns the part of the email before '@'; used to derive a
// default display name.
func LocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"omitempty,lmsrole"`
	Password string `json:"password" validate:"required,min=8"`
}

func (nu *NewUser) Validate(store *Store) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
	if nu.Name == "" {
		nu.Name = LocalPart(nu.Email)
	}

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	if _, err := store.GetUserByEmail(nu.Email); err == nil {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return nil
}

type NewCourse struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	Status       string `json:"status" validate:"omitempty,oneof=draft published"`
	Enabled      *bool  `json:"enabled"`
	InstructorID string `json:"instructorId"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return core.Validate.Struct(nc)
}

type NewEnrollment struct {
	CourseID string `json:"courseId" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
}

func (ne *NewEnrollment) Validate() error { return core.Validate.Struct(ne) }

type NewMaterial struct {
	CourseID string `json:"courseId" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Type     string `json:"type" validate:"required,materialtype"`
	URL      string `json:"url"`
	Order    int    `json:"order"`
}

func (nm *NewMaterial) Validate() error {
	nm.Title = core.CleanString(nm.Title)
	return core.Validate.Struct(nm)
}

type NewAssignment struct {
	CourseID string    `json:"courseId" validate:"required"`
	Title    string    `json:"title" validate:"required"`
	DueDate  time.Time `json:"dueDate"`
	MaxMarks float64   `json:"maxMarks" validate:"gte=0"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	return core.Validate.Struct(na)
}

type NewSubmission struct {
	AssignmentID string `json:"assignmentId" validate:"required"`
	UserID       string `json:"userId" validate:"required"`
	FileName     string `json:"fileName" validate:"required"`
}

func (ns *NewSubmission) Validate() error { return core.Validate.Struct(ns) }

type NewNotification struct {
	UserID  string `json:"userId" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Message string `json:"message"`
}

func (nn *NewNotification) Validate() error { return core.Validate.Struct(nn) }

type NewQuizResult struct {
	UserID     string `json:"userId" validate:"required"`
	CourseID   string `json:"courseId" validate:"required"`
	Score      int    `json:"score" validate:"gte=0"`
	MaxScore   int    `json:"maxScore" validate:"gte=0"`
	Percentage int    `json:"percentage" validate:"gte=0,lte=100"`
}

func (nr *NewQuizResult) Validate() error { return core.Validate.Struct(nr) }

type NewFeedback struct {
	UserID   string `json:"userId" validate:"required"`
	CourseID string `json:"courseId"`
	Rating   int    `json:"rating" validate:"gte=1,lte=5"`
	Comment  string `json:"comment"`
}

func (nf *NewFeedback) Validate() error {
	nf.Comment = core.CleanString(nf.Comment)
	return core.Validate.Struct(nf)
}

// Patch types perform shallow merges; nil fields are left untouched.

type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role" validate:"omitempty,lmsrole"`
	Password *string `json:"password"`
	Disabled *bool   `json:"disabled"`
}

func (p *UserPatch) Validate() error { return core.Validate.Struct(p) }

type CoursePatch struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Status       *string `json:"status" validate:"omitempty,oneof=draft published"`
	Enabled      *bool   `json:"enabled"`
	InstructorID *string `json:"instructorId"`
}

func (p *CoursePatch) Validate() error { return core.Validate.Struct(p) }

type MaterialPatch struct {
	Title *string `json:"title"`
	Type  *string `json:"type" validate:"omitempty,materialtype"`
	URL   *string `json:"url"`
	Order *int    `json:"order"`
}

func (p *MaterialPatch) Validate() error { return core.Validate.Struct(p) }

type AssignmentPatch struct {
	Title    *string    `json:"title"`
	DueDate  *time.Time `json:"dueDate"`
	MaxMarks *float64   `json:"maxMarks" validate:"omitempty,gte=0"`
}

func (p *AssignmentPatch) Validate() error { return core.Validate.Struct(p) }

type SubmissionPatch struct {
	FileName *string  `json:"fileName"`
	Status   *string  `json:"status" validate:"omitempty,oneof=submitted graded"`
	Marks    *float64 `json:"marks" validate:"omitempty,gte=0"`
	Feedback *string  `json:"feedback"`
}

func (p *SubmissionPatch) Validate() error { return core.Validate.Struct(p) }

type FeedbackPatch struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment"`
}

func (p *FeedbackPatch) Validate() error { return core.Validate.Struct(p) }

// ActivityExtra carries the optional attribution fields of an activity entry.
type ActivityExtra struct {
	UserID   string
	Role     string
	CourseID string
}
