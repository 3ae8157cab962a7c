package lms

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/novalearn/novalearn/core"
)

// DefaultPasswordsByEmail maps the demo accounts to their preset passwords.
// MigrateUserPasswords only repairs these four; any other stored user
// missing a password stays locked out, a known limitation of the legacy
// data.
var DefaultPasswordsByEmail = map[string]string{
	"admin@lms.edu":      "Admin123!",
	"instructor@lms.edu": "Instructor123!",
	"content@lms.edu":    "Content123!",
	"student@lms.edu":    "Student123!",
}

var seedNowFunc = time.Now // mockable

const day = 24 * time.Hour

// SeedIfEmpty writes the demonstration graph unless the persisted payload
// already holds at least one user or course. It runs before any Store is
// constructed and therefore works on the raw payload.
func SeedIfEmpty(kv core.KVStore) error {
	data, err := kv.Get(DataKey)
	if err != nil && errors.Cause(err) != core.ErrKeyNotFound {
		return errors.Wrap(err, "reading domain graph")
	}
	if err == nil {
		var g Graph
		if uerr := json.Unmarshal(data, &g); uerr == nil {
			if len(g.Users) > 0 || len(g.Courses) > 0 {
				return nil
			}
		}
	}

	now := seedNowFunc().UTC()
	g := emptyGraph()
	g.Users = []User{
		{ID: "seed_admin", Email: "admin@lms.edu", Role: RoleAdmin, Name: "Admin User", Disabled: false, Password: "Admin123!"},
		{ID: "seed_instructor", Email: "instructor@lms.edu", Role: RoleInstructor, Name: "Jane Instructor", Disabled: false, Password: "Instructor123!"},
		{ID: "seed_content", Email: "content@lms.edu", Role: RoleContent, Name: "Content Creator", Disabled: false, Password: "Content123!"},
		{ID: "seed_student", Email: "student@lms.edu", Role: RoleStudent, Name: "John Student", Disabled: false, Password: "Student123!"},
	}
	g.Courses = []Course{
		{ID: "c1", Title: "Introduction to Machine Learning", Description: "Fundamentals of ML", Status: CourseStatusPublished, Enabled: true, InstructorID: "seed_instructor", CreatedAt: now.Add(-30 * day)},
		{ID: "c2", Title: "Product Design Basics", Description: "UX and design thinking", Status: CourseStatusPublished, Enabled: true, InstructorID: "seed_instructor", CreatedAt: now.Add(-20 * day)},
		{ID: "c3", Title: "Research Methods", Description: "Academic research fundamentals", Status: CourseStatusDraft, Enabled: true, InstructorID: "seed_instructor", CreatedAt: now.Add(-10 * day)},
	}
	g.Materials = []Material{
		{ID: "m1", CourseID: "c1", Title: "Week 1 - Introduction", Type: MaterialTypePDF, URL: "/sample.pdf", Order: 0},
		{ID: "m2", CourseID: "c1", Title: "Week 2 - Linear Regression", Type: MaterialTypePDF, URL: "/sample.pdf", Order: 1},
		{ID: "m3", CourseID: "c1", Title: "Quiz: Module 1", Type: MaterialTypeQuiz, Order: 2},
		{ID: "m4", CourseID: "c2", Title: "Design Thinking Overview", Type: MaterialTypeVideo, URL: "#", Order: 0},
	}
	g.Assignments = []Assignment{
		{ID: "a1", CourseID: "c1", Title: "Project Milestone 1", DueDate: now.Add(7 * day), MaxMarks: 100},
		{ID: "a2", CourseID: "c1", Title: "Weekly Quiz 1", DueDate: now.Add(-2 * day), MaxMarks: 20},
		{ID: "a3", CourseID: "c2", Title: "Design Critique", DueDate: now.Add(14 * day), MaxMarks: 50},
	}
	g.Enrollments = []Enrollment{
		{ID: "e1", CourseID: "c1", UserID: "seed_student", EnrolledAt: now.Add(-14 * day)},
		{ID: "e2", CourseID: "c2", UserID: "seed_student", EnrolledAt: now.Add(-7 * day)},
	}
	marks := 18.0
	g.Submissions = []Submission{
		{ID: "s1", AssignmentID: "a2", UserID: "seed_student", FileName: "quiz1.pdf", SubmittedAt: now.Add(-3 * day), Marks: &marks, Feedback: "Good work!", Status: SubmissionStatusGraded},
	}

	payload, err := json.Marshal(g)
	if err != nil {
		return errors.Wrap(err, "encoding seed graph")
	}
	return errors.Wrap(kv.Set(DataKey, payload), "writing seed graph")
}

// MigrateUserPasswords back-fills preset passwords onto stored demo users
// that predate the password field. Only the users collection is rewritten;
// every other collection is passed through untouched.
func MigrateUserPasswords(kv core.KVStore) error {
	data, err := kv.Get(DataKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return nil
		}
		return errors.Wrap(err, "reading domain graph")
	}

	var raw map[string]json.RawMessage
	if err = json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	var users []User
	if err = json.Unmarshal(raw["users"], &users); err != nil || len(users) == 0 {
		return nil
	}

	var changed bool
	for i, u := range users {
		if u.Password != "" {
			continue
		}
		if pwd, ok := DefaultPasswordsByEmail[core.CleanString(u.Email, true /* lower */)]; ok {
			users[i].Password = pwd
			changed = true
		}
	}
	if !changed {
		return nil
	}

	raw["users"], err = json.Marshal(users)
	if err != nil {
		return errors.Wrap(err, "encoding users")
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "encoding domain graph")
	}
	return errors.Wrap(kv.Set(DataKey, payload), "writing domain graph")
}
