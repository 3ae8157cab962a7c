package lms

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/novalearn/novalearn/core"
)

// DataKey is the key the Domain Graph is persisted under.
const DataKey = "lms_data"

var (
	ErrNotFound            = errors.New("record not found")
	ErrEmailExists         = errors.New("a user with this email already exists")
	ErrDuplicateEnrollment = errors.New("user is already enrolled in this course")
	ErrDuplicateSubmission = errors.New("assignment has already been submitted")
)

var nowFunc = time.Now // mockable

type (
	// Graph is the full aggregate of all entity collections, persisted and
	// loaded as one unit.
	Graph struct {
		Users         []User         `json:"users"`
		Courses       []Course       `json:"courses"`
		Enrollments   []Enrollment   `json:"enrollments"`
		Materials     []Material     `json:"materials"`
		Assignments   []Assignment   `json:"assignments"`
		Submissions   []Submission   `json:"submissions"`
		Notifications []Notification `json:"notifications"`
		ActivityLogs  []ActivityLog  `json:"activityLogs"`
		QuizResults   []QuizResult   `json:"quizResults"`
		Feedbacks     []Feedback     `json:"feedbacks"`
	}

	Options struct {
		// Reject duplicate (userId, courseId) enrollments / (userId,
		// assignmentId) submissions at the store boundary. Off by default:
		// the legacy client only policed these in its views.
		EnforceUniqueEnrollments bool
		EnforceUniqueSubmissions bool
	}

	// Store is the single source of truth for all domain collections. Every
	// mutation computes the next snapshot in memory and persists the whole
	// graph; a persist failure is returned to the caller but the in-memory
	// snapshot is kept, so memory and storage may diverge until the next
	// successful persist.
	Store struct {
		mu    sync.RWMutex
		kv    core.KVStore
		opts  Options
		state Graph
	}
)

func emptyGraph() Graph {
	return Graph{
		Users:         []User{},
		Courses:       []Course{},
		Enrollments:   []Enrollment{},
		Materials:     []Material{},
		Assignments:   []Assignment{},
		Submissions:   []Submission{},
		Notifications: []Notification{},
		ActivityLogs:  []ActivityLog{},
		QuizResults:   []QuizResult{},
		Feedbacks:     []Feedback{},
	}
}

// NewStore loads the persisted Domain Graph from kv, repairing corrupt
// collections, and returns a ready Store.
func NewStore(kv core.KVStore, opts ...Options) (*Store, error) {
	s := &Store{kv: kv}
	if len(opts) > 0 {
		s.opts = opts[0]
	}

	g, err := loadGraph(kv)
	if err != nil {
		return nil, errors.Wrap(err, "loading domain graph")
	}
	s.state = g
	return s, nil
}

func loadGraph(kv core.KVStore) (Graph, error) {
	g := emptyGraph()

	data, err := kv.Get(DataKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return g, nil
		}
		return g, err
	}

	// each collection is repaired independently: an unreadable one is reset
	// to empty while the others are preserved
	var raw map[string]json.RawMessage
	if err = json.Unmarshal(data, &raw); err != nil {
		return g, nil
	}
	loadCollection(raw, "users", &g.Users)
	loadCollection(raw, "courses", &g.Courses)
	loadCollection(raw, "enrollments", &g.Enrollments)
	loadCollection(raw, "materials", &g.Materials)
	loadCollection(raw, "assignments", &g.Assignments)
	loadCollection(raw, "submissions", &g.Submissions)
	loadCollection(raw, "notifications", &g.Notifications)
	loadCollection(raw, "activityLogs", &g.ActivityLogs)
	loadCollection(raw, "quizResults", &g.QuizResults)
	loadCollection(raw, "feedbacks", &g.Feedbacks)
	return g, nil
}

func loadCollection(raw map[string]json.RawMessage, key string, dst interface{}) {
	data, ok := raw[key]
	if !ok {
		return
	}
	_ = json.Unmarshal(data, dst) // leave dst empty on failure
}

// persistLocked writes the current snapshot; callers must hold mu.
func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return errors.Wrap(err, "encoding domain graph")
	}
	if err = s.kv.Set(DataKey, data); err != nil {
		return errors.Wrap(err, "persisting domain graph")
	}
	return nil
}

// Users

func (s *Store) AddUser(nu NewUser) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr := User{
		ID:       GenerateID(),
		Email:    nu.Email,
		Role:     nu.Role,
		Name:     nu.Name,
		Password: nu.Password,
		Disabled: false,
	}
	s.state.Users = append(s.state.Users, usr)
	return usr, s.persistLocked()
}

// EnsureUser returns the user matching email (case-insensitive) or creates a
// student-visible record with a name derived from the email's local part.
// The role argument is ignored for existing users.
func (s *Store) EnsureUser(email, role string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(strings.TrimSpace(email))
	for _, usr := range s.state.Users {
		if strings.ToLower(usr.Email) == lower {
			return usr, nil
		}
	}
	usr := User{
		ID:       GenerateID(),
		Email:    strings.TrimSpace(email),
		Role:     role,
		Name:     LocalPart(email),
		Disabled: false,
	}
	s.state.Users = append(s.state.Users, usr)
	return usr, s.persistLocked()
}

// UpdateUser merges patch onto the matching user; an unknown id is a no-op
// that still persists the unchanged snapshot.
func (s *Store) UpdateUser(id string, patch UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Users {
		if s.state.Users[i].ID != id {
			continue
		}
		u := &s.state.Users[i]
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if patch.Password != nil {
			u.Password = *patch.Password
		}
		if patch.Disabled != nil {
			u.Disabled = *patch.Disabled
		}
		break
	}
	return s.persistLocked()
}

// Courses

func (s *Store) AddCourse(nc NewCourse) (Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	crs := Course{
		ID:           GenerateID(),
		Title:        nc.Title,
		Description:  nc.Description,
		Status:       nc.Status,
		Enabled:      true,
		InstructorID: nc.InstructorID,
		CreatedAt:    nowFunc().UTC(),
	}
	if crs.Status == "" {
		crs.Status = CourseStatusDraft
	}
	if nc.Enabled != nil {
		crs.Enabled = *nc.Enabled
	}
	s.state.Courses = append(s.state.Courses, crs)
	return crs, s.persistLocked()
}

func (s *Store) UpdateCourse(id string, patch CoursePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Courses {
		if s.state.Courses[i].ID != id {
			continue
		}
		c := &s.state.Courses[i]
		if patch.Title != nil {
			c.Title = *patch.Title
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		if patch.Status != nil {
			c.Status = *patch.Status
		}
		if patch.Enabled != nil {
			c.Enabled = *patch.Enabled
		}
		if patch.InstructorID != nil {
			c.InstructorID = *patch.InstructorID
		}
		break
	}
	return s.persistLocked()
}

// DeleteCourse removes the course and everything hanging off it: materials,
// assignments, enrollments, and submissions whose assignment was removed.
// The cascade is computed from one consistent snapshot.
func (s *Store) DeleteCourse(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevAssignments := s.state.Assignments

	courses := s.state.Courses[:0]
	for _, c := range s.state.Courses {
		if c.ID != id {
			courses = append(courses, c)
		}
	}
	s.state.Courses = courses

	materials := s.state.Materials[:0]
	for _, m := range s.state.Materials {
		if m.CourseID != id {
			materials = append(materials, m)
		}
	}
	s.state.Materials = materials

	assignments := make([]Assignment, 0, len(prevAssignments))
	for _, a := range prevAssignments {
		if a.CourseID != id {
			assignments = append(assignments, a)
		}
	}
	s.state.Assignments = assignments

	enrollments := s.state.Enrollments[:0]
	for _, e := range s.state.Enrollments {
		if e.CourseID != id {
			enrollments = append(enrollments, e)
		}
	}
	s.state.Enrollments = enrollments

	submissions := s.state.Submissions[:0]
	for _, sub := range s.state.Submissions {
		removed := false
		for _, a := range prevAssignments {
			if a.ID == sub.AssignmentID && a.CourseID == id {
				removed = true
				break
			}
		}
		if !removed {
			submissions = append(submissions, sub)
		}
	}
	s.state.Submissions = submissions

	return s.persistLocked()
}

// Enrollments

func (s *Store) AddEnrollment(ne NewEnrollment) (Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.EnforceUniqueEnrollments {
		for _, e := range s.state.Enrollments {
			if e.CourseID == ne.CourseID && e.UserID == ne.UserID {
				return Enrollment{}, ErrDuplicateEnrollment
			}
		}
	}
	enr := Enrollment{
		ID:         GenerateID(),
		CourseID:   ne.CourseID,
		UserID:     ne.UserID,
		EnrolledAt: nowFunc().UTC(),
	}
	s.state.Enrollments = append(s.state.Enrollments, enr)
	return enr, s.persistLocked()
}

// Materials

func (s *Store) AddMaterial(nm NewMaterial) (Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mat := Material{
		ID:        GenerateID(),
		CourseID:  nm.CourseID,
		Title:     nm.Title,
		Type:      nm.Type,
		URL:       nm.URL,
		Order:     nm.Order,
		CreatedAt: nowFunc().UTC(),
	}
	s.state.Materials = append(s.state.Materials, mat)
	return mat, s.persistLocked()
}

func (s *Store) UpdateMaterial(id string, patch MaterialPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Materials {
		if s.state.Materials[i].ID != id {
			continue
		}
		m := &s.state.Materials[i]
		if patch.Title != nil {
			m.Title = *patch.Title
		}
		if patch.Type != nil {
			m.Type = *patch.Type
		}
		if patch.URL != nil {
			m.URL = *patch.URL
		}
		if patch.Order != nil {
			m.Order = *patch.Order
		}
		break
	}
	return s.persistLocked()
}

func (s *Store) DeleteMaterial(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	materials := s.state.Materials[:0]
	for _, m := range s.state.Materials {
		if m.ID != id {
			materials = append(materials, m)
		}
	}
	s.state.Materials = materials
	return s.persistLocked()
}

// Assignments

func (s *Store) AddAssignment(na NewAssignment) (Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asg := Assignment{
		ID:        GenerateID(),
		CourseID:  na.CourseID,
		Title:     na.Title,
		DueDate:   na.DueDate,
		MaxMarks:  na.MaxMarks,
		CreatedAt: nowFunc().UTC(),
	}
	s.state.Assignments = append(s.state.Assignments, asg)
	return asg, s.persistLocked()
}

func (s *Store) UpdateAssignment(id string, patch AssignmentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Assignments {
		if s.state.Assignments[i].ID != id {
			continue
		}
		a := &s.state.Assignments[i]
		if patch.Title != nil {
			a.Title = *patch.Title
		}
		if patch.DueDate != nil {
			a.DueDate = *patch.DueDate
		}
		if patch.MaxMarks != nil {
			a.MaxMarks = *patch.MaxMarks
		}
		break
	}
	return s.persistLocked()
}

// Submissions

func (s *Store) AddSubmission(ns NewSubmission) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.EnforceUniqueSubmissions {
		for _, sub := range s.state.Submissions {
			if sub.AssignmentID == ns.AssignmentID && sub.UserID == ns.UserID {
				return Submission{}, ErrDuplicateSubmission
			}
		}
	}
	sub := Submission{
		ID:           GenerateID(),
		AssignmentID: ns.AssignmentID,
		UserID:       ns.UserID,
		FileName:     ns.FileName,
		SubmittedAt:  nowFunc().UTC(),
		Status:       SubmissionStatusSubmitted,
	}
	s.state.Submissions = append(s.state.Submissions, sub)
	return sub, s.persistLocked()
}

func (s *Store) UpdateSubmission(id string, patch SubmissionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patchSubmissionLocked(id, patch)
	return s.persistLocked()
}

func (s *Store) patchSubmissionLocked(id string, patch SubmissionPatch) *Submission {
	for i := range s.state.Submissions {
		if s.state.Submissions[i].ID != id {
			continue
		}
		sub := &s.state.Submissions[i]
		if patch.FileName != nil {
			sub.FileName = *patch.FileName
		}
		if patch.Status != nil {
			sub.Status = *patch.Status
		}
		if patch.Marks != nil {
			sub.Marks = patch.Marks
		}
		if patch.Feedback != nil {
			sub.Feedback = *patch.Feedback
		}
		return sub
	}
	return nil
}

// GradeSubmission marks the submission graded and notifies its author, as
// one snapshot.
func (s *Store) GradeSubmission(id string, marks float64, feedback string) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SubmissionStatusGraded
	sub := s.patchSubmissionLocked(id, SubmissionPatch{
		Status:   &status,
		Marks:    &marks,
		Feedback: &feedback,
	})
	if sub == nil {
		return Submission{}, ErrNotFound
	}
	s.state.Notifications = append(s.state.Notifications, Notification{
		ID:        GenerateID(),
		UserID:    sub.UserID,
		Title:     "Assignment graded",
		Message:   fmt.Sprintf("Your submission received %v marks.", marks),
		Read:      false,
		CreatedAt: nowFunc().UTC(),
	})
	return *sub, s.persistLocked()
}

// Notifications

func (s *Store) AddNotification(nn NewNotification) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ntf := Notification{
		ID:        GenerateID(),
		UserID:    nn.UserID,
		Title:     nn.Title,
		Message:   nn.Message,
		Read:      false,
		CreatedAt: nowFunc().UTC(),
	}
	s.state.Notifications = append(s.state.Notifications, ntf)
	return ntf, s.persistLocked()
}

func (s *Store) MarkNotificationRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Notifications {
		if s.state.Notifications[i].ID == id {
			s.state.Notifications[i].Read = true
			break
		}
	}
	return s.persistLocked()
}

func (s *Store) MarkAllNotificationsRead(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Notifications {
		if s.state.Notifications[i].UserID == userID {
			s.state.Notifications[i].Read = true
		}
	}
	return s.persistLocked()
}

// Activity / quiz / feedback trails

// AddActivity prepends an audit entry; the log is kept newest-first.
func (s *Store) AddActivity(typ, message string, extra ActivityExtra) (ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := ActivityLog{
		ID:        GenerateID(),
		Type:      typ,
		Message:   message,
		UserID:    extra.UserID,
		Role:      extra.Role,
		CourseID:  extra.CourseID,
		Timestamp: nowFunc().UTC(),
	}
	s.state.ActivityLogs = append([]ActivityLog{entry}, s.state.ActivityLogs...)
	return entry, s.persistLocked()
}

func (s *Store) AddQuizResult(nr NewQuizResult) (QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := QuizResult{
		ID:         GenerateID(),
		UserID:     nr.UserID,
		CourseID:   nr.CourseID,
		Score:      nr.Score,
		MaxScore:   nr.MaxScore,
		Percentage: nr.Percentage,
		Timestamp:  nowFunc().UTC(),
	}
	s.state.QuizResults = append(s.state.QuizResults, res)
	return res, s.persistLocked()
}

func (s *Store) AddFeedback(nf NewFeedback) (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb := Feedback{
		ID:        GenerateID(),
		UserID:    nf.UserID,
		CourseID:  nf.CourseID,
		Rating:    nf.Rating,
		Comment:   nf.Comment,
		Timestamp: nowFunc().UTC(),
	}
	s.state.Feedbacks = append(s.state.Feedbacks, fb)
	return fb, s.persistLocked()
}

func (s *Store) UpdateFeedback(id string, patch FeedbackPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Feedbacks {
		if s.state.Feedbacks[i].ID != id {
			continue
		}
		f := &s.state.Feedbacks[i]
		if patch.Rating != nil {
			f.Rating = *patch.Rating
		}
		if patch.Comment != nil {
			f.Comment = *patch.Comment
		}
		break
	}
	return s.persistLocked()
}

// Queries: all reads are synchronous snapshot views returning copies.

func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]User(nil), s.state.Users...)
}

func (s *Store) Courses() []Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Course(nil), s.state.Courses...)
}

func (s *Store) Enrollments() []Enrollment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Enrollment(nil), s.state.Enrollments...)
}

func (s *Store) Materials() []Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Material(nil), s.state.Materials...)
}

func (s *Store) Assignments() []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Assignment(nil), s.state.Assignments...)
}

func (s *Store) Submissions() []Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Submission(nil), s.state.Submissions...)
}

func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.state.Notifications...)
}

func (s *Store) ActivityLogs() []ActivityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ActivityLog(nil), s.state.ActivityLogs...)
}

func (s *Store) QuizResults() []QuizResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]QuizResult(nil), s.state.QuizResults...)
}

func (s *Store) Feedbacks() []Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Feedback(nil), s.state.Feedbacks...)
}

func (s *Store) GetUserByID(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.state.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *Store) GetUserByEmail(email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.state.Users {
		if strings.ToLower(u.Email) == lower {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *Store) GetCourseByID(id string) (Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.state.Courses {
		if c.ID == id {
			return c, nil
		}
	}
	return Course{}, ErrNotFound
}

func (s *Store) GetAssignmentByID(id string) (Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.state.Assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return Assignment{}, ErrNotFound
}

func (s *Store) GetSubmissionByID(id string) (Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.state.Submissions {
		if sub.ID == id {
			return sub, nil
		}
	}
	return Submission{}, ErrNotFound
}

func (s *Store) GetMaterialByID(id string) (Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.state.Materials {
		if m.ID == id {
			return m, nil
		}
	}
	return Material{}, ErrNotFound
}
