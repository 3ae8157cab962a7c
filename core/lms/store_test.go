package lms

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/novalearn/novalearn/core"
)

// memKV is a minimal core.KVStore for store tests; Set can be made to fail
// and calls are counted.
type memKV struct {
	data     map[string][]byte
	failSet  bool
	setCalls int
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (kv *memKV) Get(key string) ([]byte, error) {
	value, ok := kv.data[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return value, nil
}

func (kv *memKV) Set(key string, value []byte) error {
	kv.setCalls++
	if kv.failSet {
		return fmt.Errorf("kv is down")
	}
	kv.data[key] = value
	return nil
}

func (kv *memKV) Delete(key string) error {
	delete(kv.data, key)
	return nil
}

func newTestStore(t *testing.T, opts ...Options) (*Store, *memKV) {
	t.Helper()
	kv := newMemKV()
	store, err := NewStore(kv, opts...)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store, kv
}

func TestStore_AddCourse_defaults(t *testing.T) {
	store, _ := newTestStore(t)

	crs, err := store.AddCourse(NewCourse{Title: "Go 101"})
	if err != nil {
		t.Fatalf("AddCourse() error = %v", err)
	}
	if crs.Status != CourseStatusDraft {
		t.Errorf("Status = %s; want %s", crs.Status, CourseStatusDraft)
	}
	if !crs.Enabled {
		t.Error("Enabled = false; want true")
	}
	if crs.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	off := false
	crs2, err := store.AddCourse(NewCourse{Title: "Go 102", Status: CourseStatusPublished, Enabled: &off})
	if err != nil {
		t.Fatalf("AddCourse() error = %v", err)
	}
	if crs2.Status != CourseStatusPublished {
		t.Errorf("Status = %s; want %s", crs2.Status, CourseStatusPublished)
	}
	if crs2.Enabled {
		t.Error("Enabled = true; want false")
	}
}

func TestStore_EnsureUser(t *testing.T) {
	store, _ := newTestStore(t)

	usr, err := store.EnsureUser("hero@test.cd", RoleStudent)
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	if usr.Name != "hero" {
		t.Errorf("Name = %s; want hero", usr.Name)
	}

	// repeated calls return the same record, case-insensitively, and the
	// role argument does not overwrite it
	again, err := store.EnsureUser("HERO@test.cd", RoleAdmin)
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	if again.ID != usr.ID {
		t.Errorf("ID = %s; want %s", again.ID, usr.ID)
	}
	if again.Role != RoleStudent {
		t.Errorf("Role = %s; want %s", again.Role, RoleStudent)
	}
	if got := len(store.Users()); got != 1 {
		t.Errorf("len(Users()) = %d; want 1", got)
	}
}

func TestStore_roundTrip(t *testing.T) {
	frozen := time.Date(2021, 3, 14, 15, 9, 26, 0, time.UTC)
	nowFunc = func() time.Time { return frozen }
	defer func() { nowFunc = time.Now }()

	store, kv := newTestStore(t)

	usr, _ := store.AddUser(NewUser{Name: "Hero", Email: "hero@test.cd", Role: RoleStudent, Password: "s3cret!pwd"})
	crs, _ := store.AddCourse(NewCourse{Title: "Go 101", Status: CourseStatusPublished})
	asg, _ := store.AddAssignment(NewAssignment{CourseID: crs.ID, Title: "HW 1", MaxMarks: 100})
	if _, err := store.AddEnrollment(NewEnrollment{CourseID: crs.ID, UserID: usr.ID}); err != nil {
		t.Fatalf("AddEnrollment() error = %v", err)
	}
	if _, err := store.AddSubmission(NewSubmission{AssignmentID: asg.ID, UserID: usr.ID, FileName: "hw1.pdf"}); err != nil {
		t.Fatalf("AddSubmission() error = %v", err)
	}

	// a fresh Store over the same KV sees the identical graph
	reloaded, err := NewStore(kv)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	want, _ := json.Marshal(store.state)
	got, _ := json.Marshal(reloaded.state)
	if string(got) != string(want) {
		t.Errorf("reloaded graph = %s; want %s", got, want)
	}
}

func TestStore_corruptCollectionRepair(t *testing.T) {
	kv := newMemKV()
	payload := `{"users":42,"courses":[{"id":"c1","title":"Go 101"}],"enrollments":"lol"}`
	if err := kv.Set(DataKey, []byte(payload)); err != nil {
		t.Fatalf("kv.Set() error = %v", err)
	}

	store, err := NewStore(kv)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if got := len(store.Users()); got != 0 {
		t.Errorf("len(Users()) = %d; want 0", got)
	}
	if got := len(store.Enrollments()); got != 0 {
		t.Errorf("len(Enrollments()) = %d; want 0", got)
	}
	courses := store.Courses()
	if len(courses) != 1 || courses[0].ID != "c1" {
		t.Errorf("Courses() = %+v; want the surviving c1", courses)
	}
}

func TestStore_unreadablePayloadResets(t *testing.T) {
	kv := newMemKV()
	_ = kv.Set(DataKey, []byte("not json at all"))

	store, err := NewStore(kv)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if got := len(store.Courses()); got != 0 {
		t.Errorf("len(Courses()) = %d; want 0", got)
	}
}

func TestStore_persistErrorKeepsMemory(t *testing.T) {
	store, kv := newTestStore(t)
	kv.failSet = true

	if _, err := store.AddCourse(NewCourse{Title: "Go 101"}); err == nil {
		t.Fatal("AddCourse() error = nil; want persist error")
	}
	if got := len(store.Courses()); got != 1 {
		t.Errorf("len(Courses()) = %d; want 1 (in-memory snapshot kept)", got)
	}
}

func TestStore_unknownIDUpdateStillPersists(t *testing.T) {
	store, kv := newTestStore(t)

	before := kv.setCalls
	if err := store.UpdateCourse("nope", CoursePatch{}); err != nil {
		t.Fatalf("UpdateCourse() error = %v", err)
	}
	if kv.setCalls != before+1 {
		t.Errorf("setCalls = %d; want %d", kv.setCalls, before+1)
	}
}

func TestStore_DeleteCourse_cascade(t *testing.T) {
	store, _ := newTestStore(t)

	usr, _ := store.EnsureUser("hero@test.cd", RoleStudent)
	crs, _ := store.AddCourse(NewCourse{Title: "Doomed"})
	other, _ := store.AddCourse(NewCourse{Title: "Survivor"})

	mat, _ := store.AddMaterial(NewMaterial{CourseID: crs.ID, Title: "Week 1", Type: MaterialTypePDF})
	keepMat, _ := store.AddMaterial(NewMaterial{CourseID: other.ID, Title: "Week 1", Type: MaterialTypePDF})
	asg, _ := store.AddAssignment(NewAssignment{CourseID: crs.ID, Title: "HW 1", MaxMarks: 100})
	keepAsg, _ := store.AddAssignment(NewAssignment{CourseID: other.ID, Title: "HW 1", MaxMarks: 100})
	_, _ = store.AddEnrollment(NewEnrollment{CourseID: crs.ID, UserID: usr.ID})
	keepEnr, _ := store.AddEnrollment(NewEnrollment{CourseID: other.ID, UserID: usr.ID})
	_, _ = store.AddSubmission(NewSubmission{AssignmentID: asg.ID, UserID: usr.ID, FileName: "hw1.pdf"})
	keepSub, _ := store.AddSubmission(NewSubmission{AssignmentID: keepAsg.ID, UserID: usr.ID, FileName: "hw1.pdf"})

	if err := store.DeleteCourse(crs.ID); err != nil {
		t.Fatalf("DeleteCourse() error = %v", err)
	}

	if courses := store.Courses(); len(courses) != 1 || courses[0].ID != other.ID {
		t.Errorf("Courses() = %+v; want only %s", courses, other.ID)
	}
	if materials := store.Materials(); len(materials) != 1 || materials[0].ID != keepMat.ID {
		t.Errorf("Materials() = %+v; want only %s", materials, keepMat.ID)
	}
	if assignments := store.Assignments(); len(assignments) != 1 || assignments[0].ID != keepAsg.ID {
		t.Errorf("Assignments() = %+v; want only %s", assignments, keepAsg.ID)
	}
	if enrollments := store.Enrollments(); len(enrollments) != 1 || enrollments[0].ID != keepEnr.ID {
		t.Errorf("Enrollments() = %+v; want only %s", enrollments, keepEnr.ID)
	}
	if submissions := store.Submissions(); len(submissions) != 1 || submissions[0].ID != keepSub.ID {
		t.Errorf("Submissions() = %+v; want only %s", submissions, keepSub.ID)
	}
	// the deleted material's sibling lookup fails
	if _, err := store.GetMaterialByID(mat.ID); err != ErrNotFound {
		t.Errorf("GetMaterialByID() error = %v; want ErrNotFound", err)
	}
}

func TestStore_uniqueGuards(t *testing.T) {
	t.Run("off by default", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, _ = store.AddEnrollment(NewEnrollment{CourseID: "c1", UserID: "u1"})
		if _, err := store.AddEnrollment(NewEnrollment{CourseID: "c1", UserID: "u1"}); err != nil {
			t.Errorf("AddEnrollment() error = %v; want nil", err)
		}
		_, _ = store.AddSubmission(NewSubmission{AssignmentID: "a1", UserID: "u1", FileName: "f"})
		if _, err := store.AddSubmission(NewSubmission{AssignmentID: "a1", UserID: "u1", FileName: "f"}); err != nil {
			t.Errorf("AddSubmission() error = %v; want nil", err)
		}
	})

	t.Run("enforced", func(t *testing.T) {
		store, _ := newTestStore(t, Options{EnforceUniqueEnrollments: true, EnforceUniqueSubmissions: true})
		_, _ = store.AddEnrollment(NewEnrollment{CourseID: "c1", UserID: "u1"})
		if _, err := store.AddEnrollment(NewEnrollment{CourseID: "c1", UserID: "u1"}); err != ErrDuplicateEnrollment {
			t.Errorf("AddEnrollment() error = %v; want ErrDuplicateEnrollment", err)
		}
		_, _ = store.AddSubmission(NewSubmission{AssignmentID: "a1", UserID: "u1", FileName: "f"})
		if _, err := store.AddSubmission(NewSubmission{AssignmentID: "a1", UserID: "u1", FileName: "f"}); err != ErrDuplicateSubmission {
			t.Errorf("AddSubmission() error = %v; want ErrDuplicateSubmission", err)
		}
		// a different user may still submit
		if _, err := store.AddSubmission(NewSubmission{AssignmentID: "a1", UserID: "u2", FileName: "f"}); err != nil {
			t.Errorf("AddSubmission() error = %v; want nil", err)
		}
	})
}

func TestStore_GradeSubmission(t *testing.T) {
	store, _ := newTestStore(t)

	sub, _ := store.AddSubmission(NewSubmission{AssignmentID: "a1", UserID: "u1", FileName: "hw1.pdf"})

	graded, err := store.GradeSubmission(sub.ID, 85, "Solid work")
	if err != nil {
		t.Fatalf("GradeSubmission() error = %v", err)
	}
	if graded.Status != SubmissionStatusGraded {
		t.Errorf("Status = %s; want %s", graded.Status, SubmissionStatusGraded)
	}
	if graded.Marks == nil || *graded.Marks != 85 {
		t.Errorf("Marks = %v; want 85", graded.Marks)
	}
	if graded.Feedback != "Solid work" {
		t.Errorf("Feedback = %s; want Solid work", graded.Feedback)
	}

	// exactly one notification, addressed to the author
	ntfs := store.Notifications()
	if len(ntfs) != 1 {
		t.Fatalf("len(Notifications()) = %d; want 1", len(ntfs))
	}
	ntf := ntfs[0]
	if ntf.UserID != "u1" {
		t.Errorf("UserID = %s; want u1", ntf.UserID)
	}
	if ntf.Title != "Assignment graded" {
		t.Errorf("Title = %s; want Assignment graded", ntf.Title)
	}
	if want := "Your submission received 85 marks."; ntf.Message != want {
		t.Errorf("Message = %s; want %s", ntf.Message, want)
	}
	if ntf.Read {
		t.Error("Read = true; want false")
	}

	if _, err = store.GradeSubmission("nope", 1, ""); err != ErrNotFound {
		t.Errorf("GradeSubmission() error = %v; want ErrNotFound", err)
	}
}

func TestStore_notificationsRead(t *testing.T) {
	store, _ := newTestStore(t)

	n1, _ := store.AddNotification(NewNotification{UserID: "u1", Title: "a"})
	n2, _ := store.AddNotification(NewNotification{UserID: "u1", Title: "b"})
	other, _ := store.AddNotification(NewNotification{UserID: "u2", Title: "c"})

	if err := store.MarkNotificationRead(n1.ID); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	if err := store.MarkAllNotificationsRead("u1"); err != nil {
		t.Fatalf("MarkAllNotificationsRead() error = %v", err)
	}

	for _, ntf := range store.Notifications() {
		switch ntf.ID {
		case n1.ID, n2.ID:
			if !ntf.Read {
				t.Errorf("notification %s unread; want read", ntf.ID)
			}
		case other.ID:
			if ntf.Read {
				t.Errorf("notification %s read; want unread (other user)", ntf.ID)
			}
		}
	}
}

func TestStore_AddActivity_prepends(t *testing.T) {
	store, _ := newTestStore(t)

	_, _ = store.AddActivity("login", "first", ActivityExtra{UserID: "u1"})
	_, _ = store.AddActivity("login", "second", ActivityExtra{UserID: "u1"})

	logs := store.ActivityLogs()
	if len(logs) != 2 {
		t.Fatalf("len(ActivityLogs()) = %d; want 2", len(logs))
	}
	if logs[0].Message != "second" || logs[1].Message != "first" {
		t.Errorf("log order = [%s, %s]; want newest first", logs[0].Message, logs[1].Message)
	}
}

func TestStore_queriesReturnCopies(t *testing.T) {
	store, _ := newTestStore(t)

	crs, _ := store.AddCourse(NewCourse{Title: "Go 101"})
	courses := store.Courses()
	courses[0].Title = "mutated"

	reloaded, err := store.GetCourseByID(crs.ID)
	if err != nil {
		t.Fatalf("GetCourseByID() error = %v", err)
	}
	if reloaded.Title != "Go 101" {
		t.Errorf("Title = %s; want Go 101", reloaded.Title)
	}
}

func TestStore_GetUserByEmail(t *testing.T) {
	store, _ := newTestStore(t)
	usr, _ := store.AddUser(NewUser{Name: "Hero", Email: "hero@test.cd", Role: RoleStudent, Password: "pwd"})

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "exact", email: "hero@test.cd"},
		{name: "mixed case", email: "HeRo@Test.CD"},
		{name: "padded", email: "  hero@test.cd  "},
		{name: "unknown", email: "nobody@test.cd", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetUserByEmail(tt.email)
			if err != tt.wantErr {
				t.Fatalf("GetUserByEmail() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != usr.ID {
				t.Errorf("ID = %s; want %s", got.ID, usr.ID)
			}
		})
	}
}
