package testutil

import (
	"testing"

	"github.com/novalearn/novalearn/core/lms"
	inmemkv "github.com/novalearn/novalearn/storage/kv/inmem"
)

// NewStore returns a Store over a fresh in-memory KV.
func NewStore(t *testing.T, opts ...lms.Options) (*lms.Store, *inmemkv.Store) {
	t.Helper()
	kv := inmemkv.New()
	store, err := lms.NewStore(kv, opts...)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	return store, kv
}

func CreateUser(t *testing.T, store *lms.Store, name, email, role, pwd string, disabled bool) lms.User {
	t.Helper()
	usr, err := store.AddUser(lms.NewUser{Name: name, Email: email, Role: role, Password: pwd})
	if err != nil {
		t.Fatalf("AddUser() failed: %v", err)
	}
	if disabled {
		if err = store.UpdateUser(usr.ID, lms.UserPatch{Disabled: &disabled}); err != nil {
			t.Fatalf("UpdateUser() failed: %v", err)
		}
		usr.Disabled = true
	}
	return usr
}

func CreateCourse(t *testing.T, store *lms.Store, title, status, instructorID string) lms.Course {
	t.Helper()
	crs, err := store.AddCourse(lms.NewCourse{Title: title, Status: status, InstructorID: instructorID})
	if err != nil {
		t.Fatalf("AddCourse() failed: %v", err)
	}
	return crs
}

func CreateAssignment(t *testing.T, store *lms.Store, courseID, title string, maxMarks float64) lms.Assignment {
	t.Helper()
	asg, err := store.AddAssignment(lms.NewAssignment{CourseID: courseID, Title: title, MaxMarks: maxMarks})
	if err != nil {
		t.Fatalf("AddAssignment() failed: %v", err)
	}
	return asg
}

func CreateSubmission(t *testing.T, store *lms.Store, assignmentID, userID, fileName string) lms.Submission {
	t.Helper()
	sub, err := store.AddSubmission(lms.NewSubmission{AssignmentID: assignmentID, UserID: userID, FileName: fileName})
	if err != nil {
		t.Fatalf("AddSubmission() failed: %v", err)
	}
	return sub
}
