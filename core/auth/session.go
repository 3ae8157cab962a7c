package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/novalearn/novalearn/core"
	"github.com/novalearn/novalearn/core/lms"
)

// AuthKey is the key the session identity is persisted under, separate from
// the Domain Graph.
const AuthKey = "lms_auth"

var nowFunc = time.Now // mockable

type (
	// Identity is the denormalized summary of the signed-in user. It is a
	// snapshot, not a reference: the authoritative record stays in the
	// Domain Store.
	Identity struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	// Session tracks the single currently-authenticated identity. It does
	// no credential verification; callers verify against the Domain Store
	// before calling Login.
	Session struct {
		mu       sync.RWMutex
		kv       core.KVStore
		identity *Identity
	}
)

func (i Identity) valid() bool {
	return i.ID != "" && i.Email != "" && i.Role != ""
}

// NewSession restores any previously persisted identity.
func NewSession(kv core.KVStore) *Session {
	s := &Session{kv: kv}
	if stored, ok := s.readStored(); ok && stored.valid() {
		s.identity = &stored
	}
	return s
}

func (s *Session) readStored() (Identity, bool) {
	data, err := s.kv.Get(AuthKey)
	if err != nil {
		return Identity{}, false
	}
	var ident Identity
	if err = json.Unmarshal(data, &ident); err != nil {
		return Identity{}, false
	}
	return ident, true
}

// Login merges the supplied fields over the previously persisted identity;
// empty arguments keep the previous values. With no prior identity a fresh
// one is started with role defaulting to student.
func (s *Session) Login(email, role, userID string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := Identity{
		ID:   fmt.Sprintf("user_%d", nowFunc().UnixNano()/int64(time.Millisecond)),
		Role: lms.RoleStudent,
	}
	if stored, ok := s.readStored(); ok && stored.ID != "" {
		base = stored
	}

	next := base
	if userID != "" {
		next.ID = userID
	}
	if trimmed := strings.TrimSpace(email); trimmed != "" {
		next.Email = trimmed
	}
	if role != "" {
		next.Role = role
	}

	s.identity = &next

	data, err := json.Marshal(next)
	if err != nil {
		return next, errors.Wrap(err, "encoding session identity")
	}
	return next, errors.Wrap(s.kv.Set(AuthKey, data), "persisting session identity")
}

// Logout clears both the persisted and the in-memory identity.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	if err := s.kv.Delete(AuthKey); err != nil && errors.Cause(err) != core.ErrKeyNotFound {
		return errors.Wrap(err, "clearing session identity")
	}
	return nil
}

// Current returns the signed-in identity, if any.
func (s *Session) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

func (s *Session) HasRole(role string) bool {
	ident, ok := s.Current()
	return ok && ident.Role == role
}
