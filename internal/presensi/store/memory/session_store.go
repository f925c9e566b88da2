package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/presensi-app/presensi/internal/presensi/store"
)

// SessionStore keeps sessions and user snapshots in maps. It implements both
// store.SessionStore and store.ReportStore and is intended for tests and dev.
type SessionStore struct {
	mu       sync.RWMutex
	nextID   int64
	sessions map[int64]store.SessionRecord
	users    map[int64]store.UserRecord
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]store.SessionRecord),
		users:    make(map[int64]store.UserRecord),
	}
}

func (s *SessionStore) OpenSession(_ context.Context, user store.UserRecord, rec store.SessionRecord) (store.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.noteUser(user)
	if _, ok := s.openFor(user.ID); ok {
		return store.SessionRecord{}, store.ErrOpenSessionExists
	}

	if rec.CheckIn.IsZero() {
		rec.CheckIn = time.Now().UTC()
	}
	s.nextID++
	rec.ID = s.nextID
	rec.UserID = user.ID
	rec.CheckOut = nil
	s.sessions[rec.ID] = cloneSession(rec)
	return cloneSession(rec), nil
}

func (s *SessionStore) CloseSession(_ context.Context, userID int64, at time.Time) (store.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.openFor(userID)
	if !ok {
		return store.SessionRecord{}, store.ErrNoOpenSession
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	rec.CheckOut = &at
	s.sessions[rec.ID] = cloneSession(rec)
	return cloneSession(rec), nil
}

func (s *SessionStore) GetSession(_ context.Context, id int64) (store.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[id]
	if !ok {
		return store.SessionRecord{}, store.ErrNotFound
	}
	return cloneSession(rec), nil
}

func (s *SessionStore) GetUser(_ context.Context, id int64) (store.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return store.UserRecord{}, store.ErrNotFound
	}
	return u, nil
}

func (s *SessionStore) DeleteOwnedSession(_ context.Context, id, requesterID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	if rec.UserID != requesterID {
		return store.ErrNotOwner
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) UpdateSession(
	_ context.Context,
	id int64,
	patch store.SessionPatch,
	validate func(store.SessionRecord) error,
) (store.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return store.SessionRecord{}, store.ErrNotFound
	}
	rec = cloneSession(rec)
	if patch.CheckIn != nil {
		rec.CheckIn = *patch.CheckIn
	}
	if patch.CheckOut != nil {
		out := *patch.CheckOut
		rec.CheckOut = &out
	}
	if validate != nil {
		if err := validate(rec); err != nil {
			return store.SessionRecord{}, err
		}
	}
	s.sessions[id] = rec
	return cloneSession(rec), nil
}

func (s *SessionStore) CountOpenSessions(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	for _, rec := range s.sessions {
		if rec.UserID == userID && rec.Open() {
			n++
		}
	}
	return n, nil
}

// ListSessions mirrors the sqlite report query: [From, To) on CheckIn,
// case-insensitive name substring, ascending id.
func (s *SessionStore) ListSessions(_ context.Context, filter store.ReportFilter) ([]store.ReportRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := strings.ToLower(strings.TrimSpace(filter.Name))
	out := make([]store.ReportRow, 0)
	for _, rec := range s.sessions {
		if rec.CheckIn.Before(filter.From) || !rec.CheckIn.Before(filter.To) {
			continue
		}
		u := s.users[rec.UserID]
		if name != "" && !strings.Contains(strings.ToLower(u.DisplayName), name) {
			continue
		}
		out = append(out, store.ReportRow{Session: cloneSession(rec), User: u})
	}
	slices.SortFunc(out, func(a, b store.ReportRow) int { return cmp.Compare(a.Session.ID, b.Session.ID) })
	return out, nil
}

// noteUser merges u into the snapshot, keeping known values for blank fields.
// Caller holds mu.
func (s *SessionStore) noteUser(u store.UserRecord) {
	prev, ok := s.users[u.ID]
	if ok {
		if u.DisplayName == "" {
			u.DisplayName = prev.DisplayName
		}
		if u.Email == "" {
			u.Email = prev.Email
		}
		if u.Role == "" {
			u.Role = prev.Role
		}
	}
	s.users[u.ID] = u
}

// openFor returns the user's open session. Caller holds mu.
func (s *SessionStore) openFor(userID int64) (store.SessionRecord, bool) {
	for _, rec := range s.sessions {
		if rec.UserID == userID && rec.Open() {
			return cloneSession(rec), true
		}
	}
	return store.SessionRecord{}, false
}

func cloneSession(rec store.SessionRecord) store.SessionRecord {
	if rec.CheckOut != nil {
		t := *rec.CheckOut
		rec.CheckOut = &t
	}
	if rec.Latitude != nil {
		v := *rec.Latitude
		rec.Latitude = &v
	}
	if rec.Longitude != nil {
		v := *rec.Longitude
		rec.Longitude = &v
	}
	return rec
}
