package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/presensi-app/presensi/internal/presensi/store"
	"github.com/presensi-app/presensi/internal/presensi/types"
)

// CheckIn carries the optional proof captured at check-in. Values are stored
// as given; the photo path comes from the photo store.
type CheckIn struct {
	Latitude       *float64
	Longitude      *float64
	ProofPhotoPath string
}

// AttendanceService owns the check-in/check-out lifecycle: a user has at most
// one open session at a time.
type AttendanceService struct {
	sessions store.SessionStore
	loc      *time.Location
	now      func() time.Time
}

func NewAttendanceService(ss store.SessionStore, loc *time.Location, opts ...Option) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	o := buildOptions(opts)
	return &AttendanceService{sessions: ss, loc: loc, now: o.now}
}

func (s *AttendanceService) CheckIn(ctx context.Context, id types.Identity, in CheckIn) (types.SessionResponse, error) {
	if err := checkIdentity(id); err != nil {
		return types.SessionResponse{}, err
	}

	now := stamp(s.now)
	rec, err := s.sessions.OpenSession(ctx, userRecord(id), store.SessionRecord{
		CheckIn:        now,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		ProofPhotoPath: in.ProofPhotoPath,
	})
	switch {
	case errors.Is(err, store.ErrOpenSessionExists):
		return types.SessionResponse{}, ErrAlreadyCheckedIn
	case err != nil:
		return types.SessionResponse{}, storageFailure("check in", err)
	}

	summary := s.summarize(rec)
	summary.Name = id.DisplayName
	return types.SessionResponse{
		Message: fmt.Sprintf("Hello %s, check-in recorded at %s", displayName(id), s.clockTime(rec.CheckIn)),
		Data:    summary,
	}, nil
}

func (s *AttendanceService) CheckOut(ctx context.Context, id types.Identity) (types.SessionResponse, error) {
	if err := checkIdentity(id); err != nil {
		return types.SessionResponse{}, err
	}

	rec, err := s.sessions.CloseSession(ctx, id.UserID, stamp(s.now))
	switch {
	case errors.Is(err, store.ErrNoOpenSession):
		return types.SessionResponse{}, ErrNoOpenSession
	case err != nil:
		return types.SessionResponse{}, storageFailure("check out", err)
	}

	summary := s.summarize(rec)
	summary.Name = id.DisplayName
	return types.SessionResponse{
		Message: fmt.Sprintf("Goodbye %s, check-out recorded at %s", displayName(id), s.clockTime(*rec.CheckOut)),
		Data:    summary,
	}, nil
}

// DeleteSession hard-deletes a session owned by requesterID.
func (s *AttendanceService) DeleteSession(ctx context.Context, requesterID, sessionID int64) error {
	err := s.sessions.DeleteOwnedSession(ctx, sessionID, requesterID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrNotOwner):
		return ErrForbidden
	case err != nil:
		return storageFailure("delete session", err)
	}
	return nil
}

// EditSession overwrites the supplied timestamps. Authorization is the
// caller's concern. A check-out earlier than the check-in is rejected.
func (s *AttendanceService) EditSession(ctx context.Context, sessionID int64, checkIn, checkOut *time.Time) (types.SessionResponse, error) {
	if checkIn == nil && checkOut == nil {
		return types.SessionResponse{}, invalid("", "request must contain checkIn or checkOut")
	}

	rec, err := s.sessions.UpdateSession(ctx, sessionID, store.SessionPatch{CheckIn: checkIn, CheckOut: checkOut},
		func(r store.SessionRecord) error {
			if r.CheckOut != nil && r.CheckOut.Before(r.CheckIn) {
				return invalid("checkOut", "checkOut must not be earlier than checkIn")
			}
			return nil
		})
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return types.SessionResponse{}, err
	case errors.Is(err, store.ErrNotFound):
		return types.SessionResponse{}, ErrNotFound
	case err != nil:
		return types.SessionResponse{}, storageFailure("edit session", err)
	}

	summary := s.summarize(rec)
	user, err := s.sessions.GetUser(ctx, rec.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return types.SessionResponse{}, storageFailure("edit session", err)
	default:
		summary.Name = user.DisplayName
	}
	return types.SessionResponse{
		Message: "Attendance record updated.",
		Data:    summary,
	}, nil
}

func (s *AttendanceService) summarize(rec store.SessionRecord) types.SessionSummary {
	return types.SessionSummary{
		ID:         rec.ID,
		UserID:     rec.UserID,
		CheckIn:    formatIn(rec.CheckIn, s.loc),
		CheckOut:   formatOptional(rec.CheckOut, s.loc),
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		ProofPhoto: rec.ProofPhotoPath,
	}
}

// clockTime renders t as wall-clock time with the zone abbreviation, e.g.
// "08:00:01 WIB".
func (s *AttendanceService) clockTime(t time.Time) string {
	return t.In(s.loc).Format("15:04:05 MST")
}

func checkIdentity(id types.Identity) error {
	if id.UserID <= 0 {
		return invalid("userId", "user id is required")
	}
	return nil
}

func userRecord(id types.Identity) store.UserRecord {
	return store.UserRecord{
		ID:          id.UserID,
		DisplayName: strings.TrimSpace(id.DisplayName),
		Email:       strings.TrimSpace(id.Email),
		Role:        strings.TrimSpace(id.Role),
	}
}

func displayName(id types.Identity) string {
	if name := strings.TrimSpace(id.DisplayName); name != "" {
		return name
	}
	return fmt.Sprintf("user %d", id.UserID)
}
