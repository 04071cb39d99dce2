package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"service-planner/internal/domain"
	"service-planner/internal/repository"
	"service-planner/internal/schedule"
)

// stubTxManager hands the same in-memory repositories to every
// transaction callback; commit/rollback semantics are not simulated.
type stubTxManager struct {
	repos repository.TxRepositories
}

func (m *stubTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	return fn(ctx, m.repos)
}

type memEventRepo struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *memEventRepo) ListByUser(_ context.Context, userID uuid.UUID, day string) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.events {
		if ev.UserID != userID {
			continue
		}
		if day != "" && ev.Day != day {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (r *memEventRepo) GetByID(_ context.Context, userID, id uuid.UUID) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.ID == id && ev.UserID == userID {
			return ev, nil
		}
	}
	return domain.Event{}, sql.ErrNoRows
}

func (r *memEventRepo) InsertMany(_ context.Context, events []domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *memEventRepo) Update(_ context.Context, event domain.Event) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ev := range r.events {
		if ev.ID == event.ID && ev.UserID == event.UserID {
			event.CreatedAt = ev.CreatedAt
			r.events[i] = event
			return event, nil
		}
	}
	return domain.Event{}, sql.ErrNoRows
}

func (r *memEventRepo) Delete(_ context.Context, userID, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ev := range r.events {
		if ev.ID == id && ev.UserID == userID {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memEventRepo) Clear(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []domain.Event
	var removed int64
	for _, ev := range r.events {
		if ev.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	r.events = kept
	return removed, nil
}

func (r *memEventRepo) FindOverlapping(_ context.Context, userID uuid.UUID, day, startTime, endTime string, excludeID uuid.UUID) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.events {
		if ev.UserID != userID || ev.Day != day || ev.ID == excludeID {
			continue
		}
		if schedule.Overlaps(ev.StartTime, ev.EndTime, startTime, endTime) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *memEventRepo) ColorForTitle(_ context.Context, userID uuid.UUID, title string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		ev := r.events[i]
		if ev.UserID == userID && ev.Title == title && ev.Color != "" {
			return ev.Color, nil
		}
	}
	return "", nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users []domain.User
}

func (r *memUserRepo) Insert(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	return r.getWhere(func(u domain.User) bool { return u.ID == id })
}

func (r *memUserRepo) GetByName(_ context.Context, name string) (domain.User, error) {
	return r.getWhere(func(u domain.User) bool { return u.Name == name })
}

func (r *memUserRepo) GetByMobile(_ context.Context, mobile string) (domain.User, error) {
	return r.getWhere(func(u domain.User) bool { return u.Mobile == mobile })
}

func (r *memUserRepo) getWhere(match func(domain.User) bool) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, sql.ErrNoRows
}

func (r *memUserRepo) ExistsByNameOrMobile(_ context.Context, name, mobile string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Name == name || u.Mobile == mobile {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, name, mobile string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == id {
			r.users[i].Name = name
			r.users[i].Mobile = mobile
			return r.users[i], nil
		}
	}
	return domain.User{}, sql.ErrNoRows
}

func (r *memUserRepo) UpdatePasswordByID(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == id {
			r.users[i].PasswordHash = passwordHash
		}
	}
	return nil
}

func (r *memUserRepo) UpdatePasswordByMobile(_ context.Context, mobile, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.Mobile == mobile {
			r.users[i].PasswordHash = passwordHash
		}
	}
	return nil
}

func (r *memUserRepo) SetOTP(_ context.Context, mobile, otp string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.Mobile == mobile {
			code := otp
			exp := expiresAt
			r.users[i].OTP = &code
			r.users[i].OTPExpiresAt = &exp
		}
	}
	return nil
}

func (r *memUserRepo) MarkVerified(_ context.Context, mobile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.Mobile == mobile {
			r.users[i].IsVerified = true
			r.users[i].OTP = nil
			r.users[i].OTPExpiresAt = nil
		}
	}
	return nil
}

func (r *memUserRepo) PurgeExpiredOTPs(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for i, u := range r.users {
		if u.OTP != nil && u.OTPExpiresAt != nil && !u.OTPExpiresAt.After(now) {
			r.users[i].OTP = nil
			r.users[i].OTPExpiresAt = nil
			purged++
		}
	}
	return purged, nil
}

// recordingSMSSender captures outgoing messages for assertions.
type recordingSMSSender struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSMSSender) SendSMS(_ context.Context, mobile, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, mobile+": "+message)
	return nil
}

func (s *recordingSMSSender) lastOTP() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	last := s.messages[len(s.messages)-1]
	fields := strings.Fields(last)
	return fields[len(fields)-1]
}

type stubGenAIClient struct {
	text string
	err  error
}

func (c *stubGenAIClient) GenerateText(_ context.Context, _ string) (string, error) {
	return c.text, c.err
}

func newTestEnv() (*stubTxManager, *memEventRepo, *memUserRepo) {
	events := &memEventRepo{}
	users := &memUserRepo{}
	tx := &stubTxManager{repos: repository.TxRepositories{Events: events, Users: users}}
	return tx, events, users
}
