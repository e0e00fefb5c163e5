package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
	"github.com/google/uuid"
)

// MemoryStore keeps users and appointments in process memory
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	emails       map[string]string
	appointments []*models.Appointment
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		now:    time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(user.Email)
	if _, taken := s.emails[key]; taken {
		return apperrors.InvalidInputError("email", "address already used")
	}

	now := s.now()
	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.users[stored.ID] = &stored
	s.emails[key] = stored.ID

	*user = stored
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFoundError("user")
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[emailKey(email)]
	if !ok {
		return nil, apperrors.NotFoundError("user")
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return apperrors.NotFoundError("user")
	}

	oldKey := emailKey(current.Email)
	newKey := emailKey(user.Email)
	if newKey != oldKey {
		if _, taken := s.emails[newKey]; taken {
			return apperrors.InvalidInputError("email", "address already used")
		}
		delete(s.emails, oldKey)
		s.emails[newKey] = user.ID
	}

	stored := *user
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = s.now()
	s.users[user.ID] = &stored

	*user = stored
	return nil
}

func (s *MemoryStore) ListExcept(ctx context.Context, id string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.users))
	for uid, u := range s.users {
		if uid == id {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemoryStore) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.appointments {
		if existing.ProviderID == appt.ProviderID && existing.Date.Equal(appt.Date) {
			return apperrors.ConflictError("this appointment is already booked")
		}
	}

	stored := *appt
	stored.ID = uuid.NewString()
	s.appointments = append(s.appointments, &stored)

	*appt = stored
	return nil
}

func (s *MemoryStore) ListForProvider(ctx context.Context, providerID string, from, to time.Time) ([]*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Appointment{}
	for _, a := range s.appointments {
		if a.ProviderID != providerID || a.Date.Before(from) || !a.Date.Before(to) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
