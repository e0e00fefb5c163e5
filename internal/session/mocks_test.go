package session_test

import (
	"context"
	"errors"
	"sync"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/internal/storage"
	"github.com/stretchr/testify/mock"
)

// MockAuthenticator is a mock implementation of session.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) CreateSession(ctx context.Context, req models.SignInRequest) (*models.SessionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResponse), args.Error(1)
}

var errDiskFull = errors.New("disk full")

// faultyStorage wraps MemoryStorage and fails the operations it is told to
type faultyStorage struct {
	*storage.MemoryStorage

	mu         sync.Mutex
	failGet    bool
	failSet    bool
	failRemove bool
	sets       int
	removes    int
}

func newFaultyStorage() *faultyStorage {
	return &faultyStorage{MemoryStorage: storage.NewMemoryStorage()}
}

func (s *faultyStorage) MultiGet(ctx context.Context, keys ...string) (map[string]string, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return nil, errDiskFull
	}
	return s.MemoryStorage.MultiGet(ctx, keys...)
}

func (s *faultyStorage) MultiSet(ctx context.Context, pairs ...storage.Pair) error {
	s.mu.Lock()
	s.sets++
	fail := s.failSet
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.MemoryStorage.MultiSet(ctx, pairs...)
}

func (s *faultyStorage) MultiRemove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	s.removes++
	fail := s.failRemove
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.MemoryStorage.MultiRemove(ctx, keys...)
}
