package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/internal/storage"
	"github.com/gobarber/gobarber-client/internal/validation"
	"github.com/gobarber/gobarber-client/pkg/jwt"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"github.com/gobarber/gobarber-client/pkg/metrics"
	"go.uber.org/zap"
)

// Authenticator exchanges credentials for a session
type Authenticator interface {
	CreateSession(ctx context.Context, req models.SignInRequest) (*models.SessionResponse, error)
}

// Keys names the storage entries holding the session halves
type Keys struct {
	Token string
	User  string
}

// DefaultKeys are the keys used by the mobile application
func DefaultKeys() Keys {
	return Keys{Token: "@GoBarber:token", User: "@GoBarber:user"}
}

// State is what subscribers observe
type State struct {
	Session *models.Session
	Loading bool
}

// Listener receives every published state
type Listener func(State)

// Manager owns the live session and keeps durable storage in step with it.
//
// Restore, SignIn and SignOut must not be called concurrently with each other.
// UpdateUser and the readers (State, Token, Subscribe) are safe from any
// goroutine. Listeners run synchronously on the goroutine that changed the
// state, one publish at a time, and must not call the mutating methods.
type Manager struct {
	auth  Authenticator
	store storage.Storage
	keys  Keys
	now   func() time.Time

	mu       sync.RWMutex
	session  *models.Session
	loading  bool
	restored bool

	publishMu   sync.Mutex
	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// NewManager creates a manager in the loading state; call Restore once
func NewManager(auth Authenticator, store storage.Storage, keys Keys) *Manager {
	return &Manager{
		auth:      auth,
		store:     store,
		keys:      keys,
		now:       time.Now,
		loading:   true,
		listeners: make(map[int]Listener),
	}
}

// State returns a snapshot of the current state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{Session: m.session.Clone(), Loading: m.loading}
}

// Token returns the live bearer token or ""
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

// Subscribe registers l and returns a function removing it
func (m *Manager) Subscribe(l Listener) func() {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l

	return func() {
		m.listenersMu.Lock()
		defer m.listenersMu.Unlock()
		delete(m.listeners, id)
	}
}

// Restore loads a persisted session. It runs once per manager; later calls
// are no-ops. Loading ends whatever the outcome. Only a storage read failure
// is returned, and even then the manager settles unauthenticated.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return nil
	}
	m.restored = true
	m.mu.Unlock()

	session, err := m.readPersisted(ctx)

	m.mu.Lock()
	m.session = session
	m.loading = false
	m.mu.Unlock()

	m.publish()
	return err
}

func (m *Manager) readPersisted(ctx context.Context) (*models.Session, error) {
	values, err := m.store.MultiGet(ctx, m.keys.Token, m.keys.User)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("restore", "error").Inc()
		logger.Warn("Failed to read persisted session", zap.Error(err))
		return nil, fmt.Errorf("read persisted session: %w", err)
	}

	token, hasToken := values[m.keys.Token]
	rawUser, hasUser := values[m.keys.User]

	if !hasToken && !hasUser {
		metrics.SessionEvents.WithLabelValues("restore", "empty").Inc()
		return nil, nil
	}

	discard := func(reason string) (*models.Session, error) {
		metrics.SessionEvents.WithLabelValues("restore", "discarded").Inc()
		logger.Info("Discarding persisted session", zap.String("reason", reason))
		if err := m.store.MultiRemove(ctx, m.keys.Token, m.keys.User); err != nil {
			logger.Warn("Failed to erase discarded session", zap.Error(err))
		}
		return nil, nil
	}

	if !hasToken || token == "" {
		return discard("user without token")
	}
	if !hasUser {
		return discard("token without user")
	}

	var user models.UserProfile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user == nil {
		return discard("undecodable user")
	}
	if jwt.IsExpired(token, m.now()) {
		return discard("expired token")
	}

	metrics.SessionEvents.WithLabelValues("restore", "restored").Inc()
	logger.Debug("Session restored", zap.String("user_id", user.ID()))
	return &models.Session{Token: token, User: user}, nil
}

// SignIn authenticates, persists and publishes a new session. On any failure
// the previous session stays live and a *CredentialError is returned.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	req := models.SignInRequest{Email: email, Password: password}
	if fields := validation.Struct(req); len(fields) > 0 {
		metrics.SessionEvents.WithLabelValues("sign_in", "invalid").Inc()
		return NewValidationError(fields)
	}

	resp, err := m.auth.CreateSession(ctx, req)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("sign_in", "rejected").Inc()
		logger.Info("Sign in rejected", zap.Error(err))
		return FromRemote(err)
	}
	if resp == nil || resp.Token == "" || resp.User == nil {
		metrics.SessionEvents.WithLabelValues("sign_in", "rejected").Inc()
		return &CredentialError{Kind: KindTransport, Err: fmt.Errorf("incomplete session response")}
	}

	next := &models.Session{Token: resp.Token, User: resp.User}
	if err := m.persist(ctx, next); err != nil {
		metrics.SessionEvents.WithLabelValues("sign_in", "storage_error").Inc()
		logger.Error("Failed to persist session", zap.Error(err))
		m.rollbackStorage(ctx)
		return &CredentialError{Kind: KindStorage, Err: err}
	}

	m.mu.Lock()
	m.session = next
	m.mu.Unlock()

	metrics.SessionEvents.WithLabelValues("sign_in", "success").Inc()
	logger.Info("Signed in", zap.String("user_id", next.User.ID()))
	m.publish()
	return nil
}

// SignOut erases the persisted session and clears the live one. The live
// session is cleared even when erasing fails; that error is returned only so
// the caller can log it.
func (m *Manager) SignOut(ctx context.Context) error {
	eraseErr := m.store.MultiRemove(ctx, m.keys.Token, m.keys.User)

	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	outcome := "success"
	if eraseErr != nil {
		outcome = "storage_error"
		logger.Warn("Failed to erase persisted session", zap.Error(eraseErr))
		eraseErr = fmt.Errorf("erase persisted session: %w", eraseErr)
	}
	metrics.SessionEvents.WithLabelValues("sign_out", outcome).Inc()

	m.publish()
	return eraseErr
}

// UpdateUser replaces the user half of the live session and persists it.
// The live session and subscribers see the new profile even if persisting
// fails; the persistence error is returned.
func (m *Manager) UpdateUser(ctx context.Context, user models.UserProfile) error {
	if user == nil {
		return fmt.Errorf("update user: profile is required")
	}

	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return ErrNoSession
	}
	m.session = &models.Session{Token: m.session.Token, User: user.Clone()}
	m.mu.Unlock()

	var persistErr error
	raw, err := json.Marshal(user)
	if err != nil {
		persistErr = fmt.Errorf("encode user: %w", err)
	} else if err := m.store.MultiSet(ctx, storage.Pair{Key: m.keys.User, Value: string(raw)}); err != nil {
		persistErr = fmt.Errorf("persist user: %w", err)
	}

	outcome := "success"
	if persistErr != nil {
		outcome = "storage_error"
		logger.Warn("Failed to persist updated user", zap.Error(persistErr))
	}
	metrics.SessionEvents.WithLabelValues("update_user", outcome).Inc()

	m.publish()
	return persistErr
}

func (m *Manager) persist(ctx context.Context, s *models.Session) error {
	raw, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return m.store.MultiSet(ctx,
		storage.Pair{Key: m.keys.User, Value: string(raw)},
		storage.Pair{Key: m.keys.Token, Value: s.Token},
	)
}

// rollbackStorage puts the previous session back on disk after a failed
// write, or erases both keys when there was none. Best effort.
func (m *Manager) rollbackStorage(ctx context.Context) {
	m.mu.RLock()
	prev := m.session.Clone()
	m.mu.RUnlock()

	var err error
	if prev != nil {
		err = m.persist(ctx, prev)
	} else {
		err = m.store.MultiRemove(ctx, m.keys.Token, m.keys.User)
	}
	if err != nil {
		logger.Warn("Failed to roll back session storage", zap.Error(err))
	}
}

func (m *Manager) publish() {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()

	state := m.State()

	m.listenersMu.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, m.listeners[id])
	}
	m.listenersMu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}
