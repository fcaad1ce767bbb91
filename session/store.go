package session

import (
	"context"
	"delivery-tracking-client/gateway"
	"encoding/json"
	"go.uber.org/zap"
	"strings"
	"sync"
)

type Role string

const (
	RoleStaff   Role = "staff"
	RoleDriver  Role = "driver"
	RoleUnknown Role = "unknown"
)

func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "staff":
		return RoleStaff
	case "driver":
		return RoleDriver
	}
	return RoleUnknown
}

// Session is the authenticated state. A session without a token is logged
// out regardless of what else is populated.
type Session struct {
	Token       string  `json:"token"`
	Role        Role    `json:"role"`
	WarehouseID string  `json:"warehouseId"`
	Claims      *Claims `json:"claims,omitempty"`
}

// Authenticator is the slice of the gateway the store needs for login.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (gateway.LoginResult, error)
}

// Store owns the session lifecycle: login, restore at startup, logout, and
// implicit invalidation when the gateway reports unauthorized. It is an
// explicit dependency handed to collaborators, never ambient global state.
type Store struct {
	mu      sync.Mutex
	storage Storage
	logger  *zap.Logger
	current *Session
}

func NewStore(storage Storage, logger *zap.Logger) *Store {
	return &Store{storage: storage, logger: logger}
}

// Login resolves credentials through the gateway, enriches the session
// with best-effort decoded claims, and persists it before returning.
func (s *Store) Login(ctx context.Context, auth Authenticator, email, password string) (*Session, error) {
	result, err := auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		Token:       result.Token,
		Role:        ParseRole(result.Role),
		WarehouseID: result.WarehouseID,
		Claims:      DecodeClaims(result.Token),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Save(string(payload)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.logger.Info("Session established",
		zap.String("role", string(sess.Role)),
		zap.String("warehouse_id", sess.WarehouseID),
	)
	return sess, nil
}

// Restore rehydrates the persisted session. Absent, malformed, or
// tokenless records restore to nil.
func (s *Store) Restore() *Session {
	payload, found, err := s.storage.Load()
	if err != nil {
		s.logger.Warn("Failed to load persisted session", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil || sess.Token == "" {
		return nil
	}
	// Re-derive claims rather than trusting the stored copy.
	sess.Claims = DecodeClaims(sess.Token)

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	return &sess
}

// Logout clears both persisted and in-memory state. Idempotent.
func (s *Store) Logout() {
	if err := s.storage.Delete(); err != nil {
		s.logger.Warn("Failed to clear persisted session", zap.Error(err))
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns the active session, nil when logged out.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Token == "" {
		return nil
	}
	return s.current
}

// Token implements gateway.TokenSource.
func (s *Store) Token() string {
	if sess := s.Current(); sess != nil {
		return sess.Token
	}
	return ""
}

// Invalidate implements gateway.TokenSource: the gateway calls it when a
// request comes back unauthorized.
func (s *Store) Invalidate() {
	s.logger.Info("Session invalidated by unauthorized response")
	s.Logout()
}
