package session

import (
	"context"
	"delivery-tracking-client/gateway"
	"errors"
	"go.uber.org/zap"
	"testing"
)

type memStorage struct {
	payload string
	found   bool
	loadErr error
}

func (m *memStorage) Load() (string, bool, error) {
	return m.payload, m.found, m.loadErr
}

func (m *memStorage) Save(payload string) error {
	m.payload = payload
	m.found = true
	return nil
}

func (m *memStorage) Delete() error {
	m.payload = ""
	m.found = false
	return nil
}

type fakeAuth struct {
	result gateway.LoginResult
	err    error
}

func (a *fakeAuth) Login(context.Context, string, string) (gateway.LoginResult, error) {
	return a.result, a.err
}

func TestStoreLoginPersistsAndRestores(t *testing.T) {
	storage := &memStorage{}
	store := NewStore(storage, zap.NewNop())
	auth := &fakeAuth{result: gateway.LoginResult{
		Token:       tokenWithPayload(`{"userId":"u-9","email":"d@x.test"}`),
		Role:        "driver",
		WarehouseID: "WH-1",
	}}

	sess, err := store.Login(context.Background(), auth, "d@x.test", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.Role != RoleDriver {
		t.Errorf("Role = %q, want driver", sess.Role)
	}
	if sess.Claims == nil || sess.Claims.UserID != "u-9" {
		t.Errorf("Claims = %+v, want userId u-9", sess.Claims)
	}

	// A fresh store over the same storage restores the identical token.
	restored := NewStore(storage, zap.NewNop()).Restore()
	if restored == nil {
		t.Fatal("Restore() = nil after login")
	}
	if restored.Token != sess.Token {
		t.Errorf("restored token %q != original %q", restored.Token, sess.Token)
	}
	if restored.WarehouseID != "WH-1" {
		t.Errorf("restored warehouseId = %q, want WH-1", restored.WarehouseID)
	}
}

func TestStoreLoginFailure(t *testing.T) {
	storage := &memStorage{}
	store := NewStore(storage, zap.NewNop())
	auth := &fakeAuth{err: &gateway.AuthError{Err: errors.New("bad credentials")}}

	if _, err := store.Login(context.Background(), auth, "x", "y"); err == nil {
		t.Fatal("Login() succeeded against a refusing authenticator")
	}
	if store.Current() != nil {
		t.Error("Current() non-nil after failed login")
	}
	if storage.found {
		t.Error("failed login persisted a session")
	}
}

func TestStoreLogoutIdempotent(t *testing.T) {
	storage := &memStorage{}
	store := NewStore(storage, zap.NewNop())
	auth := &fakeAuth{result: gateway.LoginResult{Token: "t.t.t", Role: "staff"}}

	if _, err := store.Login(context.Background(), auth, "s@x.test", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	store.Logout()
	if store.Current() != nil {
		t.Fatal("Current() non-nil after logout")
	}

	// Second logout is a no-op, not an error.
	store.Logout()
	if store.Current() != nil {
		t.Fatal("Current() non-nil after double logout")
	}
	if store.Restore() != nil {
		t.Error("Restore() recovered a session after logout")
	}
}

func TestStoreRestoreRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		storage *memStorage
	}{
		{"absent", &memStorage{}},
		{"malformed json", &memStorage{payload: "{not json", found: true}},
		{"missing token", &memStorage{payload: `{"role":"driver"}`, found: true}},
		{"load error", &memStorage{loadErr: errors.New("disk gone")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(tt.storage, zap.NewNop())
			if got := store.Restore(); got != nil {
				t.Errorf("Restore() = %+v, want nil", got)
			}
			if store.Token() != "" {
				t.Errorf("Token() = %q, want empty", store.Token())
			}
		})
	}
}

func TestStoreInvalidateClearsSession(t *testing.T) {
	storage := &memStorage{}
	store := NewStore(storage, zap.NewNop())
	auth := &fakeAuth{result: gateway.LoginResult{Token: "t.t.t", Role: "driver"}}

	if _, err := store.Login(context.Background(), auth, "d@x.test", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if store.Token() == "" {
		t.Fatal("Token() empty after login")
	}

	store.Invalidate()
	if store.Token() != "" {
		t.Error("Token() non-empty after invalidation")
	}
	if storage.found {
		t.Error("persisted session survived invalidation")
	}
}
