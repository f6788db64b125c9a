package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

type credentialStoreStub struct {
	staff       StaffUser
	byEmailErr  error
	byIDErr     error
	saved       []StaffUser
	saveErr     error
	missingByID bool
}

func (s *credentialStoreStub) GetStaffByEmail(ctx context.Context, orgID, email string) (StaffUser, error) {
	if s.byEmailErr != nil {
		return StaffUser{}, s.byEmailErr
	}
	if s.staff.Email != email {
		return StaffUser{}, ErrNotFound
	}
	return s.staff, nil
}

func (s *credentialStoreStub) GetStaffByID(ctx context.Context, id string) (StaffUser, error) {
	if s.byIDErr != nil {
		return StaffUser{}, s.byIDErr
	}
	if s.missingByID || s.staff.ID != id {
		return StaffUser{}, ErrNotFound
	}
	return s.staff, nil
}

func (s *credentialStoreStub) SaveLoginState(ctx context.Context, staff StaffUser) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, staff)
	s.staff = staff
	return nil
}

type sessionRepoStub struct {
	created    []Session
	createErr  error
	session    Session
	getErr     error
	revoked    []string
	revokeErr  error
	deleted    int
	deleteErr  error
	revokeMiss bool
}

func (s *sessionRepoStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.created = append(s.created, session)
	return session, nil
}

func (s *sessionRepoStub) GetSession(ctx context.Context, token string) (Session, error) {
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	if s.session.Token != token {
		return Session{}, ErrNotFound
	}
	return s.session, nil
}

func (s *sessionRepoStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error) {
	if s.revokeErr != nil {
		return Session{}, s.revokeErr
	}
	if s.revokeMiss {
		return Session{}, ErrNotFound
	}
	s.revoked = append(s.revoked, token)
	revoked := s.session
	revoked.RevokedAt = &revokedAt
	return revoked, nil
}

func (s *sessionRepoStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.deleted, nil
}

func passwordMatches(hash, password string) error {
	if hash == "hash:"+password {
		return nil
	}
	return ErrInvalidCredentials
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func validStaff() StaffUser {
	return StaffUser{
		ID:           "staff1",
		OrgID:        "org1",
		Email:        "pat@fieldops.test",
		DisplayName:  "Pat",
		Role:         RoleAdmin,
		PasswordHash: "hash:correct horse",
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("issues a session on valid credentials", func(t *testing.T) {
		t.Parallel()

		store := &credentialStoreStub{staff: validStaff()}
		sessions := &sessionRepoStub{}
		svc := NewAuthService(store, sessions, passwordMatches, func() string { return "id1" }, func() string { return "tok1" }, fixedClock(now), time.Hour)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{
			OrgID:    "org1",
			Email:    "Pat@FieldOps.Test",
			Password: "correct horse",
		})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if result.Session.Token != "tok1" {
			t.Errorf("expected token tok1, got %s", result.Session.Token)
		}
		if !result.Session.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Errorf("expected expiry %v, got %v", now.Add(time.Hour), result.Session.ExpiresAt)
		}
		if len(sessions.created) != 1 {
			t.Fatalf("expected 1 session persisted, got %d", len(sessions.created))
		}
	})

	t.Run("rejects a wrong password and records the failure", func(t *testing.T) {
		t.Parallel()

		store := &credentialStoreStub{staff: validStaff()}
		svc := NewAuthService(store, &sessionRepoStub{}, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			OrgID:    "org1",
			Email:    "pat@fieldops.test",
			Password: "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if len(store.saved) != 1 || store.saved[0].FailedAttempts != 1 {
			t.Errorf("expected failed attempt recorded, got %+v", store.saved)
		}
	})

	t.Run("locks out after repeated failures", func(t *testing.T) {
		t.Parallel()

		staff := validStaff()
		failedAt := now.Add(-time.Minute)
		staff.FailedAttempts = 5
		staff.LastFailedAt = &failedAt
		store := &credentialStoreStub{staff: staff}
		svc := NewAuthService(store, &sessionRepoStub{}, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			OrgID:    "org1",
			Email:    "pat@fieldops.test",
			Password: "correct horse",
		})
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled during lockout, got %v", err)
		}
	})

	t.Run("allows login again after the lockout window", func(t *testing.T) {
		t.Parallel()

		staff := validStaff()
		failedAt := now.Add(-time.Hour)
		staff.FailedAttempts = 5
		staff.LastFailedAt = &failedAt
		store := &credentialStoreStub{staff: staff}
		svc := NewAuthService(store, &sessionRepoStub{}, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{
			OrgID:    "org1",
			Email:    "pat@fieldops.test",
			Password: "correct horse",
		})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if result.Staff.ID != "staff1" {
			t.Errorf("expected staff1, got %s", result.Staff.ID)
		}
		// Counter resets on success.
		if len(store.saved) != 1 || store.saved[0].FailedAttempts != 0 {
			t.Errorf("expected failure counter reset, got %+v", store.saved)
		}
	})

	t.Run("rejects disabled accounts", func(t *testing.T) {
		t.Parallel()

		staff := validStaff()
		staff.Disabled = true
		store := &credentialStoreStub{staff: staff}
		svc := NewAuthService(store, &sessionRepoStub{}, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			OrgID:    "org1",
			Email:    "pat@fieldops.test",
			Password: "correct horse",
		})
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})

	t.Run("treats unknown accounts as invalid credentials", func(t *testing.T) {
		t.Parallel()

		store := &credentialStoreStub{staff: validStaff()}
		svc := NewAuthService(store, &sessionRepoStub{}, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			OrgID:    "org1",
			Email:    "nobody@fieldops.test",
			Password: "correct horse",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	newService := func(store *credentialStoreStub, sessions *sessionRepoStub) *AuthService {
		return NewAuthService(store, sessions, passwordMatches, nil, nil, fixedClock(now), time.Hour)
	}

	t.Run("returns the principal for a live session", func(t *testing.T) {
		t.Parallel()

		store := &credentialStoreStub{staff: validStaff()}
		sessions := &sessionRepoStub{session: Session{
			ID:        "sess1",
			StaffID:   "staff1",
			Token:     "tok1",
			ExpiresAt: now.Add(time.Hour),
		}}
		svc := newService(store, sessions)

		principal, err := svc.ValidateSession(context.Background(), "tok1")
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if principal.StaffID != "staff1" || principal.OrgID != "org1" || !principal.IsAdmin {
			t.Errorf("unexpected principal %+v", principal)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionRepoStub{session: Session{
			ID:        "sess1",
			StaffID:   "staff1",
			Token:     "tok1",
			ExpiresAt: now.Add(-time.Minute),
		}}
		svc := newService(&credentialStoreStub{staff: validStaff()}, sessions)

		_, err := svc.ValidateSession(context.Background(), "tok1")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		t.Parallel()

		revokedAt := now.Add(-time.Minute)
		sessions := &sessionRepoStub{session: Session{
			ID:        "sess1",
			StaffID:   "staff1",
			Token:     "tok1",
			ExpiresAt: now.Add(time.Hour),
			RevokedAt: &revokedAt,
		}}
		svc := newService(&credentialStoreStub{staff: validStaff()}, sessions)

		_, err := svc.ValidateSession(context.Background(), "tok1")
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		t.Parallel()

		svc := newService(&credentialStoreStub{staff: validStaff()}, &sessionRepoStub{})

		_, err := svc.ValidateSession(context.Background(), "no-such-token")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects a session whose account was disabled", func(t *testing.T) {
		t.Parallel()

		staff := validStaff()
		staff.Disabled = true
		sessions := &sessionRepoStub{session: Session{
			ID:        "sess1",
			StaffID:   "staff1",
			Token:     "tok1",
			ExpiresAt: now.Add(time.Hour),
		}}
		svc := newService(&credentialStoreStub{staff: staff}, sessions)

		_, err := svc.ValidateSession(context.Background(), "tok1")
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})
}

// The sqlite repositories are wired into the service unmapped, so their
// not-found sentinel must be treated exactly like the application one.
func TestAuthService_MapsStorageNotFound(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("unknown email authenticates as invalid credentials", func(t *testing.T) {
		t.Parallel()

		store := &credentialStoreStub{byEmailErr: persistence.ErrNotFound}
		svc := NewAuthService(store, &sessionRepoStub{}, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			OrgID:    "org1",
			Email:    "nobody@fieldops.test",
			Password: "correct horse",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown token validates as unauthorized", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionRepoStub{getErr: persistence.ErrNotFound}
		svc := NewAuthService(&credentialStoreStub{staff: validStaff()}, sessions, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		_, err := svc.ValidateSession(context.Background(), "garbage-token")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("session for a deleted account validates as unauthorized", func(t *testing.T) {
		t.Parallel()

		store := &credentialStoreStub{byIDErr: persistence.ErrNotFound}
		sessions := &sessionRepoStub{session: Session{
			ID:        "sess1",
			StaffID:   "staff1",
			Token:     "tok1",
			ExpiresAt: now.Add(time.Hour),
		}}
		svc := NewAuthService(store, sessions, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		_, err := svc.ValidateSession(context.Background(), "tok1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("revoking an unknown token maps to invalid credentials", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionRepoStub{revokeErr: persistence.ErrNotFound}
		svc := NewAuthService(&credentialStoreStub{}, sessions, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		err := svc.RevokeSession(context.Background(), "tok1")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("revokes a live session", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionRepoStub{session: Session{Token: "tok1"}}
		svc := NewAuthService(&credentialStoreStub{}, sessions, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		if err := svc.RevokeSession(context.Background(), "tok1"); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		if len(sessions.revoked) != 1 || sessions.revoked[0] != "tok1" {
			t.Errorf("expected tok1 revoked, got %v", sessions.revoked)
		}
	})

	t.Run("maps unknown tokens to invalid credentials", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionRepoStub{revokeMiss: true}
		svc := NewAuthService(&credentialStoreStub{}, sessions, passwordMatches, nil, nil, fixedClock(now), time.Hour)

		err := svc.RevokeSession(context.Background(), "tok1")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
