package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// CredentialStore exposes the staff lookups required by the auth service.
type CredentialStore interface {
	GetStaffByEmail(ctx context.Context, orgID, email string) (StaffUser, error)
	GetStaffByID(ctx context.Context, id string) (StaffUser, error)
	SaveLoginState(ctx context.Context, staff StaffUser) error
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error)
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

const (
	maxFailedAttempts = 5
	lockoutWindow     = 15 * time.Minute
)

// AuthService coordinates login, session validation, and revocation.
type AuthService struct {
	credentials    CredentialStore
	sessions       SessionRepository
	verifyPassword PasswordVerifier
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, sessions SessionRepository, verify PasswordVerifier, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, verify, idGenerator, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, sessions SessionRepository, verify PasswordVerifier, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = idGenerator
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		verifyPassword: verify,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates credentials and issues a new session token. Five
// consecutive failures lock the account for the lockout window.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	password := params.Password

	logger := s.loggerWith(ctx, "Authenticate",
		"email", email,
		"org_id", params.OrgID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"staff_id", result.Staff.ID,
			"session_id", result.Session.ID,
		).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	var staff StaffUser
	staff, err = s.credentials.GetStaffByEmail(ctx, params.OrgID, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		return
	}

	now := s.now()
	if staff.Disabled {
		err = ErrAccountDisabled
		return
	}
	if staff.FailedAttempts >= maxFailedAttempts &&
		staff.LastFailedAt != nil && now.Sub(*staff.LastFailedAt) < lockoutWindow {
		err = ErrAccountDisabled
		return
	}

	if verifyErr := s.verifyPassword(staff.PasswordHash, password); verifyErr != nil {
		staff.FailedAttempts++
		staff.LastFailedAt = &now
		if saveErr := s.credentials.SaveLoginState(ctx, staff); saveErr != nil {
			logger.ErrorContext(ctx, "failed to record login failure", "error", saveErr)
		}
		err = ErrInvalidCredentials
		return
	}

	if staff.FailedAttempts > 0 {
		staff.FailedAttempts = 0
		staff.LastFailedAt = nil
		if saveErr := s.credentials.SaveLoginState(ctx, staff); saveErr != nil {
			logger.ErrorContext(ctx, "failed to reset login failures", "error", saveErr)
		}
	}

	session := Session{
		ID:        s.idGenerator(),
		StaffID:   staff.ID,
		Token:     s.tokenGenerator(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if session.Token == "" {
		session.Token = session.ID
	}

	if s.sessions != nil {
		if _, pruneErr := s.sessions.DeleteExpiredSessions(ctx, now); pruneErr != nil {
			logger.ErrorContext(ctx, "failed to prune expired sessions", "error", pruneErr)
		}

		var persisted Session
		persisted, err = s.sessions.CreateSession(ctx, session)
		if err != nil {
			return
		}
		session = persisted
	}

	result = AuthenticateResult{Staff: staff, Session: session}
	return
}

// ValidateSession verifies the token corresponds to a live session and
// returns the acting principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	var staff StaffUser
	staff, err = s.credentials.GetStaffByID(ctx, session.StaffID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}
	if staff.Disabled {
		err = ErrAccountDisabled
		return
	}

	principal = Principal{StaffID: staff.ID, OrgID: staff.OrgID, IsAdmin: staff.Role == RoleAdmin}
	return
}

// RevokeSession invalidates an existing session token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", trimmed != "")

	if _, err := s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			logger.ErrorContext(ctx, "failed to revoke session", "error", ErrInvalidCredentials, "error_kind", ErrorKind(ErrInvalidCredentials))
			return ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "session revoked")
	return nil
}

// PruneExpiredSessions removes sessions past their expiry and reports how
// many were deleted. The background worker calls this nightly.
func (s *AuthService) PruneExpiredSessions(ctx context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return 0, fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "PruneExpiredSessions")

	deleted, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return 0, err
	}

	if deleted > 0 {
		logger.With("deleted", deleted).InfoContext(ctx, "expired sessions pruned")
	}
	return deleted, nil
}
