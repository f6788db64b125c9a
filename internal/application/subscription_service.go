package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
	"github.com/brandonecarr/doogoodscoopers-sub002/internal/schedule"
)

// SubscriptionRepository captures the persistence operations needed by the service.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub Subscription) error
	UpdateSubscription(ctx context.Context, sub Subscription) error
	GetSubscription(ctx context.Context, orgID, id string) (Subscription, error)
	ListSubscriptions(ctx context.Context, orgID string, clientID, status string) ([]Subscription, error)
	SetNextServiceDate(ctx context.Context, orgID, id string, next *time.Time) error
}

// ClientDirectory resolves client and location references during validation.
type ClientDirectory interface {
	GetClient(ctx context.Context, orgID, id string) (Client, error)
	GetLocation(ctx context.Context, orgID, id string) (Location, error)
}

// JobSynchronizer regenerates the forward job window for a subscription.
type JobSynchronizer interface {
	Regenerate(ctx context.Context, sub schedule.Subscription, orgID string, horizonDays int) (int, error)
}

// JobCalendar answers schedule-derived questions about persisted jobs.
type JobCalendar interface {
	EarliestScheduledDate(ctx context.Context, orgID, subscriptionID string) (*time.Time, error)
}

// SubscriptionService owns the lifecycle of recurring-service agreements and
// keeps their job windows in sync.
type SubscriptionService struct {
	subscriptions SubscriptionRepository
	directory     ClientDirectory
	synchronizer  JobSynchronizer
	calendar      JobCalendar
	horizonDays   int
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewSubscriptionService constructs a subscription service with the provided dependencies.
func NewSubscriptionService(subscriptions SubscriptionRepository, directory ClientDirectory, synchronizer JobSynchronizer, calendar JobCalendar, horizonDays int, idGenerator func() string, now func() time.Time) *SubscriptionService {
	return NewSubscriptionServiceWithLogger(subscriptions, directory, synchronizer, calendar, horizonDays, idGenerator, now, nil)
}

// NewSubscriptionServiceWithLogger constructs a subscription service with a specified logger.
func NewSubscriptionServiceWithLogger(subscriptions SubscriptionRepository, directory ClientDirectory, synchronizer JobSynchronizer, calendar JobCalendar, horizonDays int, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SubscriptionService {
	if horizonDays <= 0 {
		horizonDays = schedule.DefaultHorizonDays
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SubscriptionService{
		subscriptions: subscriptions,
		directory:     directory,
		synchronizer:  synchronizer,
		calendar:      calendar,
		horizonDays:   horizonDays,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *SubscriptionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SubscriptionService", operation, attrs...)
}

// CreateSubscription validates input, persists the agreement, and generates
// the initial job window.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (result SubscriptionResult, err error) {
	if s == nil {
		err = fmt.Errorf("SubscriptionService is nil")
		return
	}
	if s.subscriptions == nil {
		err = fmt.Errorf("subscription repository not configured")
		return
	}

	principal := params.Principal
	logger := s.loggerWith(ctx, "CreateSubscription",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create subscription", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"subscription_id", result.Subscription.ID,
			"jobs_generated", result.JobsGenerated,
		).InfoContext(ctx, "subscription created")
	}()

	vErr := s.validateSubscriptionInput(ctx, principal.OrgID, params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var frequency string
	frequency, err = normalizeFrequency(params.Input.Frequency)
	if err != nil {
		return
	}

	now := s.now()
	sub := Subscription{
		ID:               s.idGenerator(),
		OrgID:            principal.OrgID,
		ClientID:         params.Input.ClientID,
		LocationID:       params.Input.LocationID,
		Status:           SubscriptionActive,
		Frequency:        frequency,
		PreferredWeekday: params.Input.PreferredWeekday,
		PriceCents:       params.Input.PriceCents,
		StartDate:        schedule.DateOf(params.Input.StartDate),
		EndDate:          normalizeOptionalDate(params.Input.EndDate),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err = s.subscriptions.CreateSubscription(ctx, sub); err != nil {
		err = mapSubscriptionRepoError(err)
		return
	}

	var generated int
	generated, err = s.regenerate(ctx, logger, sub)
	if err != nil {
		return
	}

	result = SubscriptionResult{Subscription: sub, JobsGenerated: generated}
	return
}

// UpdateSubscription applies changes and regenerates the job window when a
// schedule-relevant field changed.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) (result SubscriptionResult, err error) {
	if s == nil {
		err = fmt.Errorf("SubscriptionService is nil")
		return
	}
	if s.subscriptions == nil {
		err = fmt.Errorf("subscription repository not configured")
		return
	}

	principal := params.Principal
	logger := s.loggerWith(ctx, "UpdateSubscription",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"subscription_id", params.SubscriptionID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update subscription", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("jobs_generated", result.JobsGenerated).InfoContext(ctx, "subscription updated")
	}()

	var existing Subscription
	existing, err = s.subscriptions.GetSubscription(ctx, principal.OrgID, params.SubscriptionID)
	if err != nil {
		err = mapSubscriptionRepoError(err)
		return
	}

	vErr := s.validateSubscriptionInput(ctx, principal.OrgID, params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if params.Input.ClientID != existing.ClientID || params.Input.LocationID != existing.LocationID {
		vErr := &ValidationError{}
		vErr.add("client_id", "client and location cannot change after creation")
		err = vErr
		return
	}

	var frequency string
	frequency, err = normalizeFrequency(params.Input.Frequency)
	if err != nil {
		return
	}

	updated := existing
	updated.Frequency = frequency
	updated.PreferredWeekday = params.Input.PreferredWeekday
	updated.PriceCents = params.Input.PriceCents
	updated.StartDate = schedule.DateOf(params.Input.StartDate)
	updated.EndDate = normalizeOptionalDate(params.Input.EndDate)
	updated.UpdatedAt = s.now()

	if err = s.subscriptions.UpdateSubscription(ctx, updated); err != nil {
		err = mapSubscriptionRepoError(err)
		return
	}

	generated := 0
	if updated.Status == SubscriptionActive && scheduleChanged(existing, updated) {
		generated, err = s.regenerate(ctx, logger, updated)
		if err != nil {
			return
		}
	}

	result = SubscriptionResult{Subscription: updated, JobsGenerated: generated}
	return
}

// PauseSubscription stops future generation without touching existing jobs.
func (s *SubscriptionService) PauseSubscription(ctx context.Context, principal Principal, subscriptionID string) (Subscription, error) {
	return s.transition(ctx, principal, subscriptionID, "PauseSubscription", SubscriptionActive, SubscriptionPaused)
}

// ResumeSubscription reactivates a paused agreement and tops up its window.
func (s *SubscriptionService) ResumeSubscription(ctx context.Context, principal Principal, subscriptionID string) (result SubscriptionResult, err error) {
	var sub Subscription
	sub, err = s.transition(ctx, principal, subscriptionID, "ResumeSubscription", SubscriptionPaused, SubscriptionActive)
	if err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ResumeSubscription",
		"org_id", principal.OrgID,
		"subscription_id", subscriptionID,
	)
	var generated int
	generated, err = s.regenerate(ctx, logger, sub)
	if err != nil {
		return
	}

	result = SubscriptionResult{Subscription: sub, JobsGenerated: generated}
	return
}

// CancelSubscription ends the agreement. Already-generated jobs stay and
// must be cancelled individually if the org does not intend to serve them.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, principal Principal, subscriptionID string) (Subscription, error) {
	if s == nil {
		return Subscription{}, fmt.Errorf("SubscriptionService is nil")
	}
	if s.subscriptions == nil {
		return Subscription{}, fmt.Errorf("subscription repository not configured")
	}

	logger := s.loggerWith(ctx, "CancelSubscription",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"subscription_id", subscriptionID,
	)

	sub, err := s.subscriptions.GetSubscription(ctx, principal.OrgID, subscriptionID)
	if err != nil {
		err = mapSubscriptionRepoError(err)
		logger.ErrorContext(ctx, "failed to cancel subscription", "error", err, "error_kind", ErrorKind(err))
		return Subscription{}, err
	}
	if sub.Status == SubscriptionCanceled {
		return sub, nil
	}

	sub.Status = SubscriptionCanceled
	sub.UpdatedAt = s.now()
	if err := s.subscriptions.UpdateSubscription(ctx, sub); err != nil {
		err = mapSubscriptionRepoError(err)
		logger.ErrorContext(ctx, "failed to cancel subscription", "error", err, "error_kind", ErrorKind(err))
		return Subscription{}, err
	}

	logger.InfoContext(ctx, "subscription canceled")
	return sub, nil
}

// GetSubscription returns a single subscription scoped to the organization.
func (s *SubscriptionService) GetSubscription(ctx context.Context, principal Principal, subscriptionID string) (Subscription, error) {
	if s == nil {
		return Subscription{}, fmt.Errorf("SubscriptionService is nil")
	}
	if s.subscriptions == nil {
		return Subscription{}, fmt.Errorf("subscription repository not configured")
	}

	sub, err := s.subscriptions.GetSubscription(ctx, principal.OrgID, subscriptionID)
	if err != nil {
		return Subscription{}, mapSubscriptionRepoError(err)
	}
	return sub, nil
}

// ListSubscriptions returns subscriptions in the organization, optionally
// filtered by client or status.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, principal Principal, clientID, status string) ([]Subscription, error) {
	if s == nil {
		return nil, fmt.Errorf("SubscriptionService is nil")
	}
	if s.subscriptions == nil {
		return nil, nil
	}

	subs, err := s.subscriptions.ListSubscriptions(ctx, principal.OrgID, clientID, strings.ToUpper(strings.TrimSpace(status)))
	if err != nil {
		return nil, mapSubscriptionRepoError(err)
	}
	return subs, nil
}

// RegenerateJobs is the admin override: force a top-up with an explicit
// horizon, regardless of whether anything changed.
func (s *SubscriptionService) RegenerateJobs(ctx context.Context, principal Principal, subscriptionID string, horizonDays int) (generated int, err error) {
	if s == nil {
		err = fmt.Errorf("SubscriptionService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.subscriptions == nil {
		err = fmt.Errorf("subscription repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "RegenerateJobs",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"subscription_id", subscriptionID,
		"horizon_days", horizonDays,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to regenerate jobs", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("jobs_generated", generated).InfoContext(ctx, "jobs regenerated")
	}()

	var sub Subscription
	sub, err = s.subscriptions.GetSubscription(ctx, principal.OrgID, subscriptionID)
	if err != nil {
		err = mapSubscriptionRepoError(err)
		return
	}
	if sub.Status != SubscriptionActive {
		vErr := &ValidationError{}
		vErr.add("status", "only active subscriptions can be regenerated")
		err = vErr
		return
	}

	if horizonDays <= 0 {
		horizonDays = s.horizonDays
	}
	generated, err = s.regenerateWithHorizon(ctx, logger, sub, horizonDays)
	return
}

// TopUp regenerates an active subscription with the service's configured
// horizon. The nightly worker sweep calls this per subscription.
func (s *SubscriptionService) TopUp(ctx context.Context, sub Subscription) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("SubscriptionService is nil")
	}
	if sub.Status != SubscriptionActive {
		return 0, nil
	}

	logger := s.loggerWith(ctx, "TopUp",
		"org_id", sub.OrgID,
		"subscription_id", sub.ID,
	)
	return s.regenerate(ctx, logger, sub)
}

func (s *SubscriptionService) transition(ctx context.Context, principal Principal, subscriptionID, operation, from, to string) (Subscription, error) {
	if s == nil {
		return Subscription{}, fmt.Errorf("SubscriptionService is nil")
	}
	if s.subscriptions == nil {
		return Subscription{}, fmt.Errorf("subscription repository not configured")
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"subscription_id", subscriptionID,
	)

	sub, err := s.subscriptions.GetSubscription(ctx, principal.OrgID, subscriptionID)
	if err != nil {
		err = mapSubscriptionRepoError(err)
		logger.ErrorContext(ctx, "subscription transition failed", "error", err, "error_kind", ErrorKind(err))
		return Subscription{}, err
	}
	if sub.Status != from {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("subscription must be %s, is %s", from, sub.Status))
		logger.ErrorContext(ctx, "subscription transition failed", "error", vErr, "error_kind", ErrorKind(vErr))
		return Subscription{}, vErr
	}

	sub.Status = to
	sub.UpdatedAt = s.now()
	if err := s.subscriptions.UpdateSubscription(ctx, sub); err != nil {
		err = mapSubscriptionRepoError(err)
		logger.ErrorContext(ctx, "subscription transition failed", "error", err, "error_kind", ErrorKind(err))
		return Subscription{}, err
	}

	logger.With("status", to).InfoContext(ctx, "subscription transitioned")
	return sub, nil
}

func (s *SubscriptionService) regenerate(ctx context.Context, logger *slog.Logger, sub Subscription) (int, error) {
	return s.regenerateWithHorizon(ctx, logger, sub, s.horizonDays)
}

func (s *SubscriptionService) regenerateWithHorizon(ctx context.Context, logger *slog.Logger, sub Subscription, horizonDays int) (int, error) {
	if s.synchronizer == nil {
		return 0, nil
	}

	snapshot, err := subscriptionSnapshot(sub)
	if err != nil {
		return 0, err
	}

	generated, err := s.synchronizer.Regenerate(ctx, snapshot, sub.OrgID, horizonDays)
	if err != nil {
		return 0, err
	}

	if err := s.refreshNextServiceDate(ctx, sub); err != nil {
		logger.ErrorContext(ctx, "failed to refresh next service date", "error", err)
	}

	return generated, nil
}

// refreshNextServiceDate re-derives the cached next-service-date from the
// earliest remaining SCHEDULED job.
func (s *SubscriptionService) refreshNextServiceDate(ctx context.Context, sub Subscription) error {
	if s.calendar == nil {
		return nil
	}

	next, err := s.calendar.EarliestScheduledDate(ctx, sub.OrgID, sub.ID)
	if err != nil {
		return err
	}
	return s.subscriptions.SetNextServiceDate(ctx, sub.OrgID, sub.ID, next)
}

func (s *SubscriptionService) validateSubscriptionInput(ctx context.Context, orgID string, input SubscriptionInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.ClientID) == "" {
		vErr.add("client_id", "client is required")
	}
	if strings.TrimSpace(input.LocationID) == "" {
		vErr.add("location_id", "location is required")
	}

	// Unsupported frequencies fail here; there is no fallback cadence.
	if _, err := schedule.ParseFrequency(input.Frequency); err != nil {
		vErr.add("frequency", fmt.Sprintf("unsupported frequency %q", input.Frequency))
	}

	if input.PreferredWeekday != nil && (*input.PreferredWeekday < 0 || *input.PreferredWeekday > 6) {
		vErr.add("preferred_weekday", "preferred weekday must be between 0 (Sunday) and 6 (Saturday)")
	}
	if input.PriceCents < 0 {
		vErr.add("price_cents", "price must not be negative")
	}
	if input.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	}
	if input.EndDate != nil && !input.StartDate.IsZero() && input.EndDate.Before(input.StartDate) {
		vErr.add("end_date", "end date must not precede start date")
	}

	if s.directory != nil && !vErr.HasErrors() {
		if _, err := s.directory.GetClient(ctx, orgID, input.ClientID); err != nil {
			vErr.add("client_id", "client not found")
		} else if location, err := s.directory.GetLocation(ctx, orgID, input.LocationID); err != nil {
			vErr.add("location_id", "location not found")
		} else if location.ClientID != input.ClientID {
			vErr.add("location_id", "location does not belong to the client")
		}
	}

	return vErr
}

// scheduleChanged reports whether the update touched a field that drives
// job generation.
func scheduleChanged(before, after Subscription) bool {
	if before.Frequency != after.Frequency {
		return true
	}
	if !before.StartDate.Equal(after.StartDate) {
		return true
	}
	if before.PriceCents != after.PriceCents {
		return true
	}
	if (before.PreferredWeekday == nil) != (after.PreferredWeekday == nil) {
		return true
	}
	if before.PreferredWeekday != nil && *before.PreferredWeekday != *after.PreferredWeekday {
		return true
	}
	if (before.EndDate == nil) != (after.EndDate == nil) {
		return true
	}
	if before.EndDate != nil && !before.EndDate.Equal(*after.EndDate) {
		return true
	}
	return false
}

func subscriptionSnapshot(sub Subscription) (schedule.Subscription, error) {
	freq, err := schedule.ParseFrequency(sub.Frequency)
	if err != nil {
		return schedule.Subscription{}, err
	}

	var weekday *time.Weekday
	if sub.PreferredWeekday != nil {
		wd := time.Weekday(*sub.PreferredWeekday)
		weekday = &wd
	}

	return schedule.Subscription{
		ID:               sub.ID,
		OrgID:            sub.OrgID,
		ClientID:         sub.ClientID,
		LocationID:       sub.LocationID,
		Frequency:        freq,
		PreferredWeekday: weekday,
		PriceCents:       sub.PriceCents,
		StartDate:        sub.StartDate,
		EndDate:          sub.EndDate,
	}, nil
}

// normalizeFrequency canonicalizes a frequency code. Unsupported codes are
// an error; there is no fallback cadence.
func normalizeFrequency(raw string) (string, error) {
	freq, err := schedule.ParseFrequency(raw)
	if err != nil {
		return "", err
	}
	return string(freq), nil
}

func normalizeOptionalDate(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	normalized := schedule.DateOf(*value)
	return &normalized
}

func mapSubscriptionRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "referenced client or location does not exist")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "input violates a storage constraint")
		return vErr
	}
	return err
}
