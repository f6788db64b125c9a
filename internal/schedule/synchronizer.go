package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultHorizonDays is the forward window used when callers do not request
// an explicit horizon. Subscription create/update call sites use it.
const DefaultHorizonDays = 14

// ErrPersistence wraps any failure reported by the job store. The
// synchronizer never retries; retry and backoff policy belong to the caller.
var ErrPersistence = errors.New("schedule: persistence failure")

// Subscription is the snapshot of subscription state regeneration consumes.
// The synchronizer trusts the organization scoping of the snapshot; tenant
// validation happens before it is invoked.
type Subscription struct {
	ID               string
	OrgID            string
	ClientID         string
	LocationID       string
	Frequency        Frequency
	PreferredWeekday *time.Weekday
	PriceCents       int
	StartDate        time.Time
	EndDate          *time.Time
}

// Job is one planned service visit produced by regeneration. Price is a
// snapshot of the subscription's per-visit price at creation time and is
// never recomputed retroactively.
type Job struct {
	ID             string
	OrgID          string
	ClientID       string
	LocationID     string
	SubscriptionID string
	ScheduledDate  time.Time
	PriceCents     int
}

// JobStore is the persistence collaborator for regeneration.
//
// ScheduledDates returns the dates of jobs for the subscription within
// [from, to) whose status still permits reconciliation (SCHEDULED only).
// An empty result is not an error; only connectivity or query failures are.
//
// InsertJobs persists new jobs with status SCHEDULED and reports how many
// rows were actually created. Implementations must treat a duplicate
// (subscription, scheduled date) insert as already-present rather than a
// failure, which is what makes concurrent regeneration safe.
type JobStore interface {
	ScheduledDates(ctx context.Context, orgID, subscriptionID string, from, to time.Time) ([]time.Time, error)
	InsertJobs(ctx context.Context, jobs []Job) (int, error)
}

// Synchronizer reconciles a subscription's intended schedule against the
// jobs already persisted for it.
type Synchronizer struct {
	store       JobStore
	idGenerator func() string
	now         func() time.Time
}

// NewSynchronizer wires the job store with injectable id and time sources.
func NewSynchronizer(store JobStore, idGenerator func() string, now func() time.Time) *Synchronizer {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &Synchronizer{store: store, idGenerator: idGenerator, now: now}
}

// Regenerate tops up the subscription's future jobs within the horizon and
// returns the number of jobs created, for the caller's activity log.
//
// Dates are generated from the subscription's start so the cadence anchor
// never drifts, then clipped to [today, today+horizonDays) and the
// subscription's end date. Dates already represented by a SCHEDULED job are
// skipped. Jobs that are in progress or terminal are invisible here and are
// never mutated. Orphaned SCHEDULED jobs no longer implied by the cadence
// (after a frequency change) are deliberately left in place: a planned
// visit is only removed by explicit administrative action.
//
// Calling Regenerate twice with no intervening state change creates zero
// jobs on the second call.
func (s *Synchronizer) Regenerate(ctx context.Context, sub Subscription, orgID string, horizonDays int) (int, error) {
	if s == nil || s.store == nil {
		return 0, fmt.Errorf("schedule: synchronizer not configured")
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	if sub.ID == "" || orgID == "" || sub.StartDate.IsZero() {
		return 0, ErrInvalidScheduleParameters
	}

	today := DateOf(s.now())
	windowEnd := today.AddDate(0, 0, horizonDays)

	start := DateOf(sub.StartDate)
	spanDays := int(windowEnd.Sub(start).Hours() / 24)
	if spanDays <= 0 {
		// Subscription starts beyond the horizon; nothing to create yet.
		return 0, nil
	}

	generated, err := Generate(start, sub.Frequency, sub.PreferredWeekday, HorizonDays(spanDays))
	if err != nil {
		return 0, err
	}

	wanted := make([]time.Time, 0, len(generated))
	for _, date := range generated {
		if date.Before(today) {
			continue
		}
		if sub.EndDate != nil && date.After(DateOf(*sub.EndDate)) {
			continue
		}
		wanted = append(wanted, date)
	}
	if len(wanted) == 0 {
		return 0, nil
	}

	existing, err := s.store.ScheduledDates(ctx, orgID, sub.ID, today, windowEnd)
	if err != nil {
		return 0, errors.Join(ErrPersistence, err)
	}

	present := make(map[time.Time]struct{}, len(existing))
	for _, date := range existing {
		present[DateOf(date)] = struct{}{}
	}

	jobs := make([]Job, 0, len(wanted))
	for _, date := range wanted {
		if _, ok := present[date]; ok {
			continue
		}
		jobs = append(jobs, Job{
			ID:             s.idGenerator(),
			OrgID:          orgID,
			ClientID:       sub.ClientID,
			LocationID:     sub.LocationID,
			SubscriptionID: sub.ID,
			ScheduledDate:  date,
			PriceCents:     sub.PriceCents,
		})
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	created, err := s.store.InsertJobs(ctx, jobs)
	if err != nil {
		return 0, errors.Join(ErrPersistence, err)
	}

	return created, nil
}
