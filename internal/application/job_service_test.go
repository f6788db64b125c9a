package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type jobRepoStub struct {
	inserted  []Job
	insertErr error

	updated   []Job
	updateErr error

	job    Job
	getErr error

	jobs    []Job
	listErr error
}

func (s *jobRepoStub) InsertJobs(ctx context.Context, jobs []Job) (int, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, jobs...)
	return len(jobs), nil
}

func (s *jobRepoStub) UpdateJob(ctx context.Context, job Job) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, job)
	s.job = job
	return nil
}

func (s *jobRepoStub) GetJob(ctx context.Context, orgID, id string) (Job, error) {
	if s.getErr != nil {
		return Job{}, s.getErr
	}
	if s.job.ID != id || s.job.OrgID != orgID {
		return Job{}, ErrNotFound
	}
	return s.job, nil
}

func (s *jobRepoStub) ListJobs(ctx context.Context, orgID string, filter JobListFilter) ([]Job, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.jobs, nil
}

type staffDirectoryStub struct {
	staff StaffUser
	err   error
}

func (s *staffDirectoryStub) GetStaff(ctx context.Context, orgID, id string) (StaffUser, error) {
	if s.err != nil {
		return StaffUser{}, s.err
	}
	if s.staff.ID != id {
		return StaffUser{}, ErrNotFound
	}
	return s.staff, nil
}

func scheduledJob() Job {
	return Job{
		ID:            "job1",
		OrgID:         "org1",
		ClientID:      "client1",
		LocationID:    "loc1",
		ScheduledDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Status:        JobScheduled,
		PriceCents:    2500,
	}
}

func TestJobService_CreateOneOff(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

	t.Run("creates a scheduled visit with a normalized date", func(t *testing.T) {
		t.Parallel()

		repo := &jobRepoStub{}
		svc := NewJobService(repo, nil, validDirectory(), func() string { return "job1" }, fixedClock(now))

		job, err := svc.CreateOneOff(context.Background(), adminPrincipal(), OneOffJobInput{
			ClientID:      "client1",
			LocationID:    "loc1",
			ScheduledDate: time.Date(2025, 1, 10, 15, 30, 0, 0, time.UTC),
			PriceCents:    4000,
		})
		if err != nil {
			t.Fatalf("CreateOneOff failed: %v", err)
		}
		if job.Status != JobScheduled {
			t.Errorf("expected SCHEDULED, got %s", job.Status)
		}
		want := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		if !job.ScheduledDate.Equal(want) {
			t.Errorf("expected date truncated to %v, got %v", want, job.ScheduledDate)
		}
		if job.SubscriptionID != nil {
			t.Errorf("one-off job must not carry a subscription, got %v", job.SubscriptionID)
		}
		if len(repo.inserted) != 1 {
			t.Fatalf("expected 1 job persisted, got %d", len(repo.inserted))
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		t.Parallel()

		svc := NewJobService(&jobRepoStub{}, nil, nil, nil, fixedClock(now))

		_, err := svc.CreateOneOff(context.Background(), adminPrincipal(), OneOffJobInput{PriceCents: -1})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"client_id", "location_id", "scheduled_date", "price_cents"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected %s field error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects a location owned by another client", func(t *testing.T) {
		t.Parallel()

		directory := validDirectory()
		directory.location.ClientID = "someone-else"
		svc := NewJobService(&jobRepoStub{}, nil, directory, nil, fixedClock(now))

		_, err := svc.CreateOneOff(context.Background(), adminPrincipal(), OneOffJobInput{
			ClientID:      "client1",
			LocationID:    "loc1",
			ScheduledDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["location_id"]; !ok {
			t.Errorf("expected location_id field error, got %v", vErr.FieldErrors)
		}
	})
}

func TestJobService_AssignJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

	t.Run("assigns a tech to a scheduled job", func(t *testing.T) {
		t.Parallel()

		repo := &jobRepoStub{job: scheduledJob()}
		staff := &staffDirectoryStub{staff: StaffUser{ID: "tech1", OrgID: "org1", Role: RoleTech}}
		svc := NewJobService(repo, staff, nil, nil, fixedClock(now))

		job, err := svc.AssignJob(context.Background(), adminPrincipal(), "job1", "tech1")
		if err != nil {
			t.Fatalf("AssignJob failed: %v", err)
		}
		if job.AssignedTechID == nil || *job.AssignedTechID != "tech1" {
			t.Errorf("expected tech1 assigned, got %v", job.AssignedTechID)
		}
	})

	t.Run("rejects an unknown tech", func(t *testing.T) {
		t.Parallel()

		repo := &jobRepoStub{job: scheduledJob()}
		svc := NewJobService(repo, &staffDirectoryStub{}, nil, nil, fixedClock(now))

		_, err := svc.AssignJob(context.Background(), adminPrincipal(), "job1", "ghost")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(repo.updated) != 0 {
			t.Errorf("expected no update, got %d", len(repo.updated))
		}
	})

	t.Run("rejects assignment once the job left SCHEDULED", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob()
		job.Status = JobCompleted
		svc := NewJobService(&jobRepoStub{job: job}, &staffDirectoryStub{}, nil, nil, fixedClock(now))

		_, err := svc.AssignJob(context.Background(), adminPrincipal(), "job1", "tech1")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestJobService_Transitions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

	t.Run("start then complete stamps the completion time", func(t *testing.T) {
		t.Parallel()

		repo := &jobRepoStub{job: scheduledJob()}
		svc := NewJobService(repo, nil, nil, nil, fixedClock(now))

		started, err := svc.StartJob(context.Background(), adminPrincipal(), "job1")
		if err != nil {
			t.Fatalf("StartJob failed: %v", err)
		}
		if started.Status != JobInProgress {
			t.Errorf("expected IN_PROGRESS, got %s", started.Status)
		}

		completed, err := svc.CompleteJob(context.Background(), adminPrincipal(), "job1")
		if err != nil {
			t.Fatalf("CompleteJob failed: %v", err)
		}
		if completed.Status != JobCompleted {
			t.Errorf("expected COMPLETED, got %s", completed.Status)
		}
		if completed.CompletedAt == nil || !completed.CompletedAt.Equal(now) {
			t.Errorf("expected completion stamped at %v, got %v", now, completed.CompletedAt)
		}
	})

	t.Run("completing a scheduled job is rejected", func(t *testing.T) {
		t.Parallel()

		svc := NewJobService(&jobRepoStub{job: scheduledJob()}, nil, nil, nil, fixedClock(now))

		_, err := svc.CompleteJob(context.Background(), adminPrincipal(), "job1")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("skip requires a reason", func(t *testing.T) {
		t.Parallel()

		repo := &jobRepoStub{job: scheduledJob()}
		svc := NewJobService(repo, nil, nil, nil, fixedClock(now))

		_, err := svc.SkipJob(context.Background(), adminPrincipal(), "job1", "  ")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}

		skipped, err := svc.SkipJob(context.Background(), adminPrincipal(), "job1", "gate locked")
		if err != nil {
			t.Fatalf("SkipJob failed: %v", err)
		}
		if skipped.Status != JobSkipped {
			t.Errorf("expected SKIPPED, got %s", skipped.Status)
		}
		if skipped.SkippedReason == nil || *skipped.SkippedReason != "gate locked" {
			t.Errorf("expected skip reason recorded, got %v", skipped.SkippedReason)
		}
	})

	t.Run("terminal states reject further transitions", func(t *testing.T) {
		t.Parallel()

		for _, terminal := range []string{JobCompleted, JobSkipped, JobCanceled} {
			job := scheduledJob()
			job.Status = terminal
			svc := NewJobService(&jobRepoStub{job: job}, nil, nil, nil, fixedClock(now))

			if _, err := svc.StartJob(context.Background(), adminPrincipal(), "job1"); err == nil {
				t.Errorf("expected transition from %s to fail", terminal)
			}
			if _, err := svc.CancelJob(context.Background(), adminPrincipal(), "job1"); err == nil {
				t.Errorf("expected cancel from %s to fail", terminal)
			}
		}
	})

	t.Run("unknown job maps to ErrNotFound", func(t *testing.T) {
		t.Parallel()

		svc := NewJobService(&jobRepoStub{}, nil, nil, nil, fixedClock(now))

		_, err := svc.StartJob(context.Background(), adminPrincipal(), "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("jobs in other organizations are invisible", func(t *testing.T) {
		t.Parallel()

		job := scheduledJob()
		job.OrgID = "org2"
		svc := NewJobService(&jobRepoStub{job: job}, nil, nil, nil, fixedClock(now))

		_, err := svc.GetJob(context.Background(), adminPrincipal(), "job1")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
