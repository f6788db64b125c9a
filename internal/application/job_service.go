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

// JobRepository captures the persistence operations needed by the service.
type JobRepository interface {
	InsertJobs(ctx context.Context, jobs []Job) (int, error)
	UpdateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, orgID, id string) (Job, error)
	ListJobs(ctx context.Context, orgID string, filter JobListFilter) ([]Job, error)
}

// StaffDirectory resolves staff references during assignment.
type StaffDirectory interface {
	GetStaff(ctx context.Context, orgID, id string) (StaffUser, error)
}

// jobTransitions is the allowed state machine. Terminal states have no
// outgoing edges.
var jobTransitions = map[string][]string{
	JobScheduled:  {JobInProgress, JobSkipped, JobCanceled},
	JobInProgress: {JobCompleted},
}

// JobService owns the lifecycle of individual service visits.
type JobService struct {
	jobs        JobRepository
	staff       StaffDirectory
	directory   ClientDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewJobService constructs a job service with the provided dependencies.
func NewJobService(jobs JobRepository, staff StaffDirectory, directory ClientDirectory, idGenerator func() string, now func() time.Time) *JobService {
	return NewJobServiceWithLogger(jobs, staff, directory, idGenerator, now, nil)
}

// NewJobServiceWithLogger constructs a job service with a specified logger.
func NewJobServiceWithLogger(jobs JobRepository, staff StaffDirectory, directory ClientDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *JobService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &JobService{jobs: jobs, staff: staff, directory: directory, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *JobService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "JobService", operation, attrs...)
}

// CreateOneOff persists a single visit with no subscription behind it.
func (s *JobService) CreateOneOff(ctx context.Context, principal Principal, input OneOffJobInput) (job Job, err error) {
	if s == nil {
		err = fmt.Errorf("JobService is nil")
		return
	}
	if s.jobs == nil {
		err = fmt.Errorf("job repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateOneOff",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create one-off job", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("job_id", job.ID).InfoContext(ctx, "one-off job created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.ClientID) == "" {
		vErr.add("client_id", "client is required")
	}
	if strings.TrimSpace(input.LocationID) == "" {
		vErr.add("location_id", "location is required")
	}
	if input.ScheduledDate.IsZero() {
		vErr.add("scheduled_date", "scheduled date is required")
	}
	if input.PriceCents < 0 {
		vErr.add("price_cents", "price must not be negative")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.directory != nil {
		if _, dirErr := s.directory.GetClient(ctx, principal.OrgID, input.ClientID); dirErr != nil {
			vErr.add("client_id", "client not found")
		} else if location, dirErr := s.directory.GetLocation(ctx, principal.OrgID, input.LocationID); dirErr != nil {
			vErr.add("location_id", "location not found")
		} else if location.ClientID != input.ClientID {
			vErr.add("location_id", "location does not belong to the client")
		}
		if vErr.HasErrors() {
			err = vErr
			return
		}
	}

	now := s.now()
	job = Job{
		ID:            s.idGenerator(),
		OrgID:         principal.OrgID,
		ClientID:      input.ClientID,
		LocationID:    input.LocationID,
		ScheduledDate: schedule.DateOf(input.ScheduledDate),
		Status:        JobScheduled,
		PriceCents:    input.PriceCents,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err = s.jobs.InsertJobs(ctx, []Job{job}); err != nil {
		err = mapJobRepoError(err)
		job = Job{}
		return
	}

	return
}

// GetJob returns a single job scoped to the organization.
func (s *JobService) GetJob(ctx context.Context, principal Principal, jobID string) (Job, error) {
	if s == nil {
		return Job{}, fmt.Errorf("JobService is nil")
	}
	if s.jobs == nil {
		return Job{}, fmt.Errorf("job repository not configured")
	}

	job, err := s.jobs.GetJob(ctx, principal.OrgID, jobID)
	if err != nil {
		return Job{}, mapJobRepoError(err)
	}
	return job, nil
}

// ListJobs returns jobs in the organization matching the filter.
func (s *JobService) ListJobs(ctx context.Context, principal Principal, filter JobListFilter) ([]Job, error) {
	if s == nil {
		return nil, fmt.Errorf("JobService is nil")
	}
	if s.jobs == nil {
		return nil, nil
	}

	jobs, err := s.jobs.ListJobs(ctx, principal.OrgID, filter)
	if err != nil {
		return nil, mapJobRepoError(err)
	}
	return jobs, nil
}

// AssignJob attaches a tech to a scheduled visit.
func (s *JobService) AssignJob(ctx context.Context, principal Principal, jobID, techID string) (job Job, err error) {
	if s == nil {
		err = fmt.Errorf("JobService is nil")
		return
	}
	if s.jobs == nil {
		err = fmt.Errorf("job repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "AssignJob",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"job_id", jobID,
		"tech_id", techID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to assign job", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "job assigned")
	}()

	var existing Job
	existing, err = s.jobs.GetJob(ctx, principal.OrgID, jobID)
	if err != nil {
		err = mapJobRepoError(err)
		return
	}
	if existing.Status != JobScheduled {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("only scheduled jobs can be assigned, job is %s", existing.Status))
		err = vErr
		return
	}

	if s.staff != nil {
		if _, staffErr := s.staff.GetStaff(ctx, principal.OrgID, techID); staffErr != nil {
			vErr := &ValidationError{}
			vErr.add("tech_id", "tech not found")
			err = vErr
			return
		}
	}

	existing.AssignedTechID = &techID
	existing.UpdatedAt = s.now()
	if err = s.jobs.UpdateJob(ctx, existing); err != nil {
		err = mapJobRepoError(err)
		return
	}

	job = existing
	return
}

// StartJob moves a scheduled visit into progress.
func (s *JobService) StartJob(ctx context.Context, principal Principal, jobID string) (Job, error) {
	return s.transition(ctx, principal, jobID, "StartJob", JobInProgress, func(job *Job) {})
}

// CompleteJob finishes an in-progress visit and stamps the completion time.
func (s *JobService) CompleteJob(ctx context.Context, principal Principal, jobID string) (Job, error) {
	return s.transition(ctx, principal, jobID, "CompleteJob", JobCompleted, func(job *Job) {
		completedAt := s.now()
		job.CompletedAt = &completedAt
	})
}

// SkipJob marks a scheduled visit skipped with a required reason.
func (s *JobService) SkipJob(ctx context.Context, principal Principal, jobID, reason string) (Job, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		vErr := &ValidationError{}
		vErr.add("reason", "a skip reason is required")
		return Job{}, vErr
	}
	return s.transition(ctx, principal, jobID, "SkipJob", JobSkipped, func(job *Job) {
		job.SkippedReason = &reason
	})
}

// CancelJob cancels a scheduled visit. The date becomes schedulable again.
func (s *JobService) CancelJob(ctx context.Context, principal Principal, jobID string) (Job, error) {
	return s.transition(ctx, principal, jobID, "CancelJob", JobCanceled, func(job *Job) {})
}

func (s *JobService) transition(ctx context.Context, principal Principal, jobID, operation, target string, apply func(*Job)) (Job, error) {
	if s == nil {
		return Job{}, fmt.Errorf("JobService is nil")
	}
	if s.jobs == nil {
		return Job{}, fmt.Errorf("job repository not configured")
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"job_id", jobID,
	)

	job, err := s.jobs.GetJob(ctx, principal.OrgID, jobID)
	if err != nil {
		err = mapJobRepoError(err)
		logger.ErrorContext(ctx, "job transition failed", "error", err, "error_kind", ErrorKind(err))
		return Job{}, err
	}

	if !transitionAllowed(job.Status, target) {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("cannot move job from %s to %s", job.Status, target))
		logger.ErrorContext(ctx, "job transition failed", "error", vErr, "error_kind", ErrorKind(vErr))
		return Job{}, vErr
	}

	job.Status = target
	job.UpdatedAt = s.now()
	apply(&job)

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		err = mapJobRepoError(err)
		logger.ErrorContext(ctx, "job transition failed", "error", err, "error_kind", ErrorKind(err))
		return Job{}, err
	}

	logger.With("status", target).InfoContext(ctx, "job transitioned")
	return job, nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range jobTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func mapJobRepoError(err error) error {
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
		vErr.add("input", "referenced client, location, or tech does not exist")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "input violates a storage constraint")
		return vErr
	}
	return err
}
