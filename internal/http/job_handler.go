package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/application"
)

type jobService interface {
	CreateOneOff(ctx context.Context, principal application.Principal, input application.OneOffJobInput) (application.Job, error)
	GetJob(ctx context.Context, principal application.Principal, jobID string) (application.Job, error)
	ListJobs(ctx context.Context, principal application.Principal, filter application.JobListFilter) ([]application.Job, error)
	AssignJob(ctx context.Context, principal application.Principal, jobID, techID string) (application.Job, error)
	StartJob(ctx context.Context, principal application.Principal, jobID string) (application.Job, error)
	CompleteJob(ctx context.Context, principal application.Principal, jobID string) (application.Job, error)
	SkipJob(ctx context.Context, principal application.Principal, jobID, reason string) (application.Job, error)
	CancelJob(ctx context.Context, principal application.Principal, jobID string) (application.Job, error)
}

type JobHandler struct {
	service   jobService
	responder responder
	logger    *slog.Logger
}

func NewJobHandler(service jobService, logger *slog.Logger) *JobHandler {
	base := defaultLogger(logger)
	return &JobHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *JobHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "JobHandler", operation, attrs...)
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req oneOffJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.StaffID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode job request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.StaffID)

	job, err := h.service.CreateOneOff(r.Context(), principal, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "job creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("job_id", job.ID).InfoContext(r.Context(), "one-off job created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, jobResponse{Job: toJobDTO(job)})
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidJobID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	job, err := h.service.GetJob(r.Context(), principal, jobID)
	if err != nil {
		h.log(r.Context(), "Get", "job_id", jobID).ErrorContext(r.Context(), "job fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, jobResponse{Job: toJobDTO(job)})
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || strings.TrimSpace(principal.StaffID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	filter, err := jobFilterFromQuery(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.StaffID)
	jobs, err := h.service.ListJobs(r.Context(), principal, filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "job list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(jobs)).InfoContext(r.Context(), "jobs listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listJobsResponse{Jobs: toJobDTOs(jobs)})
}

func (h *JobHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidJobID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Assign", "principal_id", principal.StaffID, "job_id", jobID, "tech_id", req.TechID)

	job, err := h.service.AssignJob(r.Context(), principal, jobID, strings.TrimSpace(req.TechID))
	if err != nil {
		logger.ErrorContext(r.Context(), "job assignment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "job assigned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, jobResponse{Job: toJobDTO(job)})
}

func (h *JobHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Start", func(ctx context.Context, principal application.Principal, id string) (application.Job, error) {
		return h.service.StartJob(ctx, principal, id)
	})
}

func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Complete", func(ctx context.Context, principal application.Principal, id string) (application.Job, error) {
		return h.service.CompleteJob(ctx, principal, id)
	})
}

func (h *JobHandler) Skip(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req skipRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
	}

	h.transition(w, r, "Skip", func(ctx context.Context, principal application.Principal, id string) (application.Job, error) {
		return h.service.SkipJob(ctx, principal, id, req.Reason)
	})
}

func (h *JobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Cancel", func(ctx context.Context, principal application.Principal, id string) (application.Job, error) {
		return h.service.CancelJob(ctx, principal, id)
	})
}

func (h *JobHandler) transition(w http.ResponseWriter, r *http.Request, operation string, act func(context.Context, application.Principal, string) (application.Job, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	jobID, ok := JobIDFromContext(r.Context())
	if !ok || strings.TrimSpace(jobID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidJobID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.StaffID, "job_id", jobID)

	job, err := act(r.Context(), principal, jobID)
	if err != nil {
		logger.ErrorContext(r.Context(), "job transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", job.Status).InfoContext(r.Context(), "job transitioned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, jobResponse{Job: toJobDTO(job)})
}

func jobFilterFromQuery(r *http.Request) (application.JobListFilter, error) {
	query := r.URL.Query()
	filter := application.JobListFilter{
		SubscriptionID: strings.TrimSpace(query.Get("subscription_id")),
		AssignedTechID: strings.TrimSpace(query.Get("tech_id")),
	}

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			if trimmed := strings.ToUpper(strings.TrimSpace(status)); trimmed != "" {
				filter.Statuses = append(filter.Statuses, trimmed)
			}
		}
	}
	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errBadRequestBody
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errBadRequestBody
		}
		filter.To = &to
	}

	return filter, nil
}

type oneOffJobRequest struct {
	ClientID      string `json:"client_id"`
	LocationID    string `json:"location_id"`
	ScheduledDate string `json:"scheduled_date"`
	PriceCents    int    `json:"price_cents"`
}

func (r oneOffJobRequest) toInput() (application.OneOffJobInput, error) {
	input := application.OneOffJobInput{
		ClientID:   strings.TrimSpace(r.ClientID),
		LocationID: strings.TrimSpace(r.LocationID),
		PriceCents: r.PriceCents,
	}

	if raw := strings.TrimSpace(r.ScheduledDate); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return input, errBadRequestBody
		}
		input.ScheduledDate = date
	}

	return input, nil
}

type assignRequest struct {
	TechID string `json:"tech_id"`
}

type skipRequest struct {
	Reason string `json:"reason"`
}

type jobResponse struct {
	Job jobDTO `json:"job"`
}

type listJobsResponse struct {
	Jobs []jobDTO `json:"jobs"`
}

type jobDTO struct {
	ID             string  `json:"id"`
	ClientID       string  `json:"client_id"`
	LocationID     string  `json:"location_id"`
	SubscriptionID *string `json:"subscription_id,omitempty"`
	ScheduledDate  string  `json:"scheduled_date"`
	Status         string  `json:"status"`
	PriceCents     int     `json:"price_cents"`
	AssignedTechID *string `json:"assigned_tech_id,omitempty"`
	CompletedAt    *string `json:"completed_at,omitempty"`
	SkippedReason  *string `json:"skipped_reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toJobDTO(job application.Job) jobDTO {
	var completedAt *string
	if job.CompletedAt != nil {
		formatted := job.CompletedAt.UTC().Format(time.RFC3339Nano)
		completedAt = &formatted
	}
	return jobDTO{
		ID:             job.ID,
		ClientID:       job.ClientID,
		LocationID:     job.LocationID,
		SubscriptionID: job.SubscriptionID,
		ScheduledDate:  job.ScheduledDate.UTC().Format("2006-01-02"),
		Status:         job.Status,
		PriceCents:     job.PriceCents,
		AssignedTechID: job.AssignedTechID,
		CompletedAt:    completedAt,
		SkippedReason:  job.SkippedReason,
		CreatedAt:      job.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:      job.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toJobDTOs(jobs []application.Job) []jobDTO {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobDTO(job))
	}
	return out
}
