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

type subscriptionService interface {
	CreateSubscription(ctx context.Context, params application.CreateSubscriptionParams) (application.SubscriptionResult, error)
	UpdateSubscription(ctx context.Context, params application.UpdateSubscriptionParams) (application.SubscriptionResult, error)
	GetSubscription(ctx context.Context, principal application.Principal, subscriptionID string) (application.Subscription, error)
	ListSubscriptions(ctx context.Context, principal application.Principal, clientID, status string) ([]application.Subscription, error)
	PauseSubscription(ctx context.Context, principal application.Principal, subscriptionID string) (application.Subscription, error)
	ResumeSubscription(ctx context.Context, principal application.Principal, subscriptionID string) (application.SubscriptionResult, error)
	CancelSubscription(ctx context.Context, principal application.Principal, subscriptionID string) (application.Subscription, error)
	RegenerateJobs(ctx context.Context, principal application.Principal, subscriptionID string, horizonDays int) (int, error)
}

type SubscriptionHandler struct {
	service   subscriptionService
	responder responder
	logger    *slog.Logger
}

func NewSubscriptionHandler(service subscriptionService, logger *slog.Logger) *SubscriptionHandler {
	base := defaultLogger(logger)
	return &SubscriptionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SubscriptionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SubscriptionHandler", operation, attrs...)
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.StaffID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode subscription request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.StaffID)

	result, err := h.service.CreateSubscription(r.Context(), application.CreateSubscriptionParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "subscription creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With(
		"subscription_id", result.Subscription.ID,
		"jobs_generated", result.JobsGenerated,
	).InfoContext(r.Context(), "subscription created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, subscriptionResultResponse{
		Subscription:  toSubscriptionDTO(result.Subscription),
		JobsGenerated: result.JobsGenerated,
	})
}

func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	subscriptionID, ok := SubscriptionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(subscriptionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSubscriptionID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.StaffID, "subscription_id", subscriptionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode subscription update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.StaffID, "subscription_id", subscriptionID)

	result, err := h.service.UpdateSubscription(r.Context(), application.UpdateSubscriptionParams{
		Principal:      principal,
		SubscriptionID: subscriptionID,
		Input:          input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "subscription update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("jobs_generated", result.JobsGenerated).InfoContext(r.Context(), "subscription updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, subscriptionResultResponse{
		Subscription:  toSubscriptionDTO(result.Subscription),
		JobsGenerated: result.JobsGenerated,
	})
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	subscriptionID, ok := SubscriptionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(subscriptionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSubscriptionID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	sub, err := h.service.GetSubscription(r.Context(), principal, subscriptionID)
	if err != nil {
		h.log(r.Context(), "Get", "subscription_id", subscriptionID).ErrorContext(r.Context(), "subscription fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, subscriptionResponse{Subscription: toSubscriptionDTO(sub)})
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || strings.TrimSpace(principal.StaffID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	query := r.URL.Query()
	logger := h.log(r.Context(), "List", "principal_id", principal.StaffID)
	subs, err := h.service.ListSubscriptions(r.Context(), principal, query.Get("client_id"), query.Get("status"))
	if err != nil {
		logger.ErrorContext(r.Context(), "subscription list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(subs)).InfoContext(r.Context(), "subscriptions listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSubscriptionsResponse{Subscriptions: toSubscriptionDTOs(subs)})
}

func (h *SubscriptionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "Pause", func(ctx context.Context, principal application.Principal, id string) (subscriptionResultResponse, error) {
		sub, err := h.service.PauseSubscription(ctx, principal, id)
		return subscriptionResultResponse{Subscription: toSubscriptionDTO(sub)}, err
	})
}

func (h *SubscriptionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "Resume", func(ctx context.Context, principal application.Principal, id string) (subscriptionResultResponse, error) {
		result, err := h.service.ResumeSubscription(ctx, principal, id)
		return subscriptionResultResponse{
			Subscription:  toSubscriptionDTO(result.Subscription),
			JobsGenerated: result.JobsGenerated,
		}, err
	})
}

func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "Cancel", func(ctx context.Context, principal application.Principal, id string) (subscriptionResultResponse, error) {
		sub, err := h.service.CancelSubscription(ctx, principal, id)
		return subscriptionResultResponse{Subscription: toSubscriptionDTO(sub)}, err
	})
}

func (h *SubscriptionHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	subscriptionID, ok := SubscriptionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(subscriptionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSubscriptionID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req regenerateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
	}

	logger := h.log(r.Context(), "Regenerate",
		"principal_id", principal.StaffID,
		"subscription_id", subscriptionID,
		"horizon_days", req.HorizonDays,
	)

	generated, err := h.service.RegenerateJobs(r.Context(), principal, subscriptionID, req.HorizonDays)
	if err != nil {
		logger.ErrorContext(r.Context(), "job regeneration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("jobs_generated", generated).InfoContext(r.Context(), "jobs regenerated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, regenerateResponse{JobsGenerated: generated})
}

func (h *SubscriptionHandler) lifecycle(w http.ResponseWriter, r *http.Request, operation string, act func(context.Context, application.Principal, string) (subscriptionResultResponse, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	subscriptionID, ok := SubscriptionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(subscriptionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSubscriptionID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.StaffID, "subscription_id", subscriptionID)

	resp, err := act(r.Context(), principal, subscriptionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "subscription lifecycle change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", resp.Subscription.Status).InfoContext(r.Context(), "subscription lifecycle changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type subscriptionRequest struct {
	ClientID         string `json:"client_id"`
	LocationID       string `json:"location_id"`
	Frequency        string `json:"frequency"`
	PreferredWeekday *int   `json:"preferred_weekday"`
	PriceCents       int    `json:"price_cents"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date,omitempty"`
}

func (r subscriptionRequest) toInput() (application.SubscriptionInput, error) {
	input := application.SubscriptionInput{
		ClientID:         strings.TrimSpace(r.ClientID),
		LocationID:       strings.TrimSpace(r.LocationID),
		Frequency:        strings.TrimSpace(r.Frequency),
		PreferredWeekday: r.PreferredWeekday,
		PriceCents:       r.PriceCents,
	}

	if raw := strings.TrimSpace(r.StartDate); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return input, errBadRequestBody
		}
		input.StartDate = start
	}
	if raw := strings.TrimSpace(r.EndDate); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return input, errBadRequestBody
		}
		input.EndDate = &end
	}

	return input, nil
}

type regenerateRequest struct {
	HorizonDays int `json:"horizon_days"`
}

type regenerateResponse struct {
	JobsGenerated int `json:"jobs_generated"`
}

type subscriptionResponse struct {
	Subscription subscriptionDTO `json:"subscription"`
}

type subscriptionResultResponse struct {
	Subscription  subscriptionDTO `json:"subscription"`
	JobsGenerated int             `json:"jobs_generated"`
}

type listSubscriptionsResponse struct {
	Subscriptions []subscriptionDTO `json:"subscriptions"`
}

type subscriptionDTO struct {
	ID               string  `json:"id"`
	ClientID         string  `json:"client_id"`
	LocationID       string  `json:"location_id"`
	Status           string  `json:"status"`
	Frequency        string  `json:"frequency"`
	PreferredWeekday *int    `json:"preferred_weekday,omitempty"`
	PriceCents       int     `json:"price_cents"`
	StartDate        string  `json:"start_date"`
	EndDate          *string `json:"end_date,omitempty"`
	NextServiceDate  *string `json:"next_service_date,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func toSubscriptionDTO(sub application.Subscription) subscriptionDTO {
	return subscriptionDTO{
		ID:               sub.ID,
		ClientID:         sub.ClientID,
		LocationID:       sub.LocationID,
		Status:           sub.Status,
		Frequency:        sub.Frequency,
		PreferredWeekday: sub.PreferredWeekday,
		PriceCents:       sub.PriceCents,
		StartDate:        sub.StartDate.UTC().Format("2006-01-02"),
		EndDate:          formatOptionalDate(sub.EndDate),
		NextServiceDate:  formatOptionalDate(sub.NextServiceDate),
		CreatedAt:        sub.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:        sub.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toSubscriptionDTOs(subs []application.Subscription) []subscriptionDTO {
	if len(subs) == 0 {
		return nil
	}
	out := make([]subscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubscriptionDTO(sub))
	}
	return out
}

func formatOptionalDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format("2006-01-02")
	return &formatted
}
