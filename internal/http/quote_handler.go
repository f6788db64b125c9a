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

type quoteService interface {
	SubmitQuote(ctx context.Context, orgID string, input application.QuoteInput) (application.QuoteRequest, error)
	ListQuotes(ctx context.Context, principal application.Principal, status string) ([]application.QuoteRequest, error)
	UpdateQuoteStatus(ctx context.Context, principal application.Principal, quoteID, status string) (application.QuoteRequest, error)
	ConvertQuote(ctx context.Context, params application.ConvertQuoteParams) (application.ConvertQuoteResult, error)
}

type QuoteHandler struct {
	service   quoteService
	orgID     string
	responder responder
	logger    *slog.Logger
}

// NewQuoteHandler builds the quote handler. orgID is the organization that
// receives public submissions; the protected endpoints scope by principal.
func NewQuoteHandler(service quoteService, orgID string, logger *slog.Logger) *QuoteHandler {
	base := defaultLogger(logger)
	return &QuoteHandler{service: service, orgID: orgID, responder: newResponder(base), logger: base}
}

func (h *QuoteHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "QuoteHandler", operation, attrs...)
}

// Submit is the public lead form. No session required.
func (h *QuoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req quoteSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Submit", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode quote request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Submit")

	quote, err := h.service.SubmitQuote(r.Context(), h.orgID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "quote submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("quote_id", quote.ID).InfoContext(r.Context(), "quote submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, quoteResponse{Quote: toQuoteDTO(quote)})
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || strings.TrimSpace(principal.StaffID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.StaffID)
	quotes, err := h.service.ListQuotes(r.Context(), principal, r.URL.Query().Get("status"))
	if err != nil {
		logger.ErrorContext(r.Context(), "quote list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(quotes)).InfoContext(r.Context(), "quotes listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listQuotesResponse{Quotes: toQuoteDTOs(quotes)})
}

func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	quoteID, ok := QuoteIDFromContext(r.Context())
	if !ok || strings.TrimSpace(quoteID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidQuoteID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req quoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateStatus", "principal_id", principal.StaffID, "quote_id", quoteID, "status", req.Status)

	quote, err := h.service.UpdateQuoteStatus(r.Context(), principal, quoteID, req.Status)
	if err != nil {
		logger.ErrorContext(r.Context(), "quote status update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "quote status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, quoteResponse{Quote: toQuoteDTO(quote)})
}

func (h *QuoteHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	quoteID, ok := QuoteIDFromContext(r.Context())
	if !ok || strings.TrimSpace(quoteID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidQuoteID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req quoteConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params, err := req.toParams(principal, quoteID)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Convert", "principal_id", principal.StaffID, "quote_id", quoteID)

	result, err := h.service.ConvertQuote(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "quote conversion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With(
		"client_id", result.Client.ID,
		"subscription_id", result.Subscription.ID,
		"jobs_generated", result.JobsGenerated,
	).InfoContext(r.Context(), "quote converted")

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, convertQuoteResponse{
		Quote:         toQuoteDTO(result.Quote),
		Client:        toClientDTO(result.Client),
		Location:      toLocationDTO(result.Location),
		Subscription:  toSubscriptionDTO(result.Subscription),
		JobsGenerated: result.JobsGenerated,
	})
}

type quoteSubmitRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Zip          string  `json:"zip"`
	DogCount     int     `json:"dog_count"`
	YardSize     string  `json:"yard_size"`
	FrequencyRaw string  `json:"frequency"`
	Notes        *string `json:"notes"`
}

func (r quoteSubmitRequest) toInput() application.QuoteInput {
	return application.QuoteInput{
		Name:         strings.TrimSpace(r.Name),
		Email:        strings.TrimSpace(r.Email),
		Phone:        strings.TrimSpace(r.Phone),
		Zip:          strings.TrimSpace(r.Zip),
		DogCount:     r.DogCount,
		YardSize:     strings.TrimSpace(r.YardSize),
		FrequencyRaw: strings.TrimSpace(r.FrequencyRaw),
		Notes:        r.Notes,
	}
}

type quoteStatusRequest struct {
	Status string `json:"status"`
}

type quoteConvertRequest struct {
	Location         locationRequest `json:"location"`
	PriceCents       int             `json:"price_cents"`
	StartDate        string          `json:"start_date"`
	PreferredWeekday *int            `json:"preferred_weekday"`
}

func (r quoteConvertRequest) toParams(principal application.Principal, quoteID string) (application.ConvertQuoteParams, error) {
	params := application.ConvertQuoteParams{
		Principal:        principal,
		QuoteID:          quoteID,
		Location:         r.Location.toInput(),
		PriceCents:       r.PriceCents,
		PreferredWeekday: r.PreferredWeekday,
	}

	if raw := strings.TrimSpace(r.StartDate); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return params, errBadRequestBody
		}
		params.StartDate = start
	}

	return params, nil
}

type quoteResponse struct {
	Quote quoteDTO `json:"quote"`
}

type listQuotesResponse struct {
	Quotes []quoteDTO `json:"quotes"`
}

type convertQuoteResponse struct {
	Quote         quoteDTO        `json:"quote"`
	Client        clientDTO       `json:"client"`
	Location      locationDTO     `json:"location"`
	Subscription  subscriptionDTO `json:"subscription"`
	JobsGenerated int             `json:"jobs_generated"`
}

type quoteDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone,omitempty"`
	Zip       string  `json:"zip,omitempty"`
	DogCount  int     `json:"dog_count"`
	YardSize  string  `json:"yard_size,omitempty"`
	Frequency string  `json:"frequency,omitempty"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toQuoteDTO(quote application.QuoteRequest) quoteDTO {
	return quoteDTO{
		ID:        quote.ID,
		Name:      quote.Name,
		Email:     quote.Email,
		Phone:     quote.Phone,
		Zip:       quote.Zip,
		DogCount:  quote.DogCount,
		YardSize:  quote.YardSize,
		Frequency: quote.FrequencyRaw,
		Status:    quote.Status,
		Notes:     quote.Notes,
		CreatedAt: quote.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: quote.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toQuoteDTOs(quotes []application.QuoteRequest) []quoteDTO {
	if len(quotes) == 0 {
		return nil
	}
	out := make([]quoteDTO, 0, len(quotes))
	for _, quote := range quotes {
		out = append(out, toQuoteDTO(quote))
	}
	return out
}
