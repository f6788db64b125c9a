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

// QuoteRepository captures the persistence operations needed by the service.
type QuoteRepository interface {
	CreateQuote(ctx context.Context, quote QuoteRequest) error
	UpdateQuote(ctx context.Context, quote QuoteRequest) error
	GetQuote(ctx context.Context, orgID, id string) (QuoteRequest, error)
	ListQuotes(ctx context.Context, orgID string, status string) ([]QuoteRequest, error)
}

// ClientCreator is the slice of ClientService conversion depends on.
type ClientCreator interface {
	CreateClient(ctx context.Context, principal Principal, input ClientInput) (Client, error)
	AddLocation(ctx context.Context, principal Principal, clientID string, input LocationInput) (Location, error)
}

// SubscriptionCreator is the slice of SubscriptionService conversion depends on.
type SubscriptionCreator interface {
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (SubscriptionResult, error)
}

// ConvertQuoteResult bundles everything a conversion produced.
type ConvertQuoteResult struct {
	Quote         QuoteRequest
	Client        Client
	Location      Location
	Subscription  Subscription
	JobsGenerated int
}

// QuoteService manages the public lead funnel and its conversion into
// paying clients.
type QuoteService struct {
	quotes        QuoteRepository
	clients       ClientCreator
	subscriptions SubscriptionCreator
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewQuoteService constructs a quote service with the provided dependencies.
func NewQuoteService(quotes QuoteRepository, clients ClientCreator, subscriptions SubscriptionCreator, idGenerator func() string, now func() time.Time) *QuoteService {
	return NewQuoteServiceWithLogger(quotes, clients, subscriptions, idGenerator, now, nil)
}

// NewQuoteServiceWithLogger constructs a quote service with a specified logger.
func NewQuoteServiceWithLogger(quotes QuoteRepository, clients ClientCreator, subscriptions SubscriptionCreator, idGenerator func() string, now func() time.Time, logger *slog.Logger) *QuoteService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &QuoteService{
		quotes:        quotes,
		clients:       clients,
		subscriptions: subscriptions,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *QuoteService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "QuoteService", operation, attrs...)
}

// SubmitQuote records a public quote request. There is no principal; the
// handler supplies the target organization.
func (s *QuoteService) SubmitQuote(ctx context.Context, orgID string, input QuoteInput) (quote QuoteRequest, err error) {
	if s == nil {
		err = fmt.Errorf("QuoteService is nil")
		return
	}
	if s.quotes == nil {
		err = fmt.Errorf("quote repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SubmitQuote", "org_id", orgID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit quote", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("quote_id", quote.ID).InfoContext(ctx, "quote submitted")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email must be a valid address")
	}
	if input.DogCount < 0 {
		vErr.add("dog_count", "dog count must not be negative")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	quote = QuoteRequest{
		ID:           s.idGenerator(),
		OrgID:        orgID,
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(email),
		Phone:        strings.TrimSpace(input.Phone),
		Zip:          strings.TrimSpace(input.Zip),
		DogCount:     input.DogCount,
		YardSize:     strings.ToUpper(strings.TrimSpace(input.YardSize)),
		FrequencyRaw: strings.TrimSpace(input.FrequencyRaw),
		Status:       QuoteNew,
		Notes:        normalizeOptionalString(input.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = s.quotes.CreateQuote(ctx, quote); err != nil {
		err = mapQuoteRepoError(err)
		quote = QuoteRequest{}
		return
	}

	return
}

// ListQuotes returns quotes in the principal's organization, optionally
// filtered by status.
func (s *QuoteService) ListQuotes(ctx context.Context, principal Principal, status string) ([]QuoteRequest, error) {
	if s == nil {
		return nil, fmt.Errorf("QuoteService is nil")
	}
	if s.quotes == nil {
		return nil, nil
	}

	quotes, err := s.quotes.ListQuotes(ctx, principal.OrgID, strings.ToUpper(strings.TrimSpace(status)))
	if err != nil {
		return nil, mapQuoteRepoError(err)
	}
	return quotes, nil
}

// UpdateQuoteStatus moves a quote along the funnel. CONVERTED is reserved
// for ConvertQuote.
func (s *QuoteService) UpdateQuoteStatus(ctx context.Context, principal Principal, quoteID, status string) (quote QuoteRequest, err error) {
	if s == nil {
		err = fmt.Errorf("QuoteService is nil")
		return
	}
	if s.quotes == nil {
		err = fmt.Errorf("quote repository not configured")
		return
	}

	status = strings.ToUpper(strings.TrimSpace(status))
	logger := s.loggerWith(ctx, "UpdateQuoteStatus",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"quote_id", quoteID,
		"status", status,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update quote status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "quote status updated")
	}()

	if status != QuoteNew && status != QuoteContacted && status != QuoteDeclined {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("status must be one of NEW, CONTACTED, DECLINED; conversion has its own endpoint (got %q)", status))
		err = vErr
		return
	}

	var existing QuoteRequest
	existing, err = s.quotes.GetQuote(ctx, principal.OrgID, quoteID)
	if err != nil {
		err = mapQuoteRepoError(err)
		return
	}
	if existing.Status == QuoteConverted {
		vErr := &ValidationError{}
		vErr.add("status", "a converted quote cannot change status")
		err = vErr
		return
	}

	existing.Status = status
	existing.UpdatedAt = s.now()
	if err = s.quotes.UpdateQuote(ctx, existing); err != nil {
		err = mapQuoteRepoError(err)
		return
	}

	quote = existing
	return
}

// ConvertQuote turns a quote into a client with a location and an active
// subscription, generating the initial job window.
func (s *QuoteService) ConvertQuote(ctx context.Context, params ConvertQuoteParams) (result ConvertQuoteResult, err error) {
	if s == nil {
		err = fmt.Errorf("QuoteService is nil")
		return
	}
	if s.quotes == nil {
		err = fmt.Errorf("quote repository not configured")
		return
	}
	if s.clients == nil || s.subscriptions == nil {
		err = fmt.Errorf("conversion collaborators not configured")
		return
	}

	principal := params.Principal
	logger := s.loggerWith(ctx, "ConvertQuote",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"quote_id", params.QuoteID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to convert quote", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"client_id", result.Client.ID,
			"subscription_id", result.Subscription.ID,
			"jobs_generated", result.JobsGenerated,
		).InfoContext(ctx, "quote converted")
	}()

	var quote QuoteRequest
	quote, err = s.quotes.GetQuote(ctx, principal.OrgID, params.QuoteID)
	if err != nil {
		err = mapQuoteRepoError(err)
		return
	}
	if quote.Status == QuoteConverted {
		err = ErrAlreadyExists
		return
	}
	if quote.Status == QuoteDeclined {
		vErr := &ValidationError{}
		vErr.add("status", "a declined quote cannot be converted")
		err = vErr
		return
	}

	// The free-form frequency from the public form must resolve before any
	// records are created.
	frequency, freqErr := schedule.ParseFrequency(quote.FrequencyRaw)
	if freqErr != nil {
		vErr := &ValidationError{}
		vErr.add("frequency", fmt.Sprintf("requested frequency %q is not supported", quote.FrequencyRaw))
		err = vErr
		return
	}

	var client Client
	client, err = s.clients.CreateClient(ctx, principal, ClientInput{
		Name:  quote.Name,
		Email: quote.Email,
		Phone: quote.Phone,
	})
	if err != nil {
		return
	}

	locationInput := params.Location
	if strings.TrimSpace(locationInput.Zip) == "" {
		locationInput.Zip = quote.Zip
	}
	if locationInput.DogCount == 0 {
		locationInput.DogCount = quote.DogCount
	}

	var location Location
	location, err = s.clients.AddLocation(ctx, principal, client.ID, locationInput)
	if err != nil {
		return
	}

	var subResult SubscriptionResult
	subResult, err = s.subscriptions.CreateSubscription(ctx, CreateSubscriptionParams{
		Principal: principal,
		Input: SubscriptionInput{
			ClientID:         client.ID,
			LocationID:       location.ID,
			Frequency:        string(frequency),
			PreferredWeekday: params.PreferredWeekday,
			PriceCents:       params.PriceCents,
			StartDate:        params.StartDate,
		},
	})
	if err != nil {
		return
	}

	quote.Status = QuoteConverted
	quote.UpdatedAt = s.now()
	if err = s.quotes.UpdateQuote(ctx, quote); err != nil {
		err = mapQuoteRepoError(err)
		return
	}

	result = ConvertQuoteResult{
		Quote:         quote,
		Client:        client,
		Location:      location,
		Subscription:  subResult.Subscription,
		JobsGenerated: subResult.JobsGenerated,
	}
	return
}

func mapQuoteRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "input violates a storage constraint")
		return vErr
	}
	return err
}
