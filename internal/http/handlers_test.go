package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/application"
)

type stubAuthService struct {
	result     application.AuthenticateResult
	authErr    error
	revoked    []string
	revokeErr  error
	lastParams application.AuthenticateParams
}

func (s *stubAuthService) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	s.lastParams = params
	if s.authErr != nil {
		return application.AuthenticateResult{}, s.authErr
	}
	return s.result, nil
}

func (s *stubAuthService) RevokeSession(ctx context.Context, token string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revoked = append(s.revoked, token)
	return nil
}

type stubClientService struct {
	client    application.Client
	clients   []application.Client
	location  application.Location
	locations []application.Location
	err       error
}

func (s *stubClientService) CreateClient(ctx context.Context, principal application.Principal, input application.ClientInput) (application.Client, error) {
	return s.client, s.err
}

func (s *stubClientService) UpdateClient(ctx context.Context, principal application.Principal, clientID string, input application.ClientInput) (application.Client, error) {
	return s.client, s.err
}

func (s *stubClientService) GetClient(ctx context.Context, principal application.Principal, clientID string) (application.Client, error) {
	return s.client, s.err
}

func (s *stubClientService) ListClients(ctx context.Context, principal application.Principal) ([]application.Client, error) {
	return s.clients, s.err
}

func (s *stubClientService) DeleteClient(ctx context.Context, principal application.Principal, clientID string) error {
	return s.err
}

func (s *stubClientService) AddLocation(ctx context.Context, principal application.Principal, clientID string, input application.LocationInput) (application.Location, error) {
	return s.location, s.err
}

func (s *stubClientService) ListLocations(ctx context.Context, principal application.Principal, clientID string) ([]application.Location, error) {
	return s.locations, s.err
}

type stubSubscriptionService struct {
	result      application.SubscriptionResult
	sub         application.Subscription
	subs        []application.Subscription
	generated   int
	err         error
	lastHorizon int
}

func (s *stubSubscriptionService) CreateSubscription(ctx context.Context, params application.CreateSubscriptionParams) (application.SubscriptionResult, error) {
	return s.result, s.err
}

func (s *stubSubscriptionService) UpdateSubscription(ctx context.Context, params application.UpdateSubscriptionParams) (application.SubscriptionResult, error) {
	return s.result, s.err
}

func (s *stubSubscriptionService) GetSubscription(ctx context.Context, principal application.Principal, subscriptionID string) (application.Subscription, error) {
	return s.sub, s.err
}

func (s *stubSubscriptionService) ListSubscriptions(ctx context.Context, principal application.Principal, clientID, status string) ([]application.Subscription, error) {
	return s.subs, s.err
}

func (s *stubSubscriptionService) PauseSubscription(ctx context.Context, principal application.Principal, subscriptionID string) (application.Subscription, error) {
	return s.sub, s.err
}

func (s *stubSubscriptionService) ResumeSubscription(ctx context.Context, principal application.Principal, subscriptionID string) (application.SubscriptionResult, error) {
	return s.result, s.err
}

func (s *stubSubscriptionService) CancelSubscription(ctx context.Context, principal application.Principal, subscriptionID string) (application.Subscription, error) {
	return s.sub, s.err
}

func (s *stubSubscriptionService) RegenerateJobs(ctx context.Context, principal application.Principal, subscriptionID string, horizonDays int) (int, error) {
	s.lastHorizon = horizonDays
	return s.generated, s.err
}

type stubJobService struct {
	job  application.Job
	jobs []application.Job
	err  error

	lastFilter application.JobListFilter
	lastReason string
}

func (s *stubJobService) CreateOneOff(ctx context.Context, principal application.Principal, input application.OneOffJobInput) (application.Job, error) {
	return s.job, s.err
}

func (s *stubJobService) GetJob(ctx context.Context, principal application.Principal, jobID string) (application.Job, error) {
	return s.job, s.err
}

func (s *stubJobService) ListJobs(ctx context.Context, principal application.Principal, filter application.JobListFilter) ([]application.Job, error) {
	s.lastFilter = filter
	return s.jobs, s.err
}

func (s *stubJobService) AssignJob(ctx context.Context, principal application.Principal, jobID, techID string) (application.Job, error) {
	return s.job, s.err
}

func (s *stubJobService) StartJob(ctx context.Context, principal application.Principal, jobID string) (application.Job, error) {
	return s.job, s.err
}

func (s *stubJobService) CompleteJob(ctx context.Context, principal application.Principal, jobID string) (application.Job, error) {
	return s.job, s.err
}

func (s *stubJobService) SkipJob(ctx context.Context, principal application.Principal, jobID, reason string) (application.Job, error) {
	s.lastReason = reason
	return s.job, s.err
}

func (s *stubJobService) CancelJob(ctx context.Context, principal application.Principal, jobID string) (application.Job, error) {
	return s.job, s.err
}

type stubQuoteService struct {
	quote     application.QuoteRequest
	quotes    []application.QuoteRequest
	converted application.ConvertQuoteResult
	err       error
	lastOrgID string
}

func (s *stubQuoteService) SubmitQuote(ctx context.Context, orgID string, input application.QuoteInput) (application.QuoteRequest, error) {
	s.lastOrgID = orgID
	return s.quote, s.err
}

func (s *stubQuoteService) ListQuotes(ctx context.Context, principal application.Principal, status string) ([]application.QuoteRequest, error) {
	return s.quotes, s.err
}

func (s *stubQuoteService) UpdateQuoteStatus(ctx context.Context, principal application.Principal, quoteID, status string) (application.QuoteRequest, error) {
	return s.quote, s.err
}

func (s *stubQuoteService) ConvertQuote(ctx context.Context, params application.ConvertQuoteParams) (application.ConvertQuoteResult, error) {
	return s.converted, s.err
}

type routerStubs struct {
	auth          *stubAuthService
	clients       *stubClientService
	subscriptions *stubSubscriptionService
	jobs          *stubJobService
	quotes        *stubQuoteService
}

func newTestRouter(stubs routerStubs, validator SessionValidator) http.Handler {
	if validator == nil {
		validator = fakeSessionValidator{principal: application.Principal{StaffID: "staff1", OrgID: "org1", IsAdmin: true}}
	}
	cfg := RouterConfig{
		RequireSession: RequireSession(validator, nil),
	}
	if stubs.auth != nil {
		cfg.Auth = NewAuthHandler(stubs.auth, nil)
	}
	if stubs.clients != nil {
		cfg.Clients = NewClientHandler(stubs.clients, nil)
	}
	if stubs.subscriptions != nil {
		cfg.Subscriptions = NewSubscriptionHandler(stubs.subscriptions, nil)
	}
	if stubs.jobs != nil {
		cfg.Jobs = NewJobHandler(stubs.jobs, nil)
	}
	if stubs.quotes != nil {
		cfg.Quotes = NewQuoteHandler(stubs.quotes, "org1", nil)
	}
	return NewRouter(cfg)
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer tok1")
	return req
}

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()

		auth := &stubAuthService{result: application.AuthenticateResult{
			Staff: application.StaffUser{ID: "staff1", OrgID: "org1", Email: "admin@fieldops.test", Role: application.RoleAdmin},
			Session: application.Session{
				Token:     "tok1",
				ExpiresAt: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
			},
		}}
		router := newTestRouter(routerStubs{auth: auth}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"email":"Admin@FieldOps.test","password":"secret"}`)))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if recorder.Header().Get("X-Session-Token") != "tok1" {
			t.Errorf("expected token header, got %q", recorder.Header().Get("X-Session-Token"))
		}
		if !strings.Contains(recorder.Header().Get("Set-Cookie"), "session_token=tok1") {
			t.Errorf("expected session cookie, got %q", recorder.Header().Get("Set-Cookie"))
		}
		if auth.lastParams.Email != "admin@fieldops.test" {
			t.Errorf("expected lowercased email passed to service, got %q", auth.lastParams.Email)
		}
	})

	t.Run("invalid credentials return 401 with error code", func(t *testing.T) {
		t.Parallel()

		auth := &stubAuthService{authErr: application.ErrInvalidCredentials}
		router := newTestRouter(routerStubs{auth: auth}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"email":"x@y.z","password":"bad"}`)))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if resp.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Errorf("expected AUTH_INVALID_CREDENTIALS, got %q", resp.ErrorCode)
		}
	})

	t.Run("locked accounts return 403", func(t *testing.T) {
		t.Parallel()

		auth := &stubAuthService{authErr: application.ErrAccountDisabled}
		router := newTestRouter(routerStubs{auth: auth}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"email":"x@y.z","password":"pw"}`)))

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", recorder.Code)
		}
	})

	t.Run("logout revokes the session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		auth := &stubAuthService{}
		router := newTestRouter(routerStubs{auth: auth}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodDelete, "/sessions/current", ""))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if len(auth.revoked) != 1 || auth.revoked[0] != "tok1" {
			t.Errorf("expected tok1 revoked, got %v", auth.revoked)
		}
		if !strings.Contains(recorder.Header().Get("Set-Cookie"), "session_token=;") {
			t.Errorf("expected cookie cleared, got %q", recorder.Header().Get("Set-Cookie"))
		}
	})
}

func TestClientHandlers(t *testing.T) {
	t.Parallel()

	t.Run("listing requires a session", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(routerStubs{clients: &stubClientService{}}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/clients", nil))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("create returns the persisted client", func(t *testing.T) {
		t.Parallel()

		clients := &stubClientService{client: application.Client{ID: "client1", Name: "Dana", Email: "dana@example.com", Status: "ACTIVE"}}
		router := newTestRouter(routerStubs{clients: clients}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/clients", `{"name":"Dana","email":"dana@example.com"}`))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp clientResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Client.ID != "client1" {
			t.Errorf("expected client1, got %q", resp.Client.ID)
		}
	})

	t.Run("validation failures map to 422 with field errors", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string]string{"email": "email is required"}}
		router := newTestRouter(routerStubs{clients: &stubClientService{err: vErr}}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/clients", `{"name":"Dana"}`))

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if resp.Errors["email"] != "email is required" {
			t.Errorf("expected field errors in payload, got %v", resp.Errors)
		}
	})

	t.Run("forbidden delete maps to 403", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(routerStubs{clients: &stubClientService{err: application.ErrUnauthorized}}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodDelete, "/clients/client1", ""))

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", recorder.Code)
		}
	})

	t.Run("locations are nested under the client", func(t *testing.T) {
		t.Parallel()

		clients := &stubClientService{location: application.Location{ID: "loc1", ClientID: "client1", Label: "Backyard"}}
		router := newTestRouter(routerStubs{clients: clients}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/clients/client1/locations", `{"label":"Backyard","street":"12 Elm St","zip":"01234","dog_count":2}`))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
	})
}

func TestSubscriptionHandlers(t *testing.T) {
	t.Parallel()

	activeSub := application.Subscription{
		ID: "sub1", ClientID: "client1", LocationID: "loc1",
		Status: application.SubscriptionActive, Frequency: "WEEKLY", PriceCents: 2500,
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	}

	t.Run("create reports the generated job count", func(t *testing.T) {
		t.Parallel()

		subs := &stubSubscriptionService{result: application.SubscriptionResult{Subscription: activeSub, JobsGenerated: 2}}
		router := newTestRouter(routerStubs{subscriptions: subs}, nil)

		body := `{"client_id":"client1","location_id":"loc1","frequency":"WEEKLY","price_cents":2500,"start_date":"2025-01-06"}`
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/subscriptions", body))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp subscriptionResultResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.JobsGenerated != 2 {
			t.Errorf("expected jobs_generated 2, got %d", resp.JobsGenerated)
		}
		if resp.Subscription.StartDate != "2025-01-06" {
			t.Errorf("expected start date 2025-01-06, got %q", resp.Subscription.StartDate)
		}
	})

	t.Run("malformed start date returns 400", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(routerStubs{subscriptions: &stubSubscriptionService{}}, nil)

		body := `{"client_id":"client1","location_id":"loc1","frequency":"WEEKLY","start_date":"Jan 6 2025"}`
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/subscriptions", body))

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("lifecycle endpoints dispatch by path", func(t *testing.T) {
		t.Parallel()

		subs := &stubSubscriptionService{
			sub:    activeSub,
			result: application.SubscriptionResult{Subscription: activeSub, JobsGenerated: 1},
		}
		router := newTestRouter(routerStubs{subscriptions: subs}, nil)

		for _, action := range []string{"pause", "resume", "cancel"} {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/subscriptions/sub1/"+action, ""))
			if recorder.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d: %s", action, recorder.Code, recorder.Body.String())
			}
		}
	})

	t.Run("regenerate forwards the horizon", func(t *testing.T) {
		t.Parallel()

		subs := &stubSubscriptionService{generated: 4}
		router := newTestRouter(routerStubs{subscriptions: subs}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/subscriptions/sub1/regenerate", `{"horizon_days":30}`))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if subs.lastHorizon != 30 {
			t.Errorf("expected horizon 30, got %d", subs.lastHorizon)
		}
		var resp regenerateResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.JobsGenerated != 4 {
			t.Errorf("expected jobs_generated 4, got %d", resp.JobsGenerated)
		}
	})

	t.Run("unknown subscription maps to 404", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(routerStubs{subscriptions: &stubSubscriptionService{err: application.ErrNotFound}}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/subscriptions/missing", ""))

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

func TestJobHandlers(t *testing.T) {
	t.Parallel()

	scheduled := application.Job{
		ID: "job1", ClientID: "client1", LocationID: "loc1",
		ScheduledDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Status:        application.JobScheduled, PriceCents: 2500,
	}

	t.Run("list parses filter query parameters", func(t *testing.T) {
		t.Parallel()

		jobs := &stubJobService{jobs: []application.Job{scheduled}}
		router := newTestRouter(routerStubs{jobs: jobs}, nil)

		recorder := httptest.NewRecorder()
		target := "/jobs?subscription_id=sub1&tech_id=tech1&status=scheduled,in_progress&from=2025-01-06&to=2025-01-20"
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, target, ""))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if jobs.lastFilter.SubscriptionID != "sub1" || jobs.lastFilter.AssignedTechID != "tech1" {
			t.Errorf("unexpected filter ids: %+v", jobs.lastFilter)
		}
		if len(jobs.lastFilter.Statuses) != 2 || jobs.lastFilter.Statuses[0] != "SCHEDULED" {
			t.Errorf("expected uppercased statuses, got %v", jobs.lastFilter.Statuses)
		}
		if jobs.lastFilter.From == nil || jobs.lastFilter.To == nil {
			t.Errorf("expected date window parsed, got %+v", jobs.lastFilter)
		}
	})

	t.Run("skip forwards the reason", func(t *testing.T) {
		t.Parallel()

		jobs := &stubJobService{job: scheduled}
		router := newTestRouter(routerStubs{jobs: jobs}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/jobs/job1/skip", `{"reason":"gate locked"}`))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if jobs.lastReason != "gate locked" {
			t.Errorf("expected reason forwarded, got %q", jobs.lastReason)
		}
	})

	t.Run("invalid transitions map to 422", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string]string{"status": "cannot move job from COMPLETED to IN_PROGRESS"}}
		router := newTestRouter(routerStubs{jobs: &stubJobService{err: vErr}}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/jobs/job1/start", ""))

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
	})

	t.Run("unknown sub-resource is a 404", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(routerStubs{jobs: &stubJobService{}}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/jobs/job1/teleport", ""))

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})
}

func TestQuoteHandlers(t *testing.T) {
	t.Parallel()

	t.Run("public submission needs no session", func(t *testing.T) {
		t.Parallel()

		quotes := &stubQuoteService{quote: application.QuoteRequest{ID: "quote1", Status: application.QuoteNew}}
		router := newTestRouter(routerStubs{quotes: quotes}, nil)

		body := `{"name":"Dana","email":"dana@example.com","zip":"01234","dog_count":2,"frequency":"WEEKLY"}`
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(body)))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if quotes.lastOrgID != "org1" {
			t.Errorf("expected default org forwarded, got %q", quotes.lastOrgID)
		}
	})

	t.Run("listing quotes requires a session", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(routerStubs{quotes: &stubQuoteService{}}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("conversion returns the created records", func(t *testing.T) {
		t.Parallel()

		quotes := &stubQuoteService{converted: application.ConvertQuoteResult{
			Quote:         application.QuoteRequest{ID: "quote1", Status: application.QuoteConverted},
			Client:        application.Client{ID: "client1"},
			Location:      application.Location{ID: "loc1", ClientID: "client1"},
			Subscription:  application.Subscription{ID: "sub1", Status: application.SubscriptionActive, StartDate: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)},
			JobsGenerated: 2,
		}}
		router := newTestRouter(routerStubs{quotes: quotes}, nil)

		body := `{"location":{"label":"Backyard","street":"12 Elm St","zip":"01234"},"price_cents":2500,"start_date":"2025-01-13"}`
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/quotes/quote1/convert", body))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp convertQuoteResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Subscription.ID != "sub1" || resp.JobsGenerated != 2 {
			t.Errorf("unexpected conversion payload: %+v", resp)
		}
	})

	t.Run("already converted maps to 409", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(routerStubs{quotes: &stubQuoteService{err: application.ErrAlreadyExists}}, nil)

		body := `{"location":{"label":"Backyard","street":"12 Elm St"},"price_cents":2500,"start_date":"2025-01-13"}`
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/quotes/quote1/convert", body))

		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", recorder.Code)
		}
	})

	t.Run("status update uses PUT", func(t *testing.T) {
		t.Parallel()

		quotes := &stubQuoteService{quote: application.QuoteRequest{ID: "quote1", Status: application.QuoteContacted}}
		router := newTestRouter(routerStubs{quotes: quotes}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPut, "/quotes/quote1/status", `{"status":"CONTACTED"}`))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}

		recorder = httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/quotes/quote1/status", `{"status":"CONTACTED"}`))
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405 for POST, got %d", recorder.Code)
		}
	})
}

func TestRouterMethodHandling(t *testing.T) {
	t.Parallel()

	t.Run("login rejects non-POST methods", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(routerStubs{auth: &stubAuthService{}}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/sessions", nil))

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
		if !strings.Contains(recorder.Header().Get("Allow"), http.MethodPost) {
			t.Errorf("expected Allow header with POST, got %q", recorder.Header().Get("Allow"))
		}
	})

	t.Run("internal errors map to 500", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(routerStubs{clients: &stubClientService{err: errors.New("boom")}}, nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/clients", ""))

		if recorder.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", recorder.Code)
		}
	})
}
