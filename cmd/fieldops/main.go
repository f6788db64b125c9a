package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/application"
	"github.com/brandonecarr/doogoodscoopers-sub002/internal/config"
	httptransport "github.com/brandonecarr/doogoodscoopers-sub002/internal/http"
	"github.com/brandonecarr/doogoodscoopers-sub002/internal/logging"
	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence/sqlite"
	"github.com/brandonecarr/doogoodscoopers-sub002/internal/schedule"
	"github.com/brandonecarr/doogoodscoopers-sub002/internal/worker"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	orgRepo := sqlite.NewOrganizationRepository(pool)
	staffRepo := sqlite.NewStaffRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)
	clientRepo := sqlite.NewClientRepository(pool)
	subscriptionRepo := sqlite.NewSubscriptionRepository(pool)
	jobRepo := sqlite.NewJobRepository(pool)
	quoteRepo := sqlite.NewQuoteRepository(pool)

	defaultOrgID, err := ensureDefaultTenant(ctx, logger, orgRepo, staffRepo, idGenerator, now)
	if err != nil {
		logger.Error("failed to prepare default tenant", "error", err)
		os.Exit(1)
	}

	clients := newClientRepositoryAdapter(clientRepo)
	subscriptions := newSubscriptionRepositoryAdapter(subscriptionRepo)
	jobs := newJobRepositoryAdapter(jobRepo)
	quotes := newQuoteRepositoryAdapter(quoteRepo)
	staffDirectory := newStaffDirectoryAdapter(staffRepo)
	credentials := newCredentialStoreAdapter(staffRepo)
	sessions := newSessionRepositoryAdapter(sessionRepo)

	synchronizer := schedule.NewSynchronizer(newJobStoreAdapter(jobRepo), idGenerator, now)

	clientService := application.NewClientServiceWithLogger(clients, idGenerator, now, logger)
	subscriptionService := application.NewSubscriptionServiceWithLogger(subscriptions, clients, synchronizer, jobRepo, cfg.HorizonDays, idGenerator, now, logger)
	jobService := application.NewJobServiceWithLogger(jobs, staffDirectory, clients, idGenerator, now, logger)
	quoteService := application.NewQuoteServiceWithLogger(quotes, clientService, subscriptionService, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(credentials, sessions, nil, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:            httptransport.NewAuthHandler(newAuthServiceAdapter(authService, defaultOrgID), logger),
		Clients:         httptransport.NewClientHandler(clientService, logger),
		Subscriptions:   httptransport.NewSubscriptionHandler(subscriptionService, logger),
		Jobs:            httptransport.NewJobHandler(jobService, logger),
		Quotes:          httptransport.NewQuoteHandler(quoteService, defaultOrgID, logger),
		RequireSession:  httptransport.RequireSession(authService, logger),
		PublicRateLimit: httptransport.PublicRateLimit(rate.Limit(float64(cfg.QuoteRatePerMin)/60.0), cfg.QuoteRatePerMin, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	topUp, err := worker.NewTopUpWorker(cfg.TopUpSchedule, newSubscriptionListerAdapter(subscriptionRepo), subscriptionService, authService, logger)
	if err != nil {
		logger.Error("failed to build top-up worker", "error", err)
		os.Exit(1)
	}
	topUp.Start()
	defer topUp.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("field service API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// ensureDefaultTenant returns the organization public quote submissions and
// org-less logins resolve to. A fresh database gets one organization and one
// administrator whose generated password is logged exactly once.
func ensureDefaultTenant(ctx context.Context, logger *slog.Logger, orgs persistence.OrganizationRepository, staff persistence.StaffRepository, idGenerator func() string, now func() time.Time) (string, error) {
	existing, err := orgs.ListOrganizations(ctx)
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		return existing[0].ID, nil
	}

	created := now().UTC()
	org := persistence.Organization{
		ID:        idGenerator(),
		Name:      "Doo Good Scoopers",
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := orgs.CreateOrganization(ctx, org); err != nil {
		return "", err
	}

	password := randomHex(12)
	hash, err := application.HashPassword(password)
	if err != nil {
		return "", err
	}

	admin := persistence.StaffUser{
		ID:           idGenerator(),
		OrgID:        org.ID,
		Email:        "admin@fieldops.local",
		DisplayName:  "Administrator",
		Role:         "ADMIN",
		PasswordHash: hash,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	if err := staff.CreateStaff(ctx, admin); err != nil {
		return "", err
	}

	logger.Info("seeded default administrator",
		"org_id", org.ID,
		"email", admin.Email,
		"password", password)
	return org.ID, nil
}

// authServiceAdapter resolves org-less logins to the default organization so
// single-tenant deployments do not need to send an org id.
type authServiceAdapter struct {
	service      *application.AuthService
	defaultOrgID string
}

func newAuthServiceAdapter(service *application.AuthService, defaultOrgID string) *authServiceAdapter {
	return &authServiceAdapter{service: service, defaultOrgID: defaultOrgID}
}

func (a *authServiceAdapter) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	if params.OrgID == "" {
		params.OrgID = a.defaultOrgID
	}
	return a.service.Authenticate(ctx, params)
}

func (a *authServiceAdapter) RevokeSession(ctx context.Context, token string) error {
	return a.service.RevokeSession(ctx, token)
}

type clientRepositoryAdapter struct {
	repo *sqlite.ClientRepository
}

func newClientRepositoryAdapter(repo *sqlite.ClientRepository) *clientRepositoryAdapter {
	return &clientRepositoryAdapter{repo: repo}
}

func (a *clientRepositoryAdapter) CreateClient(ctx context.Context, client application.Client) error {
	return a.repo.CreateClient(ctx, toPersistenceClient(client))
}

func (a *clientRepositoryAdapter) UpdateClient(ctx context.Context, client application.Client) error {
	return a.repo.UpdateClient(ctx, toPersistenceClient(client))
}

func (a *clientRepositoryAdapter) GetClient(ctx context.Context, orgID, id string) (application.Client, error) {
	stored, err := a.repo.GetClient(ctx, orgID, id)
	if err != nil {
		return application.Client{}, err
	}
	return toApplicationClient(stored), nil
}

func (a *clientRepositoryAdapter) ListClients(ctx context.Context, orgID string) ([]application.Client, error) {
	models, err := a.repo.ListClients(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	clients := make([]application.Client, 0, len(models))
	for _, model := range models {
		clients = append(clients, toApplicationClient(model))
	}
	return clients, nil
}

func (a *clientRepositoryAdapter) DeleteClient(ctx context.Context, orgID, id string) error {
	return a.repo.DeleteClient(ctx, orgID, id)
}

func (a *clientRepositoryAdapter) CreateLocation(ctx context.Context, location application.Location) error {
	return a.repo.CreateLocation(ctx, toPersistenceLocation(location))
}

func (a *clientRepositoryAdapter) GetLocation(ctx context.Context, orgID, id string) (application.Location, error) {
	stored, err := a.repo.GetLocation(ctx, orgID, id)
	if err != nil {
		return application.Location{}, err
	}
	return toApplicationLocation(stored), nil
}

func (a *clientRepositoryAdapter) ListLocationsForClient(ctx context.Context, orgID, clientID string) ([]application.Location, error) {
	models, err := a.repo.ListLocationsForClient(ctx, orgID, clientID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	locations := make([]application.Location, 0, len(models))
	for _, model := range models {
		locations = append(locations, toApplicationLocation(model))
	}
	return locations, nil
}

type subscriptionRepositoryAdapter struct {
	repo persistence.SubscriptionRepository
}

func newSubscriptionRepositoryAdapter(repo persistence.SubscriptionRepository) *subscriptionRepositoryAdapter {
	return &subscriptionRepositoryAdapter{repo: repo}
}

func (a *subscriptionRepositoryAdapter) CreateSubscription(ctx context.Context, sub application.Subscription) error {
	return a.repo.CreateSubscription(ctx, toPersistenceSubscription(sub))
}

func (a *subscriptionRepositoryAdapter) UpdateSubscription(ctx context.Context, sub application.Subscription) error {
	return a.repo.UpdateSubscription(ctx, toPersistenceSubscription(sub))
}

func (a *subscriptionRepositoryAdapter) GetSubscription(ctx context.Context, orgID, id string) (application.Subscription, error) {
	stored, err := a.repo.GetSubscription(ctx, orgID, id)
	if err != nil {
		return application.Subscription{}, err
	}
	return toApplicationSubscription(stored), nil
}

func (a *subscriptionRepositoryAdapter) ListSubscriptions(ctx context.Context, orgID string, clientID, status string) ([]application.Subscription, error) {
	models, err := a.repo.ListSubscriptions(ctx, orgID, persistence.SubscriptionFilter{ClientID: clientID, Status: status})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	subs := make([]application.Subscription, 0, len(models))
	for _, model := range models {
		subs = append(subs, toApplicationSubscription(model))
	}
	return subs, nil
}

func (a *subscriptionRepositoryAdapter) SetNextServiceDate(ctx context.Context, orgID, id string, next *time.Time) error {
	return a.repo.SetNextServiceDate(ctx, orgID, id, next)
}

// subscriptionListerAdapter feeds the nightly top-up sweep.
type subscriptionListerAdapter struct {
	repo persistence.SubscriptionRepository
}

func newSubscriptionListerAdapter(repo persistence.SubscriptionRepository) *subscriptionListerAdapter {
	return &subscriptionListerAdapter{repo: repo}
}

func (a *subscriptionListerAdapter) ListActiveSubscriptions(ctx context.Context) ([]application.Subscription, error) {
	models, err := a.repo.ListActiveSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	subs := make([]application.Subscription, 0, len(models))
	for _, model := range models {
		subs = append(subs, toApplicationSubscription(model))
	}
	return subs, nil
}

type jobRepositoryAdapter struct {
	repo persistence.JobRepository
}

func newJobRepositoryAdapter(repo persistence.JobRepository) *jobRepositoryAdapter {
	return &jobRepositoryAdapter{repo: repo}
}

func (a *jobRepositoryAdapter) InsertJobs(ctx context.Context, jobs []application.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}
	models := make([]persistence.Job, 0, len(jobs))
	for _, job := range jobs {
		models = append(models, toPersistenceJob(job))
	}
	return a.repo.InsertJobs(ctx, models)
}

func (a *jobRepositoryAdapter) UpdateJob(ctx context.Context, job application.Job) error {
	return a.repo.UpdateJob(ctx, toPersistenceJob(job))
}

func (a *jobRepositoryAdapter) GetJob(ctx context.Context, orgID, id string) (application.Job, error) {
	stored, err := a.repo.GetJob(ctx, orgID, id)
	if err != nil {
		return application.Job{}, err
	}
	return toApplicationJob(stored), nil
}

func (a *jobRepositoryAdapter) ListJobs(ctx context.Context, orgID string, filter application.JobListFilter) ([]application.Job, error) {
	models, err := a.repo.ListJobs(ctx, orgID, persistence.JobFilter{
		SubscriptionID: filter.SubscriptionID,
		AssignedTechID: filter.AssignedTechID,
		Statuses:       append([]string(nil), filter.Statuses...),
		From:           cloneTime(filter.From),
		To:             cloneTime(filter.To),
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	jobs := make([]application.Job, 0, len(models))
	for _, model := range models {
		jobs = append(jobs, toApplicationJob(model))
	}
	return jobs, nil
}

// jobStoreAdapter exposes the persisted job table to the schedule
// synchronizer. Only SCHEDULED jobs participate in reconciliation.
type jobStoreAdapter struct {
	repo persistence.JobRepository
}

func newJobStoreAdapter(repo persistence.JobRepository) *jobStoreAdapter {
	return &jobStoreAdapter{repo: repo}
}

func (a *jobStoreAdapter) ScheduledDates(ctx context.Context, orgID, subscriptionID string, from, to time.Time) ([]time.Time, error) {
	models, err := a.repo.ListJobs(ctx, orgID, persistence.JobFilter{
		SubscriptionID: subscriptionID,
		Statuses:       []string{"SCHEDULED"},
		From:           &from,
		To:             &to,
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	dates := make([]time.Time, 0, len(models))
	for _, model := range models {
		dates = append(dates, model.ScheduledDate)
	}
	return dates, nil
}

func (a *jobStoreAdapter) InsertJobs(ctx context.Context, jobs []schedule.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}
	models := make([]persistence.Job, 0, len(jobs))
	for _, job := range jobs {
		subscriptionID := job.SubscriptionID
		models = append(models, persistence.Job{
			ID:             job.ID,
			OrgID:          job.OrgID,
			ClientID:       job.ClientID,
			LocationID:     job.LocationID,
			SubscriptionID: &subscriptionID,
			ScheduledDate:  job.ScheduledDate,
			Status:         "SCHEDULED",
			PriceCents:     job.PriceCents,
		})
	}
	return a.repo.InsertJobs(ctx, models)
}

type staffDirectoryAdapter struct {
	repo persistence.StaffRepository
}

func newStaffDirectoryAdapter(repo persistence.StaffRepository) *staffDirectoryAdapter {
	return &staffDirectoryAdapter{repo: repo}
}

func (a *staffDirectoryAdapter) GetStaff(ctx context.Context, orgID, id string) (application.StaffUser, error) {
	stored, err := a.repo.GetStaff(ctx, orgID, id)
	if err != nil {
		return application.StaffUser{}, err
	}
	return toApplicationStaff(stored), nil
}

type credentialStoreAdapter struct {
	repo persistence.StaffRepository
}

func newCredentialStoreAdapter(repo persistence.StaffRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetStaffByEmail(ctx context.Context, orgID, email string) (application.StaffUser, error) {
	stored, err := a.repo.GetStaffByEmail(ctx, orgID, email)
	if err != nil {
		return application.StaffUser{}, err
	}
	return toApplicationStaff(stored), nil
}

func (a *credentialStoreAdapter) GetStaffByID(ctx context.Context, id string) (application.StaffUser, error) {
	stored, err := a.repo.GetStaffByID(ctx, id)
	if err != nil {
		return application.StaffUser{}, err
	}
	return toApplicationStaff(stored), nil
}

func (a *credentialStoreAdapter) SaveLoginState(ctx context.Context, staff application.StaffUser) error {
	return a.repo.UpdateStaff(ctx, toPersistenceStaff(staff))
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error) {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type quoteRepositoryAdapter struct {
	repo persistence.QuoteRepository
}

func newQuoteRepositoryAdapter(repo persistence.QuoteRepository) *quoteRepositoryAdapter {
	return &quoteRepositoryAdapter{repo: repo}
}

func (a *quoteRepositoryAdapter) CreateQuote(ctx context.Context, quote application.QuoteRequest) error {
	return a.repo.CreateQuote(ctx, toPersistenceQuote(quote))
}

func (a *quoteRepositoryAdapter) UpdateQuote(ctx context.Context, quote application.QuoteRequest) error {
	return a.repo.UpdateQuote(ctx, toPersistenceQuote(quote))
}

func (a *quoteRepositoryAdapter) GetQuote(ctx context.Context, orgID, id string) (application.QuoteRequest, error) {
	stored, err := a.repo.GetQuote(ctx, orgID, id)
	if err != nil {
		return application.QuoteRequest{}, err
	}
	return toApplicationQuote(stored), nil
}

func (a *quoteRepositoryAdapter) ListQuotes(ctx context.Context, orgID string, status string) ([]application.QuoteRequest, error) {
	models, err := a.repo.ListQuotes(ctx, orgID, status)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	requests := make([]application.QuoteRequest, 0, len(models))
	for _, model := range models {
		requests = append(requests, toApplicationQuote(model))
	}
	return requests, nil
}

func toApplicationClient(model persistence.Client) application.Client {
	return application.Client{
		ID:        model.ID,
		OrgID:     model.OrgID,
		Name:      model.Name,
		Email:     model.Email,
		Phone:     model.Phone,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceClient(client application.Client) persistence.Client {
	return persistence.Client{
		ID:        client.ID,
		OrgID:     client.OrgID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		Status:    client.Status,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

func toApplicationLocation(model persistence.Location) application.Location {
	return application.Location{
		ID:        model.ID,
		OrgID:     model.OrgID,
		ClientID:  model.ClientID,
		Label:     model.Label,
		Street:    model.Street,
		City:      model.City,
		Zip:       model.Zip,
		GateCode:  cloneString(model.GateCode),
		DogCount:  model.DogCount,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceLocation(location application.Location) persistence.Location {
	return persistence.Location{
		ID:        location.ID,
		OrgID:     location.OrgID,
		ClientID:  location.ClientID,
		Label:     location.Label,
		Street:    location.Street,
		City:      location.City,
		Zip:       location.Zip,
		GateCode:  cloneString(location.GateCode),
		DogCount:  location.DogCount,
		CreatedAt: location.CreatedAt,
		UpdatedAt: location.UpdatedAt,
	}
}

func toApplicationSubscription(model persistence.Subscription) application.Subscription {
	return application.Subscription{
		ID:               model.ID,
		OrgID:            model.OrgID,
		ClientID:         model.ClientID,
		LocationID:       model.LocationID,
		Status:           model.Status,
		Frequency:        model.Frequency,
		PreferredWeekday: cloneInt(model.PreferredWeekday),
		PriceCents:       model.PriceCents,
		StartDate:        model.StartDate,
		EndDate:          cloneTime(model.EndDate),
		NextServiceDate:  cloneTime(model.NextServiceDate),
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func toPersistenceSubscription(sub application.Subscription) persistence.Subscription {
	return persistence.Subscription{
		ID:               sub.ID,
		OrgID:            sub.OrgID,
		ClientID:         sub.ClientID,
		LocationID:       sub.LocationID,
		Status:           sub.Status,
		Frequency:        sub.Frequency,
		PreferredWeekday: cloneInt(sub.PreferredWeekday),
		PriceCents:       sub.PriceCents,
		StartDate:        sub.StartDate,
		EndDate:          cloneTime(sub.EndDate),
		NextServiceDate:  cloneTime(sub.NextServiceDate),
		CreatedAt:        sub.CreatedAt,
		UpdatedAt:        sub.UpdatedAt,
	}
}

func toApplicationJob(model persistence.Job) application.Job {
	return application.Job{
		ID:             model.ID,
		OrgID:          model.OrgID,
		ClientID:       model.ClientID,
		LocationID:     model.LocationID,
		SubscriptionID: cloneString(model.SubscriptionID),
		ScheduledDate:  model.ScheduledDate,
		Status:         model.Status,
		PriceCents:     model.PriceCents,
		AssignedTechID: cloneString(model.AssignedTechID),
		CompletedAt:    cloneTime(model.CompletedAt),
		SkippedReason:  cloneString(model.SkippedReason),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func toPersistenceJob(job application.Job) persistence.Job {
	return persistence.Job{
		ID:             job.ID,
		OrgID:          job.OrgID,
		ClientID:       job.ClientID,
		LocationID:     job.LocationID,
		SubscriptionID: cloneString(job.SubscriptionID),
		ScheduledDate:  job.ScheduledDate,
		Status:         job.Status,
		PriceCents:     job.PriceCents,
		AssignedTechID: cloneString(job.AssignedTechID),
		CompletedAt:    cloneTime(job.CompletedAt),
		SkippedReason:  cloneString(job.SkippedReason),
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
}

func toApplicationStaff(model persistence.StaffUser) application.StaffUser {
	return application.StaffUser{
		ID:             model.ID,
		OrgID:          model.OrgID,
		Email:          model.Email,
		DisplayName:    model.DisplayName,
		Role:           model.Role,
		PasswordHash:   model.PasswordHash,
		Disabled:       model.Disabled,
		FailedAttempts: model.FailedAttempts,
		LastFailedAt:   cloneTime(model.LastFailedAt),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func toPersistenceStaff(staff application.StaffUser) persistence.StaffUser {
	return persistence.StaffUser{
		ID:             staff.ID,
		OrgID:          staff.OrgID,
		Email:          staff.Email,
		DisplayName:    staff.DisplayName,
		Role:           staff.Role,
		PasswordHash:   staff.PasswordHash,
		Disabled:       staff.Disabled,
		FailedAttempts: staff.FailedAttempts,
		LastFailedAt:   cloneTime(staff.LastFailedAt),
		CreatedAt:      staff.CreatedAt,
		UpdatedAt:      staff.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		StaffID:   model.StaffID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		RevokedAt: cloneTime(model.RevokedAt),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		StaffID:   session.StaffID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		RevokedAt: cloneTime(session.RevokedAt),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func toApplicationQuote(model persistence.QuoteRequest) application.QuoteRequest {
	return application.QuoteRequest{
		ID:           model.ID,
		OrgID:        model.OrgID,
		Name:         model.Name,
		Email:        model.Email,
		Phone:        model.Phone,
		Zip:          model.Zip,
		DogCount:     model.DogCount,
		YardSize:     model.YardSize,
		FrequencyRaw: model.FrequencyRaw,
		Status:       model.Status,
		Notes:        cloneString(model.Notes),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceQuote(quote application.QuoteRequest) persistence.QuoteRequest {
	return persistence.QuoteRequest{
		ID:           quote.ID,
		OrgID:        quote.OrgID,
		Name:         quote.Name,
		Email:        quote.Email,
		Phone:        quote.Phone,
		Zip:          quote.Zip,
		DogCount:     quote.DogCount,
		YardSize:     quote.YardSize,
		FrequencyRaw: quote.FrequencyRaw,
		Status:       quote.Status,
		Notes:        cloneString(quote.Notes),
		CreatedAt:    quote.CreatedAt,
		UpdatedAt:    quote.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
