package persistence

import (
	"context"
	"time"
)

// OrganizationRepository stores tenant records.
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, org Organization) error
	GetOrganization(ctx context.Context, id string) (Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
}

// StaffRepository exposes CRUD operations for staff accounts.
type StaffRepository interface {
	CreateStaff(ctx context.Context, staff StaffUser) error
	UpdateStaff(ctx context.Context, staff StaffUser) error
	GetStaff(ctx context.Context, orgID, id string) (StaffUser, error)
	GetStaffByID(ctx context.Context, id string) (StaffUser, error)
	GetStaffByEmail(ctx context.Context, orgID, email string) (StaffUser, error)
	ListStaff(ctx context.Context, orgID string) ([]StaffUser, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error)
}

// ClientRepository exposes CRUD operations for clients.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) error
	UpdateClient(ctx context.Context, client Client) error
	GetClient(ctx context.Context, orgID, id string) (Client, error)
	ListClients(ctx context.Context, orgID string) ([]Client, error)
	DeleteClient(ctx context.Context, orgID, id string) error
}

// LocationRepository stores serviceable addresses for clients.
type LocationRepository interface {
	CreateLocation(ctx context.Context, location Location) error
	GetLocation(ctx context.Context, orgID, id string) (Location, error)
	ListLocationsForClient(ctx context.Context, orgID, clientID string) ([]Location, error)
}

// SubscriptionFilter narrows subscription queries.
type SubscriptionFilter struct {
	ClientID string
	Status   string
}

// SubscriptionRepository stores recurring-service agreements.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub Subscription) error
	UpdateSubscription(ctx context.Context, sub Subscription) error
	GetSubscription(ctx context.Context, orgID, id string) (Subscription, error)
	ListSubscriptions(ctx context.Context, orgID string, filter SubscriptionFilter) ([]Subscription, error)
	ListActiveSubscriptions(ctx context.Context) ([]Subscription, error)
	SetNextServiceDate(ctx context.Context, orgID, id string, next *time.Time) error
}

// JobFilter narrows job queries.
type JobFilter struct {
	SubscriptionID string
	AssignedTechID string
	Statuses       []string
	From           *time.Time
	To             *time.Time
}

// JobRepository stores scheduled service visits.
//
// InsertJobs skips rows whose (subscription, scheduled date) pair is already
// present and reports the number of rows actually created, so regeneration
// stays idempotent under concurrent callers. An empty ListJobs result is not
// an error; connectivity failures are.
type JobRepository interface {
	InsertJobs(ctx context.Context, jobs []Job) (int, error)
	UpdateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, orgID, id string) (Job, error)
	ListJobs(ctx context.Context, orgID string, filter JobFilter) ([]Job, error)
	EarliestScheduledDate(ctx context.Context, orgID, subscriptionID string) (*time.Time, error)
}

// QuoteRepository stores inbound quote requests.
type QuoteRepository interface {
	CreateQuote(ctx context.Context, quote QuoteRequest) error
	UpdateQuote(ctx context.Context, quote QuoteRequest) error
	GetQuote(ctx context.Context, orgID, id string) (QuoteRequest, error)
	ListQuotes(ctx context.Context, orgID string, status string) ([]QuoteRequest, error)
}
