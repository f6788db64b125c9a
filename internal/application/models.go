package application

import "time"

// Principal represents the authenticated staff member invoking a service method.
type Principal struct {
	StaffID string
	OrgID   string
	IsAdmin bool
}

// Staff roles.
const (
	RoleAdmin = "ADMIN"
	RoleTech  = "TECH"
)

// Subscription statuses.
const (
	SubscriptionActive   = "ACTIVE"
	SubscriptionPaused   = "PAUSED"
	SubscriptionCanceled = "CANCELED"
)

// Job statuses.
const (
	JobScheduled  = "SCHEDULED"
	JobInProgress = "IN_PROGRESS"
	JobCompleted  = "COMPLETED"
	JobSkipped    = "SKIPPED"
	JobCanceled   = "CANCELED"
)

// Quote statuses.
const (
	QuoteNew       = "NEW"
	QuoteContacted = "CONTACTED"
	QuoteConverted = "CONVERTED"
	QuoteDeclined  = "DECLINED"
)

// StaffUser represents a staff account as seen by the service layer.
type StaffUser struct {
	ID             string
	OrgID          string
	Email          string
	DisplayName    string
	Role           string
	PasswordHash   string
	Disabled       bool
	FailedAttempts int
	LastFailedAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Session represents an issued authentication session.
type Session struct {
	ID        string
	StaffID   string
	Token     string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthenticateParams carries login input. OrgID may be empty when the
// deployment has a single organization.
type AuthenticateParams struct {
	OrgID    string
	Email    string
	Password string
}

// AuthenticateResult bundles the account and the freshly issued session.
type AuthenticateResult struct {
	Staff   StaffUser
	Session Session
}

// Client represents a customer account.
type Client struct {
	ID        string
	OrgID     string
	Name      string
	Email     string
	Phone     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientInput captures caller provided client fields.
type ClientInput struct {
	Name  string
	Email string
	Phone string
}

// Location is a serviceable address belonging to a client.
type Location struct {
	ID        string
	OrgID     string
	ClientID  string
	Label     string
	Street    string
	City      string
	Zip       string
	GateCode  *string
	DogCount  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationInput captures caller provided location fields.
type LocationInput struct {
	Label    string
	Street   string
	City     string
	Zip      string
	GateCode *string
	DogCount int
}

// Subscription represents a recurring-service agreement.
type Subscription struct {
	ID               string
	OrgID            string
	ClientID         string
	LocationID       string
	Status           string
	Frequency        string
	PreferredWeekday *int
	PriceCents       int
	StartDate        time.Time
	EndDate          *time.Time
	NextServiceDate  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SubscriptionInput captures caller provided subscription fields.
type SubscriptionInput struct {
	ClientID         string
	LocationID       string
	Frequency        string
	PreferredWeekday *int
	PriceCents       int
	StartDate        time.Time
	EndDate          *time.Time
}

// CreateSubscriptionParams wraps the data required to create a subscription.
type CreateSubscriptionParams struct {
	Principal Principal
	Input     SubscriptionInput
}

// UpdateSubscriptionParams wraps the data required to update a subscription.
type UpdateSubscriptionParams struct {
	Principal      Principal
	SubscriptionID string
	Input          SubscriptionInput
}

// SubscriptionResult pairs the persisted subscription with the number of
// jobs the change generated, for the caller's audit trail.
type SubscriptionResult struct {
	Subscription  Subscription
	JobsGenerated int
}

// Job is one scheduled service visit.
type Job struct {
	ID             string
	OrgID          string
	ClientID       string
	LocationID     string
	SubscriptionID *string
	ScheduledDate  time.Time
	Status         string
	PriceCents     int
	AssignedTechID *string
	CompletedAt    *time.Time
	SkippedReason  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OneOffJobInput captures caller provided fields for a visit with no
// subscription behind it.
type OneOffJobInput struct {
	ClientID      string
	LocationID    string
	ScheduledDate time.Time
	PriceCents    int
}

// JobListFilter narrows job listings.
type JobListFilter struct {
	SubscriptionID string
	AssignedTechID string
	Statuses       []string
	From           *time.Time
	To             *time.Time
}

// QuoteRequest is an inbound lead from the public quote funnel.
type QuoteRequest struct {
	ID           string
	OrgID        string
	Name         string
	Email        string
	Phone        string
	Zip          string
	DogCount     int
	YardSize     string
	FrequencyRaw string
	Status       string
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// QuoteInput captures the public quote form fields.
type QuoteInput struct {
	Name         string
	Email        string
	Phone        string
	Zip          string
	DogCount     int
	YardSize     string
	FrequencyRaw string
	Notes        *string
}

// ConvertQuoteParams wraps the data required to turn a quote into a paying
// client with an active subscription.
type ConvertQuoteParams struct {
	Principal        Principal
	QuoteID          string
	Location         LocationInput
	PriceCents       int
	StartDate        time.Time
	PreferredWeekday *int
}
