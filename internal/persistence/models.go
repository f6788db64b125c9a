package persistence

import "time"

// Organization is the tenant boundary every other record belongs to.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StaffUser represents a back-office or field-tech account within an
// organization.
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

// Session represents an authentication session persisted for a staff user.
type Session struct {
	ID        string
	StaffID   string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
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

// Subscription represents a client's recurring-service agreement.
// NextServiceDate caches the earliest pending job's scheduled date.
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

// Job is one scheduled service visit. SubscriptionID is nil for one-off
// visits. PriceCents is a snapshot taken at creation time.
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

// QuoteRequest is an inbound lead captured by the public quote funnel.
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
