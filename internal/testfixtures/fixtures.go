package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

var (
	orgCounter          uint64
	staffCounter        uint64
	clientCounter       uint64
	locationCounter     uint64
	subscriptionCounter uint64
	jobCounter          uint64
	quoteCounter        uint64
	sessionCounter      uint64
)

var referenceTime = time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday so weekday-sensitive schedule tests read naturally.
func ReferenceTime() time.Time {
	return referenceTime
}

// ------------------------- Organization fixtures --------------------------

// OrganizationFixture is a deterministic tenant record.
type OrganizationFixture struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrganizationOption configures the generated organization fixture.
type OrganizationOption func(*OrganizationFixture)

// NewOrganizationFixture returns a deterministic organization fixture with
// optional overrides.
func NewOrganizationFixture(opts ...OrganizationOption) OrganizationFixture {
	idx := atomic.AddUint64(&orgCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := OrganizationFixture{
		ID:        fmt.Sprintf("org-%03d", idx),
		Name:      fmt.Sprintf("Org %03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithOrganizationID overrides the generated organization ID.
func WithOrganizationID(id string) OrganizationOption {
	return func(f *OrganizationFixture) {
		f.ID = id
	}
}

// WithOrganizationName overrides the generated organization name.
func WithOrganizationName(name string) OrganizationOption {
	return func(f *OrganizationFixture) {
		f.Name = name
	}
}

// Model converts the fixture into its persistence representation.
func (f OrganizationFixture) Model() persistence.Organization {
	return persistence.Organization{
		ID:        f.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ----------------------------- Staff fixtures -----------------------------

// StaffFixture is a deterministic staff account record.
type StaffFixture struct {
	ID           string
	OrgID        string
	Email        string
	DisplayName  string
	Role         string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffOption configures the generated staff fixture.
type StaffOption func(*StaffFixture)

// NewStaffFixture returns a deterministic staff fixture with optional
// overrides. The default account is an active field tech.
func NewStaffFixture(opts ...StaffOption) StaffFixture {
	idx := atomic.AddUint64(&staffCounter, 1)
	id := fmt.Sprintf("staff-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := StaffFixture{
		ID:           id,
		OrgID:        "org-001",
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("Staff %03d", idx),
		Role:         "TECH",
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithStaffID overrides the generated staff ID.
func WithStaffID(id string) StaffOption {
	return func(f *StaffFixture) {
		f.ID = id
	}
}

// WithStaffOrg places the staff account in the given organization.
func WithStaffOrg(orgID string) StaffOption {
	return func(f *StaffFixture) {
		f.OrgID = orgID
	}
}

// WithStaffEmail overrides the generated email address.
func WithStaffEmail(email string) StaffOption {
	return func(f *StaffFixture) {
		f.Email = email
	}
}

// WithStaffRole overrides the role, e.g. ADMIN.
func WithStaffRole(role string) StaffOption {
	return func(f *StaffFixture) {
		f.Role = role
	}
}

// WithStaffPasswordHash overrides the stored password hash.
func WithStaffPasswordHash(hash string) StaffOption {
	return func(f *StaffFixture) {
		f.PasswordHash = hash
	}
}

// WithStaffDisabled marks the account disabled.
func WithStaffDisabled(disabled bool) StaffOption {
	return func(f *StaffFixture) {
		f.Disabled = disabled
	}
}

// Model converts the fixture into its persistence representation.
func (f StaffFixture) Model() persistence.StaffUser {
	return persistence.StaffUser{
		ID:           f.ID,
		OrgID:        f.OrgID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		Role:         f.Role,
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ---------------------------- Client fixtures -----------------------------

// ClientFixture is a deterministic customer record.
type ClientFixture struct {
	ID        string
	OrgID     string
	Name      string
	Email     string
	Phone     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientOption configures the generated client fixture.
type ClientOption func(*ClientFixture)

// NewClientFixture returns a deterministic active client with optional
// overrides.
func NewClientFixture(opts ...ClientOption) ClientFixture {
	idx := atomic.AddUint64(&clientCounter, 1)
	id := fmt.Sprintf("client-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ClientFixture{
		ID:        id,
		OrgID:     "org-001",
		Name:      fmt.Sprintf("Client %03d", idx),
		Email:     fmt.Sprintf("%s@example.com", id),
		Status:    "ACTIVE",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithClientID overrides the generated client ID.
func WithClientID(id string) ClientOption {
	return func(f *ClientFixture) {
		f.ID = id
	}
}

// WithClientOrg places the client in the given organization.
func WithClientOrg(orgID string) ClientOption {
	return func(f *ClientFixture) {
		f.OrgID = orgID
	}
}

// WithClientEmail overrides the generated email address.
func WithClientEmail(email string) ClientOption {
	return func(f *ClientFixture) {
		f.Email = email
	}
}

// WithClientStatus overrides the client status.
func WithClientStatus(status string) ClientOption {
	return func(f *ClientFixture) {
		f.Status = status
	}
}

// Model converts the fixture into its persistence representation.
func (f ClientFixture) Model() persistence.Client {
	return persistence.Client{
		ID:        f.ID,
		OrgID:     f.OrgID,
		Name:      f.Name,
		Email:     f.Email,
		Phone:     f.Phone,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// --------------------------- Location fixtures ----------------------------

// LocationFixture is a deterministic serviceable address.
type LocationFixture struct {
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

// LocationOption configures the generated location fixture.
type LocationOption func(*LocationFixture)

// NewLocationFixture returns a deterministic location with optional
// overrides.
func NewLocationFixture(opts ...LocationOption) LocationFixture {
	idx := atomic.AddUint64(&locationCounter, 1)
	id := fmt.Sprintf("loc-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := LocationFixture{
		ID:        id,
		OrgID:     "org-001",
		ClientID:  "client-001",
		Label:     fmt.Sprintf("Yard %03d", idx),
		Street:    fmt.Sprintf("%d Elm St", idx),
		City:      "Springfield",
		Zip:       "01234",
		DogCount:  2,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithLocationID overrides the generated location ID.
func WithLocationID(id string) LocationOption {
	return func(f *LocationFixture) {
		f.ID = id
	}
}

// WithLocationOrg places the location in the given organization.
func WithLocationOrg(orgID string) LocationOption {
	return func(f *LocationFixture) {
		f.OrgID = orgID
	}
}

// WithLocationClient attaches the location to the given client.
func WithLocationClient(clientID string) LocationOption {
	return func(f *LocationFixture) {
		f.ClientID = clientID
	}
}

// WithLocationGateCode sets the gate code.
func WithLocationGateCode(code string) LocationOption {
	return func(f *LocationFixture) {
		f.GateCode = &code
	}
}

// WithLocationDogCount overrides the dog count.
func WithLocationDogCount(count int) LocationOption {
	return func(f *LocationFixture) {
		f.DogCount = count
	}
}

// Model converts the fixture into its persistence representation.
func (f LocationFixture) Model() persistence.Location {
	return persistence.Location{
		ID:        f.ID,
		OrgID:     f.OrgID,
		ClientID:  f.ClientID,
		Label:     f.Label,
		Street:    f.Street,
		City:      f.City,
		Zip:       f.Zip,
		GateCode:  f.GateCode,
		DogCount:  f.DogCount,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ------------------------- Subscription fixtures --------------------------

// SubscriptionFixture is a deterministic recurring-service agreement.
type SubscriptionFixture struct {
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

// SubscriptionOption configures the generated subscription fixture.
type SubscriptionOption func(*SubscriptionFixture)

// NewSubscriptionFixture returns a deterministic weekly active subscription
// with optional overrides. The start date is the reference Monday.
func NewSubscriptionFixture(opts ...SubscriptionOption) SubscriptionFixture {
	idx := atomic.AddUint64(&subscriptionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SubscriptionFixture{
		ID:         fmt.Sprintf("sub-%03d", idx),
		OrgID:      "org-001",
		ClientID:   "client-001",
		LocationID: "loc-001",
		Status:     "ACTIVE",
		Frequency:  "WEEKLY",
		PriceCents: 2500,
		StartDate:  time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSubscriptionID overrides the generated subscription ID.
func WithSubscriptionID(id string) SubscriptionOption {
	return func(f *SubscriptionFixture) {
		f.ID = id
	}
}

// WithSubscriptionOrg places the subscription in the given organization.
func WithSubscriptionOrg(orgID string) SubscriptionOption {
	return func(f *SubscriptionFixture) {
		f.OrgID = orgID
	}
}

// WithSubscriptionClient attaches the subscription to a client and location.
func WithSubscriptionClient(clientID, locationID string) SubscriptionOption {
	return func(f *SubscriptionFixture) {
		f.ClientID = clientID
		f.LocationID = locationID
	}
}

// WithSubscriptionStatus overrides the lifecycle status.
func WithSubscriptionStatus(status string) SubscriptionOption {
	return func(f *SubscriptionFixture) {
		f.Status = status
	}
}

// WithSubscriptionFrequency overrides the service frequency.
func WithSubscriptionFrequency(frequency string) SubscriptionOption {
	return func(f *SubscriptionFixture) {
		f.Frequency = frequency
	}
}

// WithSubscriptionPreferredWeekday sets the preferred service weekday.
func WithSubscriptionPreferredWeekday(weekday int) SubscriptionOption {
	return func(f *SubscriptionFixture) {
		f.PreferredWeekday = &weekday
	}
}

// WithSubscriptionStartDate overrides the start date.
func WithSubscriptionStartDate(start time.Time) SubscriptionOption {
	return func(f *SubscriptionFixture) {
		f.StartDate = start
	}
}

// WithSubscriptionEndDate sets the end date.
func WithSubscriptionEndDate(end time.Time) SubscriptionOption {
	return func(f *SubscriptionFixture) {
		f.EndDate = &end
	}
}

// Model converts the fixture into its persistence representation.
func (f SubscriptionFixture) Model() persistence.Subscription {
	return persistence.Subscription{
		ID:               f.ID,
		OrgID:            f.OrgID,
		ClientID:         f.ClientID,
		LocationID:       f.LocationID,
		Status:           f.Status,
		Frequency:        f.Frequency,
		PreferredWeekday: f.PreferredWeekday,
		PriceCents:       f.PriceCents,
		StartDate:        f.StartDate,
		EndDate:          f.EndDate,
		NextServiceDate:  f.NextServiceDate,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// ------------------------------ Job fixtures ------------------------------

// JobFixture is a deterministic scheduled service visit.
type JobFixture struct {
	ID             string
	OrgID          string
	ClientID       string
	LocationID     string
	SubscriptionID *string
	ScheduledDate  time.Time
	Status         string
	PriceCents     int
	AssignedTechID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// JobOption configures the generated job fixture.
type JobOption func(*JobFixture)

// NewJobFixture returns a deterministic SCHEDULED visit with optional
// overrides.
func NewJobFixture(opts ...JobOption) JobFixture {
	idx := atomic.AddUint64(&jobCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := JobFixture{
		ID:            fmt.Sprintf("job-%03d", idx),
		OrgID:         "org-001",
		ClientID:      "client-001",
		LocationID:    "loc-001",
		ScheduledDate: time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(idx-1)),
		Status:        "SCHEDULED",
		PriceCents:    2500,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithJobID overrides the generated job ID.
func WithJobID(id string) JobOption {
	return func(f *JobFixture) {
		f.ID = id
	}
}

// WithJobOrg places the job in the given organization.
func WithJobOrg(orgID string) JobOption {
	return func(f *JobFixture) {
		f.OrgID = orgID
	}
}

// WithJobSubscription attaches the job to a subscription.
func WithJobSubscription(subscriptionID string) JobOption {
	return func(f *JobFixture) {
		f.SubscriptionID = &subscriptionID
	}
}

// WithJobClient attaches the job to a client and location.
func WithJobClient(clientID, locationID string) JobOption {
	return func(f *JobFixture) {
		f.ClientID = clientID
		f.LocationID = locationID
	}
}

// WithJobScheduledDate overrides the scheduled date.
func WithJobScheduledDate(date time.Time) JobOption {
	return func(f *JobFixture) {
		f.ScheduledDate = date
	}
}

// WithJobStatus overrides the job status.
func WithJobStatus(status string) JobOption {
	return func(f *JobFixture) {
		f.Status = status
	}
}

// WithJobAssignedTech assigns the job to a tech.
func WithJobAssignedTech(techID string) JobOption {
	return func(f *JobFixture) {
		f.AssignedTechID = &techID
	}
}

// Model converts the fixture into its persistence representation.
func (f JobFixture) Model() persistence.Job {
	return persistence.Job{
		ID:             f.ID,
		OrgID:          f.OrgID,
		ClientID:       f.ClientID,
		LocationID:     f.LocationID,
		SubscriptionID: f.SubscriptionID,
		ScheduledDate:  f.ScheduledDate,
		Status:         f.Status,
		PriceCents:     f.PriceCents,
		AssignedTechID: f.AssignedTechID,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// ----------------------------- Quote fixtures -----------------------------

// QuoteFixture is a deterministic inbound quote request.
type QuoteFixture struct {
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
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// QuoteOption configures the generated quote fixture.
type QuoteOption func(*QuoteFixture)

// NewQuoteFixture returns a deterministic NEW quote with optional overrides.
func NewQuoteFixture(opts ...QuoteOption) QuoteFixture {
	idx := atomic.AddUint64(&quoteCounter, 1)
	id := fmt.Sprintf("quote-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := QuoteFixture{
		ID:           id,
		OrgID:        "org-001",
		Name:         fmt.Sprintf("Lead %03d", idx),
		Email:        fmt.Sprintf("%s@example.com", id),
		Zip:          "01234",
		DogCount:     2,
		YardSize:     "MEDIUM",
		FrequencyRaw: "WEEKLY",
		Status:       "NEW",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithQuoteID overrides the generated quote ID.
func WithQuoteID(id string) QuoteOption {
	return func(f *QuoteFixture) {
		f.ID = id
	}
}

// WithQuoteOrg places the quote in the given organization.
func WithQuoteOrg(orgID string) QuoteOption {
	return func(f *QuoteFixture) {
		f.OrgID = orgID
	}
}

// WithQuoteStatus overrides the funnel status.
func WithQuoteStatus(status string) QuoteOption {
	return func(f *QuoteFixture) {
		f.Status = status
	}
}

// WithQuoteFrequency overrides the requested frequency text.
func WithQuoteFrequency(raw string) QuoteOption {
	return func(f *QuoteFixture) {
		f.FrequencyRaw = raw
	}
}

// Model converts the fixture into its persistence representation.
func (f QuoteFixture) Model() persistence.QuoteRequest {
	return persistence.QuoteRequest{
		ID:           f.ID,
		OrgID:        f.OrgID,
		Name:         f.Name,
		Email:        f.Email,
		Phone:        f.Phone,
		Zip:          f.Zip,
		DogCount:     f.DogCount,
		YardSize:     f.YardSize,
		FrequencyRaw: f.FrequencyRaw,
		Status:       f.Status,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionFixture is a deterministic authentication session.
type SessionFixture struct {
	ID        string
	StaffID   string
	Token     string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic unexpired session with optional
// overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		StaffID:   "staff-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionStaff attaches the session to a staff account.
func WithSessionStaff(staffID string) SessionOption {
	return func(f *SessionFixture) {
		f.StaffID = staffID
	}
}

// WithSessionToken overrides the session token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt overrides the expiry instant.
func WithSessionExpiresAt(expires time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = expires
	}
}

// WithSessionRevokedAt marks the session revoked at the given instant.
func WithSessionRevokedAt(revoked time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &revoked
	}
}

// Model converts the fixture into its persistence representation.
func (f SessionFixture) Model() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		StaffID:   f.StaffID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		RevokedAt: f.RevokedAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
