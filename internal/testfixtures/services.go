package testfixtures

import (
	"log/slog"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// SubscriptionServiceDeps captures dependencies for constructing a
// subscription service.
type SubscriptionServiceDeps struct {
	Subscriptions application.SubscriptionRepository
	Directory     application.ClientDirectory
	Synchronizer  application.JobSynchronizer
	Calendar      application.JobCalendar
	HorizonDays   int
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewSubscriptionService builds a subscription service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewSubscriptionService(deps SubscriptionServiceDeps) *application.SubscriptionService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSubscriptionServiceWithLogger(
		deps.Subscriptions,
		deps.Directory,
		deps.Synchronizer,
		deps.Calendar,
		deps.HorizonDays,
		idGen,
		now,
		deps.Logger,
	)
}

// ClientServiceDeps captures dependencies for constructing a client service.
type ClientServiceDeps struct {
	Clients     application.ClientRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewClientService builds a client service using the supplied dependencies.
func (f *ServiceFactory) NewClientService(deps ClientServiceDeps) *application.ClientService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewClientServiceWithLogger(
		deps.Clients,
		idGen,
		now,
		deps.Logger,
	)
}

// JobServiceDeps captures dependencies for constructing a job service.
type JobServiceDeps struct {
	Jobs        application.JobRepository
	Staff       application.StaffDirectory
	Directory   application.ClientDirectory
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewJobService builds a job service using the supplied dependencies.
func (f *ServiceFactory) NewJobService(deps JobServiceDeps) *application.JobService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewJobServiceWithLogger(
		deps.Jobs,
		deps.Staff,
		deps.Directory,
		idGen,
		now,
		deps.Logger,
	)
}

// QuoteServiceDeps captures dependencies for constructing a quote service.
type QuoteServiceDeps struct {
	Quotes        application.QuoteRepository
	Clients       application.ClientCreator
	Subscriptions application.SubscriptionCreator
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewQuoteService builds a quote service using the supplied dependencies.
func (f *ServiceFactory) NewQuoteService(deps QuoteServiceDeps) *application.QuoteService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewQuoteServiceWithLogger(
		deps.Quotes,
		deps.Clients,
		deps.Subscriptions,
		idGen,
		now,
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	IDGenerator    func() string
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.PasswordVerify,
		idGen,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}
