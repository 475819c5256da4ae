package testutil

import (
	"context"
	"time"

	"github.com/flexprice/marketplace/internal/cache"
	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/flexprice/marketplace/internal/validator"
	"github.com/stretchr/testify/suite"
)

const (
	TestWebhookSecret  = "whsec_test_secret"
	TestPublishableKey = "pk_test_marketplace"
	TestReturnURL      = "https://app.example.com/onboarding/return"
	TestRefreshURL     = "https://app.example.com/onboarding/refresh"
)

// Stores holds the in-memory repositories for testing
type Stores struct {
	ProviderRepo   *InMemoryProviderStore
	BookingRepo    *InMemoryBookingStore
	UserRepo       *InMemoryUserStore
	WebhookLogRepo *InMemoryWebhookLogStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	gateway    *FakeGateway
	reconciler *FakeReconciler
	cache      cache.Cache
	logger     *logger.Logger
	config     *config.Configuration
	now        time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Stripe.SecretKey = "sk_test_marketplace"
	cfg.Stripe.PublishableKey = TestPublishableKey
	cfg.Stripe.WebhookSecret = TestWebhookSecret
	cfg.Stripe.Onboarding.ReturnURL = TestReturnURL
	cfg.Stripe.Onboarding.RefreshURL = TestRefreshURL
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.stores = Stores{
		ProviderRepo:   NewInMemoryProviderStore(),
		BookingRepo:    NewInMemoryBookingStore(),
		UserRepo:       NewInMemoryUserStore(),
		WebhookLogRepo: NewInMemoryWebhookLogStore(),
	}
	s.gateway = NewFakeGateway()
	s.reconciler = NewFakeReconciler()
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.ProviderRepo.Clear()
	s.stores.BookingRepo.Clear()
	s.stores.UserRepo.Clear()
	s.stores.WebhookLogRepo.Clear()
	s.cache.Flush(context.Background())
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// SetContext replaces the test context, e.g. to act as a different caller
func (s *BaseServiceTestSuite) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the fake processor
func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

// GetReconciler returns the fake booking reconciler
func (s *BaseServiceTestSuite) GetReconciler() *FakeReconciler {
	return s.reconciler
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}
