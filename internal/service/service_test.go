package service

import (
	"github.com/flexprice/marketplace/internal/integration"
	"github.com/flexprice/marketplace/internal/testutil"
)

// ServiceSuite wires the services against in-memory stores and a fake processor
type ServiceSuite struct {
	testutil.BaseServiceTestSuite
	params ServiceParams
}

func (s *ServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	factory := integration.NewFactory(
		s.GetConfig(),
		s.GetLogger(),
		s.GetGateway(),
		stores.ProviderRepo,
		stores.UserRepo,
		s.GetReconciler(),
	)

	s.params = NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetCache(),
		nil,
		stores.ProviderRepo,
		stores.BookingRepo,
		stores.UserRepo,
		stores.WebhookLogRepo,
		factory,
	)
}
