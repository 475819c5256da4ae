package stripe

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/flexprice/marketplace/internal/domain/user"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/testutil"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func TestApplicationFee(t *testing.T) {
	tests := []struct {
		amount int64
		bps    int64
		want   int64
	}{
		{amount: 10000, bps: 2000, want: 2000},
		{amount: 0, bps: 2000, want: 0},
		{amount: 1, bps: 2000, want: 0},
		{amount: 3, bps: 2000, want: 1},
		{amount: 5, bps: 1000, want: 1},
		{amount: 25, bps: 2000, want: 5},
		{amount: 999, bps: 0, want: 0},
		{amount: 999, bps: 10000, want: 999},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ApplicationFee(tt.amount, tt.bps), "amount=%d bps=%d", tt.amount, tt.bps)
	}

	for amount := int64(0); amount <= 5000; amount += 7 {
		fee := ApplicationFee(amount, 2000)
		assert.GreaterOrEqual(t, fee, int64(0))
		assert.LessOrEqual(t, fee, amount)
	}
}

type StripeIntegrationSuite struct {
	testutil.BaseServiceTestSuite
	routing  *RoutingService
	customer *CustomerService
	connect  *ConnectService
	payout   *PayoutService
	payment  *PaymentService
}

func TestStripeIntegration(t *testing.T) {
	suite.Run(t, new(StripeIntegrationSuite))
}

func (s *StripeIntegrationSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.GetConfig().Stripe.CapabilityRule = types.CapabilityRuleAnyActive
	s.rebuild()
}

func (s *StripeIntegrationSuite) rebuild() {
	stores := s.GetStores()
	gw := s.GetGateway()
	s.routing = NewRoutingService(gw, stores.ProviderRepo, s.GetConfig(), s.GetLogger())
	s.customer = NewCustomerService(gw, stores.UserRepo, s.GetLogger())
	s.connect = NewConnectService(gw, stores.ProviderRepo, s.GetConfig(), s.GetLogger())
	s.payout = NewPayoutService(gw, s.GetLogger())
	s.payment = NewPaymentService(gw, s.GetConfig(), s.GetLogger())
}

func (s *StripeIntegrationSuite) TestResolveRoutingDestination() {
	s.GetStores().ProviderRepo.Add("prov_1", "acct_1")
	s.GetGateway().AddAccount("acct_1", stripe.AccountCapabilityStatusActive, stripe.AccountCapabilityStatusInactive)

	routing, err := s.routing.ResolveRouting(s.GetContext(), "prov_1", 10000)
	s.Require().NoError(err)
	s.Equal(types.RoutingStrategyDestination, routing.Strategy)
	s.Equal("acct_1", routing.Destination)
	s.Equal(int64(2000), routing.ApplicationFee)
	s.Equal(int64(8000), routing.ProviderPayout())

	params := routing.IntentParams("usd")
	s.Equal(int64(2000), stripe.Int64Value(params.ApplicationFeeAmount))
	s.Require().NotNil(params.TransferData)
	s.Equal("acct_1", stripe.StringValue(params.TransferData.Destination))
	s.NotContains(params.Metadata, types.MetadataKeyManualPayout)
}

func (s *StripeIntegrationSuite) TestResolveRoutingTransfersOnlyIsValid() {
	s.GetStores().ProviderRepo.Add("prov_1", "acct_1")
	s.GetGateway().AddAccount("acct_1", stripe.AccountCapabilityStatusPending, stripe.AccountCapabilityStatusActive)

	routing, err := s.routing.ResolveRouting(s.GetContext(), "prov_1", 10000)
	s.Require().NoError(err)
	s.True(routing.IsDestination())
}

func (s *StripeIntegrationSuite) TestResolveRoutingInactiveCapabilities() {
	s.GetStores().ProviderRepo.Add("prov_1", "acct_1")
	s.GetGateway().AddAccount("acct_1", stripe.AccountCapabilityStatusInactive, stripe.AccountCapabilityStatusPending)

	routing, err := s.routing.ResolveRouting(s.GetContext(), "prov_1", 10000)
	s.Require().NoError(err)
	s.Equal(types.RoutingStrategyManualPayout, routing.Strategy)
	s.Zero(routing.ApplicationFee)
	s.Empty(routing.Destination)
}

func (s *StripeIntegrationSuite) TestResolveRoutingRetrievableRule() {
	s.GetConfig().Stripe.CapabilityRule = types.CapabilityRuleRetrievable
	s.rebuild()
	s.GetStores().ProviderRepo.Add("prov_1", "acct_1")
	s.GetGateway().AddAccount("acct_1", stripe.AccountCapabilityStatusInactive, stripe.AccountCapabilityStatusInactive)

	routing, err := s.routing.ResolveRouting(s.GetContext(), "prov_1", 10000)
	s.Require().NoError(err)
	s.True(routing.IsDestination())
}

func (s *StripeIntegrationSuite) TestResolveRoutingRetrievalFailureFallsBack() {
	s.GetStores().ProviderRepo.Add("prov_1", "acct_1")
	s.GetGateway().FailOn(testutil.MethodGetAccount, ierr.NewError("stripe unavailable").Mark(ierr.ErrHTTPClient))

	routing, err := s.routing.ResolveRouting(s.GetContext(), "prov_1", 5000)
	s.Require().NoError(err)
	s.Equal(types.RoutingStrategyManualPayout, routing.Strategy)
	s.Equal(int64(5000), routing.Amount)

	params := routing.IntentParams("usd")
	s.Equal("true", params.Metadata[types.MetadataKeyManualPayout])
	s.Nil(params.ApplicationFeeAmount)
	s.Nil(params.TransferData)
	s.Equal(int64(5000), stripe.Int64Value(params.Amount))
}

func (s *StripeIntegrationSuite) TestResolveRoutingWithoutAccountSkipsProcessor() {
	s.GetStores().ProviderRepo.Add("prov_1", "")

	routing, err := s.routing.ResolveRouting(s.GetContext(), "prov_1", 10000)
	s.Require().NoError(err)
	s.Equal(types.RoutingStrategyManualPayout, routing.Strategy)
	s.Zero(s.GetGateway().TotalCalls())
}

func (s *StripeIntegrationSuite) TestResolveRoutingErrors() {
	_, err := s.routing.ResolveRouting(s.GetContext(), "prov_1", -1)
	s.True(ierr.IsValidation(err))

	_, err = s.routing.ResolveRouting(s.GetContext(), "missing", 100)
	s.True(ierr.IsNotFound(err))
}

func (s *StripeIntegrationSuite) TestEnsureCustomerCached() {
	u := &user.User{
		ID:       "usr_1",
		Email:    "guest@example.com",
		Metadata: map[string]interface{}{types.MetadataKeyStripeCustomerID: "cus_existing"},
	}

	id, err := s.customer.EnsureCustomer(s.GetContext(), u)
	s.Require().NoError(err)
	s.Equal("cus_existing", id)
	s.Zero(s.GetGateway().TotalCalls())
}

func (s *StripeIntegrationSuite) TestEnsureCustomerCreatesOnce() {
	stores := s.GetStores()
	stores.UserRepo.Add(&user.User{ID: "usr_1", Email: "guest@example.com"})

	u, err := stores.UserRepo.Get(s.GetContext(), "usr_1")
	s.Require().NoError(err)

	id, err := s.customer.EnsureCustomer(s.GetContext(), u)
	s.Require().NoError(err)
	s.NotEmpty(id)
	s.Equal(1, s.GetGateway().Calls(testutil.MethodCreateCustomer))

	created := s.GetGateway().Customers[0]
	s.Equal("customer-usr_1", stripe.StringValue(created.IdempotencyKey))
	s.Equal("usr_1", created.Metadata[types.MetadataKeyUserID])

	stored, err := stores.UserRepo.Get(s.GetContext(), "usr_1")
	s.Require().NoError(err)
	s.Equal(id, stored.StripeCustomerID())

	again, err := s.customer.EnsureCustomer(s.GetContext(), stored)
	s.Require().NoError(err)
	s.Equal(id, again)
	s.Equal(1, s.GetGateway().Calls(testutil.MethodCreateCustomer))
}

func (s *StripeIntegrationSuite) TestEnsureConnectedAccountTwice() {
	s.GetStores().ProviderRepo.Add("prov_1", "")
	req := &AccountLinkRequest{
		ProviderID: "prov_1",
		Email:      "host@example.com",
		ReturnURL:  testutil.TestReturnURL,
		RefreshURL: testutil.TestRefreshURL,
	}

	first, err := s.connect.EnsureConnectedAccount(s.GetContext(), req)
	s.Require().NoError(err)
	s.True(first.Created)
	s.NotEmpty(first.URL)
	s.True(first.ExpiresAt.After(time.Now()))

	second, err := s.connect.EnsureConnectedAccount(s.GetContext(), req)
	s.Require().NoError(err)
	s.False(second.Created)
	s.Equal(first.AccountID, second.AccountID)
	s.NotEqual(first.URL, second.URL)

	s.Equal(1, s.GetGateway().Calls(testutil.MethodCreateAccount))
	s.Equal(2, s.GetGateway().Calls(testutil.MethodCreateAccountLink))

	p, err := s.GetStores().ProviderRepo.Get(s.GetContext(), "prov_1")
	s.Require().NoError(err)
	s.Equal(first.AccountID, p.ConnectedAccountID())
}

func (s *StripeIntegrationSuite) TestEnsureConnectedAccountLostRace() {
	providers := s.GetStores().ProviderRepo
	providers.Add("prov_1", "")

	// another request stores its account between our create and our compare-and-set
	s.GetGateway().OnCreateAccount = func(acct *stripe.Account) {
		_, _, err := providers.SetConnectedAccountIfAbsent(s.GetContext(), "prov_1", "acct_winner")
		s.Require().NoError(err)
	}

	link, err := s.connect.EnsureConnectedAccount(s.GetContext(), &AccountLinkRequest{
		ProviderID: "prov_1",
		ReturnURL:  testutil.TestReturnURL,
		RefreshURL: testutil.TestRefreshURL,
	})
	s.Require().NoError(err)
	s.Equal("acct_winner", link.AccountID)
	s.False(link.Created)
	s.Len(s.GetGateway().Deleted(), 1)

	p, err := providers.Get(s.GetContext(), "prov_1")
	s.Require().NoError(err)
	s.Equal("acct_winner", p.ConnectedAccountID())
}

func (s *StripeIntegrationSuite) TestEnsureConnectedAccountRetryWithEmail() {
	providers := s.GetStores().ProviderRepo
	providers.Add("prov_1", "")
	req := &AccountLinkRequest{
		ProviderID: "prov_1",
		ReturnURL:  testutil.TestReturnURL,
		RefreshURL: testutil.TestRefreshURL,
	}

	// first attempt has no email and fails after the processor created the account
	providers.FailSetAccount = ierr.NewError("database unavailable").Mark(ierr.ErrDatabase)
	_, err := s.connect.EnsureConnectedAccount(s.GetContext(), req)
	s.Require().Error(err)
	providers.FailSetAccount = nil

	req.Email = "host@example.com"
	link, err := s.connect.EnsureConnectedAccount(s.GetContext(), req)
	s.Require().NoError(err)
	s.True(link.Created)
	s.Equal(2, s.GetGateway().Calls(testutil.MethodCreateAccount))
	s.Equal("host@example.com", s.GetGateway().Accounts[link.AccountID].Email)

	p, err := providers.Get(s.GetContext(), "prov_1")
	s.Require().NoError(err)
	s.Equal(link.AccountID, p.ConnectedAccountID())
}

func (s *StripeIntegrationSuite) TestEnsureConnectedAccountRetrySameParams() {
	providers := s.GetStores().ProviderRepo
	providers.Add("prov_1", "")
	req := &AccountLinkRequest{
		ProviderID: "prov_1",
		Email:      "host@example.com",
		ReturnURL:  testutil.TestReturnURL,
		RefreshURL: testutil.TestRefreshURL,
	}

	providers.FailSetAccount = ierr.NewError("database unavailable").Mark(ierr.ErrDatabase)
	_, err := s.connect.EnsureConnectedAccount(s.GetContext(), req)
	s.Require().Error(err)
	providers.FailSetAccount = nil

	link, err := s.connect.EnsureConnectedAccount(s.GetContext(), req)
	s.Require().NoError(err)
	s.True(link.Created)
	// the replayed create returns the account made by the failed attempt
	s.Len(s.GetGateway().Accounts, 1)
	s.Empty(s.GetGateway().Deleted())
}

func (s *StripeIntegrationSuite) TestReusedKeyWithDifferentParams() {
	newParams := func(email string) *stripe.AccountCreateParams {
		params := &stripe.AccountCreateParams{Metadata: map[string]string{types.MetadataKeyProviderID: "prov_1"}}
		if email != "" {
			params.Email = stripe.String(email)
		}
		params.SetIdempotencyKey("account-prov_1")
		return params
	}

	_, err := s.GetGateway().CreateAccount(s.GetContext(), newParams(""))
	s.Require().NoError(err)
	_, err = s.GetGateway().CreateAccount(s.GetContext(), newParams("host@example.com"))
	s.True(ierr.IsValidation(err))
	s.Len(s.GetGateway().Accounts, 1)
}

func (s *StripeIntegrationSuite) TestEnsureConnectedAccountRequiresURLs() {
	s.GetStores().ProviderRepo.Add("prov_1", "")
	_, err := s.connect.EnsureConnectedAccount(s.GetContext(), &AccountLinkRequest{ProviderID: "prov_1"})
	s.True(ierr.IsValidation(err))
	s.Zero(s.GetGateway().TotalCalls())
}

func (s *StripeIntegrationSuite) TestCreateTransferIsIdempotent() {
	req := &TransferRequest{
		Destination:     "acct_1",
		Amount:          8000,
		Currency:        "usd",
		PaymentIntentID: "pi_1",
		ProviderID:      "prov_1",
	}

	first, err := s.payout.CreateTransfer(s.GetContext(), req)
	s.Require().NoError(err)
	second, err := s.payout.CreateTransfer(s.GetContext(), req)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Len(s.GetGateway().Transfers, 1)
	s.Equal("pi_1", stripe.StringValue(s.GetGateway().Transfers[0].TransferGroup))
	s.Equal("payout-pi_1", stripe.StringValue(s.GetGateway().Transfers[0].IdempotencyKey))
}

func (s *StripeIntegrationSuite) TestParseWebhookEvent() {
	payload, err := json.Marshal(map[string]interface{}{
		"id":     "evt_1",
		"object": "event",
		"type":   "account.updated",
		"data":   map[string]interface{}{"object": map[string]interface{}{"id": "acct_1", "object": "account"}},
	})
	s.Require().NoError(err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testutil.TestWebhookSecret,
		Timestamp: time.Now(),
	})

	event, err := s.payment.ParseWebhookEvent(signed.Payload, signed.Header)
	s.Require().NoError(err)
	s.Equal("evt_1", event.ID)

	tampered := append([]byte(nil), signed.Payload...)
	tampered[len(tampered)-2] = ' '
	_, err = s.payment.ParseWebhookEvent(tampered, signed.Header)
	s.True(ierr.IsValidation(err))

	_, err = s.payment.ParseWebhookEvent(signed.Payload, "")
	s.True(ierr.IsValidation(err))
}

func (s *StripeIntegrationSuite) TestCreatePaymentIntentReplaysKey() {
	params := func() *stripe.PaymentIntentCreateParams {
		return (&Routing{Strategy: types.RoutingStrategyManualPayout, ProviderID: "prov_1", Amount: 1500}).IntentParams("usd")
	}

	first, err := s.payment.CreatePaymentIntent(s.GetContext(), params(), "payment_intent-abc")
	s.Require().NoError(err)
	second, err := s.payment.CreatePaymentIntent(s.GetContext(), params(), "payment_intent-abc")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(lo.ToPtr("payment_intent-abc"), s.GetGateway().PaymentIntents[0].IdempotencyKey)
}
