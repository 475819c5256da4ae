package service

import (
	"context"

	"github.com/flexprice/marketplace/internal/api/dto"
	"github.com/flexprice/marketplace/internal/domain/user"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/idempotency"
	"github.com/flexprice/marketplace/internal/metrics"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// CheckoutService prepares payments for bookings
type CheckoutService interface {
	CreatePaymentSheet(ctx context.Context, req dto.CreatePaymentSheetRequest) (*dto.PaymentSheetResponse, error)
	EnsureCustomer(ctx context.Context) (*dto.EnsureCustomerResponse, error)
}

type checkoutService struct {
	ServiceParams
	idemGen *idempotency.Generator
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{
		ServiceParams: params,
		idemGen:       idempotency.NewGenerator(),
	}
}

func (s *checkoutService) CreatePaymentSheet(ctx context.Context, req dto.CreatePaymentSheetRequest) (*dto.PaymentSheetResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.BookingRepo.Get(ctx, req.BookingKind, req.BookingID)
	if err != nil {
		return nil, err
	}

	if b.UserID != userID {
		return nil, ierr.NewError("booking belongs to another user").
			WithHint("You can only pay for your own bookings").
			WithReportableDetails(map[string]any{"booking_id": b.ID}).
			Mark(ierr.ErrPermissionDenied)
	}

	if !b.Status.IsPayable() {
		return nil, ierr.NewError("booking is not payable").
			WithHintf("Booking is %s and cannot be paid", b.Status).
			WithReportableDetails(map[string]any{"booking_id": b.ID, "status": b.Status}).
			Mark(ierr.ErrInvalidOperation)
	}

	amount := b.AmountMinorUnits()
	if amount <= 0 {
		return nil, ierr.NewError("booking total must be positive").
			WithHint("This booking has nothing to pay").
			WithReportableDetails(map[string]any{"booking_id": b.ID, "total": b.Total.String()}).
			Mark(ierr.ErrInvalidOperation)
	}

	stripeIntegration, err := s.IntegrationFactory.GetStripeIntegration(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, err := stripeIntegration.CustomerSvc.EnsureCustomer(ctx, u)
	if err != nil {
		return nil, err
	}

	ephemeralKey, err := stripeIntegration.PaymentSvc.CreateEphemeralKey(ctx, customerID)
	if err != nil {
		return nil, err
	}

	routing, err := stripeIntegration.RoutingSvc.ResolveRouting(ctx, b.ProviderID, amount)
	if err != nil {
		return nil, err
	}

	params := routing.IntentParams(s.Config.Stripe.Currency)
	params.Customer = stripe.String(customerID)
	params.Metadata[types.MetadataKeyBookingID] = b.ID
	params.Metadata[types.MetadataKeyBookingKind] = string(b.Kind)
	params.Metadata[types.MetadataKeyUserID] = userID

	nonce := req.AttemptNonce
	if nonce == "" {
		nonce = types.GenerateShortIDWithPrefix(types.UUID_PREFIX_ATTEMPT_NONCE)
	}
	idempotencyKey := s.idemGen.GenerateKey(idempotency.ScopePaymentIntent, map[string]interface{}{
		"user_id":      userID,
		"booking_id":   b.ID,
		"booking_kind": b.Kind,
		"nonce":        nonce,
	})

	pi, err := stripeIntegration.PaymentSvc.CreatePaymentIntent(ctx, params, idempotencyKey)
	if err != nil {
		return nil, err
	}

	metrics.RecordPaymentIntent(string(routing.Strategy))

	s.Logger.Infow("created payment sheet",
		"booking_id", b.ID,
		"booking_kind", b.Kind,
		"user_id", userID,
		"payment_intent_id", pi.ID,
		"strategy", routing.Strategy,
		"provider_payout", routing.ProviderPayout())

	return &dto.PaymentSheetResponse{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		EphemeralKey:    ephemeralKey,
		CustomerID:      customerID,
		PublishableKey:  s.Config.Stripe.PublishableKey,
		AttemptNonce:    nonce,
		Routing:         routing,
	}, nil
}

func (s *checkoutService) EnsureCustomer(ctx context.Context) (*dto.EnsureCustomerResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	stripeIntegration, err := s.IntegrationFactory.GetStripeIntegration(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, err := stripeIntegration.CustomerSvc.EnsureCustomer(ctx, u)
	if err != nil {
		return nil, err
	}
	return &dto.EnsureCustomerResponse{CustomerID: customerID}, nil
}

// loadUser reads the auth user, falling back to the token email when the profile has none
func (s *checkoutService) loadUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Email == "" {
		u.Email = types.GetUserEmail(ctx)
	}
	return u, nil
}
