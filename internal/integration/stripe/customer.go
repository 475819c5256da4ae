package stripe

import (
	"context"

	"github.com/flexprice/marketplace/internal/domain/user"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/idempotency"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// CustomerService maps marketplace users onto processor customers
type CustomerService struct {
	gateway  Gateway
	userRepo user.Repository
	idemGen  *idempotency.Generator
	logger   *logger.Logger
}

func NewCustomerService(gateway Gateway, userRepo user.Repository, logger *logger.Logger) *CustomerService {
	return &CustomerService{
		gateway:  gateway,
		userRepo: userRepo,
		idemGen:  idempotency.NewGenerator(),
		logger:   logger,
	}
}

// EnsureCustomer returns the user's processor customer id, creating and caching it on first use.
// A cached id is returned without calling the processor.
func (s *CustomerService) EnsureCustomer(ctx context.Context, u *user.User) (string, error) {
	if u == nil || u.ID == "" {
		return "", ierr.NewError("user is required").
			WithHint("A signed in user is required").
			Mark(ierr.ErrValidation)
	}

	if id := u.StripeCustomerID(); id != "" {
		return id, nil
	}

	params := &stripe.CustomerCreateParams{
		Metadata: map[string]string{
			types.MetadataKeyUserID: u.ID,
		},
	}
	if u.Email != "" {
		params.Email = stripe.String(u.Email)
	}
	// concurrent first calls for the same user collapse onto one customer
	params.SetIdempotencyKey(s.idemGen.EntityKey(idempotency.ScopeCustomer, u.ID))

	stripeCustomer, err := s.gateway.CreateCustomer(ctx, params)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.MergeMetadata(ctx, u.ID, map[string]interface{}{
		types.MetadataKeyStripeCustomerID: stripeCustomer.ID,
	}); err != nil {
		return "", err
	}

	if u.Metadata == nil {
		u.Metadata = make(map[string]interface{})
	}
	u.Metadata[types.MetadataKeyStripeCustomerID] = stripeCustomer.ID

	s.logger.Infow("created stripe customer",
		"user_id", u.ID,
		"stripe_customer_id", stripeCustomer.ID)

	return stripeCustomer.ID, nil
}
