package stripe

import (
	"context"

	"github.com/flexprice/marketplace/internal/config"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Gateway is the set of processor calls the payment flow makes. Every call is authenticated with
// the platform secret key.
type Gateway interface {
	GetAccount(ctx context.Context, accountID string) (*stripe.Account, error)
	CreateAccount(ctx context.Context, params *stripe.AccountCreateParams) (*stripe.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
	CreateAccountLink(ctx context.Context, params *stripe.AccountLinkCreateParams) (*stripe.AccountLink, error)
	CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error)
	CreateEphemeralKey(ctx context.Context, params *stripe.EphemeralKeyCreateParams) (*stripe.EphemeralKey, error)
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	CreateTransfer(ctx context.Context, params *stripe.TransferCreateParams) (*stripe.Transfer, error)
}

// Client handles Stripe API client setup and implements Gateway
type Client struct {
	api    *stripe.Client
	logger *logger.Logger
}

// NewClient creates a Stripe client for the platform account
func NewClient(cfg *config.Configuration, logger *logger.Logger) Gateway {
	return &Client{
		api:    stripe.NewClient(cfg.Stripe.SecretKey, nil),
		logger: logger,
	}
}

func (c *Client) GetAccount(ctx context.Context, accountID string) (*stripe.Account, error) {
	acct, err := c.api.V1Accounts.GetByID(ctx, accountID, nil)
	if err != nil {
		return nil, c.wrap(err, "Failed to retrieve connected account", map[string]any{"account_id": accountID})
	}
	return acct, nil
}

func (c *Client) CreateAccount(ctx context.Context, params *stripe.AccountCreateParams) (*stripe.Account, error) {
	acct, err := c.api.V1Accounts.Create(ctx, params)
	if err != nil {
		return nil, c.wrap(err, "Failed to create connected account", nil)
	}
	return acct, nil
}

func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	if _, err := c.api.V1Accounts.Delete(ctx, accountID, nil); err != nil {
		return c.wrap(err, "Failed to delete connected account", map[string]any{"account_id": accountID})
	}
	return nil
}

func (c *Client) CreateAccountLink(ctx context.Context, params *stripe.AccountLinkCreateParams) (*stripe.AccountLink, error) {
	link, err := c.api.V1AccountLinks.Create(ctx, params)
	if err != nil {
		return nil, c.wrap(err, "Failed to create onboarding link", nil)
	}
	return link, nil
}

func (c *Client) CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
	cust, err := c.api.V1Customers.Create(ctx, params)
	if err != nil {
		return nil, c.wrap(err, "Failed to create customer in Stripe", nil)
	}
	return cust, nil
}

func (c *Client) CreateEphemeralKey(ctx context.Context, params *stripe.EphemeralKeyCreateParams) (*stripe.EphemeralKey, error) {
	key, err := c.api.V1EphemeralKeys.Create(ctx, params)
	if err != nil {
		return nil, c.wrap(err, "Failed to create ephemeral key", nil)
	}
	return key, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	pi, err := c.api.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, c.wrap(err, "Failed to create payment intent", nil)
	}
	return pi, nil
}

func (c *Client) CreateTransfer(ctx context.Context, params *stripe.TransferCreateParams) (*stripe.Transfer, error) {
	tr, err := c.api.V1Transfers.Create(ctx, params)
	if err != nil {
		return nil, c.wrap(err, "Failed to create transfer", nil)
	}
	return tr, nil
}

// wrap maps processor errors onto the shared error kinds. Request errors the caller can fix become
// validation errors; everything else is an upstream failure.
func (c *Client) wrap(err error, hint string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}

	if stripeErr, ok := err.(*stripe.Error); ok {
		details["stripe_error_code"] = stripeErr.Code
		details["stripe_request_id"] = stripeErr.RequestID

		c.logger.Warnw("stripe request failed",
			"type", stripeErr.Type,
			"code", stripeErr.Code,
			"status", stripeErr.HTTPStatusCode,
			"request_id", stripeErr.RequestID)

		switch {
		case stripeErr.HTTPStatusCode == 404:
			return ierr.WithError(err).WithHint(hint).WithReportableDetails(details).Mark(ierr.ErrNotFound)
		case stripeErr.Type == stripe.ErrorTypeInvalidRequest || stripeErr.Type == stripe.ErrorTypeCard:
			return ierr.WithError(err).WithHint(hint).WithReportableDetails(details).Mark(ierr.ErrValidation)
		}
	}

	return ierr.WithError(err).WithHint(hint).WithReportableDetails(details).Mark(ierr.ErrHTTPClient)
}
