package stripe

import (
	"context"
	"time"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/domain/provider"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/idempotency"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/stripe/stripe-go/v82"
)

const accountLinkTypeOnboarding = "account_onboarding"

// ConnectService owns the provider to connected-account mapping
type ConnectService struct {
	gateway      Gateway
	providerRepo provider.Repository
	idemGen      *idempotency.Generator
	country      string
	logger       *logger.Logger
}

func NewConnectService(
	gateway Gateway,
	providerRepo provider.Repository,
	cfg *config.Configuration,
	logger *logger.Logger,
) *ConnectService {
	return &ConnectService{
		gateway:      gateway,
		providerRepo: providerRepo,
		idemGen:      idempotency.NewGenerator(),
		country:      cfg.Stripe.Country,
		logger:       logger,
	}
}

// EnsureConnectedAccount returns a fresh onboarding link for the provider's connected account,
// creating the account only when none is stored. A provider never ends up with two accounts.
func (s *ConnectService) EnsureConnectedAccount(ctx context.Context, req *AccountLinkRequest) (*AccountLink, error) {
	if req.ReturnURL == "" || req.RefreshURL == "" {
		return nil, ierr.NewError("onboarding urls are required").
			WithHint("Return and refresh urls are required").
			Mark(ierr.ErrValidation)
	}

	p, err := s.providerRepo.Get(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	accountID := p.ConnectedAccountID()
	created := false
	if accountID == "" {
		accountID, created, err = s.createConnectedAccount(ctx, p, req.Email)
		if err != nil {
			return nil, err
		}
	}

	link, err := s.CreateAccountLink(ctx, accountID, req.ReturnURL, req.RefreshURL)
	if err != nil {
		return nil, err
	}
	link.Created = created
	return link, nil
}

// CreateAccountLink issues a single-use hosted onboarding link for accountID
func (s *ConnectService) CreateAccountLink(ctx context.Context, accountID, returnURL, refreshURL string) (*AccountLink, error) {
	link, err := s.gateway.CreateAccountLink(ctx, &stripe.AccountLinkCreateParams{
		Account:    stripe.String(accountID),
		ReturnURL:  stripe.String(returnURL),
		RefreshURL: stripe.String(refreshURL),
		Type:       stripe.String(accountLinkTypeOnboarding),
	})
	if err != nil {
		return nil, err
	}

	return &AccountLink{
		AccountID: accountID,
		URL:       link.URL,
		ExpiresAt: time.Unix(link.ExpiresAt, 0).UTC(),
	}, nil
}

// createConnectedAccount creates an express account and stores it with a compare-and-set. When
// another request stored an account first, the stored one wins and ours is deleted.
func (s *ConnectService) createConnectedAccount(ctx context.Context, p *provider.Provider, email string) (string, bool, error) {
	params := &stripe.AccountCreateParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
		Capabilities: &stripe.AccountCreateCapabilitiesParams{
			CardPayments: &stripe.AccountCreateCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCreateCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
		Metadata: map[string]string{
			types.MetadataKeyProviderID: p.ID,
		},
	}
	if s.country != "" {
		params.Country = stripe.String(s.country)
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	// keyed on every create parameter; a retry may carry an email the first attempt lacked
	params.SetIdempotencyKey(s.idemGen.GenerateKey(idempotency.ScopeConnectedAccount, map[string]interface{}{
		"provider_id": p.ID,
		"email":       email,
		"country":     s.country,
	}))

	acct, err := s.gateway.CreateAccount(ctx, params)
	if err != nil {
		return "", false, err
	}

	stored, won, err := s.providerRepo.SetConnectedAccountIfAbsent(ctx, p.ID, acct.ID)
	if err != nil {
		return "", false, err
	}

	if won {
		s.logger.Infow("created connected account",
			"provider_id", p.ID,
			"account_id", acct.ID)
		return acct.ID, true, nil
	}

	winner := stored.ConnectedAccountID()
	if winner != acct.ID {
		s.logger.Warnw("connected account stored concurrently, discarding duplicate",
			"provider_id", p.ID,
			"stored_account_id", winner,
			"duplicate_account_id", acct.ID)
		if err := s.gateway.DeleteAccount(ctx, acct.ID); err != nil {
			s.logger.Errorw("failed to delete duplicate connected account",
				"account_id", acct.ID,
				"error", err)
		}
	}
	return winner, false, nil
}
