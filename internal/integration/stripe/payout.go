package stripe

import (
	"context"

	"github.com/flexprice/marketplace/internal/idempotency"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// PayoutService moves platform balance to connected accounts after manual-payout charges
type PayoutService struct {
	gateway Gateway
	idemGen *idempotency.Generator
	logger  *logger.Logger
}

func NewPayoutService(gateway Gateway, logger *logger.Logger) *PayoutService {
	return &PayoutService{
		gateway: gateway,
		idemGen: idempotency.NewGenerator(),
		logger:  logger,
	}
}

// CreateTransfer sends req.Amount to req.Destination. Repeating a transfer for the same payment
// intent returns the original transfer.
func (s *PayoutService) CreateTransfer(ctx context.Context, req *TransferRequest) (*stripe.Transfer, error) {
	params := &stripe.TransferCreateParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(req.Currency),
		Destination:   stripe.String(req.Destination),
		TransferGroup: stripe.String(req.PaymentIntentID),
		Metadata: map[string]string{
			types.MetadataKeyProviderID:      req.ProviderID,
			types.MetadataKeyPaymentIntentID: req.PaymentIntentID,
		},
	}
	params.SetIdempotencyKey(s.idemGen.EntityKey(idempotency.ScopePayout, req.PaymentIntentID))

	tr, err := s.gateway.CreateTransfer(ctx, params)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("created manual payout transfer",
		"transfer_id", tr.ID,
		"provider_id", req.ProviderID,
		"destination", req.Destination,
		"amount", req.Amount,
		"payment_intent_id", req.PaymentIntentID)

	return tr, nil
}
