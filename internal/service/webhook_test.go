package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/testutil"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82/webhook"
)

type WebhookServiceSuite struct {
	ServiceSuite
	service WebhookService
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.ServiceSuite.SetupTest()
	s.service = NewWebhookService(s.params)
}

func (s *WebhookServiceSuite) checkoutEvent(eventID string) []byte {
	payload, err := json.Marshal(map[string]interface{}{
		"id":     eventID,
		"object": "event",
		"type":   "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             "cs_1",
				"object":         "checkout.session",
				"payment_intent": "pi_1",
				"amount_total":   10000,
				"customer":       "cus_1",
				"metadata":       map[string]string{"booking_id": "bk_1"},
			},
		},
	})
	s.Require().NoError(err)
	return payload
}

func (s *WebhookServiceSuite) sign(payload []byte) ([]byte, string) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testutil.TestWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func (s *WebhookServiceSuite) TestCheckoutCompletedReconciles() {
	payload, sig := s.sign(s.checkoutEvent("evt_1"))

	result, err := s.service.HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().NoError(err)
	s.Equal("evt_1", result.EventID)
	s.Equal("checkout.session.completed", result.EventType)
	s.False(result.Duplicate)

	sessions := s.GetReconciler().Sessions()
	s.Require().Len(sessions, 1)
	s.Equal("cs_1", sessions[0].SessionID)
	s.Equal("pi_1", sessions[0].PaymentIntent)
	s.Equal(int64(10000), sessions[0].AmountTotal)
	s.Equal("cus_1", sessions[0].CustomerID)
	s.Equal("bk_1", sessions[0].Metadata["booking_id"])

	entry, err := s.GetStores().WebhookLogRepo.GetByEventID(s.GetContext(), "evt_1")
	s.Require().NoError(err)
	s.Equal(types.WebhookLogStatusSuccess, entry.Status)
	s.NotNil(entry.ProcessedAt)
	s.Nil(entry.ErrorMessage)
}

func (s *WebhookServiceSuite) TestDuplicateEventReconcilesOnce() {
	payload, sig := s.sign(s.checkoutEvent("evt_dup"))

	_, err := s.service.HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().NoError(err)

	result, err := s.service.HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().NoError(err)
	s.True(result.Duplicate)
	s.Len(s.GetReconciler().Sessions(), 1)
}

func (s *WebhookServiceSuite) TestDuplicateDetectedFromLogWithoutCache() {
	payload, sig := s.sign(s.checkoutEvent("evt_dup"))

	_, err := s.service.HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().NoError(err)

	// a second instance has no memory of the event
	s.GetCache().Flush(s.GetContext())

	result, err := s.service.HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().NoError(err)
	s.True(result.Duplicate)
	s.Len(s.GetReconciler().Sessions(), 1)
}

func (s *WebhookServiceSuite) TestTamperedPayloadRejected() {
	payload, sig := s.sign(s.checkoutEvent("evt_bad"))
	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-2] = ' '

	_, err := s.service.HandleStripeWebhook(s.GetContext(), tampered, sig)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, s.GetStores().WebhookLogRepo.Count())
	s.Empty(s.GetReconciler().Sessions())
}

func (s *WebhookServiceSuite) TestMissingSignatureRejected() {
	_, err := s.service.HandleStripeWebhook(s.GetContext(), s.checkoutEvent("evt_1"), "")
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, s.GetStores().WebhookLogRepo.Count())
}

func (s *WebhookServiceSuite) TestReconciliationFailureLogged() {
	s.GetReconciler().Err = ierr.WithError(errors.New("rpc failed")).Mark(ierr.ErrSystem)
	payload, sig := s.sign(s.checkoutEvent("evt_fail"))

	_, err := s.service.HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().Error(err)
	s.True(ierr.IsSystem(err))

	entry, err := s.GetStores().WebhookLogRepo.GetByEventID(s.GetContext(), "evt_fail")
	s.Require().NoError(err)
	s.Equal(types.WebhookLogStatusFailed, entry.Status)
	s.Require().NotNil(entry.ErrorMessage)
	s.Contains(*entry.ErrorMessage, "rpc failed")

	// the processor redelivers and the event is retried
	s.GetReconciler().Err = nil
	result, err := s.service.HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().NoError(err)
	s.False(result.Duplicate)
	s.Len(s.GetReconciler().Sessions(), 1)

	entry, err = s.GetStores().WebhookLogRepo.GetByEventID(s.GetContext(), "evt_fail")
	s.Require().NoError(err)
	s.Equal(types.WebhookLogStatusSuccess, entry.Status)
}

func (s *WebhookServiceSuite) TestLogInsertFailureDoesNotAbort() {
	s.GetStores().WebhookLogRepo.CreateErr = ierr.WithError(errors.New("connection refused")).Mark(ierr.ErrDatabase)
	payload, sig := s.sign(s.checkoutEvent("evt_nolog"))

	result, err := s.service.HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().NoError(err)
	s.False(result.Duplicate)
	s.Len(s.GetReconciler().Sessions(), 1)
}

func (s *WebhookServiceSuite) TestUnhandledEventAcknowledged() {
	raw, err := json.Marshal(map[string]interface{}{
		"id":     "evt_other",
		"object": "event",
		"type":   "charge.refunded",
		"data":   map[string]interface{}{"object": map[string]interface{}{"id": "ch_1", "object": "charge"}},
	})
	s.Require().NoError(err)
	payload, sig := s.sign(raw)

	result, err := s.service.HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().NoError(err)
	s.Equal("charge.refunded", result.EventType)
	s.Empty(s.GetReconciler().Sessions())

	entry, err := s.GetStores().WebhookLogRepo.GetByEventID(s.GetContext(), "evt_other")
	s.Require().NoError(err)
	s.Equal(types.WebhookLogStatusSuccess, entry.Status)
}
