package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/domain/booking"
	"github.com/flexprice/marketplace/internal/domain/webhooklog"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/httpclient"
	"github.com/flexprice/marketplace/internal/logger"
	sb "github.com/flexprice/marketplace/internal/supabase"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/stretchr/testify/suite"
)

type RepositorySuite struct {
	suite.Suite
	ctx     context.Context
	handler http.HandlerFunc
	client  *sb.Client
	log     *logger.Logger
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.log = logger.NewNoopLogger()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
	s.T().Cleanup(srv.Close)

	cfg := config.GetDefaultConfig()
	cfg.Supabase.BaseURL = srv.URL
	cfg.Supabase.ServiceKey = "service-key"

	client, err := sb.NewClient(cfg, httpclient.NewDefaultClient(), s.log)
	s.Require().NoError(err)
	s.client = client
}

func (s *RepositorySuite) TestSetConnectedAccountIfAbsentStores() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPatch, r.Method)
		s.Equal("/rest/v1/provider", r.URL.Path)
		s.Equal("eq.prov_1", r.URL.Query().Get("id"))
		s.Equal("is.null", r.URL.Query().Get("stripe"))
		s.Equal(sb.PreferReturnRepresentation, r.Header.Get("Prefer"))

		body, _ := io.ReadAll(r.Body)
		s.JSONEq(`{"stripe":"acct_new"}`, string(body))
		_, _ = w.Write([]byte(`[{"id":"prov_1","stripe":"acct_new","is_resident":true}]`))
	}

	repo := NewProviderRepository(s.client, s.log)
	p, stored, err := repo.SetConnectedAccountIfAbsent(s.ctx, "prov_1", "acct_new")
	s.Require().NoError(err)
	s.True(stored)
	s.Equal("acct_new", p.ConnectedAccountID())
	s.True(p.IsResident)
}

func (s *RepositorySuite) TestSetConnectedAccountIfAbsentKeepsExisting() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			_, _ = w.Write([]byte(`[]`))
		case http.MethodGet:
			s.Equal("/rest/v1/provider", r.URL.Path)
			_, _ = w.Write([]byte(`[{"id":"prov_1","stripe":"acct_winner"}]`))
		default:
			s.Failf("unexpected method", "method %s", r.Method)
		}
	}

	repo := NewProviderRepository(s.client, s.log)
	p, stored, err := repo.SetConnectedAccountIfAbsent(s.ctx, "prov_1", "acct_loser")
	s.Require().NoError(err)
	s.False(stored)
	s.Equal("acct_winner", p.ConnectedAccountID())
}

func (s *RepositorySuite) TestWebhookLogCreateDuplicate() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/rest/v1/stripe_webhooks", r.URL.Path)
		s.Equal(sb.PreferReturnMinimal, r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
	}

	repo := NewWebhookLogRepository(s.client, s.log)
	err := repo.Create(s.ctx, &webhooklog.Entry{
		EventID:   "evt_1",
		EventType: "checkout.session.completed",
		Payload:   json.RawMessage(`{}`),
		Status:    types.WebhookLogStatusPending,
	})
	s.Require().Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *RepositorySuite) TestWebhookLogCreateAssignsID() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var row map[string]interface{}
		s.Require().NoError(json.Unmarshal(body, &row))
		s.Equal("evt_2", row["event_id"])
		s.Equal("pending", row["status"])
		s.NotEmpty(row["id"])
		w.WriteHeader(http.StatusCreated)
	}

	repo := NewWebhookLogRepository(s.client, s.log)
	entry := &webhooklog.Entry{
		EventID:   "evt_2",
		EventType: "account.updated",
		Payload:   json.RawMessage(`{"id":"evt_2"}`),
		Status:    types.WebhookLogStatusPending,
	}
	s.Require().NoError(repo.Create(s.ctx, entry))
	s.NotEmpty(entry.ID)
	s.False(entry.CreatedAt.IsZero())
}

func (s *RepositorySuite) TestWebhookLogComplete() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPatch, r.Method)
		s.Equal("eq.evt_3", r.URL.Query().Get("event_id"))

		body, _ := io.ReadAll(r.Body)
		var update map[string]interface{}
		s.Require().NoError(json.Unmarshal(body, &update))
		s.Equal("failed", update["status"])
		s.Equal("boom", update["error_message"])
		s.NotEmpty(update["processed_at"])
		w.WriteHeader(http.StatusNoContent)
	}

	msg := "boom"
	repo := NewWebhookLogRepository(s.client, s.log)
	s.Require().NoError(repo.Complete(s.ctx, "evt_3", types.WebhookLogStatusFailed, &msg))
}

func (s *RepositorySuite) TestCheckoutReconcilerCallsProcedure() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/rest/v1/rpc/handle_checkout_session_completed", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var params map[string]interface{}
		s.Require().NoError(json.Unmarshal(body, &params))
		s.Equal("cs_1", params["session_id"])
		s.Equal("pi_1", params["payment_intent"])
		s.EqualValues(10000, params["amount_total"])
		s.Equal("cus_1", params["customer_id"])
		s.Equal(map[string]interface{}{"booking_id": "bk_1"}, params["metadata"])
		w.WriteHeader(http.StatusNoContent)
	}

	reconciler := NewCheckoutReconciler(s.client, s.log)
	err := reconciler.HandleCheckoutSessionCompleted(s.ctx, &booking.CheckoutSessionCompleted{
		SessionID:     "cs_1",
		PaymentIntent: "pi_1",
		AmountTotal:   10000,
		Metadata:      map[string]string{"booking_id": "bk_1"},
		CustomerID:    "cus_1",
	})
	s.Require().NoError(err)
}

func (s *RepositorySuite) TestCheckoutReconcilerFailure() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}

	reconciler := NewCheckoutReconciler(s.client, s.log)
	err := reconciler.HandleCheckoutSessionCompleted(s.ctx, &booking.CheckoutSessionCompleted{SessionID: "cs_2"})
	s.Require().Error(err)
	s.True(ierr.IsSystem(err))
}

func (s *RepositorySuite) TestUserMergeMetadata() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPut, r.Method)
		s.Equal("/auth/v1/admin/users/user_1", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		s.JSONEq(`{"user_metadata":{"stripe_customer_id":"cus_9"}}`, string(body))
		_, _ = w.Write([]byte(`{"id":"user_1"}`))
	}

	repo := NewUserRepository(s.client, s.log)
	s.Require().NoError(repo.MergeMetadata(s.ctx, "user_1", map[string]interface{}{"stripe_customer_id": "cus_9"}))
}

func (s *RepositorySuite) TestUserGetNotFound() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"msg":"User not found"}`))
	}

	repo := NewUserRepository(s.client, s.log)
	_, err := repo.Get(s.ctx, "missing")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *RepositorySuite) TestBookingGetByKind() {
	tests := []struct {
		name     string
		kind     types.BookingKind
		path     string
		selected string
	}{
		{
			name:     "service booking",
			kind:     types.BookingKindService,
			path:     "/rest/v1/booking",
			selected: "id,user_id,total,status,item_id:service_id,item:service(provider_id)",
		},
		{
			name:     "event booking",
			kind:     types.BookingKindEvent,
			path:     "/rest/v1/event_booking",
			selected: "id,user_id,total,status,item_id:event_id,item:event(provider_id)",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.handler = func(w http.ResponseWriter, r *http.Request) {
				s.Equal(http.MethodGet, r.Method)
				s.Equal(tt.path, r.URL.Path)
				s.Equal(tt.selected, r.URL.Query().Get("select"))
				s.Equal("eq.b1", r.URL.Query().Get("id"))
				_, _ = w.Write([]byte(`[{"id":"b1","user_id":"user_1","total":49.995,"status":"pending","item_id":"item_1","item":{"provider_id":"p1"}}]`))
			}

			repo := NewBookingRepository(s.client, s.log)
			b, err := repo.Get(s.ctx, tt.kind, "b1")
			s.Require().NoError(err)
			s.Equal("b1", b.ID)
			s.Equal(tt.kind, b.Kind)
			s.Equal("user_1", b.UserID)
			s.Equal("item_1", b.ItemID)
			s.Equal("p1", b.ProviderID)
			s.Equal("49.995", b.Total.String())
			s.Equal(int64(5000), b.AmountMinorUnits())
		})
	}
}

func (s *RepositorySuite) TestBookingGetNotFound() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}

	repo := NewBookingRepository(s.client, s.log)
	_, err := repo.Get(s.ctx, types.BookingKindService, "missing")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *RepositorySuite) TestBookingGetWithoutProvider() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"b2","user_id":"user_1","total":10,"status":"pending","item_id":"item_2","item":null}]`))
	}

	repo := NewBookingRepository(s.client, s.log)
	_, err := repo.Get(s.ctx, types.BookingKindEvent, "b2")
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}
