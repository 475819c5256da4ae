package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/stripe/stripe-go/v82"
)

// Gateway method names used for call counting
const (
	MethodGetAccount          = "GetAccount"
	MethodCreateAccount       = "CreateAccount"
	MethodDeleteAccount       = "DeleteAccount"
	MethodCreateAccountLink   = "CreateAccountLink"
	MethodCreateCustomer      = "CreateCustomer"
	MethodCreateEphemeralKey  = "CreateEphemeralKey"
	MethodCreatePaymentIntent = "CreatePaymentIntent"
	MethodCreateTransfer      = "CreateTransfer"
)

// FakeGateway is an in-memory processor. Creates honour idempotency keys the way the processor
// does: a repeated key returns the object created by the first call, and a repeated key with
// different parameters is rejected.
type FakeGateway struct {
	mu      sync.Mutex
	seq     int
	calls   map[string]int
	byKey   map[string]keyedObject
	errs    map[string]error
	deleted []string

	Accounts       map[string]*stripe.Account
	PaymentIntents []*stripe.PaymentIntentCreateParams
	Transfers      []*stripe.TransferCreateParams
	Customers      []*stripe.CustomerCreateParams

	// OnCreateAccount runs after an account is created, before it is returned
	OnCreateAccount func(acct *stripe.Account)
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		calls:    make(map[string]int),
		byKey:    make(map[string]keyedObject),
		errs:     make(map[string]error),
		Accounts: make(map[string]*stripe.Account),
	}
}

// AddAccount seeds a connected account with the given capability statuses
func (g *FakeGateway) AddAccount(id string, cardPayments, transfers stripe.AccountCapabilityStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Accounts[id] = &stripe.Account{
		ID: id,
		Capabilities: &stripe.AccountCapabilities{
			CardPayments: cardPayments,
			Transfers:    transfers,
		},
	}
}

// FailOn makes every call to method return err until cleared with a nil err
func (g *FakeGateway) FailOn(method string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.errs, method)
		return
	}
	g.errs[method] = err
}

// Calls returns how many times method was invoked
func (g *FakeGateway) Calls(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method]
}

// TotalCalls returns the number of processor calls of any kind
func (g *FakeGateway) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

// Deleted returns the ids of deleted accounts
func (g *FakeGateway) Deleted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.deleted...)
}

func (g *FakeGateway) begin(method string) error {
	g.calls[method]++
	return g.errs[method]
}

func (g *FakeGateway) nextID(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s_fake_%d", prefix, g.seq)
}

type keyedObject struct {
	fingerprint string
	obj         interface{}
}

// replay returns the object stored under key. fingerprint summarises the request parameters.
func (g *FakeGateway) replay(key *string, fingerprint string) (interface{}, bool, error) {
	if key == nil || *key == "" {
		return nil, false, nil
	}
	stored, ok := g.byKey[*key]
	if !ok {
		return nil, false, nil
	}
	if stored.fingerprint != fingerprint {
		return nil, false, ierr.NewError("idempotency key reused with different parameters").
			WithHintf("Keys for idempotent requests can only be used with the same parameters they were first used with (%s)", *key).
			Mark(ierr.ErrValidation)
	}
	return stored.obj, true, nil
}

func (g *FakeGateway) remember(key *string, fingerprint string, obj interface{}) {
	if key != nil && *key != "" {
		g.byKey[*key] = keyedObject{fingerprint: fingerprint, obj: obj}
	}
}

func (g *FakeGateway) GetAccount(ctx context.Context, accountID string) (*stripe.Account, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(MethodGetAccount); err != nil {
		return nil, err
	}

	acct, ok := g.Accounts[accountID]
	if !ok {
		return nil, ierr.NewError("no such account").
			WithHintf("Account %s does not exist", accountID).
			Mark(ierr.ErrNotFound)
	}
	return acct, nil
}

func (g *FakeGateway) CreateAccount(ctx context.Context, params *stripe.AccountCreateParams) (*stripe.Account, error) {
	g.mu.Lock()
	if err := g.begin(MethodCreateAccount); err != nil {
		g.mu.Unlock()
		return nil, err
	}
	fp := fmt.Sprintf("%s|%s|%v", stripe.StringValue(params.Email), stripe.StringValue(params.Country), params.Metadata)
	obj, ok, err := g.replay(params.IdempotencyKey, fp)
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}
	if ok {
		g.mu.Unlock()
		return obj.(*stripe.Account), nil
	}

	acct := &stripe.Account{
		ID:       g.nextID("acct"),
		Email:    stripe.StringValue(params.Email),
		Metadata: params.Metadata,
		Capabilities: &stripe.AccountCapabilities{
			CardPayments: stripe.AccountCapabilityStatusInactive,
			Transfers:    stripe.AccountCapabilityStatusInactive,
		},
	}
	g.Accounts[acct.ID] = acct
	g.remember(params.IdempotencyKey, fp, acct)
	hook := g.OnCreateAccount
	g.mu.Unlock()

	if hook != nil {
		hook(acct)
	}
	return acct, nil
}

func (g *FakeGateway) DeleteAccount(ctx context.Context, accountID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(MethodDeleteAccount); err != nil {
		return err
	}
	delete(g.Accounts, accountID)
	g.deleted = append(g.deleted, accountID)
	return nil
}

func (g *FakeGateway) CreateAccountLink(ctx context.Context, params *stripe.AccountLinkCreateParams) (*stripe.AccountLink, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(MethodCreateAccountLink); err != nil {
		return nil, err
	}

	now := time.Now()
	return &stripe.AccountLink{
		URL:       fmt.Sprintf("https://connect.stripe.test/setup/%s/%s", stripe.StringValue(params.Account), g.nextID("link")),
		Created:   now.Unix(),
		ExpiresAt: now.Add(5 * time.Minute).Unix(),
	}, nil
}

func (g *FakeGateway) CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(MethodCreateCustomer); err != nil {
		return nil, err
	}
	fp := fmt.Sprintf("%s|%v", stripe.StringValue(params.Email), params.Metadata)
	obj, ok, err := g.replay(params.IdempotencyKey, fp)
	if err != nil {
		return nil, err
	}
	if ok {
		return obj.(*stripe.Customer), nil
	}

	g.Customers = append(g.Customers, params)
	cust := &stripe.Customer{
		ID:       g.nextID("cus"),
		Email:    stripe.StringValue(params.Email),
		Metadata: params.Metadata,
	}
	g.remember(params.IdempotencyKey, fp, cust)
	return cust, nil
}

func (g *FakeGateway) CreateEphemeralKey(ctx context.Context, params *stripe.EphemeralKeyCreateParams) (*stripe.EphemeralKey, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(MethodCreateEphemeralKey); err != nil {
		return nil, err
	}
	id := g.nextID("ephkey")
	return &stripe.EphemeralKey{ID: id, Secret: id + "_secret"}, nil
}

func (g *FakeGateway) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(MethodCreatePaymentIntent); err != nil {
		return nil, err
	}
	fp := fmt.Sprintf("%d|%s|%s|%d", stripe.Int64Value(params.Amount), stripe.StringValue(params.Currency),
		stripe.StringValue(params.Customer), stripe.Int64Value(params.ApplicationFeeAmount))
	obj, ok, err := g.replay(params.IdempotencyKey, fp)
	if err != nil {
		return nil, err
	}
	if ok {
		return obj.(*stripe.PaymentIntent), nil
	}

	g.PaymentIntents = append(g.PaymentIntents, params)
	id := g.nextID("pi")
	pi := &stripe.PaymentIntent{
		ID:                   id,
		ClientSecret:         id + "_secret",
		Amount:               stripe.Int64Value(params.Amount),
		ApplicationFeeAmount: stripe.Int64Value(params.ApplicationFeeAmount),
		Currency:             stripe.Currency(stripe.StringValue(params.Currency)),
		Metadata:             params.Metadata,
		Status:               stripe.PaymentIntentStatusRequiresPaymentMethod,
	}
	g.remember(params.IdempotencyKey, fp, pi)
	return pi, nil
}

func (g *FakeGateway) CreateTransfer(ctx context.Context, params *stripe.TransferCreateParams) (*stripe.Transfer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(MethodCreateTransfer); err != nil {
		return nil, err
	}
	fp := fmt.Sprintf("%d|%s|%s", stripe.Int64Value(params.Amount), stripe.StringValue(params.Currency),
		stripe.StringValue(params.Destination))
	obj, ok, err := g.replay(params.IdempotencyKey, fp)
	if err != nil {
		return nil, err
	}
	if ok {
		return obj.(*stripe.Transfer), nil
	}

	g.Transfers = append(g.Transfers, params)
	tr := &stripe.Transfer{
		ID:            g.nextID("tr"),
		Amount:        stripe.Int64Value(params.Amount),
		Currency:      stripe.Currency(stripe.StringValue(params.Currency)),
		Destination:   &stripe.Account{ID: stripe.StringValue(params.Destination)},
		TransferGroup: stripe.StringValue(params.TransferGroup),
		Metadata:      params.Metadata,
	}
	g.remember(params.IdempotencyKey, fp, tr)
	return tr, nil
}
