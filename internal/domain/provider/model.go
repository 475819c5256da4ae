package provider

import "github.com/samber/lo"

// Provider is the payee side of the marketplace. The row is owned by the data service; the
// payment flow only reads it and fills StripeAccountID on first onboarding.
type Provider struct {
	ID string `json:"id"`
	// StripeAccountID is the connected account id, stored in the "stripe" column
	StripeAccountID *string `json:"stripe"`
	IsResident      bool    `json:"is_resident"`
	TaxDocument     *string `json:"tax_document,omitempty"`
}

// HasConnectedAccount reports whether a connected account id has been stored
func (p *Provider) HasConnectedAccount() bool {
	return p != nil && lo.FromPtr(p.StripeAccountID) != ""
}

// ConnectedAccountID returns the stored connected account id or ""
func (p *Provider) ConnectedAccountID() string {
	if p == nil {
		return ""
	}
	return lo.FromPtr(p.StripeAccountID)
}
