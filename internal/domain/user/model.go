package user

import "github.com/flexprice/marketplace/internal/types"

// User is an authenticated marketplace user. Metadata mirrors the auth user's user_metadata.
type User struct {
	ID       string                 `json:"id"`
	Email    string                 `json:"email"`
	Metadata map[string]interface{} `json:"user_metadata"`
}

// StripeCustomerID returns the cached processor customer id, if any
func (u *User) StripeCustomerID() string {
	if u == nil || u.Metadata == nil {
		return ""
	}
	id, _ := u.Metadata[types.MetadataKeyStripeCustomerID].(string)
	return id
}
