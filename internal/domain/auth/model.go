package auth

// Claims is the caller identity extracted from a validated access token
type Claims struct {
	UserID string
	Email  string
	// Role is the token role claim, "authenticated" for end users and "service_role" for backends
	Role     string
	Metadata map[string]interface{}
}

// IsServiceRole reports whether the token was issued to a trusted backend
func (c *Claims) IsServiceRole() bool {
	return c != nil && c.Role == "service_role"
}
