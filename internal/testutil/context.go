package testutil

import (
	"context"

	"github.com/flexprice/marketplace/internal/types"
)

const (
	DefaultUserID    = "usr_test"
	DefaultUserEmail = "guest@example.com"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetUserID(ctx, DefaultUserID)
	ctx = types.SetUserEmail(ctx, DefaultUserEmail)
	ctx = types.SetRole(ctx, "authenticated")
	ctx = types.SetRequestID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	return ctx
}

// SetupServiceRoleContext returns a context for a trusted backend caller
func SetupServiceRoleContext() context.Context {
	ctx := context.Background()
	ctx = types.SetRole(ctx, types.RoleServiceRole)
	ctx = types.SetRequestID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	return ctx
}
