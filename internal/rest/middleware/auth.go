package middleware

import (
	"strings"

	"github.com/flexprice/marketplace/internal/auth"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/gin-gonic/gin"
)

// AuthenticateMiddleware validates the Bearer token in the Authorization header and puts the
// caller identity into the request context for downstream handlers
func AuthenticateMiddleware(provider auth.Provider, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if authHeader == "" || !ok || tokenString == "" {
			abortWithError(c, ierr.NewError("missing bearer token").
				WithHint("Unauthorized").
				Mark(ierr.ErrUnauthorized))
			return
		}

		claims, err := provider.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Debugw("failed to validate token", "error", err)
			abortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		ctx = types.SetUserID(ctx, claims.UserID)
		ctx = types.SetUserEmail(ctx, claims.Email)
		ctx = types.SetRole(ctx, claims.Role)
		ctx = types.SetJWT(ctx, tokenString)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireServiceRole rejects callers whose token is not a service role token.
// Must run after AuthenticateMiddleware.
func RequireServiceRole(c *gin.Context) {
	if types.GetRole(c.Request.Context()) != types.RoleServiceRole {
		abortWithError(c, ierr.NewError("service role required").
			WithHint("This operation is restricted to trusted backends").
			Mark(ierr.ErrPermissionDenied))
		return
	}
	c.Next()
}

// RequireUser rejects tokens that carry no end-user subject
func RequireUser(c *gin.Context) {
	if types.GetUserID(c.Request.Context()) == "" {
		abortWithError(c, ierr.NewError("user token required").
			WithHint("Sign in to continue").
			Mark(ierr.ErrUnauthorized))
		return
	}
	c.Next()
}

// abortWithError stops the chain and leaves rendering to ErrorHandler
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
