package auth

import (
	"context"
	"fmt"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/domain/auth"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/golang-jwt/jwt/v4"
)

type supabaseAuth struct {
	secret []byte
}

// NewSupabaseAuth validates access tokens minted by Supabase auth with the project JWT secret
func NewSupabaseAuth(cfg *config.Configuration) *supabaseAuth {
	return &supabaseAuth{secret: []byte(cfg.Supabase.JWTSecret)}
}

func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid access token").
			Mark(ierr.ErrUnauthorized)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid access token").
			Mark(ierr.ErrUnauthorized)
	}

	role, _ := claims["role"].(string)
	userID, _ := claims["sub"].(string)

	// service role tokens carry no subject
	if userID == "" && role != "service_role" {
		return nil, ierr.NewError("token missing subject").
			WithHint("Invalid access token").
			Mark(ierr.ErrUnauthorized)
	}

	email, _ := claims["email"].(string)
	metadata, _ := claims["user_metadata"].(map[string]interface{})

	return &auth.Claims{
		UserID:   userID,
		Email:    email,
		Role:     role,
		Metadata: metadata,
	}, nil
}
