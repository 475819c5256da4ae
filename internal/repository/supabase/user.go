package supabase

import (
	"context"
	"net/http"

	"github.com/flexprice/marketplace/internal/domain/user"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/httpclient"
	"github.com/flexprice/marketplace/internal/logger"
	sb "github.com/flexprice/marketplace/internal/supabase"
)

type adminUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

type userRepository struct {
	client *sb.Client
	logger *logger.Logger
}

func NewUserRepository(client *sb.Client, logger *logger.Logger) user.Repository {
	return &userRepository{client: client, logger: logger}
}

func (r *userRepository) Get(ctx context.Context, id string) (*user.User, error) {
	var u adminUser
	if err := r.client.AdminUser(ctx, http.MethodGet, id, nil, &u); err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok && httpErr.StatusCode == http.StatusNotFound {
			return nil, ierr.WithError(err).
				WithHintf("User %s was not found", id).
				WithReportableDetails(map[string]any{"user_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load user").
			WithReportableDetails(map[string]any{"user_id": id}).
			Mark(ierr.ErrDatabase)
	}

	return &user.User{
		ID:       u.ID,
		Email:    u.Email,
		Metadata: u.UserMetadata,
	}, nil
}

// MergeMetadata relies on the auth admin API merging user_metadata keys on update
func (r *userRepository) MergeMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	body := map[string]interface{}{"user_metadata": metadata}
	if err := r.client.AdminUser(ctx, http.MethodPut, id, body, nil); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update user metadata").
			WithReportableDetails(map[string]any{"user_id": id}).
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("updated user metadata", "user_id", id)
	return nil
}
