package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/flexprice/marketplace/internal/domain/provider"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	sb "github.com/flexprice/marketplace/internal/supabase"
)

const (
	tableProvider   = "provider"
	providerColumns = "id,stripe,is_resident,tax_document"
)

type providerRepository struct {
	client *sb.Client
	logger *logger.Logger
}

func NewProviderRepository(client *sb.Client, logger *logger.Logger) provider.Repository {
	return &providerRepository{client: client, logger: logger}
}

func (r *providerRepository) Get(ctx context.Context, id string) (*provider.Provider, error) {
	var rows []*provider.Provider
	err := r.client.DB.From(tableProvider).
		Select(providerColumns).
		Eq("id", id).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load provider").
			WithReportableDetails(map[string]any{"provider_id": id}).
			Mark(ierr.ErrDatabase)
	}

	if len(rows) == 0 {
		return nil, ierr.NewError("provider not found").
			WithHintf("Provider %s was not found", id).
			WithReportableDetails(map[string]any{"provider_id": id}).
			Mark(ierr.ErrNotFound)
	}

	return rows[0], nil
}

// SetConnectedAccountIfAbsent issues a conditional update (stripe IS NULL) so concurrent
// onboarding attempts cannot overwrite each other's account id.
func (r *providerRepository) SetConnectedAccountIfAbsent(ctx context.Context, id string, accountID string) (*provider.Provider, bool, error) {
	var rows []*provider.Provider
	err := r.client.REST(ctx, &sb.RESTRequest{
		Method: http.MethodPatch,
		Table:  tableProvider,
		Query: url.Values{
			"id":     {"eq." + id},
			"stripe": {"is.null"},
			"select": {providerColumns},
		},
		Body:   map[string]string{"stripe": accountID},
		Prefer: sb.PreferReturnRepresentation,
	}, &rows)
	if err != nil {
		return nil, false, ierr.WithError(err).
			WithHint("Failed to store connected account").
			WithReportableDetails(map[string]any{"provider_id": id}).
			Mark(ierr.ErrDatabase)
	}

	if len(rows) > 0 {
		return rows[0], true, nil
	}

	r.logger.Infow("connected account already stored for provider",
		"provider_id", id,
		"attempted_account_id", accountID)

	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
