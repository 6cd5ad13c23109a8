package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/pitchperfect/pitchperfect/internal/domain"
)

// Identity is the ambient authenticated identity resolved from a bearer token.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuthenticateToken resolves a user access token against the auth provider's
// user endpoint. An invalid or expired token yields ErrUnauthorized.
func (c *Client) AuthenticateToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	var identity Identity
	resp, err := resty.New().R().
		SetContext(ctx).
		SetHeader("apikey", c.apiKey).
		SetAuthToken(token).
		SetResult(&identity).
		Get(c.url + "/auth/v1/user")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil, domain.ErrUnauthorized
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("auth endpoint returned status %d", resp.StatusCode())
	}
	if identity.ID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return &identity, nil
}
