// Package store wraps the Supabase SDK to expose typed repositories for the
// five simulation collections.
package store

import (
	"context"
	"fmt"
	"os"

	supabase "github.com/supabase-community/supabase-go"

	"github.com/pitchperfect/pitchperfect/internal/domain"
)

// Client wraps the Supabase SDK client.
type Client struct {
	client *supabase.Client
	url    string
	apiKey string
}

// NewClientFromEnv instantiates the Supabase client when credentials are present.
func NewClientFromEnv() (*Client, error) {
	url := os.Getenv("SUPABASE_URL")
	key := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase credentials missing: SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY not set")
	}

	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, err
	}

	return &Client{client: client, url: url, apiKey: key}, nil
}

// Ping verifies the connection with a one-row fetch against users.
func (c *Client) Ping(ctx context.Context) error {
	_ = ctx
	if c == nil || c.client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, err := c.client.From("users").Select("id", "", false).Limit(1, "").ExecuteTo(&[]domain.User{})
	return err
}

// Users returns a typed repository for user rows.
func (c *Client) Users() *UserRepository {
	return &UserRepository{client: c.client}
}

// Agents returns a typed repository for persona CRUD.
func (c *Client) Agents() *AgentRepository {
	return &AgentRepository{client: c.client}
}

// Products returns a typed repository for product CRUD.
func (c *Client) Products() *ProductRepository {
	return &ProductRepository{client: c.client}
}

// Conversations returns a typed repository for simulation runs.
func (c *Client) Conversations() *ConversationRepository {
	return &ConversationRepository{client: c.client}
}

// Feedback returns a typed repository for evaluation rows.
func (c *Client) Feedback() *FeedbackRepository {
	return &FeedbackRepository{client: c.client}
}
