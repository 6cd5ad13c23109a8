package voice

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Client is the vendor agent-management API client.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

// NewClientFromEnv builds the vendor client. The API key is required.
func NewClientFromEnv() (*Client, error) {
	key := os.Getenv("ELEVENLABS_API_KEY")
	if key == "" {
		return nil, errors.New("ELEVENLABS_API_KEY is not set")
	}
	baseURL := os.Getenv("ELEVENLABS_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{http: resty.New(), baseURL: baseURL, apiKey: key}, nil
}

// NewClient is used by tests to point the client at a stub server.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{http: resty.New(), baseURL: baseURL, apiKey: apiKey}
}

type createAgentResponse struct {
	AgentID string `json:"agent_id"`
}

// CreateAgent creates a vendor agent and returns its opaque id.
func (c *Client) CreateAgent(ctx context.Context, payload *CreateAgentPayload) (string, error) {
	var result createAgentResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("xi-api-key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&result).
		Post(c.baseURL + "/v1/convai/agents/create")
	if err != nil {
		return "", errors.Wrap(err, "vendor agent create")
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		debuglog.Debug(debuglog.Basic, "vendor agent create failed: %s\n", resp.String())
		return "", errors.Wrapf(domain.ErrVendorConfig, "agent create returned status %d", resp.StatusCode())
	}
	if result.AgentID == "" {
		return "", errors.Wrap(domain.ErrVendorConfig, "agent create returned no agent_id")
	}
	return result.AgentID, nil
}

// UpdateAgent patches the agent's configuration for the next simulation.
func (c *Client) UpdateAgent(ctx context.Context, agentID string, payload *UpdateAgentPayload) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("xi-api-key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Patch(fmt.Sprintf("%s/v1/convai/agents/%s", c.baseURL, agentID))
	if err != nil {
		return errors.Wrap(err, "vendor agent update")
	}
	if resp.StatusCode() != http.StatusOK {
		debuglog.Debug(debuglog.Basic, "vendor agent update failed: %s\n", resp.String())
		return errors.Wrapf(domain.ErrVendorConfig, "agent update returned status %d", resp.StatusCode())
	}
	return nil
}

type signedURLResponse struct {
	SignedURL string `json:"signed_url"`
}

// SignedURL requests a short-lived signed session URL for an agent. Some
// vendor plans decline signed sessions; callers then fall back to the public
// agent id.
func (c *Client) SignedURL(ctx context.Context, agentID string) (string, error) {
	var result signedURLResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("xi-api-key", c.apiKey).
		SetQueryParam("agent_id", agentID).
		SetResult(&result).
		Get(c.baseURL + "/v1/convai/conversation/get_signed_url")
	if err != nil {
		return "", errors.Wrap(err, "vendor signed url")
	}
	if resp.StatusCode() != http.StatusOK || result.SignedURL == "" {
		return "", nil
	}
	return result.SignedURL, nil
}
