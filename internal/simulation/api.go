package simulation

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
)

// APIClient drives one run's server round trips: agent provisioning, session
// credentials and end-of-call submission. It implements Preparer and
// Finalizer; create one per run with that run's configuration snapshot.
type APIClient struct {
	http    *resty.Client
	baseURL string
	token   string
	config  domain.SimulationConfig
}

func NewAPIClient(baseURL, token string, config domain.SimulationConfig) *APIClient {
	return &APIClient{http: resty.New(), baseURL: baseURL, token: token, config: config}
}

type startResponse struct {
	AgentID string `json:"agent_id"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type signedURLResponse struct {
	AgentID   string `json:"agentId"`
	SignedURL string `json:"signedUrl"`
	DirectUse bool   `json:"directUse"`
	Error     string `json:"error"`
}

// Prepare runs the provisioning round trip and resolves a session
// credential, preferring the signed URL when the vendor grants one.
func (c *APIClient) Prepare(ctx context.Context, conversationID uuid.UUID) (SessionCredential, error) {
	var started startResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(map[string]string{"conversation_id": conversationID.String()}).
		SetResult(&started).
		SetError(&started).
		Post(c.baseURL + "/api/simulation/start")
	if err != nil {
		return SessionCredential{}, errors.Wrap(err, "simulation start")
	}
	if resp.StatusCode() != http.StatusOK {
		return SessionCredential{}, errors.Errorf("simulation start returned status %d: %s", resp.StatusCode(), started.Error)
	}

	var access signedURLResponse
	resp, err = c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(map[string]string{"conversation_id": conversationID.String()}).
		SetResult(&access).
		SetError(&access).
		Post(c.baseURL + "/api/get-signed-url")
	if err != nil || resp.StatusCode() != http.StatusOK {
		// The configured agent id from the start call still opens a
		// public session.
		debuglog.Debug(debuglog.Basic, "signed url round trip failed, using agent id\n")
		return SessionCredential{AgentID: started.AgentID}, nil
	}
	if access.DirectUse || access.SignedURL == "" {
		return SessionCredential{AgentID: access.AgentID}, nil
	}
	return SessionCredential{SignedURL: access.SignedURL, AgentID: access.AgentID}, nil
}

type endRequest struct {
	Messages         []domain.Message        `json:"messages"`
	Duration         int                     `json:"duration"`
	ConversationID   string                  `json:"conversationId"`
	SimulationConfig domain.SimulationConfig `json:"simulationConfig"`
}

type endResponse struct {
	Success        bool             `json:"success"`
	ConversationID uuid.UUID        `json:"conversation_id"`
	Feedback       *domain.Feedback `json:"feedback"`
	Error          string           `json:"error"`
}

// Finalize submits the transcript for analysis. The server persists the
// conversation before analyzing, so a non-2xx here means nothing was stored.
func (c *APIClient) Finalize(ctx context.Context, conversationID uuid.UUID, transcript []domain.Message, duration int) (*domain.Feedback, []domain.Message, error) {
	var result endResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(&endRequest{
			Messages:         transcript,
			Duration:         duration,
			ConversationID:   conversationID.String(),
			SimulationConfig: c.config,
		}).
		SetResult(&result).
		SetError(&result).
		Post(c.baseURL + "/api/simulation/end")
	if err != nil {
		return nil, nil, errors.Wrap(err, "simulation end")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, nil, errors.Errorf("simulation end returned status %d: %s", resp.StatusCode(), result.Error)
	}
	return result.Feedback, nil, nil
}
