package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchperfect/pitchperfect/internal/domain"
)

func TestCreateAgent(t *testing.T) {
	var gotPayload CreateAgentPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/convai/agents/create", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"agent_id": "agent-123"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	payload := &CreateAgentPayload{Name: "Agent_abc"}

	agentID, err := client.CreateAgent(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "agent-123", agentID)
	assert.Equal(t, "Agent_abc", gotPayload.Name)
}

func TestCreateAgentRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.CreateAgent(context.Background(), &CreateAgentPayload{})

	assert.ErrorIs(t, err, domain.ErrVendorConfig)
}

func TestCreateAgentRejectsMissingAgentID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.CreateAgent(context.Background(), &CreateAgentPayload{})

	assert.ErrorIs(t, err, domain.ErrVendorConfig)
}

func TestUpdateAgent(t *testing.T) {
	var gotPayload UpdateAgentPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/convai/agents/agent-123", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	payload := &UpdateAgentPayload{Name: "Marc_cold_call", Tags: []string{"sales"}}

	require.NoError(t, client.UpdateAgent(context.Background(), "agent-123", payload))
	assert.Equal(t, "Marc_cold_call", gotPayload.Name)
}

func TestUpdateAgentRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	err := client.UpdateAgent(context.Background(), "agent-123", &UpdateAgentPayload{})

	assert.ErrorIs(t, err, domain.ErrVendorConfig)
}

func TestSignedURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/convai/conversation/get_signed_url", r.URL.Path)
		assert.Equal(t, "agent-123", r.URL.Query().Get("agent_id"))
		_, _ = w.Write([]byte(`{"signed_url": "wss://api.example/session?token=abc"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	url, err := client.SignedURL(context.Background(), "agent-123")

	require.NoError(t, err)
	assert.Equal(t, "wss://api.example/session?token=abc", url)
}

func TestSignedURLDeclinedIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail": "requires paid plan"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	url, err := client.SignedURL(context.Background(), "agent-123")

	require.NoError(t, err)
	assert.Empty(t, url)
}
