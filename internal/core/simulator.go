// Package core wires the row store and the voice vendor into the
// server-side simulation workflows.
package core

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
	"github.com/pitchperfect/pitchperfect/internal/voice"
)

// ConversationStore is the slice of the row store the start workflow needs.
type ConversationStore interface {
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Conversation, error)
	GetWithRefs(ctx context.Context, id, userID uuid.UUID) (*domain.Conversation, error)
	SetVoiceSessionID(ctx context.Context, id uuid.UUID, sessionID string) error
}

// SignedURLSource mints short-lived session URLs for an agent.
type SignedURLSource interface {
	SignedURL(ctx context.Context, agentID string) (string, error)
}

// Simulator runs the agent-provisioning workflow that precedes a session.
type Simulator struct {
	conversations ConversationStore
	provisioner   voice.Provisioner
	signedURLs    SignedURLSource
}

func NewSimulator(conversations ConversationStore, provisioner voice.Provisioner, signedURLs SignedURLSource) *Simulator {
	return &Simulator{conversations: conversations, provisioner: provisioner, signedURLs: signedURLs}
}

// Start guarantees a vendor agent configured for the conversation's persona
// and returns its id. The conversation row is only stamped, never created
// here; the full record is written at end-of-call.
func (s *Simulator) Start(ctx context.Context, userID, conversationID uuid.UUID) (string, error) {
	conversation, err := s.conversations.GetOwned(ctx, conversationID, userID)
	if err != nil {
		return "", errors.Wrap(err, "loading conversation")
	}
	if conversation == nil {
		return "", domain.ErrNotFound
	}
	if conversation.VoiceSessionID != nil && *conversation.VoiceSessionID != "" {
		return "", domain.ErrAlreadyStarted
	}

	agentRef, err := s.provisioner.Ensure(ctx, userID)
	if err != nil {
		return "", err
	}

	details, err := s.conversations.GetWithRefs(ctx, conversationID, userID)
	if err != nil {
		return "", errors.Wrap(err, "loading conversation references")
	}
	if details == nil {
		return "", domain.ErrNotFound
	}
	if details.Agent == nil {
		return "", errors.Wrap(domain.ErrMissingReference, "agent")
	}
	if details.Product == nil {
		return "", errors.Wrap(domain.ErrMissingReference, "product")
	}

	spec := &voice.PersonaSpec{
		Agent:    details.Agent,
		Product:  details.Product,
		CallType: details.CallType,
		Context:  details.Context,
	}
	if err := s.provisioner.Configure(ctx, agentRef, spec); err != nil {
		return "", err
	}

	if err := s.conversations.SetVoiceSessionID(ctx, conversationID, agentRef); err != nil {
		// The agent is configured; a failed stamp only weakens the
		// already-started check for this conversation.
		debuglog.Debug(debuglog.Basic, "stamping conversation %s failed: %v\n", conversationID, err)
	}

	return agentRef, nil
}

// SessionAccess is the credential handed to the client for opening the
// realtime session.
type SessionAccess struct {
	AgentID   string `json:"agentId"`
	SignedURL string `json:"signedUrl,omitempty"`
	// DirectUse signals that the vendor declined a signed session and the
	// public agent id must be used instead.
	DirectUse bool `json:"directUse,omitempty"`
}

// SessionCredential resolves how the client should open the session for an
// owned conversation.
func (s *Simulator) SessionCredential(ctx context.Context, userID, conversationID uuid.UUID) (*SessionAccess, error) {
	conversation, err := s.conversations.GetOwned(ctx, conversationID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "loading conversation")
	}
	if conversation == nil {
		return nil, domain.ErrNotFound
	}

	agentRef, err := s.provisioner.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	signedURL, err := s.signedURLs.SignedURL(ctx, agentRef)
	if err != nil {
		debuglog.Debug(debuglog.Basic, "signed url fetch failed, falling back to direct use: %v\n", err)
		signedURL = ""
	}
	if signedURL == "" {
		return &SessionAccess{AgentID: agentRef, DirectUse: true}, nil
	}
	return &SessionAccess{AgentID: agentRef, SignedURL: signedURL}, nil
}
