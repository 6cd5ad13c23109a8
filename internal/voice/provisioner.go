package voice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
)

// UserDirectory is the slice of the row store the provisioner needs: reading
// and storing the per-user vendor agent reference.
type UserDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetVoiceAgentID(ctx context.Context, id uuid.UUID, agentID string) error
}

// Provisioner guarantees a configured vendor agent before a session opens.
// The shared-slot implementation reuses one agent per user (last writer
// wins across concurrent simulations); a per-conversation strategy can
// replace it without touching callers.
type Provisioner interface {
	Ensure(ctx context.Context, userID uuid.UUID) (string, error)
	Configure(ctx context.Context, agentRef string, spec *PersonaSpec) error
}

// SharedAgentProvisioner keeps one mutable vendor agent per user.
type SharedAgentProvisioner struct {
	client *Client
	users  UserDirectory
}

func NewSharedAgentProvisioner(client *Client, users UserDirectory) *SharedAgentProvisioner {
	return &SharedAgentProvisioner{client: client, users: users}
}

// Ensure returns the user's vendor agent id, lazily creating the agent with
// a neutral default persona on first use. Creation is not race-guarded:
// two concurrent first starts may create two agents, the stored id being
// whichever write lands last.
func (p *SharedAgentProvisioner) Ensure(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := p.users.Get(ctx, userID)
	if err != nil {
		return "", errors.Wrap(domain.ErrUserLookup, err.Error())
	}
	if user == nil {
		return "", domain.ErrUserLookup
	}
	if user.VoiceAgentID != "" {
		return user.VoiceAgentID, nil
	}

	debuglog.Debug(debuglog.Basic, "provisioning vendor agent for user %s\n", userID)

	payload := &CreateAgentPayload{
		ConversationConfig: ConversationConfig{
			Agent: AgentConfig{
				Prompt: PromptConfig{
					Prompt: "Tu es un assistant commercial professionnel.",
					LLM:    provisioningLLM,
					Tools: []Tool{
						{Type: "system", Name: "end_call", Description: ""},
					},
				},
				FirstMessage: defaultFirstPhrase,
				Language:     agentLanguage,
			},
			TTS:          defaultTTSConfig(defaultVoiceID),
			ASR:          ASRConfig{UserInputAudioFormat: audioFormat},
			Conversation: defaultSessionConfig(),
		},
		PlatformSettings: &PlatformSettings{
			Evaluation: EvaluationSettings{
				Criteria: []EvaluationCriterion{
					{ID: "1", ConversationGoalPrompt: "Assistant commercial professionnel"},
				},
			},
		},
		Name: fmt.Sprintf("Agent_%.8s", userID.String()),
	}

	agentID, err := p.client.CreateAgent(ctx, payload)
	if err != nil {
		return "", err
	}

	if err := p.users.SetVoiceAgentID(ctx, userID, agentID); err != nil {
		// The agent exists vendor-side; a failed profile write only means
		// the next start provisions again.
		debuglog.Debug(debuglog.Basic, "storing agent id failed: %v\n", err)
	}

	return agentID, nil
}

// Configure reconfigures the agent to role-play one simulation's persona.
func (p *SharedAgentProvisioner) Configure(ctx context.Context, agentRef string, spec *PersonaSpec) error {
	payload := &UpdateAgentPayload{
		ConversationConfig: ConversationConfig{
			Agent: AgentConfig{
				Prompt: PromptConfig{
					Prompt:      BuildPersonaPrompt(spec),
					LLM:         conversationalLLM,
					Temperature: promptTemperature,
					Tools: []Tool{
						{
							Type:        "system",
							Name:        "language_detection",
							Description: "",
							Params:      map[string]any{"system_tool_type": "language_detection"},
						},
					},
				},
				Language: agentLanguage,
			},
			LanguagePresets: map[string]LanguagePreset{
				agentLanguage: {Overrides: PresetOverrides{Agent: AgentLanguageOverride{Language: agentLanguage}}},
			},
			TTS:          defaultTTSConfig(SelectVoice(spec.Agent)),
			ASR:          ASRConfig{UserInputAudioFormat: audioFormat},
			Conversation: defaultSessionConfig(),
		},
		Name: fmt.Sprintf("%s_%s", spec.Agent.Name, spec.CallType),
		Tags: []string{"sales", string(spec.CallType), string(spec.Agent.Difficulty)},
	}

	return p.client.UpdateAgent(ctx, agentRef, payload)
}
