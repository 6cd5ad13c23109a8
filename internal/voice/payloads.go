// Package voice talks to the ElevenLabs conversational-AI vendor: agent
// management, persona configuration and realtime session access.
package voice

// Audio and session parameters are fixed product-wide; only the prompt, the
// voice and the naming vary per simulation.
const (
	audioFormat        = "ulaw_8000"
	ttsModel           = "eleven_flash_v2_5"
	defaultVoiceID     = "T9VNN91AsQKnhGF6hTi8"
	agentLanguage      = "fr"
	maxSessionSeconds  = 1800
	provisioningLLM    = "gemini-1.5-flash"
	conversationalLLM  = "claude-3-7-sonnet"
	promptTemperature  = 0.3
	defaultFirstPhrase = "Bonjour"
)

var clientEvents = []string{
	"user_transcript",
	"agent_response",
	"audio",
	"interruption",
	"agent_response_correction",
}

type PromptConfig struct {
	Prompt      string  `json:"prompt"`
	LLM         string  `json:"llm,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Tools       []Tool  `json:"tools,omitempty"`
}

type Tool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Params      map[string]any `json:"params,omitempty"`
}

type AgentConfig struct {
	Prompt       PromptConfig `json:"prompt"`
	FirstMessage string       `json:"first_message,omitempty"`
	Language     string       `json:"language"`
}

type TTSConfig struct {
	AgentOutputAudioFormat string  `json:"agent_output_audio_format"`
	VoiceID                string  `json:"voice_id"`
	ModelID                string  `json:"model_id"`
	Stability              float64 `json:"stability"`
	SimilarityBoost        float64 `json:"similarity_boost"`
	Speed                  float64 `json:"speed"`
}

type ASRConfig struct {
	UserInputAudioFormat string `json:"user_input_audio_format"`
}

type SessionConfig struct {
	ClientEvents       []string `json:"client_events"`
	MaxDurationSeconds int      `json:"max_duration_seconds"`
}

type ConversationConfig struct {
	Agent           AgentConfig               `json:"agent"`
	LanguagePresets map[string]LanguagePreset `json:"language_presets,omitempty"`
	TTS             TTSConfig                 `json:"tts"`
	ASR             ASRConfig                 `json:"asr"`
	Conversation    SessionConfig             `json:"conversation"`
}

type LanguagePreset struct {
	Overrides PresetOverrides `json:"overrides"`
}

type PresetOverrides struct {
	Agent AgentLanguageOverride `json:"agent"`
}

type AgentLanguageOverride struct {
	Language string `json:"language"`
}

type EvaluationCriterion struct {
	ID                     string `json:"id"`
	ConversationGoalPrompt string `json:"conversation_goal_prompt"`
}

type PlatformSettings struct {
	Evaluation EvaluationSettings `json:"evaluation"`
}

type EvaluationSettings struct {
	Criteria []EvaluationCriterion `json:"criteria"`
}

// CreateAgentPayload provisions the per-user agent slot with a neutral
// default persona; each simulation reconfigures it afterwards.
type CreateAgentPayload struct {
	ConversationConfig ConversationConfig `json:"conversation_config"`
	PlatformSettings   *PlatformSettings  `json:"platform_settings,omitempty"`
	Name               string             `json:"name"`
}

// UpdateAgentPayload reconfigures an existing agent for one simulation.
type UpdateAgentPayload struct {
	ConversationConfig ConversationConfig `json:"conversation_config"`
	Name               string             `json:"name"`
	Tags               []string           `json:"tags,omitempty"`
}

func defaultTTSConfig(voiceID string) TTSConfig {
	return TTSConfig{
		AgentOutputAudioFormat: audioFormat,
		VoiceID:                voiceID,
		ModelID:                ttsModel,
		Stability:              0.5,
		SimilarityBoost:        0.8,
		Speed:                  1.0,
	}
}

func defaultSessionConfig() SessionConfig {
	return SessionConfig{
		ClientEvents:       clientEvents,
		MaxDurationSeconds: maxSessionSeconds,
	}
}
