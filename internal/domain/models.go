// Package domain holds the entities shared across the simulation workflows.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty of a prospect persona. Values are the French labels the
// product UI writes to the row store.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "facile"
	DifficultyMedium Difficulty = "moyen"
	DifficultyHard   Difficulty = "difficile"
)

// CallType identifies the kind of sales call being simulated.
type CallType string

const (
	CallTypeCold      CallType = "cold_call"
	CallTypeDiscovery CallType = "discovery_meeting"
	CallTypeDemo      CallType = "product_demo"
	CallTypeClosing   CallType = "closing_call"
	CallTypeFollowUp  CallType = "follow_up_call"
)

// CallTypeLabels maps call types to the French descriptions embedded in
// persona prompts.
var CallTypeLabels = map[CallType]string{
	CallTypeCold:      "Appel commercial à froid",
	CallTypeDiscovery: "Réunion de découverte",
	CallTypeDemo:      "Démonstration produit",
	CallTypeClosing:   "Appel de closing",
	CallTypeFollowUp:  "Appel de suivi",
}

// User is the authenticated identity row. The auth provider creates it at
// signup; the application only mutates the credit balance and the vendor
// agent reference.
type User struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PictureURL string    `json:"picture_url"`
	Credits    int       `json:"credits"`
	// VoiceAgentID is the per-user vendor agent slot, empty until the
	// first simulation lazily provisions it.
	VoiceAgentID string    `json:"elevenlabs_agent_api_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Agent is a prospect persona definition. Immutable during a simulation.
type Agent struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Name        string         `json:"name"`
	Firstname   string         `json:"firstname"`
	Lastname    string         `json:"lastname"`
	JobTitle    string         `json:"job_title"`
	Difficulty  Difficulty     `json:"difficulty"`
	Personality map[string]any `json:"personnality"`
	VoiceID     string         `json:"voice_id"`
	PictureURL  string         `json:"picture_url"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FullName prefers the first/last name pair and falls back to the display name.
func (a *Agent) FullName() string {
	if a.Firstname != "" && a.Lastname != "" {
		return a.Firstname + " " + a.Lastname
	}
	return a.Name
}

// Product is what the trainee is selling.
type Product struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Price      *float64  `json:"price"`
	Market     string    `json:"marche"`
	Pitch      string    `json:"pitch"`
	Objections string    `json:"objections"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageSource is the vendor's report of who produced an utterance.
type MessageSource string

const (
	SourceAI   MessageSource = "ai"
	SourceUser MessageSource = "user"
)

// MessageRole is the transcript role derived from the vendor source.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one transcript entry. Messages are buffered in memory during a
// live session and persisted as the conversation transcript at end-of-call.
type Message struct {
	Role      MessageRole   `json:"role"`
	Content   string        `json:"content"`
	Timestamp int64         `json:"timestamp"`
	Source    MessageSource `json:"source,omitempty"`
}

// CallContext is the free-form situation the persona plays against.
type CallContext struct {
	Sector  string `json:"secteur,omitempty"`
	Company string `json:"company,omitempty"`
	History string `json:"historique_relation,omitempty"`
}

// Conversation is a simulation run. The row is written once, at end-of-call,
// with the full transcript attached; it is later patched with the vendor
// session id and the feedback id.
type Conversation struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	AgentID         uuid.UUID   `json:"agent_id"`
	ProductID       uuid.UUID   `json:"product_id"`
	Transcript      []Message   `json:"transcript"`
	Goal            string      `json:"goal"`
	Context         CallContext `json:"context"`
	CallType        CallType    `json:"call_type"`
	DurationSeconds int         `json:"duration_seconds"`
	// VoiceSessionID is null until provisioning stamps the vendor agent id.
	VoiceSessionID *string    `json:"elevenlabs_conversation_id"`
	FeedbackID     *uuid.UUID `json:"feedback_id"`
	CreatedAt      time.Time  `json:"created_at"`

	// Embedded resources, populated by the detail query only.
	Agent    *Agent    `json:"agents,omitempty"`
	Product  *Product  `json:"products,omitempty"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Feedback is a performance evaluation, 1:1 with its conversation and never
// updated after creation.
type Feedback struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	UserID         uuid.UUID `json:"user_id"`
	Score          int       `json:"note"`
	Strengths      []string  `json:"points_forts"`
	Improvements   []string  `json:"axes_amelioration"`
	KeyMoments     []string  `json:"moments_cles"`
	Suggestions    []string  `json:"suggestions"`
	Analysis       string    `json:"analyse_complete"`
	CreatedAt      time.Time `json:"created_at"`
}

// SimulationConfig is the configuration snapshot the client submits at
// end-of-call alongside the transcript.
type SimulationConfig struct {
	Agent    Agent       `json:"agent"`
	Product  Product     `json:"product"`
	Goal     string      `json:"goal"`
	Context  CallContext `json:"context"`
	CallType CallType    `json:"callType"`
}
