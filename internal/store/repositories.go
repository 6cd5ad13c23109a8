package store

import (
	"context"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"
	supabase "github.com/supabase-community/supabase-go"

	"github.com/pitchperfect/pitchperfect/internal/domain"
)

// conversationDetailColumns embeds the referenced agent, product and feedback
// rows the way the dashboard detail query does.
const conversationDetailColumns = "*, agents:agent_id (*), products:product_id (*), feedback:feedback_id (*)"

const conversationRefColumns = "*, agents:agent_id (*), products:product_id (*)"

type UserRepository struct {
	client *supabase.Client
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	_ = ctx
	var result []domain.User
	_, err := r.client.From("users").Select("*", "", false).Eq("id", id.String()).Limit(1, "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

// SetVoiceAgentID stores the lazily provisioned vendor agent id on the user
// row. Last write wins across concurrent starts.
func (r *UserRepository) SetVoiceAgentID(ctx context.Context, id uuid.UUID, agentID string) error {
	_ = ctx
	var result []domain.User
	_, err := r.client.From("users").Update(map[string]any{"elevenlabs_agent_api_id": agentID}, "representation", "").Eq("id", id.String()).Limit(1, "").ExecuteTo(&result)
	return err
}

type AgentRepository struct {
	client *supabase.Client
}

func (r *AgentRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.Agent, error) {
	_ = ctx
	var result []domain.Agent
	_, err := r.client.From("agents").Select("*", "", false).Eq("user_id", userID.String()).Order("created_at", &postgrest.OrderOpts{Ascending: false}).ExecuteTo(&result)
	return result, err
}

func (r *AgentRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	_ = ctx
	var result []domain.Agent
	_, err := r.client.From("agents").Select("*", "", false).Eq("id", id.String()).Limit(1, "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func (r *AgentRepository) Create(ctx context.Context, payload map[string]any) (*domain.Agent, error) {
	_ = ctx
	var result []domain.Agent
	_, err := r.client.From("agents").Insert(payload, false, "", "representation", "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func (r *AgentRepository) Update(ctx context.Context, id, userID uuid.UUID, payload map[string]any) (*domain.Agent, error) {
	_ = ctx
	var result []domain.Agent
	_, err := r.client.From("agents").Update(payload, "representation", "").Eq("id", id.String()).Eq("user_id", userID.String()).Limit(1, "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func (r *AgentRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	_ = ctx
	_, _, err := r.client.From("agents").Delete("", "").Eq("id", id.String()).Eq("user_id", userID.String()).Execute()
	return err
}

type ProductRepository struct {
	client *supabase.Client
}

func (r *ProductRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.Product, error) {
	_ = ctx
	var result []domain.Product
	_, err := r.client.From("products").Select("*", "", false).Eq("user_id", userID.String()).Order("created_at", &postgrest.OrderOpts{Ascending: false}).ExecuteTo(&result)
	return result, err
}

func (r *ProductRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	_ = ctx
	var result []domain.Product
	_, err := r.client.From("products").Select("*", "", false).Eq("id", id.String()).Limit(1, "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func (r *ProductRepository) Create(ctx context.Context, payload map[string]any) (*domain.Product, error) {
	_ = ctx
	var result []domain.Product
	_, err := r.client.From("products").Insert(payload, false, "", "representation", "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func (r *ProductRepository) Update(ctx context.Context, id, userID uuid.UUID, payload map[string]any) (*domain.Product, error) {
	_ = ctx
	var result []domain.Product
	_, err := r.client.From("products").Update(payload, "representation", "").Eq("id", id.String()).Eq("user_id", userID.String()).Limit(1, "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func (r *ProductRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	_ = ctx
	_, _, err := r.client.From("products").Delete("", "").Eq("id", id.String()).Eq("user_id", userID.String()).Execute()
	return err
}

type ConversationRepository struct {
	client *supabase.Client
}

func (r *ConversationRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	_ = ctx
	var result []domain.Conversation
	_, err := r.client.From("conversations").Select("*", "", false).Eq("user_id", userID.String()).Order("created_at", &postgrest.OrderOpts{Ascending: false}).ExecuteTo(&result)
	return result, err
}

// GetOwned fetches a conversation scoped to its owner. Returns nil when the
// row is absent or belongs to someone else.
func (r *ConversationRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Conversation, error) {
	_ = ctx
	var result []domain.Conversation
	_, err := r.client.From("conversations").Select("*", "", false).Eq("id", id.String()).Eq("user_id", userID.String()).Limit(1, "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

// GetWithRefs fetches an owned conversation with its agent and product embedded.
func (r *ConversationRepository) GetWithRefs(ctx context.Context, id, userID uuid.UUID) (*domain.Conversation, error) {
	_ = ctx
	var result []domain.Conversation
	_, err := r.client.From("conversations").Select(conversationRefColumns, "", false).Eq("id", id.String()).Eq("user_id", userID.String()).Limit(1, "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

// GetDetail fetches an owned conversation with agent, product and feedback embedded.
func (r *ConversationRepository) GetDetail(ctx context.Context, id, userID uuid.UUID) (*domain.Conversation, error) {
	_ = ctx
	var result []domain.Conversation
	_, err := r.client.From("conversations").Select(conversationDetailColumns, "", false).Eq("id", id.String()).Eq("user_id", userID.String()).Limit(1, "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func (r *ConversationRepository) Insert(ctx context.Context, payload map[string]any) (*domain.Conversation, error) {
	_ = ctx
	var result []domain.Conversation
	_, err := r.client.From("conversations").Insert(payload, false, "", "representation", "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

// SetVoiceSessionID stamps the vendor agent id on the conversation, marking
// it as started.
func (r *ConversationRepository) SetVoiceSessionID(ctx context.Context, id uuid.UUID, sessionID string) error {
	_ = ctx
	var result []domain.Conversation
	_, err := r.client.From("conversations").Update(map[string]any{"elevenlabs_conversation_id": sessionID}, "representation", "").Eq("id", id.String()).Limit(1, "").ExecuteTo(&result)
	return err
}

// SetFeedbackID links a feedback row back to its conversation.
func (r *ConversationRepository) SetFeedbackID(ctx context.Context, id, feedbackID uuid.UUID) error {
	_ = ctx
	var result []domain.Conversation
	_, err := r.client.From("conversations").Update(map[string]any{"feedback_id": feedbackID.String()}, "representation", "").Eq("id", id.String()).Limit(1, "").ExecuteTo(&result)
	return err
}

type FeedbackRepository struct {
	client *supabase.Client
}

func (r *FeedbackRepository) Insert(ctx context.Context, payload map[string]any) (*domain.Feedback, error) {
	_ = ctx
	var result []domain.Feedback
	_, err := r.client.From("feedback").Insert(payload, false, "", "representation", "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func (r *FeedbackRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Feedback, error) {
	_ = ctx
	var result []domain.Feedback
	_, err := r.client.From("feedback").Select("*", "", false).Eq("id", id.String()).Limit(1, "").ExecuteTo(&result)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}
