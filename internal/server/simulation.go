package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitchperfect/pitchperfect/internal/core"
	"github.com/pitchperfect/pitchperfect/internal/domain"
	"github.com/pitchperfect/pitchperfect/internal/feedback"
)

// Simulator is the server-side start workflow.
type Simulator interface {
	Start(ctx context.Context, userID, conversationID uuid.UUID) (string, error)
	SessionCredential(ctx context.Context, userID, conversationID uuid.UUID) (*core.SessionAccess, error)
}

// Finalizer is the end-of-call workflow.
type Finalizer interface {
	Finalize(ctx context.Context, userID uuid.UUID, req *feedback.Request) (*feedback.Result, error)
}

type SimulationHandler struct {
	simulator Simulator
	finalizer Finalizer
}

func NewSimulationHandler(r gin.IRouter, simulator Simulator, finalizer Finalizer) *SimulationHandler {
	handler := &SimulationHandler{simulator: simulator, finalizer: finalizer}
	group := r.Group("/simulation")
	group.POST("/start", handler.Start)
	group.POST("/end", handler.End)

	r.POST("/get-signed-url", handler.SignedURL)

	return handler
}

type startRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
}

// Start provisions and configures the vendor agent for a conversation.
func (h *SimulationHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation_id is required"})
		return
	}
	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	agentID, err := h.simulator.Start(c.Request.Context(), currentUserID(c), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"agent_id":        agentID,
		"success":         true,
		"message":         domain.MsgAgentConfigured,
	})
}

type endRequest struct {
	Messages         []domain.Message        `json:"messages"`
	Duration         int                     `json:"duration"`
	ConversationID   string                  `json:"conversationId" binding:"required"`
	SimulationConfig domain.SimulationConfig `json:"simulationConfig"`
}

// End submits the transcript for persistence and feedback synthesis.
func (h *SimulationHandler) End(c *gin.Context) {
	var req endRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
		return
	}
	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	result, err := h.finalizer.Finalize(c.Request.Context(), currentUserID(c), &feedback.Request{
		ConversationID: conversationID,
		Messages:       req.Messages,
		Duration:       req.Duration,
		Config:         req.SimulationConfig,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SignedURL resolves the session credential the client opens the realtime
// session with.
func (h *SimulationHandler) SignedURL(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation_id is required"})
		return
	}
	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	access, err := h.simulator.SessionCredential(c.Request.Context(), currentUserID(c), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, access)
}
