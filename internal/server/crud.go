package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	"github.com/pitchperfect/pitchperfect/internal/store"
)

// Dashboard CRUD for personas and products, plus conversation history.
// Everything is scoped to the authenticated owner.

type AgentsHandler struct {
	repo *store.AgentRepository
}

func NewAgentsHandler(r gin.IRouter, repo *store.AgentRepository) *AgentsHandler {
	handler := &AgentsHandler{repo: repo}
	group := r.Group("/agents")
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)

	return handler
}

func (h *AgentsHandler) List(c *gin.Context) {
	agents, err := h.repo.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, agents)
}

type agentRequest struct {
	Name        string         `json:"name" binding:"required"`
	Firstname   string         `json:"firstname"`
	Lastname    string         `json:"lastname"`
	JobTitle    string         `json:"job_title"`
	Difficulty  string         `json:"difficulty"`
	Personality map[string]any `json:"personnality"`
	VoiceID     string         `json:"voice_id"`
	PictureURL  string         `json:"picture_url"`
}

func (h *AgentsHandler) Create(c *gin.Context) {
	var req agentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agent, err := h.repo.Create(c.Request.Context(), map[string]any{
		"user_id":      currentUserID(c).String(),
		"name":         req.Name,
		"firstname":    req.Firstname,
		"lastname":     req.Lastname,
		"job_title":    req.JobTitle,
		"difficulty":   req.Difficulty,
		"personnality": req.Personality,
		"voice_id":     req.VoiceID,
		"picture_url":  req.PictureURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (h *AgentsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agent id"})
		return
	}
	var req agentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agent, err := h.repo.Update(c.Request.Context(), id, currentUserID(c), map[string]any{
		"name":         req.Name,
		"firstname":    req.Firstname,
		"lastname":     req.Lastname,
		"job_title":    req.JobTitle,
		"difficulty":   req.Difficulty,
		"personnality": req.Personality,
		"voice_id":     req.VoiceID,
		"picture_url":  req.PictureURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if agent == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.MsgAgentNotFound})
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *AgentsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agent id"})
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type ProductsHandler struct {
	repo *store.ProductRepository
}

func NewProductsHandler(r gin.IRouter, repo *store.ProductRepository) *ProductsHandler {
	handler := &ProductsHandler{repo: repo}
	group := r.Group("/products")
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)

	return handler
}

func (h *ProductsHandler) List(c *gin.Context) {
	products, err := h.repo.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

type productRequest struct {
	Name       string   `json:"name" binding:"required"`
	Price      *float64 `json:"price"`
	Market     string   `json:"marche"`
	Pitch      string   `json:"pitch"`
	Objections string   `json:"objections"`
}

func (h *ProductsHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.repo.Create(c.Request.Context(), map[string]any{
		"user_id":    currentUserID(c).String(),
		"name":       req.Name,
		"price":      req.Price,
		"marche":     req.Market,
		"pitch":      req.Pitch,
		"objections": req.Objections,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.repo.Update(c.Request.Context(), id, currentUserID(c), map[string]any{
		"name":       req.Name,
		"price":      req.Price,
		"marche":     req.Market,
		"pitch":      req.Pitch,
		"objections": req.Objections,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.MsgProductNotFound})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type ConversationsHandler struct {
	repo *store.ConversationRepository
}

func NewConversationsHandler(r gin.IRouter, repo *store.ConversationRepository) *ConversationsHandler {
	handler := &ConversationsHandler{repo: repo}
	group := r.Group("/conversations")
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)

	return handler
}

func (h *ConversationsHandler) List(c *gin.Context) {
	conversations, err := h.repo.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// Get returns one conversation with its agent, product and feedback embedded.
func (h *ConversationsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	conversation, err := h.repo.GetDetail(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if conversation == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.MsgNotFound})
		return
	}
	c.JSON(http.StatusOK, conversation)
}
