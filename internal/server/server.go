// Package server exposes the simulation workflows and the dashboard CRUD
// over HTTP.
package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	"github.com/pitchperfect/pitchperfect/internal/store"
)

// Serve starts the REST API server on the given address.
func Serve(address string, deps *Dependencies) error {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors())

	Register(r, deps)

	return r.Run(address)
}

// Dependencies are the collaborators the handlers need.
type Dependencies struct {
	Store     *store.Client
	Auth      Authenticator
	Simulator Simulator
	Finalizer Finalizer
}

// Register mounts all routes on the engine. Split out from Serve so tests
// can drive the handlers through httptest.
func Register(r *gin.Engine, deps *Dependencies) {
	r.GET("/api/health", healthHandler(deps.Store))

	api := r.Group("/api")
	api.Use(RequireIdentity(deps.Auth))

	NewSimulationHandler(api, deps.Simulator, deps.Finalizer)
	if deps.Store != nil {
		NewAgentsHandler(api, deps.Store.Agents())
		NewProductsHandler(api, deps.Store.Products())
		NewConversationsHandler(api, deps.Store.Conversations())
	}
}

func healthHandler(client *store.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "store not configured"})
			return
		}
		if err := client.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// respondError maps workflow failure kinds onto HTTP statuses and the fixed
// French user-facing messages.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.MsgUnauthorized})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": domain.MsgNotFound})
	case errors.Is(err, domain.ErrAlreadyStarted):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.MsgAlreadyStarted})
	case errors.Is(err, domain.ErrMissingReference):
		msg := domain.MsgAgentNotFound
		if strings.Contains(err.Error(), "product") {
			msg = domain.MsgProductNotFound
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case errors.Is(err, domain.ErrUserLookup):
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.MsgUserLookupFailure})
	case errors.Is(err, domain.ErrVendorConfig):
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.MsgVendorConfig})
	case errors.Is(err, domain.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.MsgPersistence})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.MsgInternal})
	}
}
