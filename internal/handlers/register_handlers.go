package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	portsrepo "github.com/ptbooks/journal_backend/internal/core/ports/repositories"
	"github.com/ptbooks/journal_backend/internal/platform/config"
)

// Dependencies carries everything the handlers need, injected from main.
type Dependencies struct {
	Repo            portsrepo.JournalRepository
	Logger          *slog.Logger
	DefaultCurrency string
}

// RegisterRoutes sets up all application routes, injecting dependencies.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps *Dependencies) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	api := r.Group("/api")
	registerJournalRoutes(api, deps)
}
