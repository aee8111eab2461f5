package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/monsterswithink/dazzle-resume/internal/enrich"
	"github.com/monsterswithink/dazzle-resume/internal/logger"
	"github.com/monsterswithink/dazzle-resume/internal/middleware"
	"github.com/monsterswithink/dazzle-resume/internal/profile"
	"github.com/monsterswithink/dazzle-resume/internal/resume"

	"github.com/gin-gonic/gin"
)

// Suggester generates resume suggestions from a decoded profile.
type Suggester interface {
	Suggestions(ctx context.Context, p *enrich.Profile) ([]resume.AISuggestion, error)
}

type Handler struct {
	sync      *resume.SyncService
	suggester Suggester // nil when no API key is configured
}

func NewHandler(sync *resume.SyncService, suggester Suggester) *Handler {
	return &Handler{
		sync:      sync,
		suggester: suggester,
	}
}

// RegisterRoutes mounts the resume surface on the authenticated group.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/linkedin/fetch", h.fetch)
	api.GET("/resume", h.get)
	api.POST("/resume/update", h.update)
	api.POST("/ai/suggestions", h.suggest)
}

type fetchRequest struct {
	LinkedInProfileURL string `json:"linkedin_profile_url"`
}

func (h *Handler) fetch(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Body is optional; some clients send a profile-URL override.
	var req fetchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	rec, err := h.sync.Sync(c.Request.Context(), userID, req.LinkedInProfileURL)
	if err != nil {
		writeSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) get(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rec, err := h.sync.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, resume.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resume not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resume"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) update(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var upd resume.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := upd.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.sync.Update(c.Request.Context(), userID, upd)
	if err != nil {
		if errors.Is(err, resume.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resume not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update resume",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rec})
}

func (h *Handler) suggest(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if h.suggester == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ai suggestions not configured"})
		return
	}

	rec, err := h.sync.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, resume.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resume not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resume"})
		return
	}

	if !rec.LinkedInConnected || len(rec.LinkedInData) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "linkedin profile not synced yet"})
		return
	}

	prof, err := enrich.DecodeProfile(rec.LinkedInData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored profile data is unreadable"})
		return
	}

	sugs, err := h.suggester.Suggestions(c.Request.Context(), prof)
	if err != nil {
		logger.Error("ai suggestion generation failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "suggestion generation failed"})
		return
	}

	updated, err := h.sync.Append(c.Request.Context(), userID, sugs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to store suggestions",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": sugs,
		"data":        updated,
	})
}

// writeSyncError maps the sync error taxonomy onto the HTTP surface.
// Every failure gets a distinct status and a JSON body.
func writeSyncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, resume.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, profile.ErrProfileURLNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No LinkedIn profile URL found"})
	case errors.Is(err, resume.ErrInvalidProfileURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid LinkedIn profile URL"})
	case errors.Is(err, enrich.ErrUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "LinkedIn data fetch failed",
			"details": err.Error(),
		})
	case errors.Is(err, resume.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resume not found"})
	case errors.Is(err, resume.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update linkedin_data",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
	}
}
