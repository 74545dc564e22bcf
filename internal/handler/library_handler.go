package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"questlog/internal/dto"
	"questlog/internal/models"
	"questlog/internal/service"

	"github.com/gin-gonic/gin"
)

const importTimeout = 5 * time.Minute

type LibraryHandler struct {
	svc    service.LibraryService
	logger *slog.Logger
}

func NewLibraryHandler(svc service.LibraryService, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{svc: svc, logger: logger}
}

func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/library", h.List)
	rg.GET("/library/summary", h.Summary)
	rg.POST("/library/reorder", h.Reorder)
	rg.PUT("/library/priorities", h.Arrange)
	rg.POST("/library/import", h.Import)
	rg.POST("/library/:id", h.Discover)
	rg.DELETE("/library/:id", h.Remove)
	rg.PATCH("/library/:id/status", h.ChangeStatus)
	rg.PATCH("/library/:id/rating", h.Rate)
	rg.PATCH("/library/:id/notes", h.Annotate)
	rg.PATCH("/library/:id/platform", h.SelectPlatform)
	rg.POST("/library/:id/complete", h.Complete)
}

// List returns one bucket in priority order
func (h *LibraryHandler) List(c *gin.Context) {
	status, err := models.ParseStatus(c.Query("status"))
	if err != nil {
		badRequest(c, "query parameter status must be a valid status")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entries, err := h.svc.Board(ctx, status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromLibraryEntries(status, entries))
}

func (h *LibraryHandler) Summary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	counts, err := h.svc.Summary(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

// Discover starts tracking a game, fetching it from IGDB when it is not stored yet
func (h *LibraryHandler) Discover(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.DiscoverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	status, err := dto.ParseStatusOr(req.Status, models.StatusBacklog)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	quest, err := h.svc.Discover(ctx, id, status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromQuestState(*quest))
}

func (h *LibraryHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.ChangeStatus(ctx, id, status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove moves a game to undiscovered; its notes and rating are kept
func (h *LibraryHandler) Remove(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Remove(ctx, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) Reorder(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Reorder(ctx, status, *req.FromIndex, *req.ToIndex); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) Arrange(c *gin.Context) {
	var req dto.ArrangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Arrange(ctx, status, req.GameIDs); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) Rate(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Rate(ctx, id, req.Rating); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) Annotate(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Annotate(ctx, id, req.Notes); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) SelectPlatform(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.PlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.SelectPlatform(ctx, id, req.PlatformID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) Complete(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.CompleteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Complete(ctx, id, req.CompletionDate); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import fetches and tracks many games; per-game failures are in the report
func (h *LibraryHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := dto.ParseStatusOr(req.Status, models.StatusBacklog)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), importTimeout)
	defer cancel()

	report, err := h.svc.Import(ctx, req.GameIDs, status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
