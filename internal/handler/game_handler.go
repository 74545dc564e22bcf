package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"questlog/internal/dto"
	"questlog/internal/models"
	"questlog/internal/service"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	games    service.GameService
	ingester service.Ingester
	library  service.LibraryService
	logger   *slog.Logger
}

func NewGameHandler(games service.GameService, ingester service.Ingester, library service.LibraryService, logger *slog.Logger) *GameHandler {
	return &GameHandler{games: games, ingester: ingester, library: library, logger: logger}
}

func (h *GameHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/games/:id", h.Get)
	rg.GET("/games/:id/minimal", h.GetMinimal)
	rg.POST("/games", h.Ingest)
	rg.GET("/search", h.Search)
}

// Get returns the full projection of a stored game
func (h *GameHandler) Get(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	game, err := h.games.GetFull(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) GetMinimal(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	game, err := h.games.GetMinimal(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

// Ingest stores a game document posted in the metadata source's format
func (h *GameHandler) Ingest(c *gin.Context) {
	var doc models.GameDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	stored, err := h.ingester.Ingest(ctx, &doc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// Search looks a name up in the local store, or in IGDB with source=igdb
func (h *GameHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		badRequest(c, "query parameter q is required")
		return
	}

	limit := 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	results := []dto.SearchResult{}
	switch c.DefaultQuery("source", "local") {
	case "local":
		games, err := h.games.SearchLocal(ctx, query, limit)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		for _, g := range games {
			results = append(results, dto.FromMinimal(g))
		}
	case "igdb":
		games, err := h.library.Search(ctx, query)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		for _, g := range games {
			results = append(results, dto.FromDocument(g))
		}
	default:
		badRequest(c, "source must be local or igdb")
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{Query: query, Results: results, Total: len(results)})
}
