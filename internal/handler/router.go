package handler

import (
	"log/slog"
	"net/http"

	"questlog/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services bundles what the HTTP API serves.
type Services struct {
	Games    service.GameService
	Ingester service.Ingester
	Library  service.LibraryService
}

// NewRouter builds the gin engine with every route under /api/v1. db is only
// used by the health check and may be nil.
func NewRouter(svcs Services, db *gorm.DB, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))

	r.GET("/health", health(db))

	api := r.Group("/api/v1")
	api.GET("/health", health(db))
	NewGameHandler(svcs.Games, svcs.Ingester, svcs.Library, logger).RegisterRoutes(api)
	NewLibraryHandler(svcs.Library, logger).RegisterRoutes(api)
	return r
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
