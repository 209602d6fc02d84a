package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mira/lyrichase/internal/api/handler"
	"github.com/mira/lyrichase/internal/api/middleware"
	"github.com/mira/lyrichase/internal/config"
	"github.com/mira/lyrichase/internal/logger"
	"github.com/mira/lyrichase/internal/repository"
	"github.com/mira/lyrichase/internal/service"
	"github.com/mira/lyrichase/internal/source"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	cfg *config.Config,
	log *logger.Logger,
	manager *service.Manager,
	importer *service.Importer,
	sources map[string]source.CatalogSource,
	songs *repository.SongRepository,
	challenges *repository.ChallengeRepository,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	bulkImportHandler := handler.NewBulkImportHandler(manager)
	songHandler := handler.NewSongHandler(sources, importer, songs)
	challengeHandler := handler.NewChallengeHandler(challenges, songs)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Admin API routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AdminAuth(cfg.Server.AdminToken))
	{
		// Bulk import jobs
		admin.POST("/bulk-import", bulkImportHandler.StartBulkImport)
		admin.GET("/bulk-import/jobs", bulkImportHandler.ListJobs)
		admin.GET("/bulk-import/jobs/:id", bulkImportHandler.GetJob)

		// Songs
		admin.POST("/songs/search", songHandler.SearchSongs)
		admin.POST("/songs/import", songHandler.ImportSong)
		admin.GET("/songs", songHandler.ListSongs)
		admin.GET("/songs/:id/lyrics", songHandler.GetSongLyrics)
		admin.PUT("/songs/:id/language", songHandler.SetSongLanguage)
		admin.DELETE("/songs/:id", songHandler.DeleteSong)

		// Challenges
		admin.POST("/challenges", challengeHandler.CreateChallenge)
		admin.GET("/challenges", challengeHandler.ListChallenges)
		admin.PUT("/challenges/:id", challengeHandler.UpdateChallenge)
		admin.DELETE("/challenges/:id", challengeHandler.DeleteChallenge)
	}

	return r
}
