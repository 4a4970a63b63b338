package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roast-backend/internal/analysis"
	"roast-backend/internal/llm"
	"roast-backend/internal/llm/gemini"
	"roast-backend/internal/payments"
	"roast-backend/internal/shared/config"
	"roast-backend/internal/shared/metrics"
	"roast-backend/internal/shared/server/middleware"
	"roast-backend/internal/shared/server/respond"
	"roast-backend/internal/shared/storage/db"
	"roast-backend/internal/usage"
)

const rateLimitGroupAnalyze = "ANALYZE"

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel)
	if err != nil {
		log.Fatalf("failed to build llm client: %v", err)
	}
	return newRouter(cfg, client)
}

func newRouter(cfg config.Config, client llm.Client) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Identity(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				rateLimitGroupAnalyze: {Rate: 0.5, Burst: 3},
			},
			GroupFor: analyzeGroup,
		}),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var usageSvc *usage.Service
	if sqlDB != nil {
		usageSvc = usage.NewPostgresService(sqlDB)
	} else {
		usageSvc = usage.NewService(nil)
	}
	usageHandler := usage.NewHandler(usageSvc)
	analysisHandler := analysis.NewHandler(analysis.NewService(client), usageSvc)
	paymentsHandler := payments.NewHandler(usageSvc)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	analysisHandler.RegisterRoutes(api)
	usageHandler.RegisterRoutes(api)
	paymentsHandler.RegisterRoutes(api)
	if cfg.Env == "dev" {
		dev := api.Group("/dev")
		usageHandler.RegisterDevRoutes(dev)
	}

	return r
}

// analyzeGroup classifies the model-invoking routes for rate limiting.
// Everything else passes through unthrottled.
func analyzeGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	switch {
	case strings.HasSuffix(path, "/analyze"),
		strings.HasSuffix(path, "/analyze/stream"),
		strings.HasSuffix(path, "/quick-score"),
		strings.HasSuffix(path, "/generate-improvements"):
		return rateLimitGroupAnalyze
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
