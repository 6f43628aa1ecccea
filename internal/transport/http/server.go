package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/auth"
	"github.com/kolejker/OsaltServer/internal/config"
	"github.com/kolejker/OsaltServer/internal/core"
)

// NewServer builds the HTTP server carrying the bancho endpoint and the
// JSON management API.
func NewServer(engine *core.Engine, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(engine, authService, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(engine *core.Engine, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	bancho := NewBanchoHandler(engine, authService, cfg.MaxBodyBytes, logger)
	router.POST("/", bancho.Exchange)
	router.GET("/", bancho.Index)
	router.GET("/health", healthHandler)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	apiHandlers := NewAPIHandlers(engine, authService, logger)
	api := router.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	api.Use(BodyLimitMiddleware(cfg.MaxBodyBytes))
	{
		api.POST("/register", apiHandlers.Register)
	}

	admin := api.Group("")
	admin.Use(AdminMiddleware(cfg.AdminToken, logger))
	{
		admin.GET("/users", apiHandlers.ListUsers)
		admin.GET("/sessions", apiHandlers.ListSessions)
		admin.DELETE("/sessions/:user_id", apiHandlers.Kick)
		admin.POST("/notify", apiHandlers.Notify)
	}

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
