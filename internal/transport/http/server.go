package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
)

// NewServer builds the HTTP server. /ws is mounted on the mux directly so the
// websocket handler gets the raw connection; everything else goes through gin.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	var verifier *auth.Verifier
	if cfg.AuthEnabled() {
		verifier = auth.NewVerifier(auth.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		})
	}

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", RequireToken(verifier, logger, NewWSHandler(hub, cfg, logger)))
	mux.Handle("/", newRouter(hub, verifier, logger))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func newRouter(hub *core.Hub, verifier *auth.Verifier, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))
	router.GET("/health", healthHandler)

	rooms := NewRoomHandlers(hub.Registry(), logger)
	api := router.Group("/api", AuthMiddleware(verifier, logger))
	api.POST("/rooms", rooms.CreateRoom)
	api.GET("/rooms/:code", rooms.GetRoom)
	api.GET("/stats", rooms.Stats)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
