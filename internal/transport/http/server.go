package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nuxflare/durable-websockets/internal/config"
	"github.com/nuxflare/durable-websockets/internal/relay"
)

// NewServer builds the HTTP server exposing the dispatcher surface. The /ws
// upgrade is mounted on the raw mux: the handshake hijacks the connection,
// which gin's response writer does not allow once anything is written.
func NewServer(registry *relay.Registry, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	pub := NewPublishHandler(registry, logger)
	router.POST("/publish/:room", pub.Publish)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(registry, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
