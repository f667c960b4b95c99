package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/r9s-ai/respcheck/internal/logx"
	"github.com/r9s-ai/respcheck/pkg/compare"
	"github.com/r9s-ai/respcheck/pkg/config"
)

// NewRouter builds the comparison service. reg is the keyword vocabulary
// shared by every request.
func NewRouter(
	cfg *config.Config,
	reg *compare.Registry,
	accessLogger *log.Logger,
	accessLoggerColor bool,
	accessFormatter *logx.AccessLogFormatter,
) *gin.Engine {
	headerKey := ResolveRequestIDHeaderKey("")
	r := gin.New()
	r.Use(requestIDMiddleware(headerKey))
	if cfg.Logging.AccessLog {
		r.Use(requestLoggerWithColor(accessLogger, accessLoggerColor, headerKey, accessFormatter))
	}
	r.Use(gin.Recovery())
	r.Use(bodyLimitMiddleware(cfg.Server.MaxBodyBytes))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	h := &handlers{defaults: cfg.Compare, reg: reg}
	v1 := r.Group("/v1")
	v1.GET("/keywords", h.keywords)
	v1.POST("/compare", h.compare)

	return r
}
