package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/carrinho/internal/version"
)

// NewRouter собирает gin-движок с recovery, логированием запросов и сессиями.
func NewRouter(h *Handler, logger *log.Entry) *gin.Engine {
	if logger == nil {
		logger = log.WithField("component", "http")
	}

	router := gin.New()
	router.Use(recovery(logger))
	router.Use(requestLogger(logger))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Current())
	})

	cartRoutes := router.Group("")
	cartRoutes.Use(sessionMiddleware())
	h.Register(cartRoutes)

	return router
}

func recovery(logger *log.Entry) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(log.Fields{
			"panic":  fmt.Sprintf("%v", recovered),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("http request failed")
			return
		}
		entry.Debug("http request")
	}
}
