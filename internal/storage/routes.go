package storage

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nguyennhatt098/media-service/internal/middleware"
)

// RegisterRoutes sets up all storage routes on the given Echo instance.
// maxUploadSize limits the upload request body so oversized payloads are
// rejected before being read into memory.
func RegisterRoutes(e *echo.Echo, h *Handler, maxUploadSize int64) {
	g := e.Group("/api/storage")

	g.GET("/health", h.Health)

	// Rate limit uploads: 30 per minute per IP.
	uploadRateLimit := middleware.RateLimit(30, time.Minute)

	// Limit upload body size to prevent memory exhaustion from oversized
	// payloads. Uses a 10% margin above maxUploadSize to account for
	// multipart encoding overhead.
	bodyLimit := bodyLimitMiddleware(maxUploadSize + maxUploadSize/10)

	g.POST("/upload", h.Upload, uploadRateLimit, bodyLimit)
	g.GET("/files/:projectName/*", h.Serve)
	g.DELETE("/files/:projectName/:fileName", h.Delete)
	g.GET("/projects/:projectName/files", h.ListFiles)
}

// bodyLimitMiddleware returns middleware that rejects request bodies exceeding
// the given size in bytes. Applied before the handler reads the body into memory.
func bodyLimitMiddleware(maxBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().ContentLength > maxBytes {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body too large; maximum is %d MB", maxBytes/(1024*1024)))
			}
			c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBytes)
			return next(c)
		}
	}
}
