package app

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyennhatt098/media-service/internal/normalizer"
	"github.com/nguyennhatt098/media-service/internal/storage"
)

// RegisterRoutes assembles the storage pipeline and mounts all routes.
// This is the single place where routes are aggregated.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	// Liveness probe for container orchestrators; the API health endpoint
	// lives under /api/storage/health.
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Storage pipeline ---
	paths, err := storage.NewPaths(a.Config.Upload.Root)
	if err != nil {
		return fmt.Errorf("initializing upload root: %w", err)
	}

	norm := normalizer.New(normalizer.Options{
		Quality:       a.Config.Image.Quality,
		MaxWidth:      a.Config.Image.MaxWidth,
		ConvertToWebP: a.Config.Image.ConvertToWebP,
	})

	svc := storage.NewService(paths, norm, a.Config.BaseURL)
	handler := storage.NewHandler(svc)
	storage.RegisterRoutes(e, handler, a.Config.Upload.MaxSize)

	return nil
}
