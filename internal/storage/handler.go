package storage

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nguyennhatt098/media-service/internal/apperror"
)

// Handler handles HTTP requests for storage operations.
type Handler struct {
	service Service
}

// NewHandler creates a new storage handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Upload handles multipart file uploads (POST /api/storage/upload).
// The project name is required; the folder is optional and may contain
// nested segments ("covers/2026").
func (h *Handler) Upload(c echo.Context) error {
	project := c.QueryParam("projectName")
	if project == "" {
		return apperror.NewBadRequest("project name is required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return apperror.NewBadRequest("no file provided")
	}

	src, err := file.Open()
	if err != nil {
		return apperror.NewInternal(err)
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return apperror.NewInternal(err)
	}

	stored, err := h.service.Upload(c.Request().Context(), UploadInput{
		Project:      project,
		Folder:       c.QueryParam("folder"),
		OriginalName: file.Filename,
		Data:         fileBytes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, UploadResponse{
		Success:      true,
		Message:      "File uploaded successfully",
		FilePath:     stored.Path,
		FileName:     stored.FileName,
		OriginalName: stored.OriginalName,
		FileSize:     stored.Size,
		ProjectName:  stored.Project,
		UploadDate:   stored.UploadedAt,
	})
}

// Serve streams a stored file (GET /api/storage/files/:projectName/*).
// The wildcard carries "[folder.../]fileName".
func (h *Handler) Serve(c echo.Context) error {
	project := c.Param("projectName")

	rest := strings.Trim(c.Param("*"), "/")
	if rest == "" {
		return apperror.NewBadRequest("file path is required")
	}
	segments := strings.Split(rest, "/")
	fileName := segments[len(segments)-1]
	folder := strings.Join(segments[:len(segments)-1], "/")

	absPath, err := h.service.Locate(c.Request().Context(), project, fileName, folder)
	if err != nil {
		return err
	}

	// Generated names never change, so the content at a URL is immutable.
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	c.Response().Header().Set(echo.HeaderContentType, MIMETypeFor(ExtensionOf(fileName)))

	return c.File(absPath)
}

// Delete removes a stored file (DELETE /api/storage/files/:projectName/:fileName).
func (h *Handler) Delete(c echo.Context) error {
	err := h.service.Delete(
		c.Request().Context(),
		c.Param("projectName"),
		c.Param("fileName"),
		c.QueryParam("folder"),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, DeleteResponse{
		Success: true,
		Message: "File deleted successfully",
	})
}

// ListFiles lists a project's files (GET /api/storage/projects/:projectName/files).
func (h *Handler) ListFiles(c echo.Context) error {
	project := c.Param("projectName")
	folder := c.QueryParam("folder")

	files, err := h.service.ListFiles(c.Request().Context(), project, folder)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ListResponse{
		Files:       files,
		ProjectName: project,
		Folder:      folder,
	})
}

// Health reports service liveness (GET /api/storage/health).
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
