package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyennhatt098/media-service/internal/apperror"
	"github.com/nguyennhatt098/media-service/internal/normalizer"
)

// Normalizer is the image codec dependency of the storage engine. It either
// returns re-encoded bytes with their matching extension or an error; the
// engine decides what a failure means.
type Normalizer interface {
	Normalize(data []byte, ext string) (normalizer.Result, error)
}

// Service handles business logic for project-scoped file operations. All
// operations are stateless; the filesystem is the single source of truth.
type Service interface {
	// Upload validates, normalizes, and persists an image under a newly
	// generated name, returning the stored file's descriptor.
	Upload(ctx context.Context, input UploadInput) (*StoredFile, error)

	// Locate returns the absolute path of a stored file, or a not-found
	// error. It does not open the file.
	Locate(ctx context.Context, project, fileName, folder string) (string, error)

	// Delete removes a stored file.
	Delete(ctx context.Context, project, fileName, folder string) error

	// ListFiles returns the file names directly inside a project folder.
	// A missing directory yields an empty list, not an error.
	ListFiles(ctx context.Context, project, folder string) ([]string, error)
}

// service implements Service.
type service struct {
	paths      Paths
	normalizer Normalizer
	baseURL    string // Prefix for external file references, no trailing slash.
}

// NewService creates a storage service rooted at paths, using norm to
// compress uploads and baseURL to build the returned references.
func NewService(paths Paths, norm Normalizer, baseURL string) Service {
	return &service{
		paths:      paths,
		normalizer: norm,
		baseURL:    baseURL,
	}
}

// Upload validates, normalizes, and persists a new file.
func (s *service) Upload(ctx context.Context, input UploadInput) (*StoredFile, error) {
	if len(input.Data) == 0 {
		return nil, apperror.NewBadRequest("no file provided")
	}

	ext := ExtensionOf(input.OriginalName)
	if !AcceptedExtension(ext) {
		return nil, apperror.NewBadRequest("only image files are allowed")
	}

	// Normalization is a best-effort optimization: on failure the original
	// bytes are stored unchanged and the upload still succeeds.
	result, err := s.normalizer.Normalize(input.Data, ext)
	if err != nil {
		slog.Warn("image normalization failed, storing original",
			slog.String("original_name", input.OriginalName),
			slog.Any("error", err),
		)
		result = normalizer.Result{Data: input.Data, Ext: ext}
	} else if len(result.Data) != len(input.Data) {
		slog.Info("image normalized",
			slog.String("original_name", input.OriginalName),
			slog.Int("original_size", len(input.Data)),
			slog.Int("normalized_size", len(result.Data)),
		)
	}

	// The identity is generated after normalization so the on-disk name
	// always matches the final extension. UUID names make concurrent
	// uploads collision-free without coordination.
	fileName := uuid.NewString() + result.Ext

	absPath, err := s.paths.Resolve(input.Project, fileName, input.Folder)
	if err != nil {
		return nil, err
	}

	// Lazy, idempotent directory creation; MkdirAll tolerates a concurrent
	// request creating the same directory first.
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating project directory: %w", err))
	}

	if err := writeFileAtomic(absPath, result.Data); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("writing file: %w", err))
	}

	stored := &StoredFile{
		FileName:     fileName,
		OriginalName: input.OriginalName,
		Size:         int64(len(result.Data)),
		Extension:    result.Ext,
		Project:      input.Project,
		Folder:       input.Folder,
		Path:         s.baseURL + "/api/storage/files/" + s.paths.External(input.Project, fileName, input.Folder),
		UploadedAt:   time.Now().UTC(),
	}

	slog.Info("file uploaded",
		slog.String("project", input.Project),
		slog.String("file_name", fileName),
		slog.Int64("size", stored.Size),
	)
	return stored, nil
}

// Locate returns the absolute on-disk path for an existing file.
func (s *service) Locate(ctx context.Context, project, fileName, folder string) (string, error) {
	absPath, err := s.paths.Resolve(project, fileName, folder)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", apperror.NewNotFound("file not found")
	}
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("stat file: %w", err))
	}
	if info.IsDir() {
		return "", apperror.NewNotFound("file not found")
	}
	return absPath, nil
}

// Delete removes a file from disk. Absence is a not-found error; a removal
// failure on an existing file surfaces with its cause.
func (s *service) Delete(ctx context.Context, project, fileName, folder string) error {
	absPath, err := s.Locate(ctx, project, fileName, folder)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting file: %w", err))
	}

	slog.Info("file deleted",
		slog.String("project", project),
		slog.String("file_name", fileName),
	)
	return nil
}

// ListFiles lists the regular files directly inside a project folder.
func (s *service) ListFiles(ctx context.Context, project, folder string) ([]string, error) {
	dir, err := s.paths.ResolveDir(project, folder)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading project directory: %w", err))
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		// Directories and in-flight ".upload-*" temp files are not
		// servable content.
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so a failed write never leaves a partial file at
// a servable name.
func writeFileAtomic(absPath string, data []byte) error {
	dir := filepath.Dir(absPath)
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), absPath); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
