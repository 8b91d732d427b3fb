package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nguyennhatt098/media-service/internal/apperror"
)

// Paths maps (project, folder, file name) tuples to absolute filesystem
// locations under a single upload root, and to the forward-slash relative
// form used in external references.
//
// Project names and folder segments are caller-supplied, so every segment
// is validated before it touches the filesystem: no empty, "." or ".."
// segments, no NUL bytes, no backslashes. After joining, the resolved path
// must still sit inside the root. Traversal attempts surface as validation
// errors, never as filesystem errors.
type Paths struct {
	root string
}

// NewPaths resolves root to an absolute path and ensures the directory
// exists. All resolved paths are confined to it.
func NewPaths(root string) (Paths, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Paths{}, fmt.Errorf("resolving upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return Paths{}, fmt.Errorf("creating upload root: %w", err)
	}
	return Paths{root: abs}, nil
}

// Root returns the absolute upload root directory.
func (p Paths) Root() string {
	return p.root
}

// Resolve returns the absolute path for a file inside a project. folder may
// be empty or contain several "/"-separated segments.
func (p Paths) Resolve(project, fileName, folder string) (string, error) {
	dir, err := p.ResolveDir(project, folder)
	if err != nil {
		return "", err
	}
	if !validSegment(fileName) {
		return "", apperror.NewBadRequest("invalid file name")
	}

	abs := filepath.Join(dir, fileName)
	if !p.contains(abs) {
		return "", apperror.NewBadRequest("invalid path")
	}
	return abs, nil
}

// ResolveDir returns the absolute directory for a project and optional
// folder, without requiring it to exist.
func (p Paths) ResolveDir(project, folder string) (string, error) {
	if !validSegment(project) {
		return "", apperror.NewBadRequest("invalid project name")
	}

	segments := []string{p.root, project}
	if folder != "" {
		for _, seg := range strings.Split(folder, "/") {
			if !validSegment(seg) {
				return "", apperror.NewBadRequest("invalid folder")
			}
			segments = append(segments, seg)
		}
	}

	abs := filepath.Join(segments...)
	if !p.contains(abs) {
		return "", apperror.NewBadRequest("invalid path")
	}
	return abs, nil
}

// External returns the forward-slash relative reference for a file,
// "project[/folder]/fileName", regardless of the host platform's separator.
func (p Paths) External(project, fileName, folder string) string {
	if folder != "" {
		return path.Join(project, filepath.ToSlash(folder), fileName)
	}
	return path.Join(project, fileName)
}

// contains reports whether abs is the root itself or nested under it.
// Validation already rejects traversal segments; this is the final guard
// against anything that slipped through joining.
func (p Paths) contains(abs string) bool {
	return abs == p.root || strings.HasPrefix(abs, p.root+string(filepath.Separator))
}

// validSegment reports whether seg is usable as a single path element.
func validSegment(seg string) bool {
	if seg == "" || seg == "." || seg == ".." {
		return false
	}
	return !strings.ContainsAny(seg, "\x00/\\")
}
