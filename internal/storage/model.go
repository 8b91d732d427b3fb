// Package storage implements project-scoped media storage: validated image
// uploads normalized and persisted under <root>/<project>[/<folder>], served
// back by path, and addressable through a stable external URL. Files are
// stored under generated UUID names; the filesystem is the only source of
// truth, no database record exists.
package storage

import (
	"path/filepath"
	"strings"
	"time"
)

// StoredFile describes a persisted upload. Derived from the write, never
// read back from disk.
type StoredFile struct {
	// FileName is the generated on-disk name: "<uuid><ext>".
	FileName string

	// OriginalName is the caller-supplied filename. Used only for extension
	// detection and kept as metadata; it never influences the storage path.
	OriginalName string

	// Size is the byte length of the persisted (possibly normalized) content.
	Size int64

	// Extension is the final extension after normalization. May differ from
	// the original (e.g., ".png" -> ".webp").
	Extension string

	// Project and Folder locate the file in the directory tree.
	Project string
	Folder  string

	// Path is the externally addressable URL for later retrieval.
	Path string

	// UploadedAt is the time the file was written.
	UploadedAt time.Time
}

// UploadInput holds the raw upload passed to the storage engine.
type UploadInput struct {
	Project      string
	Folder       string
	OriginalName string
	Data         []byte
}

// UploadResponse is the JSON body returned after a successful upload.
type UploadResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	FilePath     string    `json:"filePath"`
	FileName     string    `json:"fileName"`
	OriginalName string    `json:"originalName"`
	FileSize     int64     `json:"fileSize"`
	ProjectName  string    `json:"projectName"`
	UploadDate   time.Time `json:"uploadDate"`
}

// DeleteResponse is the JSON body returned after a deletion.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListResponse is the JSON body returned by the file listing endpoint.
type ListResponse struct {
	Files       []string `json:"files"`
	ProjectName string   `json:"projectName"`
	Folder      string   `json:"folder,omitempty"`
}

// --- Extension validation ---

// AllowedExtensions defines which file extensions are accepted for upload.
var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// extensionToMIME maps stored extensions to the Content-Type used when
// serving files back.
var extensionToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// AcceptedExtension returns true if ext (including the dot, any case) is an
// accepted image extension.
func AcceptedExtension(ext string) bool {
	return AllowedExtensions[strings.ToLower(ext)]
}

// ExtensionOf returns the lower-cased extension of a filename, including
// the dot. Empty when the name has no extension.
func ExtensionOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// MIMETypeFor returns the Content-Type for a stored extension, or the
// generic binary type when unknown.
func MIMETypeFor(ext string) string {
	if mt, ok := extensionToMIME[strings.ToLower(ext)]; ok {
		return mt
	}
	return "application/octet-stream"
}
