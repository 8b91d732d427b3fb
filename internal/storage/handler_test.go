package storage

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

// newTestHandler builds a handler over a temp-dir service with a
// pass-through normalizer.
func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc, _ := newTestService(t, nil)
	return NewHandler(svc)
}

// newUploadRequest builds a multipart upload request carrying data as the
// "file" field under fileName.
func newUploadRequest(t *testing.T, target, fileName string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func TestHandlerUpload_MissingProjectName(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := newUploadRequest(t, "/api/storage/upload", "photo.png", []byte("x"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Upload(c)
	assertAppError(t, err, http.StatusBadRequest)
}

func TestHandlerUpload_MissingFile(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/storage/upload?projectName=proj", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Upload(c)
	assertAppError(t, err, http.StatusBadRequest)
}

func TestHandlerUpload_Success(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := newUploadRequest(t, "/api/storage/upload?projectName=proj&folder=covers", "photo.png", []byte("png bytes"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.OriginalName != "photo.png" {
		t.Errorf("expected originalName photo.png, got %q", resp.OriginalName)
	}
	if resp.ProjectName != "proj" {
		t.Errorf("expected projectName proj, got %q", resp.ProjectName)
	}
	if resp.FileSize != int64(len("png bytes")) {
		t.Errorf("unexpected fileSize %d", resp.FileSize)
	}
	wantPrefix := testBaseURL + "/api/storage/files/proj/covers/"
	if len(resp.FilePath) <= len(wantPrefix) || resp.FilePath[:len(wantPrefix)] != wantPrefix {
		t.Errorf("filePath %q does not start with %q", resp.FilePath, wantPrefix)
	}
}

func TestHandlerServe_StreamsStoredBytes(t *testing.T) {
	svc, _ := newTestService(t, nil)
	h := NewHandler(svc)
	e := echo.New()

	// Store a file first.
	data := []byte("gif bytes")
	req := newUploadRequest(t, "/api/storage/upload?projectName=proj", "anim.gif", data)
	rec := httptest.NewRecorder()
	if err := h.Upload(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	var up UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &up); err != nil {
		t.Fatalf("decoding upload response: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("projectName", "*")
	c.SetParamValues("proj", up.FileName)

	if err := h.Serve(c); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), data) {
		t.Error("served bytes differ from stored bytes")
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/gif" {
		t.Errorf("expected image/gif, got %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc == "" {
		t.Error("expected immutable cache headers")
	}
}

func TestHandlerServe_Missing(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("projectName", "*")
	c.SetParamValues("proj", "ghost.png")

	err := h.Serve(c)
	assertAppError(t, err, http.StatusNotFound)
}

func TestHandlerDelete(t *testing.T) {
	svc, _ := newTestService(t, nil)
	h := NewHandler(svc)
	e := echo.New()

	req := newUploadRequest(t, "/api/storage/upload?projectName=proj", "photo.png", []byte("x"))
	rec := httptest.NewRecorder()
	if err := h.Upload(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	var up UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &up); err != nil {
		t.Fatalf("decoding upload response: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("projectName", "fileName")
	c.SetParamValues("proj", up.FileName)

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var resp DeleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding delete response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
}

func TestHandlerListFiles_Empty(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("projectName")
	c.SetParamValues("ghost")

	if err := h.ListFiles(c); err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	var resp ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if resp.Files == nil || len(resp.Files) != 0 {
		t.Errorf("expected empty files array, got %v", resp.Files)
	}
	if resp.ProjectName != "ghost" {
		t.Errorf("expected projectName ghost, got %q", resp.ProjectName)
	}
}

func TestHandlerHealth(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/storage/health", nil)
	rec := httptest.NewRecorder()

	if err := h.Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Health: %v", err)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if resp["status"] != "OK" {
		t.Errorf("expected status OK, got %q", resp["status"])
	}
	if resp["timestamp"] == "" {
		t.Error("expected timestamp to be set")
	}
}
