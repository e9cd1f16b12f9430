package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/gridlock/internal/loader"
	"github.com/dgallion1/gridlock/internal/pipeline"
	"github.com/dgallion1/gridlock/internal/workspace"
	"github.com/go-chi/chi/v5"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

var errTooLarge = errors.New("file too large")

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, 3*s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	template, err := s.formFile(r, "template", loader.IsSupportedExtension)
	if err != nil {
		fileError(w, err)
		return
	}
	if template == nil {
		jsonError(w, "template is required", http.StatusBadRequest)
		return
	}
	text, err := s.formFile(r, "text", loader.IsSupportedExtension)
	if err != nil {
		fileError(w, err)
		return
	}
	image, err := s.formFile(r, "image", func(name string) bool {
		return imageExtensions[strings.ToLower(filepath.Ext(name))]
	})
	if err != nil {
		fileError(w, err)
		return
	}
	if text == nil && image == nil {
		jsonError(w, "text or image is required", http.StatusBadRequest)
		return
	}

	key := r.FormValue("key")
	if key == "" {
		key = workspace.FileKey(template.Filename)
	}
	margin, _ := strconv.Atoi(r.FormValue("margin"))
	var debug *bool
	if v := r.FormValue("debug"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, "invalid debug flag", http.StatusBadRequest)
			return
		}
		debug = &b
	}

	job := pipeline.NewJob(key, s.mergeOptions(margin, debug))
	job.SetInputs(template, text, image)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"key":      job.Key,
		"status":   pipeline.StatusQueued,
		"poll_url": "/api/jobs/" + job.ID,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

type batchRequest struct {
	Prefix string `json:"prefix"`
	Force  bool   `json:"force"`
	Margin int    `json:"margin"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	debug := false
	sum, err := pipeline.Batch(r.Context(), s.ws, pipeline.BatchOptions{
		Prefix:      req.Prefix,
		Merge:       s.mergeOptions(req.Margin, &debug),
		Force:       req.Force,
		Concurrency: s.cfg.RunnerConcurrency,
	}, s.log)
	if err != nil {
		s.log.Error("batch merge failed", "prefix", req.Prefix, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sum.Failed == nil {
		sum.Failed = []string{}
	}
	if sum.Missing == nil {
		sum.Missing = []string{}
	}
	writeJSON(w, http.StatusOK, sum)
}

// formFile reads an optional upload. A nil Input means the field was absent.
func (s *Server) formFile(r *http.Request, field string, allowed func(string) bool) (*pipeline.Input, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !allowed(filename) {
		return nil, fmt.Errorf("%s: unsupported file type: %s", field, filepath.Ext(filename))
	}
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", field, err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%s: %w (max %d bytes)", field, errTooLarge, s.cfg.MaxUploadBytes)
	}
	return &pipeline.Input{Filename: filename, Data: data}, nil
}

func fileError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	if errors.Is(err, errTooLarge) {
		code = http.StatusRequestEntityTooLarge
	}
	jsonError(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
