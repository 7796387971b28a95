package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsift/internal/parser"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/go-chi/chi/v5"
)

// maxAnalyzeFiles caps how many documents one analysis may upload.
const maxAnalyzeFiles = 50

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*maxAnalyzeFiles+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	persona := r.FormValue("persona")
	jobToBeDone := r.FormValue("job")
	if _, err := rank.ComposeQuery(persona, jobToBeDone); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := append(r.MultipartForm.File["files"], r.MultipartForm.File["files[]"]...)
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > maxAnalyzeFiles {
		jsonError(w, fmt.Sprintf("too many files (max %d)", maxAnalyzeFiles), http.StatusBadRequest)
		return
	}

	inputs := make([]pipeline.Input, 0, len(files))
	for _, fh := range files {
		in, status, err := s.readUpload(fh)
		if err != nil {
			jsonError(w, err.Error(), status)
			return
		}
		inputs = append(inputs, in)
	}

	job := pipeline.NewJob(persona, jobToBeDone, inputs)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.log.Info("analysis queued", "job_id", job.ID, "documents", len(inputs))

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   job.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/analyze/%s/status", job.ID),
	})
}

func (s *Server) handleAnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleAnalyzeResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	res, status := job.Result()
	switch {
	case status == pipeline.StatusFailed:
		snap := job.Snapshot()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "job failed",
			"phase":  snap.Phase,
			"errors": snap.Progress.Errors,
		})
	case res == nil:
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job not finished",
			"status": status,
		})
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

var errTooLarge = errors.New("file exceeds max size")

// readUpload reads one multipart file, returning the HTTP status to use on
// failure.
func (s *Server) readUpload(fh *multipart.FileHeader) (pipeline.Input, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return pipeline.Input{}, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	f, err := fh.Open()
	if err != nil {
		return pipeline.Input{}, http.StatusBadRequest, fmt.Errorf("failed to open %s", filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return pipeline.Input{}, http.StatusInternalServerError, fmt.Errorf("failed to read %s", filename)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return pipeline.Input{}, http.StatusRequestEntityTooLarge, fmt.Errorf("%s: %w (%d bytes)", filename, errTooLarge, s.cfg.MaxUploadBytes)
	}
	return pipeline.Input{Name: filename, Data: data}, 0, nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
