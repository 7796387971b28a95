package api

import (
	"bytes"
	"net/http"
)

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fhs := r.MultipartForm.File["file"]
	if len(fhs) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	up, status, err := s.readUpload(fhs[0])
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	res := s.outliner.OutlineReader(bytes.NewReader(up.Data), up.Name)
	writeJSON(w, http.StatusOK, res)
}
