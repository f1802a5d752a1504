package server

import (
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"studyhub/pkg/domain"
)

// handleUpload stores one multipart file and returns its metadata. The
// file is not wired into chat attachments or generation; clients carry
// the returned path themselves.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()

	filename := uuid.NewString() + filepath.Ext(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	path, err := s.uploads.Put(r.Context(), filename, file, header.Size, contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	writeJSON(w, http.StatusOK, domain.Upload{
		Filename:     filename,
		OriginalName: header.Filename,
		Mimetype:     contentType,
		Size:         header.Size,
		Path:         path,
	})
}
