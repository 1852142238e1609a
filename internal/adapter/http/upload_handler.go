package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.uploads.Images())
}

// UploadImage takes one multipart "file" part; its declared content type
// decides whether it is accepted.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, domain.NewValidationError("file", "image is too large"))
			return
		}
		h.writeError(w, r, domain.NewValidationError("file", "send the image as multipart form data"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, domain.NewValidationError("file", "select an image"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, domain.NewValidationError("file", "could not read the image"))
		return
	}
	img, err := h.uploads.AddImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (h *Handler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.RemoveImage(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
