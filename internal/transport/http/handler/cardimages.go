package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardvault-api/internal/application/cardimage"
	"github.com/cardvault-api/internal/domain"
	"github.com/cardvault-api/internal/transport/http/middleware"
)

// Card photos top out well below this; anything larger is rejected up front.
const maxUploadBytes = 20 << 20

type CardImages struct {
	svc cardimage.Service
}

func NewCardImages(svc cardimage.Service) *CardImages {
	return &CardImages{svc: svc}
}

// Upload accepts a multipart form with a "file" part and an optional
// "orderId" field linking the photo to a grading submission.
func (h *CardImages) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	var orderID *string
	if v := r.FormValue("orderId"); v != "" {
		orderID = &v
	}
	img, err := h.svc.Upload(r.Context(), cardimage.UploadInput{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		OrderID:     orderID,
		UploaderID:  claims.UserID,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (h *CardImages) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	images, err := h.svc.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

func (h *CardImages) Download(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	rc, img, err := h.svc.Download(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role == domain.RoleAdmin)
	if err != nil {
		httpError(w, err)
		return
	}
	defer rc.Close()
	if img.Type != "" {
		w.Header().Set("Content-Type", img.Type)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+img.Name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		// Headers already sent; nothing useful left to do.
		return
	}
}

func (h *CardImages) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role == domain.RoleAdmin); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "card image deleted"})
}
