package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardvault-api/internal/application/order"
	"github.com/cardvault-api/internal/domain"
	"github.com/cardvault-api/internal/pkg/validate"
	"github.com/cardvault-api/internal/transport/http/middleware"
)

type Orders struct {
	svc order.Service
}

func NewOrders(svc order.Service) *Orders {
	return &Orders{svc: svc}
}

func (h *Orders) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req domain.CreateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Orders) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	orders, err := h.svc.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Orders) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.Role == domain.RoleAdmin)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// SetStatus is admin-only; the router enforces the role.
func (h *Orders) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StatusID string `json:"statusId" validate:"required"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.StatusID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
