package handler

import (
	"net/http"

	"github.com/cardvault-api/internal/application/payment"
	"github.com/cardvault-api/internal/pkg/validate"
)

type Payments struct {
	svc payment.Service
}

func NewPayments(svc payment.Service) *Payments {
	return &Payments{svc: svc}
}

// CreateIntent returns a Stripe client secret for the given amount in cents.
// The front end completes the payment with it; no card data touches this API.
func (h *Payments) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount" validate:"required,gt=0"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	secret, err := h.svc.CreateIntent(r.Context(), req.Amount)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": secret})
}
