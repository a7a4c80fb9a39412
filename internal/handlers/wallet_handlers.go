package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parkingly/parkingly-server/internal/response"
)

// WalletBalance returns the caller's current balance
func (h *Handlers) WalletBalance(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	balance, err := h.walletService.Balance(r.Context(), claims.Sub)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

// TopUp credits the caller's wallet
func (h *Handlers) TopUp(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	balance, err := h.walletService.TopUp(r.Context(), claims.Sub, req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}
