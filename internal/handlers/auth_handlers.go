package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parkingly/parkingly-server/internal/domain"
	"github.com/parkingly/parkingly-server/internal/response"
)

// Register handles account creation
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, user)
}

// Login handles credential exchange for a session token
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, resp)
}
