package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parkingly/parkingly-server/internal/domain"
	"github.com/parkingly/parkingly-server/internal/response"
)

const (
	scanActionEnter = "enter"
	scanActionExit  = "exit"
)

// Scan processes a gate scan for entry or exit
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token  string `json:"token"`
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.Token == "" {
		response.BadRequest(w, "token is required")
		return
	}

	switch req.Action {
	case scanActionEnter:
		booking, err := h.parkingService.ScanEnter(r.Context(), req.Token)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Entry recorded",
			"booking": booking,
		})
	case scanActionExit:
		booking, err := h.parkingService.ScanExit(r.Context(), req.Token)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Exit recorded",
			"booking": booking,
			"cost":    booking.Cost,
		})
	default:
		writeDomainError(w, r, domain.ErrUnknownScanAction)
	}
}

// Reports returns revenue and traffic counters for the admin dashboard
func (h *Handlers) Reports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.parkingService.Reports(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, reports)
}
