package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parkingly/parkingly-server/internal/response"
)

// ListSpots returns every spot with its live availability
func (h *Handlers) ListSpots(w http.ResponseWriter, r *http.Request) {
	spots, err := h.parkingService.ListSpots(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"spots": spots})
}

// Book reserves a spot and returns the booking with its QR token
func (h *Handlers) Book(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req struct {
		SpotID string `json:"spotId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.SpotID == "" {
		response.BadRequest(w, "spotId is required")
		return
	}

	booking, err := h.parkingService.Book(r.Context(), claims.Sub, req.SpotID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]interface{}{"booking": booking})
}

// ActiveBooking returns the caller's current booking, if any. A booking that
// expired since the last read is returned once with its terminal status.
func (h *Handlers) ActiveBooking(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	booking, err := h.parkingService.ActiveBooking(r.Context(), claims.Sub)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}

// Cancel releases the caller's pending booking
func (h *Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.parkingService.Cancel(r.Context(), claims.Sub); err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

// History lists the caller's completed parking sessions, newest first
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	entries, err := h.parkingService.History(r.Context(), claims.Sub)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

// ScanRefused rejects self-service scans. Gate scanning is an operator
// action; the endpoints exist so clients get a clear refusal rather than 404.
func (h *Handlers) ScanRefused(w http.ResponseWriter, r *http.Request) {
	response.Forbidden(w, "Scanning is restricted to gate operators")
}
