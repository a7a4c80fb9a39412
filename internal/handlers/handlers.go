package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/parkingly/parkingly-server/internal/domain"
	"github.com/parkingly/parkingly-server/internal/response"
	"github.com/parkingly/parkingly-server/internal/service"
	"github.com/parkingly/parkingly-server/pkg/auth"
	"github.com/parkingly/parkingly-server/pkg/logger"
	mw "github.com/parkingly/parkingly-server/pkg/middleware"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	authService    service.AuthService
	parkingService service.ParkingService
	walletService  service.WalletService
	jwtSecret      string
}

func New(authService service.AuthService, parkingService service.ParkingService, walletService service.WalletService, jwtSecret string) *Handlers {
	return &Handlers{
		authService:    authService,
		parkingService: parkingService,
		walletService:  walletService,
		jwtSecret:      jwtSecret,
	}
}

// Routes assembles the full API surface. The idempotency store is optional;
// when nil, replay protection is skipped.
func (h *Handlers) Routes(idemStore mw.IdempotencyStore) chi.Router {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if idemStore != nil {
		r.Use(mw.Idempotency(idemStore))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Route("/parking", func(r chi.Router) {
			r.Use(h.RequireJWT(""))
			r.Get("/spots", h.ListSpots)
			r.Post("/book", h.Book)
			r.Get("/active", h.ActiveBooking)
			r.Post("/cancel", h.Cancel)
			r.Get("/history", h.History)
			r.Post("/scan-entry", h.ScanRefused)
			r.Post("/scan-exit", h.ScanRefused)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Use(h.RequireJWT(""))
			r.Get("/", h.WalletBalance)
			r.Post("/topup", h.TopUp)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireJWT(auth.RoleAdmin))
			r.Get("/spots", h.ListSpots)
			r.Post("/scan", h.Scan)
			r.Get("/reports", h.Reports)
		})
	})

	return r
}

// Middleware for JWT authentication
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.jwtSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != auth.RoleAdmin {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, logger.RoleKey, claims.Role)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// writeDomainError maps a service error onto the wire envelope. Anything
// unrecognized is a 500 and gets logged.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrIncompleteRegistration),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrUnknownScanAction):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrEmailExists):
		response.WriteError(w, http.StatusConflict, err.Error(), response.CodeEmailExists)
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.WriteError(w, http.StatusUnauthorized, "Invalid email or password", response.CodeInvalidCredentials)
	case errors.Is(err, domain.ErrSpotNotFound):
		response.NotFound(w, "Spot not found")
	case errors.Is(err, domain.ErrSpotNotBookable):
		response.WriteError(w, http.StatusBadRequest, "Spot cannot be booked", response.CodeSpotNotBookable)
	case errors.Is(err, domain.ErrSpotUnavailable):
		response.WriteError(w, http.StatusConflict, "Spot is not available", response.CodeSpotUnavailable)
	case errors.Is(err, domain.ErrActiveBookingExists):
		response.WriteError(w, http.StatusConflict, "You already have an active booking", response.CodeActiveBookingExists)
	case errors.Is(err, domain.ErrNoCancellableBooking):
		response.WriteError(w, http.StatusNotFound, "No booking to cancel", response.CodeNoCancellable)
	case errors.Is(err, domain.ErrQRExpired):
		response.WriteError(w, http.StatusBadRequest, "QR code has expired", response.CodeQRExpired)
	case errors.Is(err, domain.ErrTokenNotFound):
		response.WriteError(w, http.StatusNotFound, "QR code not recognized", response.CodeQRNotFound)
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		response.WriteError(w, http.StatusConflict, "Vehicle is already inside", response.CodeInvalidState)
	case errors.Is(err, domain.ErrNotCheckedIn):
		response.WriteError(w, http.StatusConflict, "Vehicle has not entered yet", response.CodeInvalidState)
	case errors.Is(err, domain.ErrInvalidState):
		response.WriteError(w, http.StatusConflict, "Booking is no longer active", response.CodeInvalidState)
	case errors.Is(err, domain.ErrInsufficientBalance):
		response.WriteError(w, http.StatusPaymentRequired, "Insufficient wallet balance", response.CodeInsufficientFunds)
	case errors.Is(err, domain.ErrInvalidAmount):
		response.WriteError(w, http.StatusBadRequest, "Amount must be positive", response.CodeInvalidAmount)
	default:
		logger.ErrorContext(r.Context(), "Unhandled service error", "error", err)
		response.InternalError(w, "Something went wrong")
	}
}
