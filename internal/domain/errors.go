package domain

import "errors"

var (
	// Booking lifecycle
	ErrSpotNotFound         = errors.New("spot not found")
	ErrSpotUnavailable      = errors.New("spot unavailable")
	ErrSpotNotBookable      = errors.New("spot not bookable")
	ErrActiveBookingExists  = errors.New("active booking exists")
	ErrNoCancellableBooking = errors.New("no cancellable booking")
	ErrQRExpired            = errors.New("qr token expired")
	ErrTokenNotFound        = errors.New("qr token not found")
	ErrAlreadyCheckedIn     = errors.New("booking already checked in")
	ErrNotCheckedIn         = errors.New("booking not checked in")
	ErrInvalidState         = errors.New("invalid state for action")
	ErrUnknownScanAction    = errors.New("unknown scan action")

	// Wallet
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")

	// Auth
	ErrIncompleteRegistration = errors.New("incomplete registration data")
	ErrInvalidEmail           = errors.New("invalid email")
	ErrPasswordTooShort       = errors.New("password too short")
	ErrEmailExists            = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserNotFound           = errors.New("user not found")
)
