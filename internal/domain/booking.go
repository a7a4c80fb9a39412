package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingCheckedIn BookingStatus = "checked-in"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingExpired   BookingStatus = "expired"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingCheckedIn, BookingCompleted, BookingCancelled, BookingExpired:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// ActiveStatuses are the non-terminal states. A user may hold at most one
// booking in these states at any time, and the referenced spot stays
// unavailable for as long as the booking is in one of them.
var ActiveStatuses = []BookingStatus{BookingPending, BookingCheckedIn}

// QRToken is a time-limited credential proving a booking's pending-entry
// right. It is owned by exactly one booking and never reused.
type QRToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Booking struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"userId"`
	SpotID        string        `json:"spotId"`
	Status        BookingStatus `json:"status"`
	QR            *QRToken      `json:"qr,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	StartTime     *time.Time    `json:"startTime"`
	EndTime       *time.Time    `json:"endTime"`
	Cost          *int64        `json:"cost"`
	DurationHours *int          `json:"durationHours,omitempty"`
	CancelledAt   *time.Time    `json:"cancelledAt,omitempty"`
}

// IsActive reports whether the booking still holds its spot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingCheckedIn
}

// QRExpired reports whether the pending-entry window has closed. Only
// meaningful while the booking is pending; once checked in the QR is spent
// and its expiry no longer governs anything.
func (b *Booking) QRExpired(now time.Time) bool {
	return b.Status == BookingPending && b.QR != nil && now.After(b.QR.ExpiresAt)
}

type HistoryEntry struct {
	BookingID     int64     `json:"bookingId"`
	UserID        int64     `json:"userId"`
	SpotName      string    `json:"spotName"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	DurationHours int       `json:"durationHours"`
	Cost          int64     `json:"cost"`
}

type Reports struct {
	TodayRevenue int64 `json:"todayRevenue"`
	MonthRevenue int64 `json:"monthRevenue"`
	TodayEntries int   `json:"todayEntries"`
	TodayExits   int   `json:"todayExits"`
}
