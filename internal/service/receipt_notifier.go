package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/parkingly/parkingly-server/pkg/events"
	"github.com/parkingly/parkingly-server/pkg/logger"
	"github.com/parkingly/parkingly-server/pkg/mailer"
)

// ReceiptNotifier listens for completed bookings and mails the receipt.
// Delivery is best-effort; a failed send never affects the booking itself.
type ReceiptNotifier struct {
	mail mailer.Service
}

func NewReceiptNotifier(mail mailer.Service) *ReceiptNotifier {
	return &ReceiptNotifier{mail: mail}
}

func (n *ReceiptNotifier) Start(bus events.Subscriber) error {
	return bus.Subscribe(events.BookingCompleted, n.handle)
}

func (n *ReceiptNotifier) handle(msg *events.Message) {
	var event events.BookingCompletedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode completed-booking event", "error", err)
		return
	}
	if event.UserEmail == "" {
		return
	}

	subject := fmt.Sprintf("Parking receipt for %s", event.SpotName)
	text := fmt.Sprintf(
		"Thanks for parking with us.\n\nSpot: %s\nFrom: %s\nTo: %s\nDuration: %d hour(s)\nTotal: Rp %d\nWallet balance: Rp %d\n",
		event.SpotName,
		event.StartTime.Format(time.RFC1123),
		event.EndTime.Format(time.RFC1123),
		event.DurationHours,
		event.Cost,
		event.Balance,
	)
	html := fmt.Sprintf(
		`<p>Thanks for parking with us.</p><ul><li>Spot: <b>%s</b></li><li>Duration: %d hour(s)</li><li>Total: <b>Rp %d</b></li><li>Wallet balance: Rp %d</li></ul>`,
		event.SpotName, event.DurationHours, event.Cost, event.Balance,
	)

	if _, err := n.mail.Send(event.UserEmail, event.UserName, subject, text, html); err != nil {
		logger.Error("Failed to send receipt", "booking_id", event.BookingID, "error", err)
	}
}
