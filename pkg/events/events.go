package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/parkingly/parkingly-server/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopBus satisfies EventBus when no broker is configured (dev/memory mode).
type NoopBus struct{}

func NewNoopBus() *NoopBus { return &NoopBus{} }

func (NoopBus) Publish(ctx context.Context, subject string, data interface{}) error {
	logger.DebugContext(ctx, "Event dropped (no broker)", "subject", subject)
	return nil
}

func (NoopBus) Subscribe(string, func(msg *Message)) error              { return nil }
func (NoopBus) QueueSubscribe(string, string, func(msg *Message)) error { return nil }
func (NoopBus) Close() error                                            { return nil }

// Subjects for booking lifecycle events.
const (
	BookingCreated   = "booking.created"
	BookingCheckedIn = "booking.checked_in"
	BookingCompleted = "booking.completed"
	BookingCancelled = "booking.cancelled"
	BookingExpired   = "booking.expired"

	WalletToppedUp = "wallet.topped_up"
)

type BookingCreatedEvent struct {
	BookingID int64     `json:"booking_id"`
	UserID    int64     `json:"user_id"`
	SpotID    string    `json:"spot_id"`
	ExpiresAt time.Time `json:"qr_expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingCheckedInEvent struct {
	BookingID int64     `json:"booking_id"`
	UserID    int64     `json:"user_id"`
	SpotID    string    `json:"spot_id"`
	StartTime time.Time `json:"start_time"`
}

type BookingCompletedEvent struct {
	BookingID     int64     `json:"booking_id"`
	UserID        int64     `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	UserName      string    `json:"user_name"`
	SpotName      string    `json:"spot_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DurationHours int       `json:"duration_hours"`
	Cost          int64     `json:"cost"`
	Balance       int64     `json:"balance"`
}

type BookingCancelledEvent struct {
	BookingID   int64     `json:"booking_id"`
	UserID      int64     `json:"user_id"`
	SpotID      string    `json:"spot_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type BookingExpiredEvent struct {
	BookingID int64     `json:"booking_id"`
	UserID    int64     `json:"user_id"`
	SpotID    string    `json:"spot_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

type WalletToppedUpEvent struct {
	UserID     int64     `json:"user_id"`
	Amount     int64     `json:"amount"`
	Balance    int64     `json:"balance"`
	ToppedUpAt time.Time `json:"topped_up_at"`
}
