package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stayinn/backend/config"
)

// NotificationHandler receives the decoded notification stream. The email
// sender is the production implementation.
type NotificationHandler interface {
	SendBooking(ctx context.Context, event BookingEvent) error
	SendPayment(ctx context.Context, event PaymentEvent) error
}

// Consumer reads the notifications topic as part of the worker group and
// routes each event to a NotificationHandler.
type Consumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

func NewConsumer(cfg config.KafkaConfig, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           cfg.Brokers,
			GroupID:           cfg.GroupID,
			Topic:             cfg.NotificationsTopic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks reading notifications until the context is cancelled or the
// handler fails. Undecodable or unknown events are logged and skipped so the
// group keeps advancing.
func (c *Consumer) Consume(ctx context.Context, handler NotificationHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := c.route(ctx, handler, msg.Value); err != nil {
			return err
		}
	}
}

// route dispatches by the event type prefix shared between booking and
// payment events.
func (c *Consumer) route(ctx context.Context, handler NotificationHandler, value []byte) error {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		c.logger.Warn("dropping undecodable notification", "err", err)
		return nil
	}

	switch {
	case strings.HasPrefix(envelope.Type, "booking_"):
		var event BookingEvent
		if err := json.Unmarshal(value, &event); err != nil {
			c.logger.Warn("dropping malformed booking event", "err", err)
			return nil
		}
		return handler.SendBooking(ctx, event)
	case strings.HasPrefix(envelope.Type, "payment_"):
		var event PaymentEvent
		if err := json.Unmarshal(value, &event); err != nil {
			c.logger.Warn("dropping malformed payment event", "err", err)
			return nil
		}
		return handler.SendPayment(ctx, event)
	default:
		c.logger.Warn("dropping notification with unknown type", "type", envelope.Type)
		return nil
	}
}
