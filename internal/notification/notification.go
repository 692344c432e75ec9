package notification

import (
	"context"
	"log/slog"
)

// Kind labels the event a message describes.
type Kind string

const (
	KindTransferReceived    Kind = "transfer_received"
	KindTransactionReversed Kind = "transaction_reversed"
)

// Message is a notification payload addressed to a wallet owner.
type Message struct {
	Kind        Kind
	Destination int64
	Body        string
}

// Notifier delivers messages to wallet owners. Delivery is best effort and
// never affects the outcome of a ledger operation.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LoggerNotifier writes notifications to the structured log. It stands in
// for a real delivery channel.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier builds a log-backed notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

func (n *LoggerNotifier) Send(_ context.Context, msg Message) error {
	n.logger.Info("notification",
		slog.String("kind", string(msg.Kind)),
		slog.Int64("owner_id", msg.Destination),
		slog.String("body", msg.Body),
	)
	return nil
}
