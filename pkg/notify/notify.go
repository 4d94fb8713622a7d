package notify

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const defaultSendTimeout = 30 * time.Second

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "members",
	Name:      "notifications_total",
	Help:      "Notification dispatch attempts by result",
}, []string{"kind", "result"})

// Message is a single outbound email
type Message struct {
	Kind    string
	To      string
	Subject string
	Body    string
}

// Notifier accepts messages for best-effort delivery.
// Implementations must not block on delivery and must not report failures to the caller.
type Notifier interface {
	Notify(msg Message)
}

// Sender delivers a message synchronously
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Dispatcher hands messages to a Sender in the background and logs failures
type Dispatcher struct {
	sender  Sender
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher for the given sender
func NewDispatcher(sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		logger:  logger,
		timeout: defaultSendTimeout,
	}
}

// Notify queues the message for delivery and returns immediately
func (d *Dispatcher) Notify(msg Message) {
	if msg.To == "" {
		d.logger.Debug("Skipping notification without recipient", zap.String("kind", msg.Kind))
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		// Delivery outlives the request that triggered it
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.SendEmail(ctx, msg.To, msg.Subject, msg.Body); err != nil {
			notificationsTotal.WithLabelValues(msg.Kind, "failed").Inc()
			d.logger.Warn("Failed to send notification",
				zap.String("kind", msg.Kind),
				zap.String("to", msg.To),
				zap.Error(err))
			return
		}

		notificationsTotal.WithLabelValues(msg.Kind, "sent").Inc()
		d.logger.Debug("Notification sent", zap.String("kind", msg.Kind), zap.String("to", msg.To))
	}()
}

// Wait blocks until all queued notifications have been attempted
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogSender writes messages to the logger instead of sending them
type LogSender struct {
	Logger *zap.Logger
}

// SendEmail logs the message
func (s *LogSender) SendEmail(ctx context.Context, to, subject, body string) error {
	s.Logger.Info("Email (log provider)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)))
	return nil
}
