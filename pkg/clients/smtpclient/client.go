package smtpclient

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Client sends mail through an SMTP relay
type Client struct {
	dialer dialer
	from   string
}

// NewClient creates a client for the relay at host:port
func NewClient(host string, port int, username, password, from string) *Client {
	if from == "" {
		from = username
	}
	return &Client{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendEmail sends a plain-text email.
// gomail has no context support, so a cancelled ctx abandons the wait but not the send.
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", c.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- c.dialer.DialAndSend(message)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("gave up sending email: %w", ctx.Err())
	}
}
