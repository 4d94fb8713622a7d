package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Client sends mail through the Gmail API on behalf of a single account
type Client struct {
	service      *gmail.Service
	userID       string
	from         string
	interval     time.Duration
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a Gmail client authenticated by tokenSource.
// userID is usually "me"; from, if set, is written as the From header.
func NewClient(ctx context.Context, tokenSource oauth2.TokenSource, userID, from string) (*Client, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	if userID == "" {
		userID = "me"
	}

	return &Client{
		service:  service,
		userID:   userID,
		from:     from,
		interval: EmailInterval,
	}, nil
}
