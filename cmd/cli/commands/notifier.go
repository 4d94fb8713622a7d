package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/internal/config"
	"github.com/cornerstone-fellowship/members/pkg/clients/gmailclient"
	"github.com/cornerstone-fellowship/members/pkg/clients/smtpclient"
	"github.com/cornerstone-fellowship/members/pkg/notify"
	"github.com/cornerstone-fellowship/members/pkg/utils"
)

// NewSender builds the email sender selected by the notifications provider
func NewSender(ctx context.Context, cfg config.NotificationsConfig, env string, logger *zap.Logger) (notify.Sender, error) {
	switch cfg.Provider {
	case "", "log":
		return &notify.LogSender{Logger: logger}, nil

	case "smtp":
		logger.Debug("Using SMTP sender", zap.String("host", cfg.SMTP.Host), zap.Int("port", cfg.SMTP.Port))
		return smtpclient.NewClient(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.FromAddress), nil

	case "gmail":
		logger.Info("Loading OAuth client configuration")
		oauthCfg, err := config.LoadOAuthClientWithEnv(env)
		if err != nil {
			return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
		}
		oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
		if err != nil {
			return nil, err
		}
		tokenSource, err := utils.TokenSource(ctx, oauthConfig, env, logger)
		if err != nil {
			return nil, err
		}
		client, err := gmailclient.NewClient(ctx, tokenSource, cfg.GmailUserID, cfg.FromAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to create gmail client: %w", err)
		}
		logger.Debug("Gmail client initialized successfully")
		return client, nil

	default:
		return nil, fmt.Errorf("unknown notification provider %q", cfg.Provider)
	}
}
