package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/internal/config"
	"github.com/cornerstone-fellowship/members/pkg/notify"
	"github.com/cornerstone-fellowship/members/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Location *time.Location
	Database *postgres.DB
	Notifier *notify.Dispatcher
	Logger   *zap.Logger
	Ctx      context.Context
}

// SkipDatabase marks a command that runs without a database connection or notifier
const SkipDatabase = "skipDatabase"

// NeedsDatabase reports whether initialisation should connect to the database for cmd
func NeedsDatabase(annotations map[string]string) bool {
	return annotations[SkipDatabase] != "true"
}
