package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/Crowley723/proxy-health-monitor/config"
	"github.com/google/uuid"
)

// AppContext carries everything one monitoring run shares between its stages.
type AppContext struct {
	context.Context
	Config    *config.Config
	Logger    *slog.Logger
	RunID     string
	StartedAt time.Time
}

// NewAppContext creates the context for a new run. The logger is tagged with the run ID.
func NewAppContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) *AppContext {
	runID := uuid.NewString()

	return &AppContext{
		Context:   ctx,
		Config:    cfg,
		Logger:    logger.With("run_id", runID),
		RunID:     runID,
		StartedAt: time.Now(),
	}
}
