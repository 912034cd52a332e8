package monitor

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Crowley723/proxy-health-monitor/config"
)

type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// Result is the outcome of probing one website through the proxy.
// Elapsed is nil for DOWN results.
type Result struct {
	Website    string
	Timestamp  time.Time
	Status     Status
	Elapsed    *time.Duration
	StatusCode int
	Error      string
}

func (r Result) IsUp() bool {
	return r.Status == StatusUp
}

type Monitor struct {
	config *config.Config
	logger *slog.Logger
	client *http.Client
	now    func() time.Time
}
