package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/Crowley723/proxy-health-monitor/monitor"
	"github.com/Crowley723/proxy-health-monitor/providers"
	"github.com/Crowley723/proxy-health-monitor/store"
)

type Prober interface {
	CheckAll(ctx context.Context) []monitor.Result
}

type Notifier interface {
	Notify(ctx context.Context, runID string, results []monitor.Result) (bool, error)
}

type StoreOpener func() (store.Store, error)

// ErrInterrupted is returned when the run is cancelled before its results are logged.
var ErrInterrupted = errors.New("run interrupted")

// Runner sequences one monitoring run: probe every website, log every result,
// then alert once if anything is down.
type Runner struct {
	prober    Prober
	openStore StoreOpener
	notifier  Notifier
}

func New(prober Prober, openStore StoreOpener, notifier Notifier) *Runner {
	return &Runner{
		prober:    prober,
		openStore: openStore,
		notifier:  notifier,
	}
}

type Outcome struct {
	Results   []monitor.Result
	DownCount int
	Alerted   bool
	AlertErr  error
}

// Run returns an error only when the run was interrupted or the results could
// not be logged. A down proxy or a failed alert delivery is reported through
// the Outcome.
func (r *Runner) Run(appCtx *providers.AppContext) (*Outcome, error) {
	logger := appCtx.Logger

	results := r.prober.CheckAll(appCtx)

	outcome := &Outcome{Results: results}

	// Probes cut short by cancellation say nothing about the proxy.
	if err := appCtx.Err(); err != nil {
		return outcome, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	for _, result := range results {
		if !result.IsUp() {
			outcome.DownCount++
		}
	}

	if err := r.record(appCtx, results); err != nil {
		return outcome, fmt.Errorf("failed to log results: %w", err)
	}

	logger.Debug("results logged", "count", len(results), "log_file", appCtx.Config.Monitoring.LogFile)

	if outcome.DownCount == 0 {
		logger.Info("proxy is up", "proxy", appCtx.Config.Proxy.Address(), "websites", len(results))
		return outcome, nil
	}

	logger.Warn("proxy appears to be down",
		"proxy", appCtx.Config.Proxy.Address(),
		"down", outcome.DownCount,
		"websites", len(results))

	if r.notifier == nil {
		return outcome, nil
	}

	sent, err := r.notifier.Notify(appCtx, appCtx.RunID, results)
	if err != nil {
		logger.Error("failed to send alert", "err", err)
		outcome.AlertErr = err
	}
	outcome.Alerted = sent

	return outcome, nil
}

func (r *Runner) record(appCtx *providers.AppContext, results []monitor.Result) (err error) {
	s, err := r.openStore()
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close result log: %w", store.ErrWrite, closeErr)
		}
	}()

	return s.Append(store.NewRecords(appCtx.RunID, results))
}
