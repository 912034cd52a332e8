package monitor

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Crowley723/proxy-health-monitor/config"
)

func New(cfg *config.Config, logger *slog.Logger) (*Monitor, error) {
	client, err := createProxyClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy client: %w", err)
	}

	return &Monitor{
		config: cfg,
		logger: logger,
		client: client,
		now:    time.Now,
	}, nil
}

func createProxyClient(cfg *config.Config) (*http.Client, error) {
	proxyURL, err := url.Parse(cfg.Proxy.ProxyURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse proxy url: %w", err)
	}

	timeout, err := time.ParseDuration(cfg.Monitoring.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timeout: %w", err)
	}

	return &http.Client{
		Transport: &http.Transport{
			Proxy:             http.ProxyURL(proxyURL),
			TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
			DisableKeepAlives: true,
		},
		Timeout: timeout,
	}, nil
}

// CheckAll probes every configured website once, in order, and returns one
// result per website. A failing website never stops the others from being probed.
func (m *Monitor) CheckAll(ctx context.Context) []Result {
	websites := m.config.Monitoring.Websites

	m.logger.Debug("checking websites through proxy",
		"proxy", m.config.Proxy.Address(),
		"website_count", len(websites),
		"timeout", m.config.Monitoring.Timeout)

	results := make([]Result, 0, len(websites))
	for _, website := range websites {
		results = append(results, m.checkWebsite(ctx, website))
	}

	return results
}

func (m *Monitor) checkWebsite(ctx context.Context, website string) Result {
	m.logger.Info("checking website through proxy", "website", website, "proxy", m.config.Proxy.Address())

	startedAt := m.now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		return m.recordFailure(website, startedAt, 0, err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return m.recordFailure(website, startedAt, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return m.recordFailure(website, startedAt, resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode))
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return m.recordFailure(website, startedAt, resp.StatusCode, fmt.Errorf("failed to read body: %w", err))
	}

	elapsed := max(m.now().Sub(startedAt), 0)

	return m.recordSuccess(website, startedAt, resp.StatusCode, elapsed)
}

func (m *Monitor) recordSuccess(website string, startedAt time.Time, statusCode int, elapsed time.Duration) Result {
	m.logger.Info("website reachable through proxy",
		"website", website,
		"status_code", statusCode,
		"elapsed", elapsed)

	return Result{
		Website:    website,
		Timestamp:  startedAt,
		Status:     StatusUp,
		Elapsed:    &elapsed,
		StatusCode: statusCode,
	}
}

func (m *Monitor) recordFailure(website string, startedAt time.Time, statusCode int, err error) Result {
	m.logger.Warn("website unreachable through proxy",
		"website", website,
		"proxy", m.config.Proxy.Address(),
		"error", err)

	return Result{
		Website:    website,
		Timestamp:  startedAt,
		Status:     StatusDown,
		StatusCode: statusCode,
		Error:      err.Error(),
	}
}
