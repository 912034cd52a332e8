package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ProxyURL returns the URL requests are routed through.
func (c *ProxyConfig) ProxyURL() string {
	return fmt.Sprintf("http://%s", c.Address())
}

// Address returns host:port of the proxy.
func (c *ProxyConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TimeoutDuration returns the per-probe timeout. Only call on a validated config.
func (c *MonitoringConfig) TimeoutDuration() time.Duration {
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return timeout
}

// ResolvedLogFormat returns the explicit log_format, or the one implied by the log file extension.
func (c *MonitoringConfig) ResolvedLogFormat() string {
	if c.LogFormat != "" {
		return strings.ToLower(c.LogFormat)
	}

	switch strings.ToLower(filepath.Ext(c.LogFile)) {
	case ".xlsx":
		return LogFormatXLSX
	case ".db", ".sqlite", ".sqlite3":
		return LogFormatSQLite
	default:
		return LogFormatCSV
	}
}

// AlertsEnabled reports whether an alert email should be sent for a failing run.
func (c *Config) AlertsEnabled() bool {
	return c.EmailAlerts != nil && c.EmailAlerts.RecipientEmail != ""
}
