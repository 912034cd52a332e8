package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

type Validator interface {
	validateProxyConfig() error
	validateMonitoringConfig() error
	validateEmailAlertConfig() error
	validateLoggingConfig() error
}

func validateConfig(config Validator) error {
	checks := []func() error{
		config.validateProxyConfig,
		config.validateMonitoringConfig,
		config.validateEmailAlertConfig,
		config.validateLoggingConfig,
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateProxyConfig() error {
	if c == nil {
		return fmt.Errorf(fmtErrEmptyConfig, "config")
	}

	if strings.TrimSpace(c.Proxy.Host) == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "proxy.host")
	}

	if c.Proxy.Port <= 0 || c.Proxy.Port > 65535 {
		return fmt.Errorf(fmtErrPortRange, "proxy.port")
	}

	return nil
}

func (c *Config) validateMonitoringConfig() error {
	if c == nil {
		return fmt.Errorf(fmtErrEmptyConfig, "config")
	}

	if len(c.Monitoring.Websites) == 0 {
		return fmt.Errorf(fmtErrEmptyConfigOption, "monitoring.websites")
	}

	for _, website := range c.Monitoring.Websites {
		if err := validateWebsite(website); err != nil {
			return fmt.Errorf(fmtErrInvalidOption, "monitoring.websites", err)
		}
	}

	if c.Monitoring.LogFile == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "monitoring.log_file")
	}

	switch strings.ToLower(c.Monitoring.LogFormat) {
	case "", LogFormatCSV, LogFormatXLSX, LogFormatSQLite:
	default:
		return fmt.Errorf(fmtErrInvalidOption, "monitoring.log_format",
			fmt.Errorf("%q is not one of csv, xlsx, sqlite", c.Monitoring.LogFormat))
	}

	if c.Monitoring.Timeout == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "monitoring.timeout")
	}

	timeout, err := time.ParseDuration(c.Monitoring.Timeout)
	if err != nil {
		return fmt.Errorf(fmtErrInvalidOption, "monitoring.timeout", err)
	}
	if timeout <= 0 {
		return fmt.Errorf(fmtErrInvalidOption, "monitoring.timeout", errors.New("must be positive"))
	}

	return nil
}

func validateWebsite(website string) error {
	u, err := url.Parse(website)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use the http or https scheme", website)
	}

	if u.Host == "" {
		return fmt.Errorf("%q has no host", website)
	}

	return nil
}

func (c *Config) validateEmailAlertConfig() error {
	if c == nil {
		return fmt.Errorf(fmtErrEmptyConfig, "config")
	}

	email := c.EmailAlerts
	if email == nil {
		return nil
	}

	if email.RecipientEmail == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "email_alerts.recipient_email")
	}

	if _, err := mail.ParseAddress(email.RecipientEmail); err != nil {
		return fmt.Errorf(fmtErrInvalidOption, "email_alerts.recipient_email", err)
	}

	if email.FromEmail != "" {
		if _, err := mail.ParseAddress(email.FromEmail); err != nil {
			return fmt.Errorf(fmtErrInvalidOption, "email_alerts.from_email", err)
		}
	}

	if email.UseLocalMTA {
		if email.SendmailPath == "" {
			return fmt.Errorf(fmtErrEmptyConfigOption, "email_alerts.sendmail_path")
		}
		return nil
	}

	required := []struct {
		name  string
		value string
	}{
		{"email_alerts.smtp_server", email.SMTPServer},
		{"email_alerts.smtp_user", email.SMTPUser},
		{"email_alerts.smtp_password", email.SMTPPassword},
	}

	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf(fmtErrEmptyConfigOption+" when use_local_mta is false", field.name)
		}
	}

	if email.SMTPPort <= 0 || email.SMTPPort > 65535 {
		return fmt.Errorf(fmtErrPortRange, "email_alerts.smtp_port")
	}

	return nil
}

func (c *Config) validateLoggingConfig() error {
	if c == nil {
		return fmt.Errorf(fmtErrEmptyConfig, "config")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf(fmtErrInvalidOption, "logging.level",
			fmt.Errorf("%q is not one of debug, info, warn, error", c.Logging.Level))
	}
}
