package config

type Config struct {
	Proxy       ProxyConfig       `yaml:"proxy"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
	EmailAlerts *EmailAlertConfig `yaml:"email_alerts"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ProxyConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type MonitoringConfig struct {
	Websites  []string `yaml:"websites"`
	LogFile   string   `yaml:"log_file"`
	LogFormat string   `yaml:"log_format"`
	Timeout   string   `yaml:"timeout"`
}

var DefaultMonitoringConfig = MonitoringConfig{
	Timeout: `30s`,
}

// EmailAlertConfig is nil when alerting is not configured.
type EmailAlertConfig struct {
	RecipientEmail string `yaml:"recipient_email"`
	UseLocalMTA    bool   `yaml:"use_local_mta"`
	SendmailPath   string `yaml:"sendmail_path"`
	SMTPServer     string `yaml:"smtp_server"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUser       string `yaml:"smtp_user"`
	SMTPPassword   string `yaml:"smtp_password"`
	FromEmail      string `yaml:"from_email"`
}

var DefaultEmailAlertConfig = EmailAlertConfig{
	SendmailPath: "/usr/sbin/sendmail",
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

var DefaultLoggingConfig = LoggingConfig{
	Level: "info",
}
