package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

// stringList collects repeated and comma separated flag values.
type stringList []string

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

type cliOptions struct {
	configFile string

	proxyHost string
	proxyPort int

	websites  stringList
	logFile   string
	logFormat string
	timeout   time.Duration

	alertEmail   string
	useLocalMTA  bool
	sendmailPath string
	smtpServer   string
	smtpPort     int
	smtpUser     string
	smtpPassword string
	fromEmail    string

	logLevel string
}

func bindFlags(fs *flag.FlagSet) *cliOptions {
	o := &cliOptions{}

	fs.StringVar(&o.configFile, "config-file", "", "path to the YAML configuration file")

	fs.StringVar(&o.proxyHost, "proxy-host", "", "proxy server host or IP address")
	fs.IntVar(&o.proxyPort, "proxy-port", 0, "proxy server port")

	fs.Var(&o.websites, "websites", "websites to check through the proxy (several values, repeatable or comma separated)")
	fs.StringVar(&o.logFile, "log-file", "", "path of the result log")
	fs.StringVar(&o.logFormat, "log-format", "", "result log format: csv|xlsx|sqlite (default: from the log file extension)")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Second, "timeout for each website probe")

	fs.StringVar(&o.alertEmail, "alert-email", "", "email address to send alerts to")
	fs.BoolVar(&o.useLocalMTA, "use-local-mta", false, "deliver alerts through the local sendmail binary")
	fs.StringVar(&o.sendmailPath, "sendmail-path", DefaultEmailAlertConfig.SendmailPath, "path of the local sendmail binary")
	fs.StringVar(&o.smtpServer, "smtp-server", "", "SMTP server for alerts (when not using the local MTA)")
	fs.IntVar(&o.smtpPort, "smtp-port", 0, "SMTP port for alerts")
	fs.StringVar(&o.smtpUser, "smtp-user", "", "SMTP username")
	fs.StringVar(&o.smtpPassword, "smtp-password", "", "SMTP password")
	fs.StringVar(&o.fromEmail, "from-email", "", "sender address for alerts")

	fs.StringVar(&o.logLevel, "log-level", DefaultLoggingConfig.Level, "log level: debug|info|warn|error")

	return o
}

// Load builds the run configuration from the YAML file named by --config-file
// (when given) and any explicitly set CLI flags layered on top.
func Load(args []string) (*Config, error) {
	return load(args, os.Stderr)
}

func load(args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("proxy-health-monitor", flag.ContinueOnError)
	fs.SetOutput(output)
	opts := bindFlags(fs)

	if err := fs.Parse(expandMultiValueFlags(args, "websites")); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrInvalid, fs.Arg(0))
	}

	config := Default()
	if opts.configFile != "" {
		var err error
		if config, err = readConfig(opts.configFile); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		opts.apply(config, f.Name)
	})

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return config, nil
}

// apply copies the value of one explicitly set flag onto the config.
func (o *cliOptions) apply(c *Config, name string) {
	switch name {
	case "proxy-host":
		c.Proxy.Host = o.proxyHost
	case "proxy-port":
		c.Proxy.Port = o.proxyPort
	case "websites":
		c.Monitoring.Websites = slices.Clone(o.websites)
	case "log-file":
		c.Monitoring.LogFile = o.logFile
	case "log-format":
		c.Monitoring.LogFormat = o.logFormat
	case "timeout":
		c.Monitoring.Timeout = o.timeout.String()
	case "alert-email":
		emailAlerts(c).RecipientEmail = o.alertEmail
	case "use-local-mta":
		emailAlerts(c).UseLocalMTA = o.useLocalMTA
	case "sendmail-path":
		emailAlerts(c).SendmailPath = o.sendmailPath
	case "smtp-server":
		emailAlerts(c).SMTPServer = o.smtpServer
	case "smtp-port":
		emailAlerts(c).SMTPPort = o.smtpPort
	case "smtp-user":
		emailAlerts(c).SMTPUser = o.smtpUser
	case "smtp-password":
		emailAlerts(c).SMTPPassword = o.smtpPassword
	case "from-email":
		emailAlerts(c).FromEmail = o.fromEmail
	case "log-level":
		c.Logging.Level = o.logLevel
	}
}

func emailAlerts(c *Config) *EmailAlertConfig {
	if c.EmailAlerts == nil {
		defaults := DefaultEmailAlertConfig
		c.EmailAlerts = &defaults
	}
	return c.EmailAlerts
}

// expandMultiValueFlags rewrites "--name a b" into "--name=a --name=b" so the
// flag package accepts several values after one flag.
func expandMultiValueFlags(args []string, names ...string) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}

		name := strings.TrimLeft(arg, "-")
		if !strings.HasPrefix(arg, "-") || !slices.Contains(names, name) {
			out = append(out, arg)
			continue
		}

		j := i + 1
		for ; j < len(args) && !strings.HasPrefix(args[j], "-"); j++ {
			out = append(out, "--"+name+"="+args[j])
		}
		if j == i+1 {
			out = append(out, arg)
		}
		i = j - 1
	}

	return out
}
