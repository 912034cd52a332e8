package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/Crowley723/proxy-health-monitor/config"
	"github.com/Crowley723/proxy-health-monitor/monitor"
)

// ErrDelivery marks a failure to hand the alert email to the MTA or SMTP server.
var ErrDelivery = errors.New("alert delivery failed")

// Sender delivers one composed message.
type Sender interface {
	Name() string
	From() string
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	From      string
	To        string
	Subject   string
	Body      string
	MessageID string
	Date      time.Time
}

// Bytes renders the message as a plain-text RFC 5322 email with CRLF line endings.
func (m Message) Bytes() []byte {
	var b strings.Builder

	writeHeader := func(name, value string) {
		b.WriteString(name + ": " + value + "\r\n")
	}

	writeHeader("From", m.From)
	writeHeader("To", m.To)
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	writeHeader("Date", m.Date.Format(time.RFC1123Z))
	if m.MessageID != "" {
		writeHeader("Message-ID", m.MessageID)
	}
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `text/plain; charset="utf-8"`)
	writeHeader("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	return []byte(b.String())
}

type Dispatcher struct {
	config *config.Config
	sender Sender
	logger *slog.Logger
	now    func() time.Time
}

// NewDispatcher returns a dispatcher that sends through sender. A nil sender
// disables alerting.
func NewDispatcher(cfg *config.Config, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		config: cfg,
		sender: sender,
		logger: logger,
		now:    time.Now,
	}
}

func (d *Dispatcher) Enabled() bool {
	return d != nil && d.sender != nil && d.config.AlertsEnabled()
}

// Notify sends a single email covering every DOWN result of the run. It
// returns whether an email was handed off for delivery.
func (d *Dispatcher) Notify(ctx context.Context, runID string, results []monitor.Result) (bool, error) {
	down := DownResults(results)
	if len(down) == 0 {
		return false, nil
	}

	if !d.Enabled() {
		d.logger.Debug("email alerts not configured, skipping alert", "down_count", len(down))
		return false, nil
	}

	msg := ComposeDownAlert(d.config, d.sender.From(), runID, down, d.now())

	d.logger.Info("sending proxy down alert",
		"via", d.sender.Name(),
		"recipient", msg.To,
		"down_count", len(down))

	if err := d.sender.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("%w: via %s: %w", ErrDelivery, d.sender.Name(), err)
	}

	d.logger.Info("proxy down alert sent", "via", d.sender.Name(), "recipient", msg.To)

	return true, nil
}

func DownResults(results []monitor.Result) []monitor.Result {
	var down []monitor.Result
	for _, r := range results {
		if !r.IsUp() {
			down = append(down, r)
		}
	}
	return down
}

// ComposeDownAlert builds the alert naming every failed website and when it failed.
func ComposeDownAlert(cfg *config.Config, from, runID string, down []monitor.Result, now time.Time) Message {
	proxy := cfg.Proxy.Address()

	subject := fmt.Sprintf("Proxy Server Down Alert! %d websites unreachable via %s", len(down), proxy)
	if len(down) == 1 {
		subject = fmt.Sprintf("Proxy Server Down Alert! %s unreachable via %s", down[0].Website, proxy)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "The proxy server at %s seems to be down.\n\n", proxy)
	body.WriteString("Failed to connect to:\n")
	for _, r := range down {
		fmt.Fprintf(&body, "  - %s at %s", r.Website, r.Timestamp.Format(time.RFC3339))
		if r.Error != "" {
			fmt.Fprintf(&body, " (%s)", r.Error)
		}
		body.WriteString("\n")
	}
	body.WriteString("\nPlease check the proxy server status.\n")
	if runID != "" {
		fmt.Fprintf(&body, "\nRun ID: %s\n", runID)
	}

	return Message{
		From:      from,
		To:        cfg.EmailAlerts.RecipientEmail,
		Subject:   subject,
		Body:      body.String(),
		MessageID: messageID(runID, from),
		Date:      now,
	}
}

func messageID(runID, from string) string {
	if runID == "" {
		return ""
	}

	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = strings.Trim(from[at+1:], "<> ")
	}

	return fmt.Sprintf("<%s@%s>", runID, domain)
}
