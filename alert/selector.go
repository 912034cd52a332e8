package alert

import (
	"github.com/Crowley723/proxy-health-monitor/config"
	"github.com/Crowley723/proxy-health-monitor/utils"
)

// SelectSender picks the delivery strategy for the configured alerts, or nil
// when alerting is not configured.
func SelectSender(cfg *config.EmailAlertConfig) Sender {
	if cfg == nil || cfg.RecipientEmail == "" {
		return nil
	}

	if cfg.UseLocalMTA {
		from := cfg.FromEmail
		if from == "" {
			from = utils.LocalSenderAddress()
		}
		return NewLocalMTASender(cfg.SendmailPath, from)
	}

	from := cfg.FromEmail
	if from == "" {
		from = cfg.SMTPUser
	}
	return NewSMTPSender(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, from)
}
