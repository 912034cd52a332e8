package utils

import (
	"log/slog"
	"os"
)

const defaultLocalUser = "proxy-monitor"

func GetHostname() string {
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		osHostname, err := os.Hostname()
		if err != nil {
			slog.Warn("error getting hostname", "err", err)
			return "localhost"
		}
		hostname = osHostname
	}

	return hostname
}

// LocalSenderAddress returns user@hostname for mail handed to the local MTA.
func LocalSenderAddress() string {
	user := os.Getenv("USER")
	if user == "" {
		user = defaultLocalUser
	}

	return user + "@" + GetHostname()
}
