package alert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// LocalMTASender pipes the message to a sendmail compatible binary, which
// reads the recipients from the message headers.
type LocalMTASender struct {
	path string
	from string
}

func NewLocalMTASender(path, from string) *LocalMTASender {
	return &LocalMTASender{path: path, from: from}
}

func (s *LocalMTASender) Name() string {
	return "local-mta"
}

func (s *LocalMTASender) From() string {
	return s.from
}

func (s *LocalMTASender) Send(ctx context.Context, msg Message) error {
	cmd := exec.CommandContext(ctx, s.path, "-t", "-i")
	cmd.Stdin = bytes.NewReader(msg.Bytes())

	output, err := cmd.CombinedOutput()
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			return fmt.Errorf("%s: %w: %s", s.path, err, out)
		}
		return fmt.Errorf("%s: %w", s.path, err)
	}

	return nil
}
