package email

import (
	"context"
	"podbrief/internal/logger"
	"strings"
)

// LogSender records messages in the log instead of sending them.
type LogSender struct {
	Sent []Message
}

func (l *LogSender) Send(ctx context.Context, msg Message) error {
	l.Sent = append(l.Sent, msg)
	logger.Info("Email not sent (dry run)",
		"to", strings.Join(msg.To, ", "),
		"subject", msg.Subject,
		"plain_chars", len(msg.PlainBody),
		"html_chars", len(msg.HTMLBody),
	)
	return nil
}
