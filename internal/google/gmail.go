package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"podbrief/internal/email"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender sends mail as the authenticated user.
type GmailSender struct {
	svc  *gmail.Service
	from string
	now  func() time.Time
}

// NewGmailSender creates a Gmail adapter. from may be empty, in which case
// Gmail fills in the account address.
func NewGmailSender(ctx context.Context, from string, opts ...option.ClientOption) (*GmailSender, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailSender{svc: svc, from: from, now: time.Now}, nil
}

func (g *GmailSender) Send(ctx context.Context, msg email.Message) error {
	raw, err := email.BuildMIME(g.from, msg, g.now())
	if err != nil {
		return err
	}

	_, err = g.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	return wrapAPIError("send email", err)
}
