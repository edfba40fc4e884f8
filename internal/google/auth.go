// Package google adapts Google Workspace APIs to the podbrief interfaces.
package google

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
)

// Scopes requested for every client.
var Scopes = []string{
	calendar.CalendarReadonlyScope,
	drive.DriveReadonlyScope,
	docs.DocumentsScope,
	gmail.GmailSendScope,
}

// AuthOptions selects how API calls are authorized.
type AuthOptions struct {
	CredentialsFile string // Service account or authorized user JSON; empty uses application default credentials
	Subject         string // User to impersonate with domain-wide delegation
}

// HTTPClient returns an authorized client for Scopes.
func HTTPClient(ctx context.Context, opts AuthOptions) (*http.Client, error) {
	if opts.CredentialsFile == "" {
		client, err := google.DefaultClient(ctx, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to load default credentials: %w", err)
		}
		return client, nil
	}

	data, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if opts.Subject != "" {
		cfg, err := google.JWTConfigFromJSON(data, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
		}
		cfg.Subject = opts.Subject
		return cfg.Client(ctx), nil
	}

	creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return oauth2.NewClient(ctx, creds.TokenSource), nil
}
