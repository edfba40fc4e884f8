package google

import (
	"context"
	"net/http"

	"google.golang.org/api/option"
)

// Clients bundles every adapter built on one authorized HTTP client.
type Clients struct {
	Calendar *CalendarClient
	Drive    *DriveClient
	Docs     *DocsClient
	Export   *ExportClient
	Gmail    *GmailSender
}

// NewClients creates all adapters.
func NewClients(ctx context.Context, httpClient *http.Client, calendarID, from string) (*Clients, error) {
	opt := option.WithHTTPClient(httpClient)

	cal, err := NewCalendarClient(ctx, calendarID, opt)
	if err != nil {
		return nil, err
	}
	drv, err := NewDriveClient(ctx, opt)
	if err != nil {
		return nil, err
	}
	dcs, err := NewDocsClient(ctx, opt)
	if err != nil {
		return nil, err
	}
	gml, err := NewGmailSender(ctx, from, opt)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Calendar: cal,
		Drive:    drv,
		Docs:     dcs,
		Export:   NewExportClient(httpClient, ""),
		Gmail:    gml,
	}, nil
}
