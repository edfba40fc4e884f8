package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"podbrief/internal/content"
	"podbrief/internal/core"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	documentMimeType = "application/vnd.google-apps.document"
	folderMimeType   = "application/vnd.google-apps.folder"

	listPageSize   = 100
	maxExportBytes = 10 << 20
)

var errStopListing = errors.New("stop listing")

// DriveClient lists documents and exports them through Drive v3.
type DriveClient struct {
	svc *drive.Service
}

// NewDriveClient creates a drive adapter.
func NewDriveClient(ctx context.Context, opts ...option.ClientOption) (*DriveClient, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveClient{svc: svc}, nil
}

// CheckAccess verifies the listing permission with a one-item query.
func (d *DriveClient) CheckAccess(ctx context.Context) error {
	_, err := d.svc.Files.List().
		PageSize(1).
		Fields("files(id)").
		Context(ctx).
		Do()
	return wrapAPIError("list documents", err)
}

// CheckFolder verifies folderID exists, is readable and is a folder.
func (d *DriveClient) CheckFolder(ctx context.Context, folderID string) error {
	file, err := d.svc.Files.Get(folderID).
		Fields("id", "name", "mimeType").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("get folder "+folderID, err)
	}
	if file.MimeType != folderMimeType {
		return fmt.Errorf("%s is not a folder: %w", folderID, core.ErrNotFound)
	}
	return nil
}

// ListDocuments streams Google Docs, most recently modified first.
func (d *DriveClient) ListDocuments(ctx context.Context, folderID string, fn func(core.DocumentSummary) bool) error {
	call := d.svc.Files.List().
		Q(documentQuery(folderID)).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime)").
		OrderBy("modifiedTime desc").
		PageSize(listPageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			if !fn(toSummary(f)) {
				return errStopListing
			}
		}
		return nil
	})
	if errors.Is(err, errStopListing) {
		return nil
	}
	return wrapAPIError("list documents", err)
}

func documentQuery(folderID string) string {
	q := fmt.Sprintf("mimeType='%s' and trashed=false", documentMimeType)
	if folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", strings.ReplaceAll(folderID, "'", `\'`))
	}
	return q
}

func toSummary(f *drive.File) core.DocumentSummary {
	modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return core.DocumentSummary{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		LastModified: modified,
	}
}

// DriveExporter fetches documents through the Drive v3 export endpoint.
type DriveExporter struct {
	client *DriveClient
}

// Exporter returns the Drive export endpoint as a content.Exporter.
func (d *DriveClient) Exporter() *DriveExporter {
	return &DriveExporter{client: d}
}

func (e *DriveExporter) FetchExport(ctx context.Context, id string, format content.ExportFormat) (string, error) {
	mimeType := "text/plain"
	if format == content.FormatHTML {
		mimeType = "text/html"
	}

	resp, err := e.client.svc.Files.Export(id, mimeType).Context(ctx).Download()
	if err != nil {
		return "", wrapAPIError("export "+id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read export of %s: %w", id, err)
	}
	return string(body), nil
}
