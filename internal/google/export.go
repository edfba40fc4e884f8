package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"podbrief/internal/content"
	"strings"
)

// DefaultExportBaseURL is the Docs export endpoint host.
const DefaultExportBaseURL = "https://docs.google.com"

// ExportClient downloads documents through the Docs web export endpoint
// with an authorized HTTP client.
type ExportClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewExportClient creates an export adapter. An empty baseURL uses DefaultExportBaseURL.
func NewExportClient(httpClient *http.Client, baseURL string) *ExportClient {
	if baseURL == "" {
		baseURL = DefaultExportBaseURL
	}
	return &ExportClient{httpClient: httpClient, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (e *ExportClient) FetchExport(ctx context.Context, id string, format content.ExportFormat) (string, error) {
	exportFormat := "txt"
	if format == content.FormatHTML {
		exportFormat = "html"
	}

	endpoint := fmt.Sprintf("%s/document/d/%s/export?format=%s", e.baseURL, url.PathEscape(id), exportFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create export request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("export "+id, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExportBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read export of %s: %w", id, err)
	}
	return string(body), nil
}
