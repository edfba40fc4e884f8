package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"podbrief/internal/content"
	"podbrief/internal/core"
	"podbrief/internal/email"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/option"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, []option.ClientOption) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, []option.ClientOption{
		option.WithEndpoint(srv.URL + "/"),
		option.WithHTTPClient(srv.Client()),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":"denied"}}`, code)
}

func TestCalendarClient_ListEvents(t *testing.T) {
	var query map[string]string
	_, opts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/calendars/primary/events") {
			http.NotFound(w, r)
			return
		}
		query = map[string]string{
			"singleEvents": r.URL.Query().Get("singleEvents"),
			"orderBy":      r.URL.Query().Get("orderBy"),
			"timeMin":      r.URL.Query().Get("timeMin"),
		}
		writeJSON(w, map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"id":          "evt-1",
					"summary":     "Pod Weekly Sync",
					"description": "agenda",
					"start":       map[string]string{"dateTime": "2025-09-23T17:00:00Z"},
					"end":         map[string]string{"dateTime": "2025-09-23T18:00:00Z"},
					"attendees": []map[string]interface{}{
						{"email": "lead@example.com"},
						{"email": "room@example.com", "resource": true},
					},
				},
				{
					"id":      "evt-2",
					"summary": "Cancelled sync",
					"status":  "cancelled",
					"start":   map[string]string{"dateTime": "2025-09-23T19:00:00Z"},
				},
				{
					"id":      "evt-3",
					"summary": "Offsite",
					"start":   map[string]string{"date": "2025-09-24"},
					"end":     map[string]string{"date": "2025-09-25"},
				},
			},
		})
	})

	client, err := NewCalendarClient(context.Background(), "", opts...)
	if err != nil {
		t.Fatalf("NewCalendarClient failed: %v", err)
	}

	start := time.Date(2025, 9, 21, 0, 0, 0, 0, time.UTC)
	meetings, err := client.ListEvents(context.Background(), start, start.Add(96*time.Hour))
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}

	if query["singleEvents"] != "true" || query["orderBy"] != "startTime" || query["timeMin"] != "2025-09-21T00:00:00Z" {
		t.Errorf("Unexpected query %v", query)
	}
	if len(meetings) != 2 {
		t.Fatalf("Expected 2 meetings, got %d", len(meetings))
	}

	m := meetings[0]
	if m.ID != "evt-1" || m.Title != "Pod Weekly Sync" || m.Description != "agenda" {
		t.Errorf("Unexpected meeting %+v", m)
	}
	if !m.StartTime.Equal(time.Date(2025, 9, 23, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start %v", m.StartTime)
	}
	if len(m.AttendeeEmails) != 1 || m.AttendeeEmails[0] != "lead@example.com" {
		t.Errorf("Expected resources excluded from attendees, got %v", m.AttendeeEmails)
	}
	if meetings[1].StartTime.Format("2006-01-02") != "2025-09-24" {
		t.Errorf("Expected all-day event date, got %v", meetings[1].StartTime)
	}
}

func TestCalendarClient_AccessDenied(t *testing.T) {
	_, opts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusForbidden)
	})
	client, _ := NewCalendarClient(context.Background(), "team@example.com", opts...)

	_, err := client.ListEvents(context.Background(), time.Now(), time.Now())
	if !errors.Is(err, core.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied, got %v", err)
	}
}

func TestDriveClient_ListDocuments(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	var pageTokens []string

	_, opts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/files") {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		pageTokens = append(pageTokens, r.URL.Query().Get("pageToken"))
		mu.Unlock()

		switch r.URL.Query().Get("pageToken") {
		case "":
			writeJSON(w, map[string]interface{}{
				"nextPageToken": "page-2",
				"files": []map[string]string{
					{"id": "d1", "name": "Doc 1", "mimeType": documentMimeType, "modifiedTime": "2025-09-23T17:15:00Z"},
					{"id": "d2", "name": "Doc 2", "mimeType": documentMimeType, "modifiedTime": "2025-09-22T10:00:00Z"},
				},
			})
		case "page-2":
			writeJSON(w, map[string]interface{}{
				"nextPageToken": "page-3",
				"files": []map[string]string{
					{"id": "d3", "name": "Doc 3", "mimeType": documentMimeType, "modifiedTime": "2025-09-21T10:00:00Z"},
					{"id": "d4", "name": "Doc 4", "mimeType": documentMimeType, "modifiedTime": "2025-09-20T10:00:00Z"},
				},
			})
		default:
			t.Error("Listing should stop before the third page")
			writeJSON(w, map[string]interface{}{"files": []interface{}{}})
		}
	})

	client, err := NewDriveClient(context.Background(), opts...)
	if err != nil {
		t.Fatalf("NewDriveClient failed: %v", err)
	}

	var seen []core.DocumentSummary
	err = client.ListDocuments(context.Background(), "folder-1", func(doc core.DocumentSummary) bool {
		seen = append(seen, doc)
		return len(seen) < 3
	})
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}

	if len(seen) != 3 || seen[2].ID != "d3" {
		t.Errorf("Expected iteration to stop at d3, got %+v", seen)
	}
	if !seen[0].LastModified.Equal(time.Date(2025, 9, 23, 17, 15, 0, 0, time.UTC)) {
		t.Errorf("Unexpected modified time %v", seen[0].LastModified)
	}
	if len(pageTokens) != 2 {
		t.Errorf("Expected 2 page requests, got %v", pageTokens)
	}
	if !strings.Contains(queries[0], "'folder-1' in parents") || !strings.Contains(queries[0], documentMimeType) {
		t.Errorf("Unexpected query %q", queries[0])
	}
}

func TestDriveClient_CheckFolder(t *testing.T) {
	_, opts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/files/folder-ok"):
			writeJSON(w, map[string]string{"id": "folder-ok", "mimeType": folderMimeType})
		case strings.HasSuffix(r.URL.Path, "/files/a-doc"):
			writeJSON(w, map[string]string{"id": "a-doc", "mimeType": documentMimeType})
		default:
			writeAPIError(w, http.StatusNotFound)
		}
	})
	client, _ := NewDriveClient(context.Background(), opts...)

	if err := client.CheckFolder(context.Background(), "folder-ok"); err != nil {
		t.Errorf("Expected folder to be accessible, got %v", err)
	}
	if err := client.CheckFolder(context.Background(), "a-doc"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a non-folder, got %v", err)
	}
	if err := client.CheckFolder(context.Background(), "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDriveClient_CheckAccess(t *testing.T) {
	_, opts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusForbidden)
	})
	client, _ := NewDriveClient(context.Background(), opts...)

	if err := client.CheckAccess(context.Background()); !errors.Is(err, core.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied, got %v", err)
	}
}

func TestDriveExporter_FetchExport(t *testing.T) {
	var gotMime string
	_, opts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/files/doc-1/export") {
			http.NotFound(w, r)
			return
		}
		gotMime = r.URL.Query().Get("mimeType")
		_, _ = w.Write([]byte("exported text"))
	})
	client, _ := NewDriveClient(context.Background(), opts...)

	text, err := client.Exporter().FetchExport(context.Background(), "doc-1", content.FormatHTML)
	if err != nil {
		t.Fatalf("FetchExport failed: %v", err)
	}
	if text != "exported text" || gotMime != "text/html" {
		t.Errorf("Unexpected export text=%q mime=%q", text, gotMime)
	}
}

func TestExportClient_FetchExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/document/d/doc-1/export":
			_, _ = w.Write([]byte("format=" + r.URL.Query().Get("format")))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	client := NewExportClient(srv.Client(), srv.URL+"/")

	text, err := client.FetchExport(context.Background(), "doc-1", content.FormatText)
	if err != nil || text != "format=txt" {
		t.Errorf("Expected txt export, got %q err=%v", text, err)
	}
	text, _ = client.FetchExport(context.Background(), "doc-1", content.FormatHTML)
	if text != "format=html" {
		t.Errorf("Expected html export, got %q", text)
	}

	if _, err := client.FetchExport(context.Background(), "private", content.FormatText); !errors.Is(err, core.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied, got %v", err)
	}
}

func TestGmailSender_Send(t *testing.T) {
	var raw string
	_, opts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/users/me/messages/send") {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Raw string `json:"raw"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		raw = body.Raw
		writeJSON(w, map[string]string{"id": "msg-1"})
	})

	sender, err := NewGmailSender(context.Background(), "bot@example.com", opts...)
	if err != nil {
		t.Fatalf("NewGmailSender failed: %v", err)
	}

	msg := email.Message{To: []string{"lead@example.com"}, Subject: "[Pod Update] Sync", PlainBody: "plain", HTMLBody: "<p>html</p>"}
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("Raw message is not base64url: %v", err)
	}
	for _, want := range []string{"To: lead@example.com", "Subject: [Pod Update] Sync", "<p>html</p>"} {
		if !strings.Contains(string(decoded), want) {
			t.Errorf("Expected raw message to contain %q", want)
		}
	}
}
