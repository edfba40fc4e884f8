package email

import (
	"context"
	"errors"
	"net/smtp"
	"podbrief/internal/core"
	"strings"
	"testing"
	"time"
)

func sampleData() SummaryData {
	meeting := core.Meeting{Title: "Pod Weekly Sync", StartTime: time.Date(2025, 9, 23, 17, 0, 0, 0, time.UTC)}
	return NewSummaryData(meeting, "<h2>Executive Overview</h2><p>Shipped it.</p>", "Executive Overview\nShipped it.", "lead@example.com", time.UTC)
}

func TestSubject(t *testing.T) {
	data := sampleData()

	if got := Subject("", data); got != "[Pod Update] Pod Weekly Sync - September 23, 2025" {
		t.Errorf("Unexpected default subject %q", got)
	}
	if got := Subject("[Infra]", data); got != "[Infra] Pod Weekly Sync - September 23, 2025" {
		t.Errorf("Unexpected custom subject %q", got)
	}
}

func TestRenderSummaryHTML(t *testing.T) {
	html, err := RenderSummaryHTML(sampleData(), nil)
	if err != nil {
		t.Fatalf("RenderSummaryHTML failed: %v", err)
	}

	for _, want := range []string{
		"<h1>Pod Weekly Sync</h1>",
		"September 23, 2025",
		"<h2>Executive Overview</h2><p>Shipped it.</p>",
		generatedByLine,
		"Questions? Contact lead@example.com",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected HTML to contain %q", want)
		}
	}
}

func TestRenderSummaryHTML_EscapesTitle(t *testing.T) {
	data := sampleData()
	data.Title = "Q&A <Sync>"

	html, err := RenderSummaryHTML(data, GetDefaultEmailTemplate())
	if err != nil {
		t.Fatalf("RenderSummaryHTML failed: %v", err)
	}
	if !strings.Contains(html, "Q&amp;A &lt;Sync&gt;") {
		t.Error("Expected meeting title to be escaped")
	}
}

func TestRenderSummaryPlain(t *testing.T) {
	plain := RenderSummaryPlain(sampleData())

	if !strings.HasPrefix(plain, "Pod Weekly Sync - September 23, 2025\n\n") {
		t.Errorf("Unexpected plain header %q", plain)
	}
	if strings.Contains(plain, "<") {
		t.Error("Plain body must not contain markup")
	}
	if !strings.HasSuffix(plain, "Questions? Contact lead@example.com\n") {
		t.Error("Expected footer at the end")
	}
}

func TestRecipients(t *testing.T) {
	attendees := []string{"a@example.com", "Lead@example.com", "", "b@example.com"}

	testCases := []struct {
		name     string
		all      bool
		leader   string
		expected []string
	}{
		{"leader only", false, "lead@example.com", []string{"lead@example.com"}},
		{"all participants", true, "lead@example.com", []string{"a@example.com", "b@example.com"}},
		{"no leader configured", false, "", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Recipients(attendees, tc.leader, tc.all)
			if strings.Join(got, ",") != strings.Join(tc.expected, ",") {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRecipients_OnlyLeaderAttended(t *testing.T) {
	if got := Recipients([]string{"lead@example.com"}, "lead@example.com", true); len(got) != 0 {
		t.Errorf("Expected no recipients, got %v", got)
	}
}

func TestErrorNotification(t *testing.T) {
	at := time.Date(2025, 9, 24, 8, 0, 0, 0, time.UTC)
	msg := ErrorNotification("lead@example.com", "", "calendar unavailable", at)

	if msg.Subject != ErrorSubject {
		t.Errorf("Expected subject %q, got %q", ErrorSubject, msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0] != "lead@example.com" {
		t.Errorf("Expected leader recipient, got %v", msg.To)
	}
	for _, want := range []string{"Daily Pod Automation Failed", "Error Details:\ncalendar unavailable", "Time: Wed, 24 Sep 2025 08:00:00 UTC"} {
		if !strings.Contains(msg.PlainBody, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
	if msg.HTMLBody != "" {
		t.Error("Error notification should be plain text")
	}
}

func TestBuildMIME_Alternative(t *testing.T) {
	msg, err := SummaryMessage([]string{"a@example.com", "b@example.com"}, "", sampleData(), nil)
	if err != nil {
		t.Fatalf("SummaryMessage failed: %v", err)
	}

	raw, err := BuildMIME("bot@example.com", msg, time.Now())
	if err != nil {
		t.Fatalf("BuildMIME failed: %v", err)
	}
	text := string(raw)

	for _, want := range []string{
		"From: bot@example.com\r\n",
		"To: a@example.com, b@example.com\r\n",
		"multipart/alternative; boundary=",
		`Content-Type: text/plain; charset="utf-8"`,
		`Content-Type: text/html; charset="utf-8"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected MIME message to contain %q", want)
		}
	}
	if strings.Index(text, "text/plain") > strings.Index(text, "text/html") {
		t.Error("Plain part must come before the HTML part")
	}
}

func TestBuildMIME_PlainOnly(t *testing.T) {
	raw, err := BuildMIME("", Message{To: []string{"x@example.com"}, Subject: "Hi", PlainBody: "body"}, time.Now())
	if err != nil {
		t.Fatalf("BuildMIME failed: %v", err)
	}
	text := string(raw)
	if strings.Contains(text, "multipart") || !strings.HasSuffix(text, "\r\n\r\nbody") {
		t.Errorf("Unexpected plain message %q", text)
	}
}

func TestBuildMIME_NoRecipients(t *testing.T) {
	if _, err := BuildMIME("", Message{Subject: "x"}, time.Now()); err == nil {
		t.Error("Expected error without recipients")
	}
}

func TestSMTPSender_Send(t *testing.T) {
	sender, err := NewSMTPSender("smtp.example.com", 0, "user", "pass", "bot@example.com")
	if err != nil {
		t.Fatalf("NewSMTPSender failed: %v", err)
	}

	var gotAddr, gotFrom string
	var gotTo []string
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		if a == nil {
			t.Error("Expected auth when a username is set")
		}
		return nil
	}

	msg := Message{To: []string{"lead@example.com"}, Subject: "s", PlainBody: "p"}
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotFrom != "bot@example.com" || len(gotTo) != 1 {
		t.Errorf("Unexpected delivery addr=%s from=%s to=%v", gotAddr, gotFrom, gotTo)
	}
}

func TestSMTPSender_SendError(t *testing.T) {
	sender, _ := NewSMTPSender("smtp.example.com", 25, "", "", "bot@example.com")
	relayErr := errors.New("relay denied")
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return relayErr
	}

	err := sender.Send(context.Background(), Message{To: []string{"x@example.com"}})
	if !errors.Is(err, relayErr) {
		t.Errorf("Expected wrapped relay error, got %v", err)
	}
}

func TestNewSMTPSender_Validation(t *testing.T) {
	if _, err := NewSMTPSender("", 25, "", "", "bot@example.com"); err == nil {
		t.Error("Expected error without host")
	}
	if _, err := NewSMTPSender("smtp.example.com", 25, "", "", ""); err == nil {
		t.Error("Expected error without from address")
	}
}

func TestLogSender(t *testing.T) {
	sender := &LogSender{}
	_ = sender.Send(context.Background(), Message{To: []string{"x@example.com"}, Subject: "s"})
	if len(sender.Sent) != 1 || sender.Sent[0].Subject != "s" {
		t.Errorf("Expected message recorded, got %+v", sender.Sent)
	}
}
