package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"podbrief/internal/core"
	"strings"
	"time"
)

const (
	// DefaultSubjectPrefix opens every summary subject line.
	DefaultSubjectPrefix = "[Pod Update]"
	// ErrorSubject is the subject of the failure notification.
	ErrorSubject = "Daily Pod Automation Failed"

	subjectDateLayout = "January 02, 2006"
	generatedByLine   = "This summary was automatically generated by the Pod Leader Automation system."
)

// Message is a single outgoing email.
type Message struct {
	To        []string
	Subject   string
	PlainBody string
	HTMLBody  string // Optional; empty sends plain text only
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EmailTemplate holds the presentation settings of the summary email
type EmailTemplate struct {
	Name        string
	HeaderColor string
	AccentColor string
	TextColor   string
	Background  string
	FontFamily  string
}

// GetDefaultEmailTemplate returns the standard summary style
func GetDefaultEmailTemplate() *EmailTemplate {
	return &EmailTemplate{
		Name:        "default",
		HeaderColor: "#2c3e50",
		AccentColor: "#3498db",
		TextColor:   "#333",
		Background:  "#f8f9fa",
		FontFamily:  "Arial, sans-serif",
	}
}

// SummaryData is everything the summary email shows
type SummaryData struct {
	Title       string
	Date        string
	SummaryHTML string // Cleaned HTML fragment
	SummaryText string // Same content without markup
	LeaderEmail string
}

// NewSummaryData prepares the email data for a meeting.
func NewSummaryData(meeting core.Meeting, summaryHTML, summaryText, leader string, loc *time.Location) SummaryData {
	start := meeting.StartTime
	if loc != nil {
		start = start.In(loc)
	}
	return SummaryData{
		Title:       meeting.Title,
		Date:        start.Format(subjectDateLayout),
		SummaryHTML: summaryHTML,
		SummaryText: summaryText,
		LeaderEmail: leader,
	}
}

const summaryHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: {{.Template.FontFamily}}; line-height: 1.6; color: {{.Template.TextColor}}; margin: 0; padding: 20px; }
    h1 { color: {{.Template.HeaderColor}}; margin: 0 0 10px 0; }
    h2 { color: {{.Template.HeaderColor}}; border-bottom: 2px solid {{.Template.AccentColor}}; padding-bottom: 5px; margin-top: 25px; }
    .header { background-color: {{.Template.Background}}; padding: 20px; border-left: 4px solid {{.Template.AccentColor}}; margin-bottom: 20px; border-radius: 4px; }
    .content { background-color: #fff; padding: 0; }
    .footer { margin-top: 30px; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="header">
    <h1>{{.Data.Title}}</h1>
    <p style="margin: 5px 0 0 0; color: #666; font-size: 14px;">{{.Data.Date}}</p>
  </div>

  <div class="content">
    {{.Summary}}
  </div>

  <div class="footer">
    <p>{{.GeneratedBy}}</p>
    <p>Questions? Contact {{.Data.LeaderEmail}}</p>
  </div>
</body>
</html>
`

var summaryTmpl = template.Must(template.New("summary").Parse(summaryHTMLTemplate))

// RenderSummaryHTML renders the HTML body of the summary email.
func RenderSummaryHTML(data SummaryData, emailTemplate *EmailTemplate) (string, error) {
	if emailTemplate == nil {
		emailTemplate = GetDefaultEmailTemplate()
	}

	templateData := struct {
		Data        SummaryData
		Template    *EmailTemplate
		Summary     template.HTML
		GeneratedBy string
	}{
		Data:        data,
		Template:    emailTemplate,
		Summary:     template.HTML(data.SummaryHTML),
		GeneratedBy: generatedByLine,
	}

	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, templateData); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return buf.String(), nil
}

// RenderSummaryPlain renders the plain text alternative.
func RenderSummaryPlain(data SummaryData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s - %s\n\n", data.Title, data.Date)
	sb.WriteString(data.SummaryText)
	sb.WriteString("\n\n")
	sb.WriteString(generatedByLine)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Questions? Contact %s\n", data.LeaderEmail)
	return sb.String()
}

// Subject builds "<prefix> <title> - <January 02, 2006>".
func Subject(prefix string, data SummaryData) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return fmt.Sprintf("%s %s - %s", prefix, data.Title, data.Date)
}

// Recipients returns every attendee except the leader when all is set,
// otherwise only the leader.
func Recipients(attendees []string, leader string, all bool) []string {
	if !all {
		if leader == "" {
			return nil
		}
		return []string{leader}
	}

	recipients := make([]string, 0, len(attendees))
	for _, addr := range attendees {
		if addr == "" || strings.EqualFold(addr, leader) {
			continue
		}
		recipients = append(recipients, addr)
	}
	return recipients
}

// SummaryMessage assembles the complete summary email.
func SummaryMessage(to []string, prefix string, data SummaryData, emailTemplate *EmailTemplate) (Message, error) {
	htmlBody, err := RenderSummaryHTML(data, emailTemplate)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:        to,
		Subject:   Subject(prefix, data),
		PlainBody: RenderSummaryPlain(data),
		HTMLBody:  htmlBody,
	}, nil
}

// ErrorNotification builds the plain text failure report for the leader.
func ErrorNotification(leader, subject, details string, at time.Time) Message {
	if subject == "" {
		subject = ErrorSubject
	}

	var sb strings.Builder
	sb.WriteString("An error occurred in the Pod Leader Automation system:\n\n")
	sb.WriteString(subject)
	sb.WriteString("\n\nError Details:\n")
	sb.WriteString(details)
	sb.WriteString("\n\nTime: ")
	sb.WriteString(at.Format(time.RFC1123))
	sb.WriteString("\n\nPlease check the podbrief logs for more details.\n")

	return Message{
		To:        []string{leader},
		Subject:   subject,
		PlainBody: sb.String(),
	}
}
