package transcript

import (
	"context"
	"podbrief/internal/core"
	"podbrief/internal/logger"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Thresholds for the description-based fallback. These are length heuristics
// only; a long agenda can be mistaken for a transcript.
const (
	descriptionTranscriptMin = 500
	linkedDocumentMin        = 100
	indicatorDescriptionMin  = 200
)

var docLinkRegex = regexp.MustCompile(`https://docs\.google\.com/document/d/([a-zA-Z0-9_-]+)`)

var transcriptIndicators = []string{"transcript", "notes", "summary", "minutes", "meeting notes"}

// findInDescription works only from data already on the calendar event.
func (m *Matcher) findInDescription(ctx context.Context, meeting core.Meeting) (string, bool) {
	description := meeting.Description
	length := utf8.RuneCountInString(description)

	if length > descriptionTranscriptMin {
		logger.Info("Using long event description as transcript", "meeting", meeting.Title, "characters", length)
		return description, true
	}

	for _, docID := range LinkedDocumentIDs(description) {
		logger.Info("Found document link in description", "meeting", meeting.Title, "document_id", docID)
		text, ok := m.resolver.Resolve(ctx, core.DocumentSummary{ID: docID})
		if !ok {
			logger.Warn("Could not access linked document", "document_id", docID)
			continue
		}
		if utf8.RuneCountInString(text) > linkedDocumentMin {
			logger.Info("Extracted content from linked document", "document_id", docID, "characters", len(text))
			return text, true
		}
	}

	searchText := strings.ToLower(meeting.Title + " " + description)
	for _, indicator := range transcriptIndicators {
		if strings.Contains(searchText, indicator) && length > indicatorDescriptionMin {
			logger.Info("Found transcript indicator in event, using description as transcript", "meeting", meeting.Title, "indicator", indicator)
			return description, true
		}
	}

	logger.Info("No transcript found using alternative methods", "meeting", meeting.Title)
	return "", false
}

// LinkedDocumentIDs extracts Google Docs IDs from text in order of appearance.
func LinkedDocumentIDs(text string) []string {
	matches := docLinkRegex.FindAllStringSubmatch(text, -1)
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match[1])
	}
	return ids
}
