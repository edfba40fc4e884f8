package docs

import (
	"podbrief/internal/core"
	"regexp"
	"strings"
	"time"
)

const (
	headerDateLayout  = "Jan 02, 2006"
	archiveDateLayout = "Monday, January 02, 2006 03:04 PM"
	archiveRuleWidth  = 80
	bulletPrefix      = "• "
)

var (
	sectionTitleRegex = regexp.MustCompile(`^\*\*(.*?)\*\*:?$`)
	bulletRegex       = regexp.MustCompile(`^\*\s*`)
	numberedRegex     = regexp.MustCompile(`^\d+\.\s*`)
)

// MeetingHeader is the HEADING3 line that opens a meeting's summary.
func MeetingHeader(meeting core.Meeting, loc *time.Location) Block {
	return Block{
		Kind: KindHeading3,
		Text: meeting.Title + " - " + inLocation(meeting.StartTime, loc).Format(headerDateLayout),
	}
}

// ConciseSummaryBlocks converts the concise summary markup into blocks.
// "**Title:**" lines become bold HEADING4, "* x" and "1. x" lines become
// "• x" paragraphs, blank lines are dropped.
func ConciseSummaryBlocks(summary string) []Block {
	var blocks []Block
	for _, raw := range strings.Split(summary, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case sectionTitleRegex.MatchString(line):
			blocks = append(blocks, Block{
				Kind: KindHeading4,
				Text: sectionTitleRegex.ReplaceAllString(line, "$1"),
				Bold: true,
			})
		case bulletRegex.MatchString(line):
			blocks = append(blocks, Block{Kind: KindBullet, Text: bulletPrefix + bulletRegex.ReplaceAllString(line, "")})
		case numberedRegex.MatchString(line):
			blocks = append(blocks, Block{Kind: KindBullet, Text: bulletPrefix + numberedRegex.ReplaceAllString(line, "")})
		default:
			blocks = append(blocks, Block{Kind: KindParagraph, Text: line})
		}
	}
	return blocks
}

// WeeklySummaryBlocks is the full entry for one meeting in the weekly document.
func WeeklySummaryBlocks(meeting core.Meeting, concise string, loc *time.Location) []Block {
	return append([]Block{MeetingHeader(meeting, loc)}, ConciseSummaryBlocks(concise)...)
}

// ArchiveBlocks frames a raw transcript for the archive document.
func ArchiveBlocks(record core.MeetingRecord, loc *time.Location) []Block {
	rule := strings.Repeat("=", archiveRuleWidth)
	title := record.Title + " - " + inLocation(record.StartTime, loc).Format(archiveDateLayout)
	return []Block{
		{Kind: KindParagraph, Text: rule},
		{Kind: KindParagraph, Text: title},
		{Kind: KindParagraph, Text: rule},
		{Kind: KindParagraph, Text: record.Transcript},
		{Kind: KindRule},
	}
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
