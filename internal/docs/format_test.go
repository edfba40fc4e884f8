package docs

import (
	"podbrief/internal/core"
	"strings"
	"testing"
	"time"
)

func TestConciseSummaryBlocks(t *testing.T) {
	summary := `**Highlights:**
* Shipped the importer
*Closed two incidents

**Low Lights:**
1. Flaky CI
Free-form remark

   `

	blocks := ConciseSummaryBlocks(summary)
	expected := []Block{
		{Kind: KindHeading4, Text: "Highlights:", Bold: true},
		{Kind: KindBullet, Text: "• Shipped the importer"},
		{Kind: KindBullet, Text: "• Closed two incidents"},
		{Kind: KindHeading4, Text: "Low Lights:", Bold: true},
		{Kind: KindBullet, Text: "• Flaky CI"},
		{Kind: KindParagraph, Text: "Free-form remark"},
	}

	if len(blocks) != len(expected) {
		t.Fatalf("Expected %d blocks, got %d: %+v", len(expected), len(blocks), blocks)
	}
	for i := range expected {
		if blocks[i] != expected[i] {
			t.Errorf("Block %d: expected %+v, got %+v", i, expected[i], blocks[i])
		}
	}
}

func TestConciseSummaryBlocks_SectionWithoutColon(t *testing.T) {
	blocks := ConciseSummaryBlocks("**Decisions**")
	if len(blocks) != 1 || blocks[0].Text != "Decisions" || blocks[0].Kind != KindHeading4 {
		t.Errorf("Unexpected blocks %+v", blocks)
	}
}

func TestMeetingHeader(t *testing.T) {
	meeting := core.Meeting{Title: "Pod Weekly Sync", StartTime: time.Date(2025, 9, 23, 23, 30, 0, 0, time.UTC)}

	header := MeetingHeader(meeting, nil)
	if header.Kind != KindHeading3 || header.Text != "Pod Weekly Sync - Sep 23, 2025" {
		t.Errorf("Unexpected header %+v", header)
	}

	tokyo := time.FixedZone("JST", 9*60*60)
	if got := MeetingHeader(meeting, tokyo).Text; got != "Pod Weekly Sync - Sep 24, 2025" {
		t.Errorf("Expected date in the configured zone, got %q", got)
	}
}

func TestWeeklySummaryBlocks(t *testing.T) {
	meeting := core.Meeting{Title: "Standup", StartTime: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)}
	blocks := WeeklySummaryBlocks(meeting, "**Highlights:**\n* one", time.UTC)

	if len(blocks) != 3 || blocks[0].Kind != KindHeading3 || blocks[2].Text != "• one" {
		t.Errorf("Unexpected blocks %+v", blocks)
	}
}

func TestArchiveBlocks(t *testing.T) {
	record := core.MeetingRecord{
		Meeting:    core.Meeting{Title: "Standup", StartTime: time.Date(2025, 1, 6, 15, 4, 0, 0, time.UTC)},
		Transcript: "full transcript",
	}
	blocks := ArchiveBlocks(record, time.UTC)

	rule := strings.Repeat("=", 80)
	if len(blocks) != 5 {
		t.Fatalf("Expected 5 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != rule || blocks[2].Text != rule {
		t.Error("Expected header framed by 80 '=' characters")
	}
	if blocks[1].Text != "Standup - Monday, January 06, 2025 03:04 PM" {
		t.Errorf("Unexpected archive title %q", blocks[1].Text)
	}
	if blocks[3].Text != "full transcript" {
		t.Errorf("Expected transcript block, got %q", blocks[3].Text)
	}
	if blocks[4].Kind != KindRule {
		t.Errorf("Expected trailing rule, got %+v", blocks[4])
	}
}
