package docs

import (
	"context"
	"fmt"
	"strings"
)

// DefaultSection is the heading that collects meeting summaries.
const DefaultSection = "POD Meetings"

// sectionBoundary marks the start of the next section in hand-edited documents.
const sectionBoundary = "##"

// Placement is where a section insert will land.
type Placement struct {
	Index         int  // Block index to insert at
	CreateSection bool // The section heading must be appended first
}

// FindPlacement locates the insertion point for section in blocks: just
// before the first paragraph after the section heading that contains "##",
// or at the end of the document. A missing section is created at the end.
func FindPlacement(blocks []Block, section string) Placement {
	header := -1
	for i, b := range blocks {
		if strings.Contains(b.Text, section) {
			header = i
			break
		}
	}
	if header == -1 {
		return Placement{Index: len(blocks), CreateSection: true}
	}

	for i := header + 1; i < len(blocks); i++ {
		if strings.Contains(blocks[i].Text, sectionBoundary) && blocks[i].Text != section {
			return Placement{Index: i}
		}
	}
	return Placement{Index: len(blocks)}
}

// InsertIntoSection writes blocks at the end of section in docID.
func InsertIntoSection(ctx context.Context, w Writer, docID, section string, blocks []Block) error {
	if section == "" {
		section = DefaultSection
	}

	existing, err := w.ReadBlocks(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", docID, err)
	}

	placement := FindPlacement(existing, section)
	if placement.CreateSection {
		withHeader := append([]Block{{Kind: KindHeading2, Text: section}}, blocks...)
		if err := w.AppendBlocks(ctx, docID, withHeader); err != nil {
			return fmt.Errorf("failed to append section to document %s: %w", docID, err)
		}
		return nil
	}

	if placement.Index >= len(existing) {
		if err := w.AppendBlocks(ctx, docID, blocks); err != nil {
			return fmt.Errorf("failed to append to document %s: %w", docID, err)
		}
		return nil
	}

	if err := w.InsertBlocks(ctx, docID, placement.Index, blocks); err != nil {
		return fmt.Errorf("failed to insert into document %s: %w", docID, err)
	}
	return nil
}
