// Package docs models target documents as sequences of typed paragraph
// blocks and knows where meeting summaries and transcripts go in them.
package docs

import (
	"context"
	"strings"
)

// Kind is the paragraph style of a block.
type Kind string

const (
	KindHeading2  Kind = "heading2"
	KindHeading3  Kind = "heading3"
	KindHeading4  Kind = "heading4"
	KindParagraph Kind = "paragraph"
	KindBullet    Kind = "bullet"
	KindRule      Kind = "rule"
)

// Block is one paragraph of a document.
type Block struct {
	Kind Kind
	Text string
	Bold bool
}

// Heading reports whether the block is any heading level.
func (b Block) Heading() bool {
	return b.Kind == KindHeading2 || b.Kind == KindHeading3 || b.Kind == KindHeading4
}

// Writer reads and edits a document at paragraph granularity. Indexes
// refer to positions in the slice returned by ReadBlocks.
type Writer interface {
	ReadBlocks(ctx context.Context, docID string) ([]Block, error)
	InsertBlocks(ctx context.Context, docID string, index int, blocks []Block) error
	AppendBlocks(ctx context.Context, docID string, blocks []Block) error
}

// Text joins block texts with newlines.
func Text(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}
