package google

import (
	"context"
	"fmt"
	"podbrief/internal/docs"
	"strings"
	"unicode/utf16"

	docsapi "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// ruleText stands in for a horizontal rule, which the Docs API cannot insert.
var ruleText = strings.Repeat("─", 40)

var namedStyles = map[docs.Kind]string{
	docs.KindHeading2: "HEADING_2",
	docs.KindHeading3: "HEADING_3",
	docs.KindHeading4: "HEADING_4",
}

// DocsClient reads and edits Google Docs.
type DocsClient struct {
	svc *docsapi.Service
}

// NewDocsClient creates a docs adapter.
func NewDocsClient(ctx context.Context, opts ...option.ClientOption) (*DocsClient, error) {
	svc, err := docsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}
	return &DocsClient{svc: svc}, nil
}

// paragraph is a block with its position in the document.
type paragraph struct {
	block      docs.Block
	startIndex int64
	endIndex   int64
}

func (c *DocsClient) load(ctx context.Context, docID string) (*docsapi.Document, error) {
	doc, err := c.svc.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("get document "+docID, err)
	}
	return doc, nil
}

// GetDocumentText returns the body text, tables included.
func (c *DocsClient) GetDocumentText(ctx context.Context, id string) (string, error) {
	doc, err := c.load(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.Body == nil {
		return "", nil
	}

	var sb strings.Builder
	writeContent(&sb, doc.Body.Content)
	return sb.String(), nil
}

func writeContent(sb *strings.Builder, content []*docsapi.StructuralElement) {
	for _, el := range content {
		switch {
		case el.Paragraph != nil:
			sb.WriteString(paragraphText(el.Paragraph))
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					writeContent(sb, cell.Content)
				}
			}
		case el.TableOfContents != nil:
			writeContent(sb, el.TableOfContents.Content)
		}
	}
}

func paragraphText(p *docsapi.Paragraph) string {
	var sb strings.Builder
	for _, el := range p.Elements {
		if el.TextRun != nil {
			sb.WriteString(el.TextRun.Content)
		}
	}
	return sb.String()
}

func paragraphs(doc *docsapi.Document) []paragraph {
	if doc.Body == nil {
		return nil
	}
	var out []paragraph
	for _, el := range doc.Body.Content {
		if el.Paragraph == nil {
			continue
		}
		out = append(out, paragraph{
			block:      toBlock(el.Paragraph),
			startIndex: el.StartIndex,
			endIndex:   el.EndIndex,
		})
	}
	return out
}

func toBlock(p *docsapi.Paragraph) docs.Block {
	text := strings.TrimSuffix(paragraphText(p), "\n")
	block := docs.Block{Kind: docs.KindParagraph, Text: text}

	style := ""
	if p.ParagraphStyle != nil {
		style = p.ParagraphStyle.NamedStyleType
	}
	for kind, named := range namedStyles {
		if style == named {
			block.Kind = kind
		}
	}
	if block.Kind == docs.KindParagraph && (p.Bullet != nil || strings.HasPrefix(text, "• ")) {
		block.Kind = docs.KindBullet
	}
	if text == ruleText {
		block.Kind = docs.KindRule
	}
	return block
}

func (c *DocsClient) ReadBlocks(ctx context.Context, docID string) ([]docs.Block, error) {
	doc, err := c.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	paras := paragraphs(doc)
	blocks := make([]docs.Block, len(paras))
	for i, p := range paras {
		blocks[i] = p.block
	}
	return blocks, nil
}

// InsertBlocks inserts before the paragraph at index.
func (c *DocsClient) InsertBlocks(ctx context.Context, docID string, index int, blocks []docs.Block) error {
	doc, err := c.load(ctx, docID)
	if err != nil {
		return err
	}
	paras := paragraphs(doc)
	if index >= len(paras) {
		return c.appendTo(ctx, docID, paras, blocks)
	}
	if index < 0 {
		return fmt.Errorf("insert index %d out of range", index)
	}
	return c.batchUpdate(ctx, docID, buildInsertRequests(paras[index].startIndex, blocks, false))
}

// AppendBlocks adds blocks after the last paragraph.
func (c *DocsClient) AppendBlocks(ctx context.Context, docID string, blocks []docs.Block) error {
	doc, err := c.load(ctx, docID)
	if err != nil {
		return err
	}
	return c.appendTo(ctx, docID, paragraphs(doc), blocks)
}

func (c *DocsClient) appendTo(ctx context.Context, docID string, paras []paragraph, blocks []docs.Block) error {
	if len(paras) == 0 {
		return c.batchUpdate(ctx, docID, buildInsertRequests(1, blocks, false))
	}
	// The final newline of a document body cannot be moved.
	last := paras[len(paras)-1]
	return c.batchUpdate(ctx, docID, buildInsertRequests(last.endIndex-1, blocks, true))
}

func (c *DocsClient) batchUpdate(ctx context.Context, docID string, requests []*docsapi.Request) error {
	if len(requests) == 0 {
		return nil
	}
	_, err := c.svc.Documents.BatchUpdate(docID, &docsapi.BatchUpdateDocumentRequest{Requests: requests}).Context(ctx).Do()
	return wrapAPIError("update document "+docID, err)
}

// buildInsertRequests inserts blocks as consecutive paragraphs at index.
// With leadingNewline the text is placed after the paragraph ending at
// index; otherwise it is placed before the paragraph starting there.
func buildInsertRequests(index int64, blocks []docs.Block, leadingNewline bool) []*docsapi.Request {
	if len(blocks) == 0 {
		return nil
	}

	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = blockText(b)
	}

	var text string
	if leadingNewline {
		text = "\n" + strings.Join(texts, "\n")
	} else {
		text = strings.Join(texts, "\n") + "\n"
	}

	requests := []*docsapi.Request{{
		InsertText: &docsapi.InsertTextRequest{
			Text:     text,
			Location: &docsapi.Location{Index: index},
		},
	}}

	start := index
	if leadingNewline {
		start++
	}
	total := start + utf16Len(strings.Join(texts, "\n"))
	requests = append(requests, &docsapi.Request{
		UpdateTextStyle: &docsapi.UpdateTextStyleRequest{
			Range:     &docsapi.Range{StartIndex: start, EndIndex: total},
			TextStyle: &docsapi.TextStyle{Bold: false, ForceSendFields: []string{"Bold"}},
			Fields:    "bold",
		},
	})
	if total == start {
		requests = requests[:1]
	}

	pos := start
	for i, b := range blocks {
		length := utf16Len(texts[i])
		named := namedStyles[b.Kind]
		if named == "" {
			named = "NORMAL_TEXT"
		}
		requests = append(requests, &docsapi.Request{
			UpdateParagraphStyle: &docsapi.UpdateParagraphStyleRequest{
				Range:          &docsapi.Range{StartIndex: pos, EndIndex: pos + length + 1},
				ParagraphStyle: &docsapi.ParagraphStyle{NamedStyleType: named},
				Fields:         "namedStyleType",
			},
		})
		if b.Bold && length > 0 {
			requests = append(requests, &docsapi.Request{
				UpdateTextStyle: &docsapi.UpdateTextStyleRequest{
					Range:     &docsapi.Range{StartIndex: pos, EndIndex: pos + length},
					TextStyle: &docsapi.TextStyle{Bold: true},
					Fields:    "bold",
				},
			})
		}
		pos += length + 1
	}

	return requests
}

func blockText(b docs.Block) string {
	if b.Kind == docs.KindRule {
		return ruleText
	}
	return sanitize(b.Text)
}

// sanitize drops control characters the Docs API rejects.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// utf16Len is the length the Docs API uses for indexes.
func utf16Len(s string) int64 {
	return int64(len(utf16.Encode([]rune(s))))
}
