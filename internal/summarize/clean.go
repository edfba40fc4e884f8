package summarize

import (
	"fmt"
	"podbrief/internal/core"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var (
	fenceHTMLRegex  = regexp.MustCompile("```html\\s*")
	fenceRegex      = regexp.MustCompile("```\\s*")
	htmlTagRegex    = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
	sectionRegex    = regexp.MustCompile(`(?m)^\s*\*\*(.*?)\*\*:?\s*$`)
)

// CleanHTML strips code fences and document wrappers from the detailed
// summary, returning an HTML fragment. Output that contains no HTML tags is
// treated as Markdown and rendered.
func CleanHTML(raw string) (string, error) {
	text := fenceHTMLRegex.ReplaceAllString(raw, "")
	text = fenceRegex.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("detailed summary is empty: %w", core.ErrMalformedSummary)
	}

	if !htmlTagRegex.MatchString(text) {
		return renderMarkdown(text), nil
	}

	lower := strings.ToLower(text)
	if !strings.Contains(lower, "<html") && !strings.Contains(lower, "<body") {
		return text, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("failed to parse detailed summary: %w", err)
	}
	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to render detailed summary: %w", err)
	}
	return strings.TrimSpace(body), nil
}

// PlainText drops all markup from an HTML fragment.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	text := strings.Join(lines, "\n")
	return strings.TrimSpace(blankLinesRegex.ReplaceAllString(text, "\n\n"))
}

// CheckConcise rejects a concise summary that has no bold section headers.
func CheckConcise(summary string) error {
	if strings.TrimSpace(summary) == "" {
		return fmt.Errorf("concise summary is empty: %w", core.ErrMalformedSummary)
	}
	if !sectionRegex.MatchString(summary) {
		return fmt.Errorf("concise summary has no sections: %w", core.ErrMalformedSummary)
	}
	return nil
}

func renderMarkdown(text string) string {
	extensions := parser.CommonExtensions
	mdParser := parser.NewWithExtensions(extensions)

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})

	return strings.TrimSpace(string(markdown.ToHTML([]byte(text), mdParser, renderer)))
}
