package content

import (
	"regexp"
	"strings"
)

var (
	scriptBlockRegex = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRegex  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRegex         = regexp.MustCompile(`<[^>]*>`)
)

// entityReplacements are applied in order, one pass each.
var entityReplacements = [][2]string{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

// ExtractText turns an HTML export into a single line of plain text.
// Script and style blocks are dropped with their content, remaining tags are
// stripped, a fixed set of entities is decoded and whitespace is collapsed.
func ExtractText(html string) string {
	text := scriptBlockRegex.ReplaceAllString(html, "")
	text = styleBlockRegex.ReplaceAllString(text, "")
	text = tagRegex.ReplaceAllString(text, "")

	for _, entity := range entityReplacements {
		text = strings.ReplaceAll(text, entity[0], entity[1])
	}

	return strings.Join(strings.Fields(text), " ")
}
