package markdown

import "strings"

// FormatOutline renders headers as a bullet list indented by level
func FormatOutline(headers []Header) string {
	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Repeat("  ", h.Level-1))
		b.WriteString("- ")
		b.WriteString(StripMarkdownLinks(h.Text))
	}
	return b.String()
}
