package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// Non-greedy up to the next fence, so an unterminated fence never matches.
var codeBlockRegex = regexp.MustCompile("(?s)```([^\\s`]*)[^\\n]*\\n(.*?)```")

// ExtractCodeBlocks returns every fenced code block in document order
func ExtractCodeBlocks(text string) []CodeBlock {
	matches := codeBlockRegex.FindAllStringSubmatch(strings.ReplaceAll(text, "\r\n", "\n"), -1)
	blocks := make([]CodeBlock, 0, len(matches))
	for _, m := range matches {
		lang := m[1]
		if lang == "" {
			lang = DefaultCodeLanguage
		}
		blocks = append(blocks, CodeBlock{
			Language: lang,
			Code:     strings.TrimSpace(m[2]),
		})
	}
	return blocks
}

// FormatCodeBlocks renders at most max blocks back into fenced markdown.
// max <= 0 renders all of them.
func FormatCodeBlocks(blocks []CodeBlock, max int) string {
	if max > 0 && len(blocks) > max {
		blocks = blocks[:max]
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, fmt.Sprintf("```%s\n%s\n```", b.Language, b.Code))
	}
	return strings.Join(parts, "\n\n")
}
