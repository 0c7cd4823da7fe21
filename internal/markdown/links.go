package markdown

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)

// StripMarkdownLinks removes markdown link syntax, keeping only the text
// Example: "[Text](url)" -> "Text"
func StripMarkdownLinks(s string) string {
	return markdownLinkRegex.ReplaceAllString(s, "$1")
}

// ExtractLinks walks the markdown AST and returns relative links to other
// markdown pages, deduplicated by destination, in document order.
// Fragments and query strings are dropped from destinations.
func ExtractLinks(source string) []Link {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var links []Link
	seen := make(map[string]bool)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest, ok := relativePageLink(string(link.Destination))
		if ok && !seen[dest] {
			seen[dest] = true
			links = append(links, Link{
				Text:        strings.TrimSpace(string(link.Text(src))),
				Destination: dest,
			})
		}
		return ast.WalkSkipChildren, nil
	})

	return links
}

// relativePageLink reports whether dest points at another markdown page
// without a scheme or host, returning it without fragment or query.
func relativePageLink(dest string) (string, bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return "", false
	}

	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}

	p, err := url.PathUnescape(u.Path)
	if err != nil {
		p = u.Path
	}
	if !strings.HasSuffix(strings.ToLower(p), ".md") {
		return "", false
	}
	return p, true
}
