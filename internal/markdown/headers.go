package markdown

import (
	"regexp"
	"strings"
)

var headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// splitLines splits text into lines, dropping carriage returns
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// fencedLines marks the lines that belong to a terminated fenced code block,
// fence lines included. An opening fence without a closing one marks nothing.
func fencedLines(lines []string) []bool {
	fenced := make([]bool, len(lines))
	open := -1
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimLeft(line, " \t"), fence) {
			continue
		}
		if open < 0 {
			open = i
			continue
		}
		for j := open; j <= i; j++ {
			fenced[j] = true
		}
		open = -1
	}
	return fenced
}

// ExtractHeaders returns every heading in document order.
// Lines inside fenced code blocks are not headings (shell comments look like H1s).
func ExtractHeaders(text string) []Header {
	lines := splitLines(text)
	fenced := fencedLines(lines)

	var headers []Header
	for i, line := range lines {
		if fenced[i] {
			continue
		}
		m := headerRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(m[2])
		if title == "" {
			continue
		}
		headers = append(headers, Header{
			Level: len(m[1]),
			Text:  title,
			Line:  i + 1,
		})
	}
	return headers
}

// ExtractTitle returns the text of the first H1, or UntitledTitle
func ExtractTitle(text string) string {
	for _, h := range ExtractHeaders(text) {
		if h.Level == 1 {
			return h.Text
		}
	}
	return UntitledTitle
}

// FindNearestSection returns the text of the last header at or before targetLine.
// headers must be in document order, as returned by ExtractHeaders.
func FindNearestSection(headers []Header, targetLine int) (string, bool) {
	nearest := ""
	found := false
	for _, h := range headers {
		if h.Line > targetLine {
			break
		}
		nearest = h.Text
		found = true
	}
	return nearest, found
}

// sectionEnd returns the 1-based line where the section opened by headers[i] stops (exclusive)
func sectionEnd(headers []Header, i, totalLines int) int {
	for j := i + 1; j < len(headers); j++ {
		if headers[j].Level <= headers[i].Level {
			return headers[j].Line
		}
	}
	return totalLines + 1
}

func sliceSection(lines []string, headers []Header, i int) string {
	start := headers[i].Line
	end := sectionEnd(headers, i, len(lines))
	return strings.TrimRight(strings.Join(lines[start-1:end-1], "\n"), " \t\n")
}

// ExtractSection returns the first section whose header contains name,
// compared case-insensitively. The section runs up to the next header of the
// same or a higher level.
func ExtractSection(text, name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}

	headers := ExtractHeaders(text)
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h.Text), needle) {
			return sliceSection(splitLines(text), headers, i), true
		}
	}
	return "", false
}

// SectionAt returns the section opened by headers[i].
// headers must come from ExtractHeaders(text).
func SectionAt(text string, headers []Header, i int) string {
	if i < 0 || i >= len(headers) {
		return ""
	}
	return sliceSection(splitLines(text), headers, i)
}

// SectionRange returns the [start, end) line range of the section opened by headers[i]
func SectionRange(headers []Header, i, totalLines int) (int, int) {
	return headers[i].Line, sectionEnd(headers, i, totalLines)
}

// LineCount returns the number of lines ExtractHeaders sees in text
func LineCount(text string) int {
	return len(splitLines(text))
}
