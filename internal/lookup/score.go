package lookup

import (
	"path"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/search"
)

// Score weights. Only their relative order matters: title match beats the
// folder index page, which beats a path segment match, which beats a
// section vocabulary match.
const (
	titleBonus     = 100
	indexPageBonus = 200
	segmentBonus   = 50
	sectionBonus   = 10
)

// PriorityTerms are the words that mark a section as exploitation material
var PriorityTerms = []string{
	"exploitation",
	"exploit",
	"example",
	"poc",
	"proof of concept",
	"payload",
	"bypass",
	"attack",
	"abuse",
	"technique",
}

// IsPriority reports whether s mentions any priority term, case-insensitively
func IsPriority(s string) bool {
	lower := strings.ToLower(s)
	for _, term := range PriorityTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Score rates how well candidate answers topic when it was found by term.
// indexFile is the folder index page name (README.md).
func Score(candidate search.GroupedResult, term, topic, indexFile string) int {
	score := candidate.MatchCount

	t := strings.ToLower(strings.TrimSpace(term))
	tp := strings.ToLower(strings.TrimSpace(topic))
	file := strings.ToLower(candidate.File)
	title := strings.ToLower(candidate.Title)
	pageTopic := PageTopic(candidate.File, indexFile)
	slug := slugify(tp)

	if containsAny(title, t, tp) || containsAny(pageTopic, t, tp) {
		score += titleBonus
	}
	if strings.EqualFold(path.Base(candidate.File), indexFile) && (strings.Contains(file, tp) || strings.Contains(file, slug)) {
		score += indexPageBonus
	}
	if hasSegment(file, slug) {
		score += segmentBonus
	}
	for _, section := range candidate.RelevantSections {
		if IsPriority(section) {
			score += sectionBonus
			break
		}
	}
	return score
}

// PageTopic derives a lower-case topic from a page path: the file name
// without extension, or the folder name for an index page. Hyphens and
// underscores read as spaces.
func PageTopic(file, indexFile string) string {
	base := path.Base(file)
	if strings.EqualFold(base, indexFile) {
		if dir := path.Dir(file); dir != "." && dir != "/" {
			base = path.Base(dir)
		}
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(base))
}

// hasSegment reports whether slug is a whole path segment of file, or a
// hyphen-delimited part of one
func hasSegment(file, slug string) bool {
	if slug == "" {
		return false
	}
	for _, segment := range strings.Split(file, "/") {
		segment = strings.TrimSuffix(segment, path.Ext(segment))
		if strings.Contains("-"+segment+"-", "-"+slug+"-") {
			return true
		}
	}
	return false
}

func slugify(s string) string {
	return strings.Join(strings.Fields(s), "-")
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}
