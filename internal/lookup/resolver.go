package lookup

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/corpus"
	"github.com/hacktricks-mcp/mcp-server/internal/docerr"
	"github.com/hacktricks-mcp/mcp-server/internal/markdown"
	"github.com/hacktricks-mcp/mcp-server/internal/search"
)

const (
	// DefaultCandidates is the number of grouped results scored per term
	DefaultCandidates = 10

	// DefaultMaxCodeBlocks caps the code blocks returned for the best page
	DefaultMaxCodeBlocks = 5

	// NoSectionsFound is returned in place of sections when none qualified
	NoSectionsFound = "No exploitation sections found"

	// NoCodeFound is returned in place of code blocks when the page has none
	NoCodeFound = "No code examples found"

	minSectionLength = 50
	maxRelated       = 10
	sectionSeparator = "\n\n"
)

// GroupedSearcher runs a grouped search, as search.Aggregator does
type GroupedSearcher interface {
	SearchGrouped(ctx context.Context, query, category string, limit int) ([]search.GroupedResult, error)
}

// Result is the single best page for a topic with its most useful content
type Result struct {
	Topic       string   `json:"topic"`
	Terms       []string `json:"terms"`
	Page        string   `json:"page"`
	Title       string   `json:"title"`
	Score       int      `json:"score"`
	MatchedTerm string   `json:"matched_term"`
	Sections    string   `json:"sections"`
	CodeBlocks  string   `json:"code_blocks"`
	Related     []string `json:"related"`
}

// Options configures a Resolver. Zero values use the defaults.
type Options struct {
	Aliases       Aliases
	Candidates    int
	MaxCodeBlocks int
	Logger        *slog.Logger
}

// Resolver answers "how do I do X" with one page
type Resolver struct {
	searcher      GroupedSearcher
	corpus        *corpus.Corpus
	aliases       Aliases
	candidates    int
	maxCodeBlocks int
	logger        *slog.Logger
}

// NewResolver creates a Resolver searching with s and reading pages from c
func NewResolver(s GroupedSearcher, c *corpus.Corpus, opts Options) *Resolver {
	r := &Resolver{
		searcher:      s,
		corpus:        c,
		aliases:       opts.Aliases,
		candidates:    opts.Candidates,
		maxCodeBlocks: opts.MaxCodeBlocks,
		logger:        opts.Logger,
	}
	if r.aliases == nil {
		r.aliases = DefaultAliases()
	}
	if r.candidates <= 0 {
		r.candidates = DefaultCandidates
	}
	if r.maxCodeBlocks <= 0 {
		r.maxCodeBlocks = DefaultMaxCodeBlocks
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

type candidate struct {
	result search.GroupedResult
	term   string
	score  int
}

// Lookup expands topic through the alias table, scores the grouped results
// of every term and extracts the exploitation sections and code blocks of the
// best page. A term whose search fails is skipped.
func (r *Resolver) Lookup(ctx context.Context, topic, category string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, docerr.New(docerr.EmptyInput, "topic must not be empty")
	}
	if _, err := r.corpus.Dir(category); err != nil {
		return nil, err
	}

	terms := r.aliases.Expand(topic)
	best, found := r.selectBest(ctx, topic, category, terms)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, docerr.Newf(docerr.NotFound, "no results found for topic: %s", topic)
	}

	text, err := r.corpus.ReadPage(best.result.File)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Topic:       topic,
		Terms:       terms,
		Page:        best.result.File,
		Title:       markdown.ExtractTitle(text),
		Score:       best.score,
		MatchedTerm: best.term,
		Sections:    NoSectionsFound,
		CodeBlocks:  NoCodeFound,
		Related:     r.related(best.result.File, text),
	}
	if sections := ExploitSections(text); len(sections) > 0 {
		result.Sections = strings.Join(sections, sectionSeparator)
	}
	if blocks := markdown.ExtractCodeBlocks(text); len(blocks) > 0 {
		result.CodeBlocks = markdown.FormatCodeBlocks(blocks, r.maxCodeBlocks)
	}
	return result, nil
}

// selectBest folds the candidates of every term into a running best.
// Only a strictly greater score replaces the incumbent.
func (r *Resolver) selectBest(ctx context.Context, topic, category string, terms []string) (candidate, bool) {
	var best candidate
	found := false

	for _, term := range terms {
		if ctx.Err() != nil {
			break
		}
		results, err := r.searcher.SearchGrouped(ctx, term, category, r.candidates)
		if err != nil {
			r.logger.Debug("lookup term skipped", "topic", topic, "term", term, "error", err)
			continue
		}
		for _, res := range results {
			score := Score(res, term, topic, r.corpus.IndexFile())
			if score > best.score {
				best = candidate{result: res, term: term, score: score}
				found = true
			}
		}
	}
	return best, found
}

// ExploitSections extracts the sections whose header mentions a priority
// term. Sections shorter than a useful minimum and sections nested inside one
// already taken are skipped. When nothing qualifies, the section after the
// title is returned instead, provided the page has at least two headers.
func ExploitSections(text string) []string {
	headers := markdown.ExtractHeaders(text)
	total := markdown.LineCount(text)

	var sections []string
	coveredUntil := 0
	for i, h := range headers {
		if h.Line < coveredUntil || !IsPriority(h.Text) {
			continue
		}
		body := markdown.SectionAt(text, headers, i)
		if len(body) < minSectionLength {
			continue
		}
		sections = append(sections, body)
		_, coveredUntil = markdown.SectionRange(headers, i, total)
	}

	if len(sections) == 0 && len(headers) >= 2 {
		if body := markdown.SectionAt(text, headers, 1); body != "" {
			sections = append(sections, body)
		}
	}
	return sections
}

// related resolves the relative page links of page against its folder,
// keeping those that stay inside the corpus
func (r *Resolver) related(page, text string) []string {
	related := []string{}
	seen := map[string]bool{page: true}

	for _, link := range markdown.ExtractLinks(text) {
		if len(related) >= maxRelated {
			break
		}
		target := path.Join(path.Dir(page), link.Destination)
		if seen[target] {
			continue
		}
		if _, err := r.corpus.Resolve(target); err != nil {
			continue
		}
		seen[target] = true
		related = append(related, target)
	}
	return related
}
