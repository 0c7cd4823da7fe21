package search

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"sort"

	"github.com/hacktricks-mcp/mcp-server/internal/corpus"
	"github.com/hacktricks-mcp/mcp-server/internal/markdown"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultLimit is the number of grouped results returned when none is requested
	DefaultLimit = 20

	// DefaultMaxLimit caps caller-supplied limits
	DefaultMaxLimit = 50

	// DefaultReadConcurrency bounds parallel page reads while grouping
	DefaultReadConcurrency = 8

	// rawMatchFactor inflates the raw record cap so clustered matches still group well
	rawMatchFactor = 3

	maxRelevantSections = 5
	maxTopMatches       = 3
	maxMatchContent     = 150
)

// Match is one matching line kept as evidence for a grouped result
type Match struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// GroupedResult aggregates the matches of one page
type GroupedResult struct {
	File             string   `json:"file"`
	Title            string   `json:"title"`
	MatchCount       int      `json:"match_count"`
	RelevantSections []string `json:"relevant_sections"`
	TopMatches       []Match  `json:"top_matches"`
}

// AggregatorOptions configures an Aggregator. Zero values use the defaults.
type AggregatorOptions struct {
	DefaultLimit    int
	MaxLimit        int
	ReadConcurrency int
	Logger          *slog.Logger
}

// Aggregator groups raw search records by page
type Aggregator struct {
	searcher        Searcher
	corpus          *corpus.Corpus
	defaultLimit    int
	maxLimit        int
	readConcurrency int
	logger          *slog.Logger
}

// NewAggregator creates an Aggregator reading pages from c
func NewAggregator(s Searcher, c *corpus.Corpus, opts AggregatorOptions) *Aggregator {
	a := &Aggregator{
		searcher:        s,
		corpus:          c,
		defaultLimit:    opts.DefaultLimit,
		maxLimit:        opts.MaxLimit,
		readConcurrency: opts.ReadConcurrency,
		logger:          opts.Logger,
	}
	if a.defaultLimit <= 0 {
		a.defaultLimit = DefaultLimit
	}
	if a.maxLimit <= 0 {
		a.maxLimit = DefaultMaxLimit
	}
	if a.readConcurrency <= 0 {
		a.readConcurrency = DefaultReadConcurrency
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// NormalizeLimit applies the default and the cap to a requested limit
func (a *Aggregator) NormalizeLimit(limit int) int {
	if limit <= 0 {
		return a.defaultLimit
	}
	if limit > a.maxLimit {
		return a.maxLimit
	}
	return limit
}

type fileGroup struct {
	file    string
	records []Record
}

// SearchGrouped searches, groups matches per page and ranks pages by match count.
// A search without matches returns an empty slice and no error.
func (a *Aggregator) SearchGrouped(ctx context.Context, query, category string, limit int) ([]GroupedResult, error) {
	limit = a.NormalizeLimit(limit)

	records, err := a.searcher.Search(ctx, query, category)
	if errors.Is(err, ErrNoMatches) {
		return []GroupedResult{}, nil
	}
	if err != nil {
		return nil, err
	}
	if max := limit * rawMatchFactor; len(records) > max {
		records = records[:max]
	}

	groups := groupByFile(records)
	results := make([]GroupedResult, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.readConcurrency)
	for i, group := range groups {
		g.Go(func() error {
			results[i] = a.summarize(gctx, group)
			return nil
		})
	}
	// summarize never fails, a page that cannot be read degrades instead
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchCount > results[j].MatchCount
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// groupByFile partitions records by file, keeping discovery order
func groupByFile(records []Record) []fileGroup {
	index := make(map[string]int)
	var groups []fileGroup
	for _, r := range records {
		i, ok := index[r.File]
		if !ok {
			i = len(groups)
			index[r.File] = i
			groups = append(groups, fileGroup{file: r.File})
		}
		groups[i].records = append(groups[i].records, r)
	}
	return groups
}

// summarize builds the grouped result of one page. A page that cannot be
// read still reports its matches, with a filename title and no sections.
func (a *Aggregator) summarize(ctx context.Context, group fileGroup) GroupedResult {
	result := GroupedResult{
		File:             group.file,
		Title:            FallbackTitle(group.file),
		MatchCount:       len(group.records),
		RelevantSections: []string{},
		TopMatches:       make([]Match, 0, maxTopMatches),
	}

	var headers []markdown.Header
	if ctx.Err() == nil {
		text, err := a.corpus.ReadPage(group.file)
		if err != nil {
			a.logger.Debug("grouping without page metadata", "file", group.file, "error", err)
		} else {
			result.Title = markdown.ExtractTitle(text)
			headers = markdown.ExtractHeaders(text)
		}
	}

	seen := make(map[string]bool)
	for _, r := range group.records {
		if len(result.RelevantSections) >= maxRelevantSections {
			break
		}
		section, ok := markdown.FindNearestSection(headers, r.Line)
		if !ok || seen[section] {
			continue
		}
		seen[section] = true
		result.RelevantSections = append(result.RelevantSections, section)
	}

	for _, r := range group.records {
		if len(result.TopMatches) >= maxTopMatches {
			break
		}
		result.TopMatches = append(result.TopMatches, Match{
			Line:    r.Line,
			Content: Truncate(r.Content, maxMatchContent),
		})
	}

	return result
}

// FallbackTitle derives a title from a file name without its extension
func FallbackTitle(file string) string {
	base := path.Base(file)
	return base[:len(base)-len(path.Ext(base))]
}

// Truncate shortens s to max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
