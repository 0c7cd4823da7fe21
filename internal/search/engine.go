package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hacktricks-mcp/mcp-server/internal/corpus"
	"github.com/hacktricks-mcp/mcp-server/internal/docerr"
	"golang.org/x/time/rate"
)

const (
	// DefaultBinary is the ripgrep executable looked up on PATH
	DefaultBinary = "rg"

	// DefaultTimeout bounds a single search process
	DefaultTimeout = 30 * time.Second

	// maxColumns bounds a reported line; longer lines come back as a preview
	maxColumns = 500

	// ripgrep exit codes
	exitMatches   = 0
	exitNoMatches = 1
	exitError     = 2
)

// ErrNoMatches is returned when the engine ran successfully and found nothing.
// It is an expected outcome, callers usually turn it into an empty result.
var ErrNoMatches = errors.New("no matches found")

var recordRegex = regexp.MustCompile(`^(.+?):(\d+):(.*)$`)

// Record is one matching line reported by the search engine
type Record struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// Searcher runs a raw line search over the corpus or one of its categories
type Searcher interface {
	Search(ctx context.Context, query, category string) ([]Record, error)
}

// EngineOptions configures an Engine. Zero values use the defaults.
type EngineOptions struct {
	Binary  string
	Timeout time.Duration
	Runner  Runner
	Logger  *slog.Logger

	// RateLimit caps how many search processes start per second; 0 disables it
	RateLimit float64
	Burst     int
}

// Engine searches the corpus with ripgrep
type Engine struct {
	corpus  *corpus.Corpus
	binary  string
	timeout time.Duration
	runner  Runner
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewEngine creates a ripgrep-backed Searcher over c
func NewEngine(c *corpus.Corpus, opts EngineOptions) *Engine {
	e := &Engine{
		corpus:  c,
		binary:  opts.Binary,
		timeout: opts.Timeout,
		runner:  opts.Runner,
		logger:  opts.Logger,
	}
	if e.binary == "" {
		e.binary = DefaultBinary
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.runner == nil {
		e.runner = NewExecRunner()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return e
}

// Args returns the ripgrep argument vector for query over dir
func Args(query, dir string) []string {
	return []string{
		"--no-heading",
		"--with-filename",
		"--line-number",
		"--color", "never",
		"--ignore-case",
		"--type", "md",
		"--max-columns", strconv.Itoa(maxColumns),
		"--max-columns-preview",
		"--sort", "path",
		"--", query, dir,
	}
}

// Search runs ripgrep for query inside category ("" searches the whole corpus)
func (e *Engine) Search(ctx context.Context, query, category string) ([]Record, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, docerr.New(docerr.EmptyInput, "search query must not be empty")
	}

	dir, err := e.corpus.Dir(category)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, docerr.Wrap(docerr.InfrastructureFailure, "search rate limit exceeded", err)
		}
	}

	start := time.Now()
	out, err := e.runner.Run(ctx, e.binary, Args(q, dir)...)
	if err != nil {
		return nil, docerr.Wrap(docerr.InfrastructureFailure, "search failed", err)
	}

	e.logger.Debug("search finished",
		"query", q,
		"category", category,
		"exit_code", out.ExitCode,
		"elapsed", time.Since(start).Round(time.Millisecond))

	switch out.ExitCode {
	case exitMatches:
		return e.parse(out.Stdout), nil
	case exitNoMatches:
		return nil, ErrNoMatches
	case exitError:
		diagnostic := strings.TrimSpace(string(out.Stderr))
		if isPatternError(diagnostic) {
			return nil, docerr.Newf(docerr.InvalidPattern, "invalid search pattern: %s", diagnostic)
		}
		// ripgrep also exits 2 when some files were unreadable but others matched
		if records := e.parse(out.Stdout); len(records) > 0 {
			e.logger.Warn("search completed with errors", "query", q, "stderr", diagnostic)
			return records, nil
		}
		return nil, docerr.Wrap(docerr.InfrastructureFailure, "search failed", errors.New(diagnostic))
	default:
		return nil, docerr.Wrap(docerr.InfrastructureFailure, "search failed",
			fmt.Errorf("%s exited with code %d: %s", e.binary, out.ExitCode, strings.TrimSpace(string(out.Stderr))))
	}
}

// parse converts "path:line:content" lines into records, dropping anything else
func (e *Engine) parse(stdout []byte) []Record {
	var records []Record

	reader := bufio.NewReader(bytes.NewReader(stdout))
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if record, ok := ParseRecord(strings.TrimSuffix(line, "\n")); ok {
				record.File = e.corpus.RelPath(record.File)
				records = append(records, record)
			}
		}
		if err != nil {
			break
		}
	}
	return records
}

// ParseRecord parses a single "path:line:content" output line
func ParseRecord(line string) (Record, bool) {
	m := recordRegex.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
	if m == nil {
		return Record{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return Record{}, false
	}
	return Record{
		File:    m[1],
		Line:    n,
		Content: strings.TrimSpace(m[3]),
	}, true
}

func isPatternError(diagnostic string) bool {
	d := strings.ToLower(diagnostic)
	return strings.Contains(d, "regex parse error") || strings.Contains(d, "error parsing regex")
}
