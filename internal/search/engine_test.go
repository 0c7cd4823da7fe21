package search_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hacktricks-mcp/mcp-server/internal/corpus"
	"github.com/hacktricks-mcp/mcp-server/internal/docerr"
	"github.com/hacktricks-mcp/mcp-server/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner returns a canned process outcome and records the invocation
type fakeRunner struct {
	out   search.Output
	err   error
	calls int
	name  string
	args  []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (search.Output, error) {
	f.calls++
	f.name = name
	f.args = args
	return f.out, f.err
}

func newTestCorpus(t *testing.T, files map[string]string) *corpus.Corpus {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	c, err := corpus.New(root, corpus.Options{})
	require.NoError(t, err)
	return c
}

func TestEngine_ParsesMatches(t *testing.T) {
	c := newTestCorpus(t, map[string]string{"web/xss.md": "# XSS"})
	abs := filepath.Join(c.Root(), "web", "xss.md")

	runner := &fakeRunner{out: search.Output{
		Stdout: []byte(abs + ":3:  <script>alert(1)</script>\n" +
			"garbage without separators\n" +
			abs + ":12:payload: with: colons\n"),
	}}
	engine := search.NewEngine(c, search.EngineOptions{Runner: runner})

	records, err := engine.Search(context.Background(), "  script  ", "")
	require.NoError(t, err)
	assert.Equal(t, []search.Record{
		{File: "web/xss.md", Line: 3, Content: "<script>alert(1)</script>"},
		{File: "web/xss.md", Line: 12, Content: "payload: with: colons"},
	}, records)

	assert.Equal(t, search.DefaultBinary, runner.name)
	assert.Equal(t, search.Args("script", c.Root()), runner.args)
}

func TestEngine_CategoryScope(t *testing.T) {
	c := newTestCorpus(t, map[string]string{"web/xss.md": "# XSS"})
	runner := &fakeRunner{out: search.Output{ExitCode: 1}}
	engine := search.NewEngine(c, search.EngineOptions{Runner: runner, Binary: "/opt/rg"})

	_, err := engine.Search(context.Background(), "xss", "web")
	assert.ErrorIs(t, err, search.ErrNoMatches)
	assert.Equal(t, "/opt/rg", runner.name)
	assert.Equal(t, filepath.Join(c.Root(), "web"), runner.args[len(runner.args)-1])

	t.Run("missing category never runs the engine", func(t *testing.T) {
		runner := &fakeRunner{}
		engine := search.NewEngine(c, search.EngineOptions{Runner: runner})

		_, err := engine.Search(context.Background(), "xss", "cloud")
		assert.True(t, docerr.Is(err, docerr.NotFound))
		assert.Zero(t, runner.calls)
	})

	t.Run("hidden and asset directories are not categories", func(t *testing.T) {
		c := newTestCorpus(t, map[string]string{
			"web/xss.md":  "# XSS",
			"images/a.md": "# a",
			".git/x.md":   "# x",
		})
		runner := &fakeRunner{}
		engine := search.NewEngine(c, search.EngineOptions{Runner: runner})

		for _, category := range []string{"images", ".git"} {
			_, err := engine.Search(context.Background(), "x", category)
			assert.True(t, docerr.Is(err, docerr.NotFound), category)
		}
		assert.Zero(t, runner.calls)
	})
}

func TestEngine_Errors(t *testing.T) {
	c := newTestCorpus(t, map[string]string{"web/xss.md": "# XSS"})

	tests := []struct {
		name     string
		query    string
		out      search.Output
		runErr   error
		wantKind docerr.Kind
		wantRuns int
	}{
		{
			name:     "empty query",
			query:    "   ",
			wantKind: docerr.EmptyInput,
		},
		{
			name:  "invalid pattern",
			query: "[unclosed",
			out: search.Output{
				ExitCode: 2,
				Stderr:   []byte("regex parse error:\n    [unclosed\n    ^\nerror: unclosed character class"),
			},
			wantKind: docerr.InvalidPattern,
			wantRuns: 1,
		},
		{
			name:     "engine failure",
			query:    "xss",
			out:      search.Output{ExitCode: 2, Stderr: []byte("permission denied")},
			wantKind: docerr.InfrastructureFailure,
			wantRuns: 1,
		},
		{
			name:     "unexpected exit code",
			query:    "xss",
			out:      search.Output{ExitCode: 137},
			wantKind: docerr.InfrastructureFailure,
			wantRuns: 1,
		},
		{
			name:     "binary missing",
			query:    "xss",
			runErr:   exec.ErrNotFound,
			wantKind: docerr.InfrastructureFailure,
			wantRuns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{out: tt.out, err: tt.runErr}
			engine := search.NewEngine(c, search.EngineOptions{Runner: runner})

			_, err := engine.Search(context.Background(), tt.query, "")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, docerr.KindOf(err), "error: %v", err)
			assert.Equal(t, tt.wantRuns, runner.calls)
			if tt.runErr != nil {
				assert.ErrorIs(t, err, tt.runErr)
			}
		})
	}
}

func TestEngine_PartialFailureKeepsMatches(t *testing.T) {
	c := newTestCorpus(t, nil)
	abs := filepath.Join(c.Root(), "a.md")
	runner := &fakeRunner{out: search.Output{
		ExitCode: 2,
		Stdout:   []byte(abs + ":1:# match\n"),
		Stderr:   []byte("b.md: Permission denied (os error 13)"),
	}}
	engine := search.NewEngine(c, search.EngineOptions{Runner: runner})

	records, err := engine.Search(context.Background(), "match", "")
	require.NoError(t, err)
	assert.Equal(t, []search.Record{{File: "a.md", Line: 1, Content: "# match"}}, records)
}

func TestEngine_LongLinesKeepLaterRecords(t *testing.T) {
	c := newTestCorpus(t, map[string]string{"web/xss.md": "# XSS"})
	abs := filepath.Join(c.Root(), "web", "xss.md")
	long := strings.Repeat("A", 5*1024*1024)

	runner := &fakeRunner{out: search.Output{
		Stdout: []byte(abs + ":1:# XSS\n" +
			abs + ":2:" + long + "\n" +
			abs + ":3:<img src=x onerror=alert(1)>"),
	}}
	engine := search.NewEngine(c, search.EngineOptions{Runner: runner})

	records, err := engine.Search(context.Background(), "xss", "")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 2, records[1].Line)
	assert.Len(t, records[1].Content, len(long))
	assert.Equal(t, search.Record{File: "web/xss.md", Line: 3, Content: "<img src=x onerror=alert(1)>"}, records[2])
}

func TestArgs(t *testing.T) {
	args := search.Args("kerberoast", "/corpus/windows")

	assert.Equal(t, []string{"--", "kerberoast", "/corpus/windows"}, args[len(args)-3:])
	assert.Contains(t, args, "--max-columns-preview")
	assert.Subset(t, args, []string{"--ignore-case", "--line-number", "--with-filename", "--no-heading"})

	flagValue := func(flag string) string {
		for i, a := range args[:len(args)-1] {
			if a == flag {
				return args[i+1]
			}
		}
		return ""
	}
	assert.Equal(t, "md", flagValue("--type"))
	assert.Equal(t, "path", flagValue("--sort"))
	assert.Equal(t, "500", flagValue("--max-columns"))
}

func TestEngine_RateLimit(t *testing.T) {
	c := newTestCorpus(t, nil)
	runner := &fakeRunner{out: search.Output{ExitCode: 1}}
	engine := search.NewEngine(c, search.EngineOptions{
		Runner:    runner,
		Timeout:   50 * time.Millisecond,
		RateLimit: 0.001,
		Burst:     1,
	})

	_, err := engine.Search(context.Background(), "first", "")
	assert.ErrorIs(t, err, search.ErrNoMatches)

	_, err = engine.Search(context.Background(), "second", "")
	assert.True(t, docerr.Is(err, docerr.InfrastructureFailure), "got %v", err)
	assert.Equal(t, 1, runner.calls)
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		line string
		want search.Record
		ok   bool
	}{
		{line: "a/b.md:10:text", want: search.Record{File: "a/b.md", Line: 10, Content: "text"}, ok: true},
		{line: "a/b.md:7:", want: search.Record{File: "a/b.md", Line: 7, Content: ""}, ok: true},
		{line: "a/b.md:7:x\r", want: search.Record{File: "a/b.md", Line: 7, Content: "x"}, ok: true},
		{line: "a/b.md:0:zero", ok: false},
		{line: "a/b.md:text", ok: false},
		{line: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := search.ParseRecord(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.line)
		}
	}
}

func TestExecRunner_ExitCodes(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	runner := search.NewExecRunner()

	out, err := runner.Run(context.Background(), "sh", "-c", "echo hit; exit 1")
	require.NoError(t, err)
	assert.Equal(t, 1, out.ExitCode)
	assert.Equal(t, "hit\n", string(out.Stdout))

	_, err = runner.Run(context.Background(), "definitely-not-a-real-binary-xyz")
	assert.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = runner.Run(ctx, "sh", "-c", "sleep 5")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestEngine_Ripgrep(t *testing.T) {
	if _, err := exec.LookPath(search.DefaultBinary); err != nil {
		t.Skip("ripgrep not installed")
	}
	c := newTestCorpus(t, map[string]string{
		"web/xss.md":     "# XSS\n\nReflected XSS payloads\n",
		"web/notes.txt":  "XSS in a text file",
		"network/ssh.md": "# SSH\n\nbrute force\n",
	})
	engine := search.NewEngine(c, search.EngineOptions{})

	records, err := engine.Search(context.Background(), "xss", "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "web/xss.md", r.File)
	}

	_, err = engine.Search(context.Background(), "kerberos", "")
	assert.ErrorIs(t, err, search.ErrNoMatches)

	_, err = engine.Search(context.Background(), "(unclosed", "")
	assert.True(t, docerr.Is(err, docerr.InvalidPattern), "got %v", err)
}
