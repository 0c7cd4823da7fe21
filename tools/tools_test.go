package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hacktricks-mcp/mcp-server/internal/config"
	"github.com/hacktricks-mcp/mcp-server/internal/lookup"
	"github.com/hacktricks-mcp/mcp-server/internal/runtime"
	"github.com/hacktricks-mcp/mcp-server/internal/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = map[string]string{
	"README.md":                "# HackTricks",
	"pentesting-web/README.md": "# Pentesting Web\n\nSee [SQL injection](sql-injection/README.md).",
	"pentesting-web/sql-injection/README.md": "# SQL Injection\n\n" +
		"## Detection\n\nAdd a quote and look for a database error. Blind SQL injection relies on timing.\n\n" +
		"## Exploitation\n\n" +
		"Dump the tables with a UNION based SQL injection payload once the column count is known.\n\n" +
		"```sql\n' UNION SELECT table_name, NULL FROM information_schema.tables--\n```\n\n" +
		"## Automatic\n\n```bash\nsqlmap -u 'http://target/?id=1' --dbs\n```\n\n" +
		"Related: [MySQL](mysql-injection.md)\n",
	"pentesting-web/sql-injection/mysql-injection.md": "# MySQL injection\n\nSQL injection against MySQL.\n",
	"pentesting-web/xss.md":                           "# XSS\n\n## Payloads\n\n<script>alert(1)</script>\n",
	"network-services-pentesting/pentesting-ssh.md":   "# 22 - Pentesting SSH\n\nbrute force with hydra\n",
	"images/logo.md":                                  "# logo",
}

// grepRunner stands in for ripgrep: a case-insensitive substring match over
// the markdown files under the directory given as the last argument
type grepRunner struct{}

func (grepRunner) Run(ctx context.Context, name string, args ...string) (search.Output, error) {
	if len(args) < 2 {
		return search.Output{ExitCode: 2, Stderr: []byte("missing arguments")}, nil
	}
	query := strings.ToLower(args[len(args)-2])
	dir := args[len(args)-1]
	if strings.HasPrefix(query, "(") {
		return search.Output{ExitCode: 2, Stderr: []byte("regex parse error: unclosed group")}, nil
	}

	var stdout bytes.Buffer
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".md" {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for i, line := range strings.Split(string(data), "\n") {
			if strings.Contains(strings.ToLower(line), query) {
				fmt.Fprintf(&stdout, "%s:%d:%s\n", path, i+1, line)
			}
		}
		return nil
	})
	if err != nil {
		return search.Output{ExitCode: 2, Stderr: []byte(err.Error())}, nil
	}
	if stdout.Len() == 0 {
		return search.Output{ExitCode: 1}, nil
	}
	return search.Output{Stdout: stdout.Bytes()}, nil
}

func testConfig(root string) *config.Config {
	return &config.Config{
		Corpus: config.CorpusConfig{Root: root, AssetsDir: "images", IndexFile: "README.md", MaxDepth: 3},
		Search: config.SearchConfig{RgPath: "rg", Timeout: 5 * time.Second, DefaultLimit: 20, MaxLimit: 50, ReadConcurrency: 4},
		Lookup: config.LookupConfig{Candidates: 10, MaxCodeBlocks: 5},
		Log:    config.LogConfig{Level: "debug"},
	}
}

func newTestServices(t *testing.T) *Services {
	t.Helper()
	root := t.TempDir()
	for rel, content := range fixture {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	prober := runtime.Prober{
		LookPath: func(file string) (string, error) { return "/usr/bin/" + file, nil },
		Output: func(name string, args ...string) ([]byte, error) {
			return []byte("ripgrep 14.1.0 (rev e50df40a19)"), nil
		},
	}
	data := newMockDataProvider(map[string]string{
		"data/guides/usage.md":         "# Using the tools\n\nStart with quick lookup.",
		"data/guides/search-syntax.md": "# Search syntax\n\nRegular expressions.",
		"data/guides/notes.txt":        "not a guide",
	})

	s, err := NewServices(testConfig(root), slog.New(slog.NewTextHandler(io.Discard, nil)), ServiceOptions{
		Runner: grepRunner{},
		Prober: &prober,
		Data:   data,
	})
	require.NoError(t, err)
	return s
}

func connect(t *testing.T, s *Services) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "hacktricks-test", Version: "0.0.1"}, nil)
	RegisterSearchTools(server, s)
	RegisterPageTools(server, s)
	RegisterCategoryTools(server, s)
	RegisterLookupTools(server, s)
	RegisterRuntimeTools(server, s, ServerInfo{Name: "hacktricks-test", Version: "0.0.1"})
	_, err := RegisterResources(server, s)
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err = server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

// call invokes a tool and returns its result together with its text content
func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return res, text.Text
}

// structured decodes the structured content of a result into out
func structured(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	require.NotNil(t, res.StructuredContent)
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestListTools(t *testing.T) {
	session := connect(t, newTestServices(t))

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"search_hacktricks",
		"get_hacktricks_page",
		"get_hacktricks_outline",
		"get_hacktricks_section",
		"get_hacktricks_cheatsheet",
		"list_hacktricks_categories",
		"hacktricks_quick_lookup",
		"get_server_status",
	}, names)
}

func TestSearchTool(t *testing.T) {
	session := connect(t, newTestServices(t))

	res, text := call(t, session, "search_hacktricks", map[string]any{"query": "sql injection"})
	require.False(t, res.IsError, text)

	var out SearchOutput
	structured(t, res, &out)
	require.Equal(t, 3, out.TotalResults)
	assert.Equal(t, "pentesting-web/sql-injection/README.md", out.Results[0].File)
	assert.Equal(t, 3, out.Results[0].MatchCount)
	assert.Equal(t, []string{"SQL Injection", "Detection", "Exploitation"}, out.Results[0].RelevantSections)
	assert.Equal(t, "pentesting-web/sql-injection/mysql-injection.md", out.Results[1].File)
	assert.Equal(t, []string{"MySQL injection"}, out.Results[1].RelevantSections)
	assert.Equal(t, "pentesting-web/README.md", out.Results[2].File)
	assert.Equal(t, "Pentesting Web", out.Results[2].Title)
	assert.Contains(t, text, "Found 3 pages matching \"sql injection\"")
	assert.Contains(t, text, "File: pentesting-web/README.md")

	res, text = call(t, session, "search_hacktricks", map[string]any{"query": "hydra", "category": "pentesting-web"})
	require.False(t, res.IsError, text)
	assert.Equal(t, `No results found for "hydra"`, text)

	res, text = call(t, session, "search_hacktricks", map[string]any{"query": "sql", "limit": 1})
	require.False(t, res.IsError, text)
	structured(t, res, &out)
	assert.Len(t, out.Results, 1)
}

func TestSearchTool_Errors(t *testing.T) {
	session := connect(t, newTestServices(t))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "blank query", args: map[string]any{"query": "   "}, want: "must not be empty"},
		{name: "bad pattern", args: map[string]any{"query": "(oops"}, want: "invalid search pattern"},
		{name: "unknown category", args: map[string]any{"query": "x", "category": "cloud"}, want: "category not found"},
		{name: "category traversal", args: map[string]any{"query": "x", "category": "../.."}, want: "traversal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, text := call(t, session, "search_hacktricks", tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestPageTools(t *testing.T) {
	session := connect(t, newTestServices(t))
	const page = "pentesting-web/sql-injection/README.md"

	t.Run("page", func(t *testing.T) {
		res, text := call(t, session, "get_hacktricks_page", map[string]any{"path": page})
		require.False(t, res.IsError, text)
		assert.Equal(t, fixture[page], text)

		var out PageOutput
		structured(t, res, &out)
		assert.Equal(t, "SQL Injection", out.Title)
	})

	t.Run("outline", func(t *testing.T) {
		res, text := call(t, session, "get_hacktricks_outline", map[string]any{"path": page})
		require.False(t, res.IsError, text)
		assert.Equal(t, "Outline of SQL Injection ("+page+"):\n\n- SQL Injection\n  - Detection\n  - Exploitation\n  - Automatic", text)

		var out OutlineOutput
		structured(t, res, &out)
		require.Len(t, out.Headers, 4)
		assert.Equal(t, 2, out.Headers[1].Level)
	})

	t.Run("section", func(t *testing.T) {
		res, text := call(t, session, "get_hacktricks_section", map[string]any{"path": page, "section": "detect"})
		require.False(t, res.IsError, text)
		assert.Equal(t, "## Detection\n\nAdd a quote and look for a database error. Blind SQL injection relies on timing.", text)
	})

	t.Run("section not found", func(t *testing.T) {
		res, text := call(t, session, "get_hacktricks_section", map[string]any{"path": page, "section": "mitigation"})
		assert.True(t, res.IsError)
		assert.Contains(t, text, `section "mitigation" not found`)
	})

	t.Run("cheatsheet", func(t *testing.T) {
		res, text := call(t, session, "get_hacktricks_cheatsheet", map[string]any{"path": page})
		require.False(t, res.IsError, text)

		var out CheatsheetOutput
		structured(t, res, &out)
		require.Equal(t, 2, out.Count)
		assert.Equal(t, "sql", out.CodeBlocks[0].Language)
		assert.Equal(t, "bash", out.CodeBlocks[1].Language)
		assert.Contains(t, text, "sqlmap -u")
	})

	t.Run("cheatsheet without code", func(t *testing.T) {
		res, text := call(t, session, "get_hacktricks_cheatsheet", map[string]any{"path": "README.md"})
		require.False(t, res.IsError, text)
		assert.Equal(t, "No code blocks found", text)
	})
}

func TestPageTools_Errors(t *testing.T) {
	session := connect(t, newTestServices(t))

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{name: "traversal", tool: "get_hacktricks_page", args: map[string]any{"path": "../../../etc/passwd"}, want: "traversal"},
		{name: "absolute", tool: "get_hacktricks_outline", args: map[string]any{"path": "/etc/passwd"}, want: "absolute"},
		{name: "missing", tool: "get_hacktricks_page", args: map[string]any{"path": "web/missing.md"}, want: "file not found: web/missing.md"},
		{name: "directory", tool: "get_hacktricks_cheatsheet", args: map[string]any{"path": "pentesting-web"}, want: "is a directory"},
		{name: "empty section", tool: "get_hacktricks_section", args: map[string]any{"path": "README.md", "section": " "}, want: "must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, text := call(t, session, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestCategoriesTool(t *testing.T) {
	session := connect(t, newTestServices(t))

	res, text := call(t, session, "list_hacktricks_categories", map[string]any{})
	require.False(t, res.IsError, text)
	assert.Equal(t, "Available categories (2):\n- network-services-pentesting\n- pentesting-web", text)

	res, text = call(t, session, "list_hacktricks_categories", map[string]any{"category": "pentesting-web"})
	require.False(t, res.IsError, text)
	assert.Equal(t, "pentesting-web/\n  sql-injection/\n    mysql-injection.md\n    README.md\n  README.md\n  xss.md", text)

	var out CategoriesOutput
	structured(t, res, &out)
	assert.Empty(t, out.Categories)
	require.Len(t, out.Entries, 5)
	assert.Equal(t, "pentesting-web/sql-injection", out.Entries[0].Path)
	assert.Equal(t, "directory", out.Entries[0].Type)

	res, text = call(t, session, "list_hacktricks_categories", map[string]any{"category": "cloud"})
	assert.True(t, res.IsError)
	assert.Contains(t, text, "category not found")
}

func TestQuickLookupTool(t *testing.T) {
	session := connect(t, newTestServices(t))

	res, text := call(t, session, "hacktricks_quick_lookup", map[string]any{"topic": "sqli"})
	require.False(t, res.IsError, text)

	var out lookup.Result
	structured(t, res, &out)
	assert.Equal(t, "pentesting-web/sql-injection/README.md", out.Page)
	assert.Equal(t, "SQL injection", out.MatchedTerm)
	assert.Equal(t, []string{"sqli", "SQL injection", "SQLi"}, out.Terms)
	assert.True(t, strings.HasPrefix(out.Sections, "## Exploitation"), out.Sections)
	assert.Contains(t, out.CodeBlocks, "```sql")
	assert.Contains(t, out.CodeBlocks, "```bash")
	assert.Equal(t, []string{"pentesting-web/sql-injection/mysql-injection.md"}, out.Related)

	assert.Contains(t, text, "# SQL Injection")
	assert.Contains(t, text, "Matched term: SQL injection")

	res, text = call(t, session, "hacktricks_quick_lookup", map[string]any{"topic": "kerberoasting"})
	assert.True(t, res.IsError)
	assert.Contains(t, text, "no results found for topic: kerberoasting")
}

func TestStatusTool(t *testing.T) {
	s := newTestServices(t)
	session := connect(t, s)

	res, text := call(t, session, "get_server_status", map[string]any{})
	require.False(t, res.IsError, text)

	var out StatusOutput
	structured(t, res, &out)
	assert.Equal(t, runtime.StatusReady, out.Runtime.Status)
	assert.Equal(t, 2, out.Runtime.Environment.CategoryCount)
	assert.Contains(t, text, "hacktricks-test v0.0.1: ready")
	assert.Contains(t, text, "ripgrep: /usr/bin/rg 14.1.0")
}

func TestResources(t *testing.T) {
	session := connect(t, newTestServices(t))
	ctx := context.Background()

	list, err := session.ListResources(ctx, nil)
	require.NoError(t, err)

	var uris []string
	for _, r := range list.Resources {
		uris = append(uris, r.URI)
	}
	assert.ElementsMatch(t, []string{
		"hacktricks://guides/search-syntax",
		"hacktricks://guides/usage",
		"hacktricks://aliases",
	}, uris)

	guide, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "hacktricks://guides/usage"})
	require.NoError(t, err)
	require.Len(t, guide.Contents, 1)
	assert.Contains(t, guide.Contents[0].Text, "Start with quick lookup")

	aliases, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "hacktricks://aliases"})
	require.NoError(t, err)
	var table map[string][]string
	require.NoError(t, json.Unmarshal([]byte(aliases.Contents[0].Text), &table))
	assert.Contains(t, table["sqli"], "SQL injection")
}

func TestLoadGuides_Embedded(t *testing.T) {
	guides, err := LoadGuides(NewEmbeddedDataProvider())
	require.NoError(t, err)
	require.NotEmpty(t, guides)
	for _, g := range guides {
		assert.True(t, strings.HasPrefix(g.URI, "hacktricks://guides/"))
		assert.NotEqual(t, "Untitled", g.Title, g.Name)
	}
}
