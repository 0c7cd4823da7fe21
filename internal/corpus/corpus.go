package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/docerr"
)

const (
	// DefaultAssetsDir is the non-content directory skipped when browsing
	DefaultAssetsDir = "images"

	// DefaultIndexFile is the canonical page of a folder
	DefaultIndexFile = "README.md"

	// DefaultMaxDepth bounds category tree recursion
	DefaultMaxDepth = 3

	markdownExt = ".md"
)

// Options tunes a Corpus. Zero values fall back to the defaults above.
type Options struct {
	AssetsDir  string
	IndexFile  string
	MaxDepth   int
	Filesystem Filesystem
}

// Corpus is a read-only tree of markdown pages under a single fixed root
type Corpus struct {
	root      string
	fs        Filesystem
	assetsDir string
	indexFile string
	maxDepth  int
}

// New creates a Corpus rooted at root. The root is made absolute once here
// and every later path is resolved against it.
func New(root string, opts Options) (*Corpus, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("corpus root must not be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve corpus root %s: %w", root, err)
	}

	c := &Corpus{
		root:      filepath.Clean(abs),
		fs:        opts.Filesystem,
		assetsDir: opts.AssetsDir,
		indexFile: opts.IndexFile,
		maxDepth:  opts.MaxDepth,
	}
	if c.fs == nil {
		c.fs = NewOSFilesystem()
	}
	if c.assetsDir == "" {
		c.assetsDir = DefaultAssetsDir
	}
	if c.indexFile == "" {
		c.indexFile = DefaultIndexFile
	}
	if c.maxDepth <= 0 {
		c.maxDepth = DefaultMaxDepth
	}
	return c, nil
}

// Root returns the absolute corpus root
func (c *Corpus) Root() string {
	return c.root
}

// IndexFile returns the file name of a folder's primary page
func (c *Corpus) IndexFile() string {
	return c.indexFile
}

// Resolve validates a caller-supplied relative path and returns its absolute
// location inside the corpus. Nothing is read from disk.
func (c *Corpus) Resolve(rel string) (string, error) {
	trimmed := strings.TrimSpace(rel)
	if trimmed == "" {
		return "", docerr.New(docerr.EmptyInput, "path must not be empty")
	}

	slashed := strings.ReplaceAll(trimmed, "\\", "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(trimmed) || filepath.VolumeName(trimmed) != "" {
		return "", docerr.Newf(docerr.InvalidPath, "absolute paths are not allowed: %s", rel).WithPath(rel)
	}
	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return "", docerr.Newf(docerr.InvalidPath, "path traversal is not allowed: %s", rel).WithPath(rel)
		}
	}

	abs := filepath.Join(c.root, filepath.FromSlash(slashed))
	if !c.contains(abs) {
		return "", docerr.Newf(docerr.InvalidPath, "path escapes the corpus root: %s", rel).WithPath(rel)
	}
	return abs, nil
}

// contains reports whether abs is the root or one of its descendants
func (c *Corpus) contains(abs string) bool {
	rel, err := filepath.Rel(c.root, filepath.Clean(abs))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// RelPath rewrites an absolute path inside the corpus as a slash-separated
// path relative to the root. Paths outside the root are returned unchanged.
func (c *Corpus) RelPath(abs string) string {
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(c.root, abs)
	}
	if !c.contains(abs) {
		return filepath.ToSlash(abs)
	}
	rel, err := filepath.Rel(c.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// ReadPage reads a markdown page given its corpus-relative path
func (c *Corpus) ReadPage(rel string) (string, error) {
	abs, err := c.Resolve(rel)
	if err != nil {
		return "", err
	}

	info, err := c.fs.Stat(abs)
	if err != nil {
		return "", classifyReadError(err, rel)
	}
	if info.IsDir() {
		return "", docerr.Newf(docerr.IsADirectory, "path is a directory, not a file: %s", rel).WithPath(rel)
	}

	data, err := c.fs.ReadFile(abs)
	if err != nil {
		return "", classifyReadError(err, rel)
	}
	return string(data), nil
}

// ReadAbs reads a file already known to be inside the corpus (search results)
func (c *Corpus) ReadAbs(abs string) (string, error) {
	if !c.contains(abs) {
		return "", docerr.Newf(docerr.InvalidPath, "path escapes the corpus root: %s", abs).WithPath(abs)
	}
	data, err := c.fs.ReadFile(abs)
	if err != nil {
		return "", classifyReadError(err, c.RelPath(abs))
	}
	return string(data), nil
}

// Dir resolves a category (or "" for the whole corpus) to an existing directory
func (c *Corpus) Dir(category string) (string, error) {
	if strings.TrimSpace(category) == "" {
		return c.root, nil
	}
	abs, err := c.Resolve(category)
	if err != nil {
		return "", err
	}
	// hidden and asset directories are never browsed or searched
	for _, segment := range strings.Split(strings.ReplaceAll(strings.TrimSpace(category), "\\", "/"), "/") {
		if segment != "" && !c.visible(segment) {
			return "", docerr.Newf(docerr.NotFound, "category not found: %s", category).WithPath(category)
		}
	}

	info, err := c.fs.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", docerr.Newf(docerr.NotFound, "category not found: %s", category).WithPath(category)
		}
		return "", docerr.Wrap(docerr.InfrastructureFailure, "failed to read category "+category, err)
	}
	if !info.IsDir() {
		return "", docerr.Newf(docerr.NotFound, "category not found: %s is not a directory", category).WithPath(category)
	}
	return abs, nil
}

func classifyReadError(err error, rel string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return docerr.Newf(docerr.NotFound, "file not found: %s", rel).WithPath(rel)
	case isDirectoryError(err):
		return docerr.Newf(docerr.IsADirectory, "path is a directory, not a file: %s", rel).WithPath(rel)
	default:
		return docerr.Wrap(docerr.InfrastructureFailure, "failed to read "+rel, err).WithPath(rel)
	}
}

// isDirectoryError matches the EISDIR text since it has no portable sentinel
func isDirectoryError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "is a directory")
}

// isMarkdown reports whether name is a markdown page
func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), markdownExt)
}

// visible reports whether a directory entry takes part in browsing
func (c *Corpus) visible(name string) bool {
	return !strings.HasPrefix(name, ".") && name != c.assetsDir
}
