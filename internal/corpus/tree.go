package corpus

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TreeNode is either a *FileNode or a *DirNode
type TreeNode interface {
	NodeName() string
	NodePath() string
	isTreeNode()
}

// FileNode is a markdown page in the category tree
type FileNode struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// DirNode is a directory with at least one visible descendant page
type DirNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Children []TreeNode `json:"children"`
}

func (n *FileNode) NodeName() string { return n.Name }
func (n *FileNode) NodePath() string { return n.Path }
func (*FileNode) isTreeNode()        {}

func (n *DirNode) NodeName() string { return n.Name }
func (n *DirNode) NodePath() string { return n.Path }
func (*DirNode) isTreeNode()        {}

// newCollator returns an English collator; collators are not safe for concurrent use
func newCollator() *collate.Collator {
	return collate.New(language.English)
}

// BuildTree lists dir recursively. Recursion stops once depth exceeds
// maxDepth; directories that end up without visible pages are dropped.
func (c *Corpus) BuildTree(dir string, depth, maxDepth int) []TreeNode {
	return c.buildTree(dir, depth, maxDepth, newCollator())
}

func (c *Corpus) buildTree(dir string, depth, maxDepth int, coll *collate.Collator) []TreeNode {
	if depth > maxDepth {
		return nil
	}

	entries, err := c.fs.ReadDir(dir)
	if err != nil {
		return nil
	}

	var dirs, files []TreeNode
	for _, entry := range entries {
		name := entry.Name()
		if !c.visible(name) {
			continue
		}
		abs := filepath.Join(dir, name)

		if entry.IsDir() {
			children := c.buildTree(abs, depth+1, maxDepth, coll)
			if len(children) == 0 {
				continue
			}
			dirs = append(dirs, &DirNode{Name: name, Path: c.RelPath(abs), Children: children})
			continue
		}
		if isMarkdown(name) {
			files = append(files, &FileNode{Name: name, Path: c.RelPath(abs)})
		}
	}

	sortNodes(dirs, coll)
	sortNodes(files, coll)
	return append(dirs, files...)
}

func sortNodes(nodes []TreeNode, coll *collate.Collator) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return coll.CompareString(nodes[i].NodeName(), nodes[j].NodeName()) < 0
	})
}

// Categories lists the visible top-level directories of the corpus
func (c *Corpus) Categories() ([]string, error) {
	entries, err := c.fs.ReadDir(c.root)
	if err != nil {
		return nil, classifyReadError(err, ".")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && c.visible(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	newCollator().SortStrings(names)
	return names, nil
}

// CategoryTree returns the browsing tree of a single category
func (c *Corpus) CategoryTree(category string) ([]TreeNode, error) {
	dir, err := c.Dir(category)
	if err != nil {
		return nil, err
	}
	return c.BuildTree(dir, 0, c.maxDepth), nil
}

// TreeEntry is one flattened line of a category tree
type TreeEntry struct {
	Path  string `json:"path"`
	Type  string `json:"type"`
	Depth int    `json:"depth"`
}

// Flatten walks nodes depth-first into a list that keeps the tree order
func Flatten(nodes []TreeNode) []TreeEntry {
	var entries []TreeEntry
	var walk func([]TreeNode, int)
	walk = func(nodes []TreeNode, depth int) {
		for _, node := range nodes {
			switch n := node.(type) {
			case *DirNode:
				entries = append(entries, TreeEntry{Path: n.Path, Type: "directory", Depth: depth})
				walk(n.Children, depth+1)
			case *FileNode:
				entries = append(entries, TreeEntry{Path: n.Path, Type: "file", Depth: depth})
			}
		}
	}
	walk(nodes, 0)
	return entries
}

// FormatTree renders nodes as an indented listing, directories with a trailing slash
func FormatTree(nodes []TreeNode) string {
	var b strings.Builder
	var walk func([]TreeNode, int)
	walk = func(nodes []TreeNode, depth int) {
		for _, node := range nodes {
			b.WriteString(strings.Repeat("  ", depth))
			switch n := node.(type) {
			case *DirNode:
				b.WriteString(n.Name + "/\n")
				walk(n.Children, depth+1)
			case *FileNode:
				b.WriteString(n.Name + "\n")
			}
		}
	}
	walk(nodes, 0)
	return strings.TrimRight(b.String(), "\n")
}
