package runtime

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/corpus"
)

const (
	// StatusReady means searches and page reads both work
	StatusReady = "ready"
	// StatusDegraded means pages can be read but searches will fail
	StatusDegraded = "degraded"
	// StatusUnavailable means the corpus is missing
	StatusUnavailable = "unavailable"

	// CorpusRepository is where the documentation corpus is cloned from
	CorpusRepository = "https://github.com/HackTricks-wiki/hacktricks.git"
)

var versionRegex = regexp.MustCompile(`ripgrep\s+(\d+\.\d+(?:\.\d+)?)`)

// Environment describes what the server found on this machine
type Environment struct {
	HasRipgrep     bool   `json:"has_ripgrep"`
	RipgrepPath    string `json:"ripgrep_path,omitempty"`
	RipgrepVersion string `json:"ripgrep_version,omitempty"`
	CorpusRoot     string `json:"corpus_root"`
	CorpusExists   bool   `json:"corpus_exists"`
	CategoryCount  int    `json:"category_count"`
}

// RuntimeInfo contains complete runtime detection information
type RuntimeInfo struct {
	Environment     *Environment     `json:"environment"`
	Status          string           `json:"status"` // "ready", "degraded", "unavailable"
	Recommendations []Recommendation `json:"recommendations"`
}

// Recommendation is a step that fixes a missing prerequisite
type Recommendation struct {
	Priority int    `json:"priority"` // 1 = highest
	Reason   string `json:"reason"`
	Command  string `json:"command,omitempty"`
}

// Prober runs the host commands detection depends on
type Prober struct {
	LookPath func(file string) (string, error)
	Output   func(name string, args ...string) ([]byte, error)
}

// DefaultProber uses os/exec
func DefaultProber() Prober {
	return Prober{
		LookPath: exec.LookPath,
		Output: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}
}

// Detect performs complete runtime detection with p
func (p Prober) Detect(rgPath string, c *corpus.Corpus) *RuntimeInfo {
	env := p.DetectEnvironment(rgPath, c)

	status := StatusUnavailable
	switch {
	case env.CorpusExists && env.HasRipgrep:
		status = StatusReady
	case env.CorpusExists:
		status = StatusDegraded
	}

	return &RuntimeInfo{
		Environment:     env,
		Status:          status,
		Recommendations: buildRecommendations(env),
	}
}

// DetectEnvironment looks up ripgrep and inspects the corpus root
func (p Prober) DetectEnvironment(rgPath string, c *corpus.Corpus) *Environment {
	env := &Environment{CorpusRoot: c.Root()}

	if path, err := p.LookPath(rgPath); err == nil {
		env.HasRipgrep = true
		env.RipgrepPath = path
		if v, err := p.RipgrepVersion(path); err == nil {
			env.RipgrepVersion = v
		}
	}

	if info, err := os.Stat(c.Root()); err == nil && info.IsDir() {
		env.CorpusExists = true
		if categories, err := c.Categories(); err == nil {
			env.CategoryCount = len(categories)
		}
	}

	return env
}

// RipgrepVersion gets the version of the ripgrep binary at path
func (p Prober) RipgrepVersion(path string) (string, error) {
	output, err := p.Output(path, "--version")
	if err != nil {
		return "", fmt.Errorf("failed to get ripgrep version: %w", err)
	}
	return ParseVersion(string(output))
}

// ParseVersion extracts the version from `rg --version` output,
// e.g. "ripgrep 14.1.0 (rev e50df40a19)"
func ParseVersion(output string) (string, error) {
	matches := versionRegex.FindStringSubmatch(output)
	if len(matches) > 1 {
		return matches[1], nil
	}
	return "", fmt.Errorf("could not parse version from: %s", strings.TrimSpace(output))
}

// buildRecommendations creates an ordered list of fixes for what is missing
func buildRecommendations(env *Environment) []Recommendation {
	recommendations := []Recommendation{}
	priority := 1

	if !env.CorpusExists {
		recommendations = append(recommendations, Recommendation{
			Priority: priority,
			Reason:   fmt.Sprintf("Corpus not found at %s", env.CorpusRoot),
			Command:  fmt.Sprintf("git clone --depth 1 %s ~/.hacktricks-mcp/hacktricks", CorpusRepository),
		})
		priority++
	} else if env.CategoryCount == 0 {
		recommendations = append(recommendations, Recommendation{
			Priority: priority,
			Reason:   fmt.Sprintf("Corpus at %s has no categories; corpus.root should point at the src directory", env.CorpusRoot),
		})
		priority++
	}

	if !env.HasRipgrep {
		recommendations = append(recommendations, Recommendation{
			Priority: priority,
			Reason:   "ripgrep (rg) not found on PATH; search and quick lookup are unavailable",
			Command:  "install ripgrep (apt install ripgrep, brew install ripgrep) or set search.rg_path",
		})
	}

	return recommendations
}
