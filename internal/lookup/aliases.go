package lookup

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.json
var defaultAliasesJSON []byte

// Aliases maps a lower-case shorthand topic to the terms it also stands for
type Aliases map[string][]string

// DefaultAliases returns the built-in alias table
func DefaultAliases() Aliases {
	aliases, err := ParseAliases(defaultAliasesJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded alias table is invalid: %v", err))
	}
	return aliases
}

// ParseAliases decodes a mapping of topic -> terms, written as YAML or JSON.
// Keys are lower-cased and blank terms are dropped.
func ParseAliases(data []byte) (Aliases, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}

	aliases := make(Aliases, len(raw))
	for key, terms := range raw {
		k := strings.ToLower(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		for _, term := range terms {
			if t := strings.TrimSpace(term); t != "" {
				aliases[k] = append(aliases[k], t)
			}
		}
	}
	return aliases, nil
}

// LoadAliases returns the built-in table with entries from file layered on
// top. An empty file name returns the built-in table.
func LoadAliases(file string) (Aliases, error) {
	aliases := DefaultAliases()
	if file == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file %s: %w", file, err)
	}
	overrides, err := ParseAliases(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	for key, terms := range overrides {
		aliases[key] = terms
	}
	return aliases, nil
}

// Expand returns the search terms for topic: the topic itself first, then
// its alias expansion. Exact duplicates are dropped.
func (a Aliases) Expand(topic string) []string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}

	terms := []string{topic}
	seen := map[string]bool{topic: true}
	for _, term := range a[strings.ToLower(topic)] {
		if !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}
	return terms
}
