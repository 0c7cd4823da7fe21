package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override (HACKTRICKS_CORPUS_ROOT, ...)
	EnvPrefix = "HACKTRICKS"

	// ConfigFileEnv names a config file when --config is not given
	ConfigFileEnv = "HACKTRICKS_CONFIG"

	schemaURL = "https://hacktricks-mcp.dev/schema/config.json"
)

//go:embed schema.json
var schemaJSON []byte

// Config is the complete server configuration
type Config struct {
	Corpus CorpusConfig `json:"corpus" mapstructure:"corpus"`
	Search SearchConfig `json:"search" mapstructure:"search"`
	Lookup LookupConfig `json:"lookup" mapstructure:"lookup"`
	Log    LogConfig    `json:"log" mapstructure:"log"`
}

// CorpusConfig locates the documentation tree
type CorpusConfig struct {
	Root      string `json:"root" mapstructure:"root"`
	AssetsDir string `json:"assets_dir" mapstructure:"assets_dir"`
	IndexFile string `json:"index_file" mapstructure:"index_file"`
	MaxDepth  int    `json:"max_depth" mapstructure:"max_depth"`
}

// SearchConfig tunes the ripgrep adapter and the result aggregator
type SearchConfig struct {
	RgPath          string        `json:"rg_path" mapstructure:"rg_path"`
	Timeout         time.Duration `json:"timeout" mapstructure:"timeout"`
	DefaultLimit    int           `json:"default_limit" mapstructure:"default_limit"`
	MaxLimit        int           `json:"max_limit" mapstructure:"max_limit"`
	ReadConcurrency int           `json:"read_concurrency" mapstructure:"read_concurrency"`
	RateLimit       float64       `json:"rate_limit" mapstructure:"rate_limit"`
	Burst           int           `json:"burst" mapstructure:"burst"`
}

// LookupConfig tunes quick lookup
type LookupConfig struct {
	Candidates    int    `json:"candidates" mapstructure:"candidates"`
	MaxCodeBlocks int    `json:"max_code_blocks" mapstructure:"max_code_blocks"`
	AliasesFile   string `json:"aliases_file" mapstructure:"aliases_file"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
}

// Options controls where Load reads from
type Options struct {
	// File is an explicit config file (json, yaml or toml). Empty falls back
	// to $HACKTRICKS_CONFIG, then to defaults and environment only.
	File string

	// Overrides are applied last, keyed by dotted config key ("corpus.root")
	Overrides map[string]any

	// RootCandidates replaces DefaultRootCandidates when discovering the corpus
	RootCandidates []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("corpus.root", "")
	v.SetDefault("corpus.assets_dir", "images")
	v.SetDefault("corpus.index_file", "README.md")
	v.SetDefault("corpus.max_depth", 3)

	v.SetDefault("search.rg_path", "rg")
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.max_limit", 50)
	v.SetDefault("search.read_concurrency", 8)
	v.SetDefault("search.rate_limit", 10.0)
	v.SetDefault("search.burst", 20)

	v.SetDefault("lookup.candidates", 10)
	v.SetDefault("lookup.max_code_blocks", 5)
	v.SetDefault("lookup.aliases_file", "")

	v.SetDefault("log.level", "info")
}

// Load builds the configuration: defaults, then the config file, then
// HACKTRICKS_* environment variables, then explicit overrides. An unset
// corpus root is discovered on disk. The result is validated.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := opts.File
	if file == "" {
		file = os.Getenv(ConfigFileEnv)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Corpus.Root == "" {
		candidates := opts.RootCandidates
		if candidates == nil {
			candidates = DefaultRootCandidates()
		}
		cfg.Corpus.Root = DiscoverRoot(candidates)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultRootCandidates lists where the corpus is looked for, in order:
// the user's home installation, next to the executable, then the working
// directory.
func DefaultRootCandidates() []string {
	var candidates []string

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".hacktricks-mcp", "hacktricks", "src"))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "..", "hacktricks", "src"))
	}
	candidates = append(candidates, filepath.Join(".", "hacktricks", "src"))
	return candidates
}

// DiscoverRoot returns the first candidate that is an existing directory.
// When none exists the last candidate is returned so errors name a path.
func DiscoverRoot(candidates []string) string {
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(c); err == nil {
				return abs
			}
			return c
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[len(candidates)-1]
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("embedded config schema is invalid: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add config schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Validate checks the configuration against the embedded JSON schema and
// the rules a schema cannot express
func (c *Config) Validate() error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &ConfigError{Field: fieldPath(verr.InstanceLocation), Message: verr.Error()}
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return &ConfigError{
			Field:   "search.default_limit",
			Message: fmt.Sprintf("default limit %d exceeds max limit %d", c.Search.DefaultLimit, c.Search.MaxLimit),
		}
	}
	return nil
}

func fieldPath(location []string) string {
	if len(location) == 0 {
		return "$"
	}
	return strings.Join(location, ".")
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
