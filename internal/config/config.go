package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server,omitempty"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation,omitempty"`
	Storage    StorageConfig    `yaml:"storage,omitempty"`
	Search     SearchConfig     `yaml:"search,omitempty"`
	Archive    ArchiveConfig    `yaml:"archive,omitempty"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `yaml:"host,omitempty"`
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"` // CORS origins
	RateLimit      float64  `yaml:"rate_limit,omitempty"`      // Requests per second per client
	RateBurst      int      `yaml:"rate_burst,omitempty"`      // Burst size per client
}

// EmbeddingConfig holds embedding service configuration
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "ollama" | "openai"

	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`

	Dimensions     int `yaml:"dimensions,omitempty"`      // Vector dimension of the model
	BatchSize      int `yaml:"batch_size,omitempty"`      // Batch size for embedding requests
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"` // Per-request timeout
}

// GenerationConfig holds answer-generation service configuration
type GenerationConfig struct {
	Provider string `yaml:"provider,omitempty"` // "ollama" | "openai"

	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`

	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"` // Generation can take tens of seconds
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	// Directory holding the vector index file, chunk database and
	// keyword index. If empty, uses ~/.evidex/data
	DataDir string `yaml:"data_dir,omitempty"`
}

// SearchConfig holds retrieval configuration
type SearchConfig struct {
	TopK          int     `yaml:"top_k,omitempty"`          // Number of chunks retrieved per question
	Mode          string  `yaml:"mode,omitempty"`           // "vector" | "hybrid"
	VectorWeight  float64 `yaml:"vector_weight,omitempty"`  // Hybrid mode vector weight
	KeywordWeight float64 `yaml:"keyword_weight,omitempty"` // Hybrid mode keyword weight
}

// ArchiveConfig holds report archive handling configuration
type ArchiveConfig struct {
	// Glob pattern selecting the report member inside the uploaded
	// archive, matched case-insensitively against member names
	MemberPattern string `yaml:"member_pattern,omitempty"`
}

// IndexPath returns the path of the persisted vector index file
func (s *StorageConfig) IndexPath() string {
	return filepath.Join(s.DataDir, "report.index")
}

// DBPath returns the path of the chunk store database
func (s *StorageConfig) DBPath() string {
	return filepath.Join(s.DataDir, "report.db")
}

// KeywordDir returns the directory of the keyword index
func (s *StorageConfig) KeywordDir() string {
	return filepath.Join(s.DataDir, "keyword.bleve")
}

// Load loads configuration from the default config file
// Default location: ~/.evidex/config/evidex.yaml
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".evidex", "config", "evidex.yaml")
	return LoadFromFile(configPath)
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			homeDir, _ := os.UserHomeDir()
			defaultPath := filepath.Join(homeDir, ".evidex", "config", "evidex.yaml")
			return nil, &ConfigNotFoundError{
				RequestedPath: path,
				DefaultPath:   defaultPath,
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults
	if err := cfg.applyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigNotFoundError is returned when config file is not found
type ConfigNotFoundError struct {
	RequestedPath string
	DefaultPath   string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found at: %s\n\nDefault location: %s\n\nYou can:\n"+
		"  1. Create the config file at the default location\n"+
		"  2. Specify a custom path with -config flag\n"+
		"  3. Run 'evidex serve' to create a default config template",
		e.RequestedPath, e.DefaultPath)
}

// IsConfigNotFound checks if error is config not found
func IsConfigNotFound(err error) bool {
	_, ok := err.(*ConfigNotFoundError)
	return ok
}

// expandPath expands ~ and $HOME to the user's home directory
// Supports both:
//
//	~/.evidex/data
//	$HOME/.evidex/data
func expandPath(path string) string {
	// Handle $HOME environment variable
	if strings.HasPrefix(path, "$HOME/") || path == "$HOME" {
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			// Fallback to UserHomeDir if HOME is not set
			var err error
			homeDir, err = os.UserHomeDir()
			if err != nil {
				// If we can't get home dir, return path as-is
				return path
			}
		}
		if path == "$HOME" {
			return homeDir
		}
		return filepath.Join(homeDir, path[6:])
	}

	// Handle ~ shorthand
	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// If we can't get home dir, return path as-is
			return path
		}
		if path == "~" {
			return homeDir
		}
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() error {
	// Set default server options
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 5
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 10
	}

	// Set default embedding provider
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "ollama"
	}

	switch c.Embedding.Provider {
	case "ollama":
		if c.Embedding.Endpoint == "" {
			c.Embedding.Endpoint = "http://localhost:11434"
		}
		if c.Embedding.Model == "" {
			c.Embedding.Model = "nomic-embed-text"
		}
		if c.Embedding.Dimensions == 0 {
			c.Embedding.Dimensions = 768
		}
	case "openai":
		if c.Embedding.Endpoint == "" {
			c.Embedding.Endpoint = "https://api.openai.com/v1"
		}
		if c.Embedding.Model == "" {
			c.Embedding.Model = "text-embedding-3-small"
		}
		if c.Embedding.Dimensions == 0 {
			c.Embedding.Dimensions = 1536
		}
	}

	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 10
	}
	if c.Embedding.TimeoutSeconds == 0 {
		c.Embedding.TimeoutSeconds = 30
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = os.Getenv("EVIDEX_EMBEDDING_API_KEY")
	}

	// Set default generation provider
	if c.Generation.Provider == "" {
		c.Generation.Provider = "ollama"
	}

	switch c.Generation.Provider {
	case "ollama":
		if c.Generation.Endpoint == "" {
			c.Generation.Endpoint = "http://localhost:11434"
		}
		if c.Generation.Model == "" {
			c.Generation.Model = "llama3.2"
		}
	case "openai":
		if c.Generation.Endpoint == "" {
			c.Generation.Endpoint = "https://api.openai.com/v1"
		}
		if c.Generation.Model == "" {
			c.Generation.Model = "gpt-4o-mini"
		}
	}

	if c.Generation.TimeoutSeconds == 0 {
		c.Generation.TimeoutSeconds = 120
	}
	if c.Generation.APIKey == "" {
		c.Generation.APIKey = os.Getenv("EVIDEX_GENERATION_API_KEY")
	}

	// Expand ~ in data dir and set default
	if c.Storage.DataDir != "" {
		c.Storage.DataDir = expandPath(c.Storage.DataDir)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.Storage.DataDir = filepath.Join(homeDir, ".evidex", "data")
	}

	// Set default search options
	if c.Search.TopK == 0 {
		c.Search.TopK = 5
	}
	if c.Search.Mode == "" {
		c.Search.Mode = "vector"
	}
	if c.Search.VectorWeight == 0 && c.Search.KeywordWeight == 0 {
		c.Search.VectorWeight = 0.7
		c.Search.KeywordWeight = 0.3
	}

	// Set default archive options
	if c.Archive.MemberPattern == "" {
		c.Archive.MemberPattern = "**/*.xml"
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate embedding configuration based on provider
	switch c.Embedding.Provider {
	case "ollama":
		// No API key required for a local ollama instance
	case "openai":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("openai embedding provider requires api_key")
		}
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}

	switch c.Generation.Provider {
	case "ollama":
	case "openai":
		if c.Generation.APIKey == "" {
			return fmt.Errorf("openai generation provider requires api_key")
		}
	default:
		return fmt.Errorf("unsupported generation provider: %s", c.Generation.Provider)
	}

	// Validate dimensions
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got: %d", c.Embedding.Dimensions)
	}

	// Validate batch size
	if c.Embedding.BatchSize <= 0 || c.Embedding.BatchSize > 100 {
		return fmt.Errorf("batch_size must be between 1 and 100, got: %d", c.Embedding.BatchSize)
	}

	// Validate server options
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got: %d", c.Server.Port)
	}

	// Validate search options
	if c.Search.TopK < 1 || c.Search.TopK > 100 {
		return fmt.Errorf("top_k must be between 1 and 100, got: %d", c.Search.TopK)
	}
	switch c.Search.Mode {
	case "vector", "hybrid":
	default:
		return fmt.Errorf("unsupported search mode: %s", c.Search.Mode)
	}
	if c.Search.VectorWeight < 0 || c.Search.KeywordWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if c.Search.Mode == "hybrid" && c.Search.VectorWeight+c.Search.KeywordWeight == 0 {
		return fmt.Errorf("hybrid mode requires a positive weight")
	}

	return nil
}

// Save saves the configuration to the default location
func (c *Config) Save() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".evidex", "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "evidex.yaml")
	return c.SaveToFile(configPath)
}

// SaveToFile saves the configuration to a specific file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

const defaultConfigTemplate = `# Evidex Configuration
#
# Copy and edit this file for your environment.
# Default location: $HOME/.evidex/config/evidex.yaml

server:
  host: 127.0.0.1
  port: 8000
  # CORS origins allowed to call the API
  allowed_origins:
    - http://localhost:3000

embedding:
  # Provider: "ollama" or "openai"
  provider: ollama

  # Ollama configuration
  endpoint: http://localhost:11434
  model: nomic-embed-text
  dimensions: 768
  batch_size: 10

  # OpenAI configuration (alternative)
  # provider: openai
  # api_key: your-openai-api-key
  # model: text-embedding-3-small
  # dimensions: 1536
  # batch_size: 100

generation:
  # Provider: "ollama" or "openai"
  provider: ollama
  endpoint: http://localhost:11434
  model: llama3.2
  timeout_seconds: 120

storage:
  # Where the vector index, chunk database and keyword index live
  data_dir: ~/.evidex/data

search:
  # Number of chunks retrieved per question
  top_k: 5
  # "vector" for pure nearest-neighbor search, "hybrid" to mix in
  # keyword matches
  mode: vector
  vector_weight: 0.7
  keyword_weight: 0.3
`

// WriteDefaultTemplate creates a default configuration file if it does not exist.
// It returns true if a file was created, false if it already existed.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}

	return true, nil
}
