// Package config loads application configuration from YAML files and
// environment variables.
package config

// Config represents the full application configuration.
type Config struct {
	Model     ModelConfig                `yaml:"model"`
	Review    ReviewConfig               `yaml:"review"`
	Providers map[string]ProviderConfig  `yaml:"providers"`
	Rules     map[string]map[string]bool `yaml:"rules"`
	Git       GitConfig                  `yaml:"git"`
	Output    OutputConfig               `yaml:"output"`
	Store     StoreConfig                `yaml:"store"`
	Logging   LoggingConfig              `yaml:"logging"`
	Server    ServerConfig               `yaml:"server"`
}

// ModelConfig selects the LLM used for reviews.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // openai, anthropic, ollama, static
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// ReviewConfig controls review behavior.
type ReviewConfig struct {
	Mode              string `yaml:"mode"` // quick, standard, deep
	SeverityThreshold string `yaml:"severityThreshold"`
	MaxComments       int    `yaml:"maxComments"`
	IncludePositive   bool   `yaml:"includePositive"`
	ContextLines      int    `yaml:"contextLines"`
	RedactSecrets     bool   `yaml:"redactSecrets"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// GitConfig points at the repository under review.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// OutputConfig controls where and how reports are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Format    string `yaml:"format"` // terminal, markdown, json
}

// StoreConfig configures the review history database.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // human, json
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}

// ServerConfig configures the HTTP review API.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwtSecret"` // empty disables auth
}
