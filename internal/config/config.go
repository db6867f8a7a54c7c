package config

import "time"

// Config is the root configuration for taskwise. It is built once at process
// start and handed to each component that needs it; nothing reads it from a
// package global.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Auth       AuthConfig       `json:"auth"`
	Models     ModelsConfig     `json:"models"`
	Chat       ChatConfig       `json:"chat"`
	Recurrence RecurrenceConfig `json:"recurrence"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"`
}

// DatabaseConfig holds the sqlite database settings.
type DatabaseConfig struct {
	Path string `json:"path"`
}

// AuthConfig holds token issuance settings.
type AuthConfig struct {
	JWTSecret  string   `json:"jwt_secret"`
	AccessTTL  Duration `json:"access_ttl"`
	RefreshTTL Duration `json:"refresh_ttl"`
}

// ModelsConfig holds model provider configuration.
type ModelsConfig struct {
	Default   string                    `json:"default"`
	Providers map[string]ProviderConfig `json:"providers"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Driver    string   `json:"driver"` // "openai", "anthropic", "ollama"
	Model     string   `json:"model"`
	BaseURL   string   `json:"base_url,omitempty"`
	APIKey    string   `json:"api_key,omitempty"`
	MaxTokens int      `json:"max_tokens,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
}

// ChatConfig holds dialogue settings.
type ChatConfig struct {
	HistoryLimit int `json:"history_limit"` // prior messages included per turn
}

// RecurrenceConfig holds the recurring-task roller settings.
type RecurrenceConfig struct {
	Enabled  bool     `json:"enabled"`
	Interval Duration `json:"interval"`
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
