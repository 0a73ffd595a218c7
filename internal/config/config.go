// Package config loads tgsum settings from a YAML or TOML file and secrets from
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iksnae/tgsum/internal"
)

// DefaultPath is the settings file read when no --config flag is given
const DefaultPath = "config.yaml"

// DefaultEnvFiles are the dotenv files loaded, in order, when present
var DefaultEnvFiles = []string{".env", ".env.local"}

// Settings holds the non-secret configuration
type Settings struct {
	MessageFetching MessageFetching `yaml:"message_fetching" toml:"message_fetching"`
	OpenRouter      OpenRouter      `yaml:"openrouter" toml:"openrouter"`
	DefaultPrompt   DefaultPrompt   `yaml:"default_prompt" toml:"default_prompt"`
	PromptsDir      string          `yaml:"prompts_dir" toml:"prompts_dir"`
	TelegramClient  TelegramClient  `yaml:"telegram_client" toml:"telegram_client"`
	History         History         `yaml:"history" toml:"history"`
}

// MessageFetching controls how many messages are fetched by default
type MessageFetching struct {
	DefaultLimit int `yaml:"default_limit" toml:"default_limit"`
}

// OpenRouter configures the summarization client
type OpenRouter struct {
	BaseURL      string            `yaml:"base_url" toml:"base_url"`
	DefaultModel string            `yaml:"default_model" toml:"default_model"`
	Models       map[string]string `yaml:"models" toml:"models"`
	Timeout      time.Duration     `yaml:"timeout" toml:"timeout"`
	MaxRetries   int               `yaml:"max_retries" toml:"max_retries"`
	Temperature  *float64          `yaml:"temperature" toml:"temperature"`
	MaxTokens    *int64            `yaml:"max_tokens" toml:"max_tokens"`
	AppName      string            `yaml:"app_name" toml:"app_name"`
	AppURL       string            `yaml:"app_url" toml:"app_url"`
}

// DefaultPrompt selects the prompt template and its fallback text
type DefaultPrompt struct {
	PromptTemplateName string       `yaml:"prompt_template_name" toml:"prompt_template_name"`
	System             SystemPrompt `yaml:"system" toml:"system"`
}

// SystemPrompt is the template text used when no template file is found
type SystemPrompt struct {
	Prompt string `yaml:"prompt" toml:"prompt"`
}

// TelegramClient describes the client identity presented to Telegram
type TelegramClient struct {
	DeviceModel       string  `yaml:"device_model" toml:"device_model"`
	SystemVersion     string  `yaml:"system_version" toml:"system_version"`
	AppVersion        string  `yaml:"app_version" toml:"app_version"`
	SystemLangCode    string  `yaml:"system_lang_code" toml:"system_lang_code"`
	LangCode          string  `yaml:"lang_code" toml:"lang_code"`
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
}

// History configures the local run history database
type History struct {
	Path    string `yaml:"path" toml:"path"`
	Enabled bool   `yaml:"enabled" toml:"enabled"`
}

// Secrets holds credentials read from the environment
type Secrets struct {
	TelegramAPIID         int    `env:"TELEGRAM_API_ID"`
	TelegramAPIHash       string `env:"TELEGRAM_API_HASH"`
	TelegramStringSession string `env:"TELEGRAM_STRING_SESSION"`
	DefaultChannelID      string `env:"DEFAULT_TELEGRAM_CHANNEL_ID"`
	OpenRouterAPIKey      string `env:"OPENROUTER_API_KEY"`
}

// Config is the loaded configuration for one run
type Config struct {
	Path     string
	Settings Settings
	Secrets  Secrets
}

// Defaults returns the settings used when no config file is present
func Defaults() Settings {
	return Settings{
		MessageFetching: MessageFetching{DefaultLimit: 100},
		OpenRouter: OpenRouter{
			BaseURL:      "https://openrouter.ai/api/v1",
			DefaultModel: "openai/o4-mini-high",
			Models: map[string]string{
				"openai-o4-mini":                 "openai/o4-mini-high",
				"anthropic-3.7-sonnet":           "anthropic/claude-3.7-sonnet",
				"gemini-2.5-flash-preview-05-20": "google/gemini-2.5-flash-preview-05-20",
			},
			Timeout:    180 * time.Second,
			MaxRetries: 2,
			AppName:    "tgsum",
		},
		DefaultPrompt: DefaultPrompt{PromptTemplateName: "overall_prompt"},
		PromptsDir:    filepath.Join("data", "prompts"),
		TelegramClient: TelegramClient{
			DeviceModel:       "tgsum",
			SystemVersion:     "linux",
			AppVersion:        "1.0",
			SystemLangCode:    "en",
			LangCode:          "en",
			RequestsPerSecond: 5,
		},
		History: History{
			Path:    defaultHistoryPath(),
			Enabled: true,
		},
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tgsum", "history.db")
	}
	return filepath.Join(home, ".tgsum", "history.db")
}

// Load reads settings from path and secrets from envFiles and the process environment.
// An empty path means DefaultPath. A missing settings file is not an error.
func Load(path string, envFiles []string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	settings, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}

	if _, err := LoadEnv(envFiles); err != nil {
		return nil, &internal.ConfigError{Source: "environment", Err: err}
	}

	secrets, err := ParseSecrets()
	if err != nil {
		return nil, err
	}

	return &Config{Path: path, Settings: settings, Secrets: secrets}, nil
}

// LoadSettings decodes the settings file at path over the defaults
func LoadSettings(path string) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			internal.LogWarn("%s not found, using default settings", path)
			return settings, nil
		}
		return settings, &internal.ConfigError{Source: path, Err: err}
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &settings); err != nil {
			return settings, &internal.ConfigError{Source: path, Err: err}
		}
	} else if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, &internal.ConfigError{Source: path, Err: err}
	}

	settings.History.Path = expandHome(settings.History.Path)
	if err := settings.Validate(); err != nil {
		return settings, &internal.ConfigError{Source: path, Err: err}
	}
	return settings, nil
}

// Validate checks settings values that have no usable meaning when out of range
func (s Settings) Validate() error {
	if s.MessageFetching.DefaultLimit <= 0 {
		return fmt.Errorf("message_fetching.default_limit must be positive, got %d", s.MessageFetching.DefaultLimit)
	}
	if s.OpenRouter.MaxRetries < 0 {
		return fmt.Errorf("openrouter.max_retries must not be negative")
	}
	if s.TelegramClient.RequestsPerSecond < 0 {
		return fmt.Errorf("telegram_client.requests_per_second must not be negative")
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// LoadEnv loads the env files that exist and returns how many were loaded.
// Variables already set in the environment take precedence.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// ParseSecrets reads the secrets from the process environment
func ParseSecrets() (Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return s, &internal.ConfigError{Source: "environment", Key: "TELEGRAM_API_ID", Err: err}
	}
	return s, nil
}

// RequireTelegram checks that the Telegram credentials are present
func (c *Config) RequireTelegram() error {
	var missing []string
	if c.Secrets.TelegramAPIID == 0 {
		missing = append(missing, "TELEGRAM_API_ID")
	}
	if c.Secrets.TelegramAPIHash == "" {
		missing = append(missing, "TELEGRAM_API_HASH")
	}
	return missingError(missing)
}

// RequireSession checks the Telegram credentials and the session string
func (c *Config) RequireSession() error {
	if err := c.RequireTelegram(); err != nil {
		return err
	}
	if c.Secrets.TelegramStringSession == "" {
		return &internal.ConfigError{
			Source: "environment",
			Key:    "TELEGRAM_STRING_SESSION",
			Err:    errors.New("not set; run `tgsum session` to create one"),
		}
	}
	return nil
}

// RequireOpenRouter checks that the OpenRouter API key is present
func (c *Config) RequireOpenRouter() error {
	if c.Secrets.OpenRouterAPIKey == "" {
		return missingError([]string{"OPENROUTER_API_KEY"})
	}
	return nil
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return &internal.ConfigError{
		Source: "environment",
		Key:    strings.Join(missing, ", "),
		Err:    errors.New("missing required environment variables"),
	}
}

// ResolveModel maps a model alias to its id. Unknown names are returned as is and
// an empty name resolves the default model.
func (c *Config) ResolveModel(name string) string {
	if name == "" {
		name = c.Settings.OpenRouter.DefaultModel
	}
	if id, ok := c.Settings.OpenRouter.Models[name]; ok {
		return id
	}
	return name
}

// ModelAliases returns the configured aliases in sorted order
func (c *Config) ModelAliases() []string {
	aliases := make([]string, 0, len(c.Settings.OpenRouter.Models))
	for alias := range c.Settings.OpenRouter.Models {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// ChatRef returns chat, or the default channel when chat is empty
func (c *Config) ChatRef(chat string) string {
	if chat != "" {
		return chat
	}
	return c.Secrets.DefaultChannelID
}
