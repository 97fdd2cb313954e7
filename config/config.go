package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tbxark/talentscout/screening"
	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

type Config struct {
	APIKey                string  `json:"api_key" yaml:"api_key" validate:"required"`
	BaseURL               string  `json:"base_url" yaml:"base_url" validate:"required,url"`
	Model                 string  `json:"model" yaml:"model" validate:"required"`
	ConfidenceModel       string  `json:"confidence_model,omitempty" yaml:"confidence_model,omitempty"`
	QuestionsTemperature  float32 `json:"questions_temperature" yaml:"questions_temperature" validate:"gte=0,lte=2"`
	ConfidenceTemperature float32 `json:"confidence_temperature" yaml:"confidence_temperature" validate:"gte=0,lte=2"`
	TimeoutSeconds        int     `json:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
	LogLevel              string  `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

func Default() *Config {
	return &Config{
		BaseURL:               DefaultBaseURL,
		Model:                 screening.DefaultModel,
		QuestionsTemperature:  screening.DefaultQuestionsTemperature,
		ConfidenceTemperature: screening.DefaultConfidenceTemperature,
		TimeoutSeconds:        int(screening.DefaultTimeout / time.Second),
		LogLevel:              "info",
	}
}

// Load reads path over the defaults. Files ending in .yaml or .yml are YAML,
// anything else is JSON. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}
	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Config file not found, using defaults", "path", path)
			return conf, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(file, conf)
	default:
		err = json.Unmarshal(file, conf)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return conf, nil
}

// ApplyEnv fills the API key from GROQ_API_KEY, then OPENAI_API_KEY, when the
// file did not set one.
func (c *Config) ApplyEnv() {
	if c.APIKey != "" {
		return
	}
	for _, name := range []string{"GROQ_API_KEY", "OPENAI_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			c.APIKey = v
			return
		}
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) ConfidenceModelOrDefault() string {
	if c.ConfidenceModel != "" {
		return c.ConfidenceModel
	}
	return c.Model
}

// ScreeningOptions maps the generation settings onto the screening builder.
func (c *Config) ScreeningOptions() []screening.Option {
	return []screening.Option{
		screening.WithQuestionsCall(c.Model, c.QuestionsTemperature),
		screening.WithConfidenceCall(c.ConfidenceModelOrDefault(), c.ConfidenceTemperature),
		screening.WithTimeout(c.Timeout()),
	}
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
