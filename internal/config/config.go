package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultContextTemplate  = "The following is a set of temporal facts. All dates are in the format year-month-day. Facts:\n%s"
	DefaultQuestionTemplate = "What is the entity with the latest relation %s? Answer just with the entity name."
	DefaultAnswerPattern    = `e[0-9]+`
)

type LLMConfig struct {
	Provider  string `toml:"provider" validate:"required,oneof=openai local ollama claude gemini hf_qa"`
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	MaxTokens int    `toml:"max_tokens" validate:"gte=1"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type GenerateConfig struct {
	Entities  int     `toml:"entities" validate:"gte=1,lte=10000"`
	Relations int     `toml:"relations" validate:"gte=1,lte=10000"`
	StartYear int     `toml:"start_year" validate:"gte=1,lte=9999"`
	EndYear   int     `toml:"end_year" validate:"gte=1,lte=9999"`
	NGraphs   int     `toml:"n_graphs" validate:"gte=1"`
	Seed      *uint64 `toml:"seed"`
}

type EvalConfig struct {
	Dataset          string `toml:"dataset"`
	Strategy         string `toml:"strategy" validate:"oneof=as_is shuffle interleave_asc interleave_desc latest"`
	BatchSize        int    `toml:"batch_size" validate:"gte=1"`
	NGraphs          int    `toml:"n_graphs"`
	NInstances       int    `toml:"n_instances"`
	StartBatch       int    `toml:"start_batch" validate:"gte=0"`
	ResultsPath      string `toml:"results_path" validate:"required"`
	ContextTemplate  string `toml:"context_template" validate:"required"`
	QuestionTemplate string `toml:"question_template" validate:"required"`
	AnswerPattern    string `toml:"answer_pattern" validate:"required"`
}

type RetryConfig struct {
	MaxAttempts    int `toml:"max_attempts" validate:"gte=1"`
	BackoffSeconds int `toml:"backoff_seconds" validate:"gte=0"`
}

type BreakerConfig struct {
	Enabled     bool    `toml:"enabled"`
	MaxRequests uint32  `toml:"max_requests"`
	Interval    int     `toml:"interval"`
	Timeout     int     `toml:"timeout"`
	TripRatio   float64 `toml:"trip_ratio" validate:"gte=0,lte=1"`
}

type CacheConfig struct {
	Dir string `toml:"dir"`
}

type LogConfig struct {
	Level       string `toml:"level" validate:"oneof=debug info warn error"`
	Development bool   `toml:"development"`
}

type ServerConfig struct {
	Port int `toml:"port" validate:"gte=1,lte=65535"`
}

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Generate GenerateConfig `toml:"generate"`
	Eval     EvalConfig     `toml:"eval"`
	Retry    RetryConfig    `toml:"retry"`
	Breaker  BreakerConfig  `toml:"breaker"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
}

// Default mirrors the defaults of the original dataset and evaluation tools.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "local",
			BaseURL:   "http://localhost:8000/v1",
			MaxTokens: 20,
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Generate: GenerateConfig{
			Entities:  10,
			Relations: 4,
			StartYear: 2000,
			EndYear:   2025,
			NGraphs:   1,
		},
		Eval: EvalConfig{
			Strategy:         "as_is",
			BatchSize:        1,
			NGraphs:          -1,
			NInstances:       -1,
			ResultsPath:      "results.csv",
			ContextTemplate:  DefaultContextTemplate,
			QuestionTemplate: DefaultQuestionTemplate,
			AnswerPattern:    DefaultAnswerPattern,
		},
		Retry: RetryConfig{
			MaxAttempts:    5,
			BackoffSeconds: 20,
		},
		Breaker: BreakerConfig{
			MaxRequests: 1,
			Interval:    60,
			Timeout:     30,
			TripRatio:   0.6,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load reads a TOML file over the defaults, so a file only needs the keys
// it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load that falls back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Generate.StartYear >= c.Generate.EndYear {
		return fmt.Errorf("invalid config: generate.start_year (%d) must be before generate.end_year (%d)",
			c.Generate.StartYear, c.Generate.EndYear)
	}
	return nil
}

// ApplyEnv overrides file values with the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	} else if v := os.Getenv("API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}
