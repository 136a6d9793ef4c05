// Package config loads service configuration from defaults, an optional
// YAML file, and environment variables, in that priority order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ModelConfig describes one entry of the static model table: the concrete
// provider model behind a logical model key, where its credential lives,
// and what one call costs in credits.
type ModelConfig struct {
	ProviderModel string `yaml:"provider_model"`
	CredentialEnv string `yaml:"credential_env"`
	BaseURL       string `yaml:"base_url"`
	CreditCost    int    `yaml:"credit_cost"`
	Streaming     bool   `yaml:"streaming"`
}

// Features contains feature flags for the pipeline.
type Features struct {
	EnableRetrieval   bool `yaml:"enable_retrieval"`
	EnableWebSearch   bool `yaml:"enable_web_search"`
	EnableImageAttach bool `yaml:"enable_image_attach"`
	EnableAutomations bool `yaml:"enable_automations"`
}

// Timeouts groups the pipeline deadlines. Retrieval and search have their
// own shorter sub-timeouts so they can be skipped without aborting the
// overall request.
type Timeouts struct {
	Pipeline  time.Duration `yaml:"pipeline"`
	Model     time.Duration `yaml:"model"`
	Retrieval time.Duration `yaml:"retrieval"`
	Search    time.Duration `yaml:"search"`
}

// Config is the full service configuration.
type Config struct {
	ServerAddr string `yaml:"server_addr"`

	Region          string `yaml:"region"`
	DocumentTable   string `yaml:"document_table"`
	LedgerTable     string `yaml:"ledger_table"`
	AutomationTable string `yaml:"automation_table"`
	TurnTable       string `yaml:"turn_table"`
	OwnerIndex      string `yaml:"owner_index"`

	// Media attachment (cover image generation).
	MediaBucket  string `yaml:"media_bucket"`
	MediaBaseURL string `yaml:"media_base_url"`
	ImageModel   string `yaml:"image_model"`

	Models       map[string]ModelConfig `yaml:"models"`
	DefaultModel string                 `yaml:"default_model"`

	Features Features `yaml:"features"`
	Timeouts Timeouts `yaml:"timeouts"`

	// Context assembly limits.
	DocumentHeadChars int `yaml:"document_head_chars"`
	DocumentTailChars int `yaml:"document_tail_chars"`
	RetrievalTopK     int `yaml:"retrieval_top_k"`
	SearchResultCount int `yaml:"search_result_count"`

	// Automation extraction.
	CallbackOrigin       string `yaml:"callback_origin"`
	DefaultTimezone      string `yaml:"default_timezone"`
	ConfirmWindowSeconds int    `yaml:"confirm_window_seconds"`
}

// Default returns the built-in defaults, suitable for local development.
func Default() Config {
	return Config{
		ServerAddr:      ":8080",
		Region:          "us-east-1",
		DocumentTable:   "draftpad-documents",
		LedgerTable:     "draftpad-ledger",
		AutomationTable: "draftpad-automations",
		TurnTable:       "draftpad-turns",
		OwnerIndex:      "OwnerIndex",
		ImageModel:      "gpt-image-1",
		Models: map[string]ModelConfig{
			"standard": {
				ProviderModel: "gpt-4o",
				CredentialEnv: "OPENAI_API_KEY",
				CreditCost:    5,
				Streaming:     true,
			},
			"lite": {
				ProviderModel: "gpt-4o-mini",
				CredentialEnv: "OPENAI_API_KEY",
				CreditCost:    0,
				Streaming:     true,
			},
		},
		DefaultModel: "standard",
		Features: Features{
			EnableRetrieval:   true,
			EnableWebSearch:   true,
			EnableImageAttach: false,
			EnableAutomations: true,
		},
		Timeouts: Timeouts{
			Pipeline:  5 * time.Minute,
			Model:     3 * time.Minute,
			Retrieval: 10 * time.Second,
			Search:    10 * time.Second,
		},
		DocumentHeadChars:    6000,
		DocumentTailChars:    2000,
		RetrievalTopK:        5,
		SearchResultCount:    3,
		DefaultTimezone:      "UTC",
		ConfirmWindowSeconds: 60,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// DRAFTPAD_CONFIG if present, then environment variable overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("DRAFTPAD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.ServerAddr = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("DOCUMENT_TABLE"); v != "" {
		cfg.DocumentTable = v
	}
	if v := os.Getenv("LEDGER_TABLE"); v != "" {
		cfg.LedgerTable = v
	}
	if v := os.Getenv("AUTOMATION_TABLE"); v != "" {
		cfg.AutomationTable = v
	}
	if v := os.Getenv("TURN_TABLE"); v != "" {
		cfg.TurnTable = v
	}
	if v := os.Getenv("MEDIA_BUCKET"); v != "" {
		cfg.MediaBucket = v
	}
	if v := os.Getenv("MEDIA_BASE_URL"); v != "" {
		cfg.MediaBaseURL = v
	}
	if v := os.Getenv("CALLBACK_ORIGIN"); v != "" {
		cfg.CallbackOrigin = v
	}
	if v := os.Getenv("DEFAULT_TIMEZONE"); v != "" {
		cfg.DefaultTimezone = v
	}
	if v := os.Getenv("ENABLE_RETRIEVAL"); v != "" {
		cfg.Features.EnableRetrieval = v == "true"
	}
	if v := os.Getenv("ENABLE_WEB_SEARCH"); v != "" {
		cfg.Features.EnableWebSearch = v == "true"
	}
	if v := os.Getenv("ENABLE_IMAGE_ATTACH"); v != "" {
		cfg.Features.EnableImageAttach = v == "true"
	}
	if v := os.Getenv("ENABLE_AUTOMATIONS"); v != "" {
		cfg.Features.EnableAutomations = v == "true"
	}
	if v := os.Getenv("CONFIRM_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ConfirmWindowSeconds = n
		}
	}
}

// Validate checks invariants that would otherwise fail deep inside the
// pipeline.
func (c Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("config: model table is empty")
	}
	if _, ok := c.Models[c.DefaultModel]; !ok {
		return fmt.Errorf("config: default model %q is not in the model table", c.DefaultModel)
	}
	for key, m := range c.Models {
		if m.ProviderModel == "" {
			return fmt.Errorf("config: model %q has no provider model", key)
		}
		if m.CreditCost < 0 {
			return fmt.Errorf("config: model %q has negative credit cost", key)
		}
	}
	return nil
}
