// Package config loads the YAML configuration of the Rosetta service and CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ─── Sections ───────────────────────────────────────────────────────────

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ConclusionConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	PromptID       string `yaml:"prompt_id"`
	PromptVersion  string `yaml:"prompt_version"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxInputLength int    `yaml:"max_input_length"`
}

type FilterConfig struct {
	Level       string `yaml:"level"`        // "high" or "low"
	Preset      string `yaml:"preset"`       // applied when a request names none
	PresetsFile string `yaml:"presets_file"` // optional CSV of extra presets
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the top-level structure of rosetta.yaml.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Conclusion ConclusionConfig `yaml:"conclusion"`
	Filter     FilterConfig     `yaml:"filter"`
	Log        LogConfig        `yaml:"log"`
}

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey   = "OPENAI_API_KEY"
	EnvPromptID = "PROMPT_ID"
	EnvModel    = "FT_MODEL_NAME"
	EnvAddr     = "ROSETTA_ADDR"
	EnvLogLevel = "ROSETTA_LOG_LEVEL"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			MaxUploadMB:    50,
			AllowedOrigins: []string{"*"},
		},
		Conclusion: ConclusionConfig{
			BaseURL:        "https://api.openai.com/v1",
			PromptID:       "pmpt_691eb6347b388194bab33de01809fa1f0fb2b90b7c2f4bd5",
			PromptVersion:  "4",
			Model:          "ft:gpt-4o-mini:astroquimico-2025",
			TimeoutSeconds: 60,
			MaxInputLength: 100000,
		},
		Filter: FilterConfig{Level: "high"},
		Log:    LogConfig{Level: "info"},
	}
}

// ─── Loaders ────────────────────────────────────────────────────────────

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment through lookup, which is
// usually os.LookupEnv. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvAPIKey, &c.Conclusion.APIKey)
	set(EnvPromptID, &c.Conclusion.PromptID)
	set(EnvModel, &c.Conclusion.Model)
	set(EnvAddr, &c.Server.Addr)
	set(EnvLogLevel, &c.Log.Level)
}

// Validate rejects settings that would make the service unusable.
func (c *Config) Validate() error {
	var errs []string
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, "server.max_upload_mb must be positive, got "+strconv.Itoa(c.Server.MaxUploadMB))
	}
	if c.Conclusion.TimeoutSeconds <= 0 {
		errs = append(errs, "conclusion.timeout_seconds must be positive")
	}
	if c.Conclusion.MaxInputLength <= 0 {
		errs = append(errs, "conclusion.max_input_length must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
