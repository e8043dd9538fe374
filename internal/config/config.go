// Copyright (c) 2026 the Costimizer authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads configuration from config.yaml and environment
// variables. The YAML file is optional; every setting can be supplied
// through the environment, and ${VAR} references in the YAML are expanded
// before parsing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the guide service.
type Config struct {
	// Server
	Port int

	// Postgres
	DatabaseURL string

	// Redis
	RedisURL  string
	JobsQueue string

	// Stripe
	StripeWebhookSecret string

	// OpenAI
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	MaxOutputTokens int

	// Resend. Empty API key disables email sending (logged instead).
	ResendAPIKey string
	FromEmail    string

	// PublicBaseURL is the site root used in notification links.
	PublicBaseURL string

	// Generation bounds. Day ceiling and topic lists are configuration,
	// not hardcoded invariants.
	MaxDays        int
	MaxAttempts    int
	AttemptTimeout time.Duration

	// Section topic overrides. Empty slices mean the built-in defaults.
	PracticalInfoTopics    []string
	CultureEtiquetteTopics []string
	EmergencyTopics        []string
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		URL    string `yaml:"url"`
		Queues struct {
			Jobs string `yaml:"jobs"`
		} `yaml:"queues"`
	} `yaml:"redis"`
	Stripe struct {
		WebhookSecret string `yaml:"webhook_secret"`
	} `yaml:"stripe"`
	OpenAI struct {
		APIKey          string `yaml:"api_key"`
		Model           string `yaml:"model"`
		BaseURL         string `yaml:"base_url"`
		MaxOutputTokens int    `yaml:"max_output_tokens"`
	} `yaml:"openai"`
	Resend struct {
		APIKey    string `yaml:"api_key"`
		FromEmail string `yaml:"from_email"`
	} `yaml:"resend"`
	Guide struct {
		PublicBaseURL    string   `yaml:"public_base_url"`
		MaxDays          int      `yaml:"max_days"`
		MaxAttempts      int      `yaml:"max_attempts"`
		AttemptTimeout   string   `yaml:"attempt_timeout"`
		PracticalInfo    []string `yaml:"practical_info_topics"`
		CultureEtiquette []string `yaml:"culture_etiquette_topics"`
		Emergency        []string `yaml:"emergency_topics"`
	} `yaml:"guide"`
}

// Load reads configuration from config.yaml (when present, with env var
// expansion) and environment variables. Environment variables win over
// YAML values. Returns an error listing any required settings left unset.
func Load() (*Config, error) {
	var raw rawConfig

	configPath := envOrDefault("CONFIG_PATH", "config.yaml")
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config YAML %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// Env-only configuration is fine.
	default:
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	cfg := &Config{
		Port:                envOrDefaultInt("PORT", 8080),
		DatabaseURL:         firstNonEmpty(os.Getenv("DATABASE_URL"), raw.Database.URL),
		RedisURL:            firstNonEmpty(os.Getenv("REDIS_URL"), raw.Redis.URL, "redis://localhost:6379/0"),
		JobsQueue:           firstNonEmpty(os.Getenv("JOBS_QUEUE"), raw.Redis.Queues.Jobs, "guide_jobs"),
		StripeWebhookSecret: firstNonEmpty(os.Getenv("STRIPE_WEBHOOK_SECRET"), raw.Stripe.WebhookSecret),
		OpenAIAPIKey:        firstNonEmpty(os.Getenv("OPENAI_API_KEY"), raw.OpenAI.APIKey),
		OpenAIModel:         firstNonEmpty(os.Getenv("OPENAI_MODEL"), raw.OpenAI.Model, "gpt-4o-mini"),
		OpenAIBaseURL:       firstNonEmpty(os.Getenv("OPENAI_BASE_URL"), raw.OpenAI.BaseURL),
		MaxOutputTokens:     firstPositive(envInt("OPENAI_MAX_OUTPUT_TOKENS"), raw.OpenAI.MaxOutputTokens, 3000),
		ResendAPIKey:        firstNonEmpty(os.Getenv("RESEND_API_KEY"), raw.Resend.APIKey),
		FromEmail:           firstNonEmpty(os.Getenv("FROM_EMAIL"), raw.Resend.FromEmail, "guides@costimizer.app"),
		PublicBaseURL:       firstNonEmpty(os.Getenv("PUBLIC_BASE_URL"), raw.Guide.PublicBaseURL, "http://localhost:3000"),
		MaxDays:             firstPositive(envInt("MAX_DAYS"), raw.Guide.MaxDays, 30),
		MaxAttempts:         firstPositive(envInt("MAX_ATTEMPTS"), raw.Guide.MaxAttempts, 3),
		AttemptTimeout:      durationOr(os.Getenv("ATTEMPT_TIMEOUT"), raw.Guide.AttemptTimeout, 45*time.Second),

		PracticalInfoTopics:    raw.Guide.PracticalInfo,
		CultureEtiquetteTopics: raw.Guide.CultureEtiquette,
		EmergencyTopics:        raw.Guide.Emergency,
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if cfg.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required configuration not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if n := envInt(key); n > 0 {
		return n
	}
	return fallback
}

// envInt returns 0 when the variable is unset or unparsable.
func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// durationOr parses the first non-empty duration string, falling back to
// the default when both are empty or unparsable.
func durationOr(envVal, yamlVal string, fallback time.Duration) time.Duration {
	for _, v := range []string{envVal, yamlVal} {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
