// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litscout/pkg/types"
)

const defaultUserAgent = "litscout/0.1"

// loadPipelineConfig reads the config file viper located and fills in
// defaults and secret-backed fields. A missing config file yields defaults
// only; individual commands decide whether that is workable.
func loadPipelineConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	// Environment overrides (LITSCOUT_EMAIL, LITSCOUT_DB_PATH).
	if v := viper.GetString("email"); v != "" {
		cfg.Fetch.Email = v
		cfg.Resolve.Email = v
	}
	if v := viper.GetString("db_path"); v != "" {
		cfg.Store.Path = v
	}

	// Contact emails and the Semantic Scholar key fall back to .secrets/.
	cfg.Fetch.Email = secretDefault("openalex-email", cfg.Fetch.Email)
	cfg.Resolve.Email = secretDefault("unpaywall-email", cfg.Resolve.Email)
	if cfg.Resolve.Email == "" {
		cfg.Resolve.Email = cfg.Fetch.Email
	}
	cfg.Resolve.SemanticScholarAPIKey = secretDefault("semantic-scholar-api-key", cfg.Resolve.SemanticScholarAPIKey)

	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = defaultUserAgent
	}
	if cfg.Resolve.UserAgent == "" {
		cfg.Resolve.UserAgent = defaultUserAgent
	}
	if cfg.Fetch.LookbackDays <= 0 {
		cfg.Fetch.LookbackDays = 7
	}
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Resolve.Timeout <= 0 {
		cfg.Resolve.Timeout = 60 * time.Second
	}
	return cfg, nil
}

// lookbackDays resolves the window length from the --days flag when given,
// the config otherwise.
func lookbackDays(flagDays int, cfg types.PipelineConfig) int {
	if flagDays > 0 {
		return flagDays
	}
	return cfg.Fetch.LookbackDays
}
