//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads client settings from a file and the environment.
//
// Any format viper reads (YAML, JSON, TOML) is accepted:
//
//	api_key: ...
//	model: gemini-1.5-pro
//	timeout: 90s
//	content_sniffing: true
//	log_level: debug
//
// Every key can also be set as GENAI_<KEY>, e.g. GENAI_TIMEOUT=30s. The API
// key is additionally read from GEMINI_API_KEY, then GOOGLE_API_KEY.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"trpc.group/trpc-go/trpc-genai-go/client"
	"trpc.group/trpc-go/trpc-genai-go/log"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "GENAI"

// Config is the decoded configuration.
type Config struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	BaseURL         string        `mapstructure:"base_url"`
	EmbedURL        string        `mapstructure:"embed_url"`
	UploadURL       string        `mapstructure:"upload_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	TempDir         string        `mapstructure:"temp_dir"`
	UserAgent       string        `mapstructure:"user_agent"`
	ContentSniffing bool          `mapstructure:"content_sniffing"`
	LogLevel        string        `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"api_key":          "",
	"model":            client.DefaultModel,
	"base_url":         "",
	"embed_url":        "",
	"upload_url":       "",
	"timeout":          "0s",
	"temp_dir":         "",
	"user_agent":       "",
	"content_sniffing": false,
	"log_level":        log.LevelInfo,
}

// Load reads path, if non-empty, and applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind api key env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot produce a working client.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("config: api_key is not set (GEMINI_API_KEY or GOOGLE_API_KEY)")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	switch c.LogLevel {
	case "", log.LevelDebug, log.LevelInfo, log.LevelWarn, log.LevelError, log.LevelFatal:
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// ClientOptions maps the configuration to client options. BaseURL takes
// precedence over Model.
func (c *Config) ClientOptions() []client.Option {
	var opts []client.Option
	switch {
	case c.BaseURL != "":
		opts = append(opts, client.WithBaseURL(c.BaseURL))
	case c.Model != "":
		opts = append(opts, client.WithModel(c.Model))
	}
	if c.EmbedURL != "" {
		opts = append(opts, client.WithEmbedURL(c.EmbedURL))
	}
	if c.UploadURL != "" {
		opts = append(opts, client.WithUploadURL(c.UploadURL))
	}
	if c.Timeout > 0 {
		opts = append(opts, client.WithTimeout(c.Timeout))
	}
	if c.TempDir != "" {
		opts = append(opts, client.WithTempDir(c.TempDir))
	}
	if c.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(c.UserAgent))
	}
	if c.ContentSniffing {
		opts = append(opts, client.WithContentSniffing(true))
	}
	return opts
}

// NewClient applies the log level and builds a client. Extra options are
// applied after the configured ones.
func NewClient(cfg *Config, extra ...client.Option) (*client.Client, error) {
	if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
	}
	return client.New(cfg.APIKey, append(cfg.ClientOptions(), extra...)...)
}
