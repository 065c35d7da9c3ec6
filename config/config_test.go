//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-genai-go/client"
	"trpc.group/trpc-go/trpc-genai-go/internal/fakeapi"
	"trpc.group/trpc-go/trpc-genai-go/log"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "GENAI_API_KEY", "GENAI_TIMEOUT", "GENAI_MODEL"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "genai.yaml", `
api_key: from-file
model: gemini-1.5-pro
timeout: 90s
temp_dir: /var/tmp/genai
user_agent: my-app/2.0
content_sniffing: true
log_level: debug
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.Model)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "/var/tmp/genai", cfg.TempDir)
	assert.Equal(t, "my-app/2.0", cfg.UserAgent)
	assert.True(t, cfg.ContentSniffing)
	assert.Equal(t, log.LevelDebug, cfg.LogLevel)
}

func TestLoad_JSON(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "genai.json", `{"api_key":"k","base_url":"http://localhost:1/v1beta/models/m"}`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1/v1beta/models/m", cfg.BaseURL)
	assert.Equal(t, client.DefaultModel, cfg.Model)
	assert.Equal(t, log.LevelInfo, cfg.LogLevel)
}

func TestLoad_EnvAPIKeyPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "google", cfg.APIKey)

	t.Setenv("GEMINI_API_KEY", "gemini")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.APIKey)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENAI_TIMEOUT", "5s")
	t.Setenv("GENAI_MODEL", "gemini-2.0-flash")
	p := writeFile(t, "genai.toml", "api_key = \"k\"\ntimeout = \"1m\"\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := Load("")
	assert.ErrorContains(t, err, "api_key")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file failed")

	p := writeFile(t, "bad.yaml", "api_key: k\nlog_level: verbose\n")
	_, err = Load(p)
	assert.ErrorContains(t, err, "log_level")
}

func TestNewClient(t *testing.T) {
	s := fakeapi.New()
	defer s.Close()
	defer log.SetLevel(log.LevelInfo)

	cfg := &Config{
		APIKey:    "k",
		BaseURL:   s.GenerateBase(),
		EmbedURL:  s.EmbedBase(),
		UploadURL: s.UploadBase(),
		Timeout:   10 * time.Second,
		LogLevel:  log.LevelWarn,
	}
	c, err := NewClient(cfg, client.WithHTTPClient(s.Client()))
	require.NoError(t, err)

	_, err = c.GenerateContent(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Len(t, s.RequestsTo("/v1beta/models/"+fakeapi.Model+":generateContent"), 1)
}

func TestClientOptions(t *testing.T) {
	assert.Empty(t, (&Config{}).ClientOptions())
	assert.Len(t, (&Config{Model: "m", BaseURL: "u"}).ClientOptions(), 1)
	assert.Len(t, (&Config{
		Model: "m", EmbedURL: "e", UploadURL: "u", Timeout: time.Second,
		TempDir: "t", UserAgent: "a", ContentSniffing: true,
	}).ClientOptions(), 7)
}
