//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package fakeapi

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_GenerateAndRecord(t *testing.T) {
	s := New()
	defer s.Close()

	resp, err := http.Post(s.GenerateBase()+":generateContent?key=k", "application/json",
		strings.NewReader(`{"contents":[{"parts":[{"text":"hi"}]}]}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, GenerateResponse, string(body))

	reqs := s.RequestsTo("/v1beta/models/" + Model + ":generateContent")
	require.Len(t, reqs, 1)
	assert.Equal(t, "k", reqs[0].Query.Get("key"))
	assert.JSONEq(t, `{"contents":[{"parts":[{"text":"hi"}]}]}`, string(reqs[0].Body))
}

func TestServer_APIKeyRequired(t *testing.T) {
	s := New()
	defer s.Close()
	s.APIKey = "secret"

	resp, err := http.Post(s.EmbedBase()+":embedContent?key=wrong", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_FailAndReset(t *testing.T) {
	s := New()
	defer s.Close()

	s.Fail(EndpointEmbed, http.StatusTooManyRequests, `{"error":{"code":429}}`)
	resp, err := http.Post(s.EmbedBase()+":embedContent", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	s.Reset()
	assert.Empty(t, s.Requests())
	resp, err = http.Post(s.EmbedBase()+":embedContent", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Asset(t *testing.T) {
	s := New()
	defer s.Close()

	u := s.AddAsset("img/a.png", []byte("png-bytes"))
	resp, err := http.Get(u)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "png-bytes", string(body))

	resp, err = http.Get(s.URL + "/assets/missing.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
