//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-genai-go/errs"
)

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("http://example.com/a.png"))
	assert.True(t, IsURL("https://example.com"))
	assert.False(t, IsURL("ftp://example.com/a.png"))
	assert.False(t, IsURL("HTTP://example.com"))
	assert.False(t, IsURL("/tmp/a.png"))
}

func TestResolve_Local(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	h, err := New().Resolve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, h.Path)
	assert.Equal(t, "notes.txt", h.Name)
	assert.Equal(t, int64(5), h.Size)
	assert.False(t, h.Remote)

	data, err := io.ReadAll(h)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, h.Close())
	_, err = os.Stat(p)
	assert.NoError(t, err, "local files must survive Close")
}

func TestResolve_Invalid(t *testing.T) {
	for _, src := range []string{"not-a-url-or-path", t.TempDir(), ""} {
		_, err := New().Resolve(context.Background(), src)
		var invalid *errs.InvalidSourceError
		require.ErrorAs(t, err, &invalid, "source %q", src)
		assert.Equal(t, src, invalid.Source)
	}
}

func TestResolve_HTTP(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 4096)
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer server.Close()

	tmp := t.TempDir()
	r := New(WithTempDir(tmp), WithUserAgent("test-agent/1.0"), WithHTTPClient(server.Client()))
	h, err := r.Resolve(context.Background(), server.URL+"/images/photo.png?x=1")
	require.NoError(t, err)

	assert.True(t, h.Remote)
	assert.Equal(t, "photo.png", h.Name)
	assert.Equal(t, int64(len(payload)), h.Size)
	assert.Equal(t, ".png", filepath.Ext(h.Path))
	assert.Equal(t, tmp, filepath.Dir(h.Path))
	assert.Equal(t, "test-agent/1.0", gotUA)

	data, err := io.ReadAll(h)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	require.NoError(t, h.Close())
	_, err = os.Stat(h.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "fetched artifact must be removed on Close")
}

func TestResolve_HTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusNotFound)
	}))
	defer server.Close()

	tmp := t.TempDir()
	_, err := New(WithTempDir(tmp)).Resolve(context.Background(), server.URL+"/missing.png")
	var netErr *errs.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusNotFound, netErr.StatusCode)
	assert.Contains(t, netErr.Body, "gone fishing")

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed on fetch failure")
}

func TestResolve_HTTPTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL + "/a.png"
	server.Close()

	_, err := New(WithTempDir(t.TempDir())).Resolve(context.Background(), url)
	var netErr *errs.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
	assert.Error(t, netErr.Err)
}

type stubFetcher struct {
	data []byte
	err  error
	got  string
}

func (s *stubFetcher) Fetch(_ context.Context, src string, w io.Writer) error {
	s.got = src
	if s.err != nil {
		return s.err
	}
	_, err := w.Write(s.data)
	return err
}

func TestResolve_CustomScheme(t *testing.T) {
	f := &stubFetcher{data: []byte("%PDF-1.4")}
	tmp := t.TempDir()
	r := New(WithTempDir(tmp), WithFetcher("cos", f))

	h, err := r.Resolve(context.Background(), "cos://reports/q3.pdf")
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "cos://reports/q3.pdf", f.got)
	assert.Equal(t, "q3.pdf", h.Name)
	assert.Equal(t, int64(8), h.Size)
	assert.True(t, h.Remote)
}

func TestResolve_CustomSchemeError(t *testing.T) {
	want := &errs.NetworkError{URL: "cos://x.bin", StatusCode: 403, Status: "403 Forbidden"}
	tmp := t.TempDir()
	r := New(WithTempDir(tmp), WithFetcher("cos", &stubFetcher{err: want}))

	_, err := r.Resolve(context.Background(), "cos://x.bin")
	assert.Same(t, want, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com/a/b/photo.jpg": "photo.jpg",
		"https://example.com/doc.pdf?dl=1":  "doc.pdf",
		"https://example.com/":              "example.com",
		"https://example.com":               "example.com",
		"cos://bucket-path/obj/report.docx": "report.docx",
		"https://example.com/dir/":          "dir",
	}
	for in, want := range tests {
		assert.Equal(t, want, nameFromURL(in), in)
	}
}
