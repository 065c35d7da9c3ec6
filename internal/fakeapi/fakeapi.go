//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package fakeapi is an in-process stand-in for the Gemini REST API used by
// tests. It serves generateContent, embedContent, the resumable upload
// handshake and static assets, records every request, and can be told to
// fail individual endpoints.
package fakeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Default model names used in the base URLs.
const (
	Model      = "gemini-1.5-flash"
	EmbedModel = "text-embedding-004"
)

// Canned success bodies.
const (
	GenerateResponse = `{"candidates":[{"content":{"parts":[{"text":"ok"}],"role":"model"},"finishReason":"STOP"}]}`
	EmbedResponse    = `{"embedding":{"values":[0.1,0.2,0.3]}}`
)

// Request is a recorded inbound request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	// Body holds the request body. Upload content bodies are not kept; see
	// Upload.Received instead.
	Body []byte
}

// Upload is one resumable upload session seen by the server.
type Upload struct {
	ID          string
	DisplayName string
	MIMEType    string
	Size        int64
	Received    int64
	URI         string
	Finalized   bool
}

type failure struct {
	status int
	body   string
}

// Server is a fake Gemini API.
type Server struct {
	*httptest.Server

	// APIKey, when set, is required in the key query parameter.
	APIKey string

	mu          sync.Mutex
	requests    []Request
	assets      map[string][]byte
	uploads     map[string]*Upload
	uploadOrder []string
	fail        map[string]failure
	omitURL     bool
	omitURI     bool
}

// Endpoint names for Fail.
const (
	EndpointGenerate = "generate"
	EndpointEmbed    = "embed"
	EndpointStart    = "upload-start"
	EndpointFinalize = "upload-finalize"
	EndpointAsset    = "asset"
)

// New starts a Server. Call Close when done.
func New() *Server {
	s := &Server{
		assets:  make(map[string][]byte),
		uploads: make(map[string]*Upload),
		fail:    make(map[string]failure),
	}
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/v1beta/models/{model:[^/:]+}:generateContent", s.generate).Methods(http.MethodPost)
	r.HandleFunc("/v1beta/models/{model:[^/:]+}:embedContent", s.embed).Methods(http.MethodPost)
	r.HandleFunc("/upload/v1beta/files", s.uploadStart).Methods(http.MethodPost)
	r.HandleFunc("/upload/sessions/{id}", s.uploadFinalize).Methods(http.MethodPut)
	r.HandleFunc("/assets/{name:.+}", s.asset).Methods(http.MethodGet)
	s.Server = httptest.NewServer(r)
	return s
}

// GenerateBase returns the model base URL for generateContent.
func (s *Server) GenerateBase() string {
	return s.URL + "/v1beta/models/" + Model
}

// EmbedBase returns the model base URL for embedContent.
func (s *Server) EmbedBase() string {
	return s.URL + "/v1beta/models/" + EmbedModel
}

// UploadBase returns the resumable upload endpoint.
func (s *Server) UploadBase() string {
	return s.URL + "/upload/v1beta/files"
}

// AddAsset serves data at the returned URL.
func (s *Server) AddAsset(name string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[name] = data
	return s.URL + "/assets/" + name
}

// Fail makes endpoint answer with status and body until Reset.
func (s *Server) Fail(endpoint string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[endpoint] = failure{status: status, body: body}
}

// OmitUploadURL makes the upload start response leave out the upload URL
// header while still answering 200.
func (s *Server) OmitUploadURL() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitURL = true
}

// OmitFileURI makes finalize answer 200 without file.uri.
func (s *Server) OmitFileURI() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitURI = true
}

// Reset clears injected failures and recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = make(map[string]failure)
	s.omitURL = false
	s.omitURI = false
	s.requests = nil
}

// Requests returns a copy of the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns recorded requests whose path equals p.
func (s *Server) RequestsTo(p string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == p {
			out = append(out, r)
		}
	}
	return out
}

// Uploads returns the upload sessions in creation order.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Upload, 0, len(s.uploadOrder))
	for _, id := range s.uploadOrder {
		out = append(out, *s.uploads[id])
	}
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		}
		if r.Method != http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			r.Body.Close()
			rec.Body = body
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		key := s.APIKey
		s.mu.Unlock()

		if key != "" && r.URL.Query().Get("key") != key && r.Method != http.MethodPut && !isAsset(r) {
			writeJSON(w, http.StatusBadRequest,
				`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injected(w http.ResponseWriter, endpoint string) bool {
	s.mu.Lock()
	f, ok := s.fail[endpoint]
	s.mu.Unlock()
	if !ok {
		return false
	}
	writeJSON(w, f.status, f.body)
	return true
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, EndpointGenerate) {
		return
	}
	var body struct {
		Contents []json.RawMessage `json:"contents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Contents) == 0 {
		writeJSON(w, http.StatusBadRequest, `{"error":{"code":400,"message":"contents is required"}}`)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse)
}

func (s *Server) embed(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, EndpointEmbed) {
		return
	}
	writeJSON(w, http.StatusOK, EmbedResponse)
}

func (s *Server) uploadStart(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, EndpointStart) {
		return
	}
	if r.Header.Get("X-Goog-Upload-Protocol") != "resumable" || r.Header.Get("X-Goog-Upload-Command") != "start" {
		writeJSON(w, http.StatusBadRequest, `{"error":{"code":400,"message":"bad upload protocol headers"}}`)
		return
	}
	size, err := strconv.ParseInt(r.Header.Get("X-Goog-Upload-Header-Content-Length"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, `{"error":{"code":400,"message":"bad content length"}}`)
		return
	}
	var body struct {
		File struct {
			DisplayName string `json:"display_name"`
		} `json:"file"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	id := uuid.NewString()
	s.mu.Lock()
	s.uploads[id] = &Upload{
		ID:          id,
		DisplayName: body.File.DisplayName,
		MIMEType:    r.Header.Get("X-Goog-Upload-Header-Content-Type"),
		Size:        size,
	}
	s.uploadOrder = append(s.uploadOrder, id)
	omit := s.omitURL
	s.mu.Unlock()

	if !omit {
		w.Header().Set("X-Goog-Upload-URL", s.URL+"/upload/sessions/"+id)
	}
	w.Header().Set("X-Goog-Upload-Status", "active")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) uploadFinalize(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	n, _ := io.Copy(io.Discard, r.Body)
	if s.injected(w, EndpointFinalize) {
		return
	}

	s.mu.Lock()
	up, ok := s.uploads[id]
	omit := s.omitURI
	if ok {
		up.Received = n
		up.Finalized = true
		up.URI = s.URL + "/v1beta/files/" + id
	}
	s.mu.Unlock()

	switch {
	case !ok:
		writeJSON(w, http.StatusNotFound, `{"error":{"code":404,"message":"upload session not found"}}`)
	case r.Header.Get("X-Goog-Upload-Command") != "upload, finalize" || r.Header.Get("X-Goog-Upload-Offset") != "0":
		writeJSON(w, http.StatusBadRequest, `{"error":{"code":400,"message":"bad upload command"}}`)
	case n != up.Size:
		writeJSON(w, http.StatusBadRequest,
			fmt.Sprintf(`{"error":{"code":400,"message":"expected %d bytes, got %d"}}`, up.Size, n))
	case omit:
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"file":{"name":"files/%s","state":"ACTIVE"}}`, id))
	default:
		writeJSON(w, http.StatusOK, fmt.Sprintf(
			`{"file":{"name":"files/%s","displayName":%q,"mimeType":%q,"sizeBytes":"%d","uri":%q,"state":"ACTIVE"}}`,
			id, up.DisplayName, up.MIMEType, n, up.URI))
	}
}

func (s *Server) asset(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, EndpointAsset) {
		return
	}
	name := mux.Vars(r)["name"]
	s.mu.Lock()
	data, ok := s.assets[name]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "asset not found: "+name, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func isAsset(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/assets/")
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
