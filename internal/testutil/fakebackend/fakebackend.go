// Package fakebackend serves the study-assistant HTTP contract from an
// httptest server so gateway and end-to-end tests run without the real
// services.
package fakebackend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Request is what the fake saw for one call.
type Request struct {
	Path          string
	Authorization string
	ContentType   string
	Form          map[string]string
	FileName      string
	FileBody      string
	Question      string
}

// Response is replayed for a path. Body is written verbatim.
type Response struct {
	Status int
	Body   string
}

type Backend struct {
	URL string

	mu        sync.Mutex
	responses map[string]Response
	requests  []Request
}

// New starts a backend with a working login for user/secret, a two-node
// graph and a plain answer. Tests replace responses with Set.
func New(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{responses: map[string]Response{
		"/login":             {Status: http.StatusOK, Body: `{"access_token":"tok-1","token_type":"bearer"}`},
		"/knowledge-graph/": {Status: http.StatusOK, Body: `{"nodes":[{"id":0,"label":"Cells divide"},{"id":1,"label":"DNA replicates"}],"links":[{"source":0,"target":1}]}`},
		"/invoke-bedrock/":  {Status: http.StatusOK, Body: `{"result":"Mitosis is cell division."}`},
	}}

	r := chi.NewRouter()
	r.Post("/login", b.handleLogin)
	r.Post("/knowledge-graph/", b.handleGraph)
	r.Post("/invoke-bedrock/", b.handleAsk)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

func (b *Backend) Set(path string, resp Response) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[path] = resp
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *Backend) Last() Request {
	reqs := b.Requests()
	if len(reqs) == 0 {
		return Request{}
	}
	return reqs[len(reqs)-1]
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	rec := b.base(r)
	if err := r.ParseForm(); err == nil {
		rec.Form = map[string]string{"username": r.PostForm.Get("username"), "password": r.PostForm.Get("password")}
	}
	b.reply(w, rec)
}

func (b *Backend) handleGraph(w http.ResponseWriter, r *http.Request) {
	rec := b.base(r)
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		content, _ := io.ReadAll(file)
		rec.FileName = header.Filename
		rec.FileBody = string(content)
	}
	b.reply(w, rec)
}

func (b *Backend) handleAsk(w http.ResponseWriter, r *http.Request) {
	rec := b.base(r)
	var payload struct {
		Question string `json:"question"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	rec.Question = payload.Question
	b.reply(w, rec)
}

func (b *Backend) base(r *http.Request) Request {
	return Request{
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
	}
}

func (b *Backend) reply(w http.ResponseWriter, rec Request) {
	b.mu.Lock()
	b.requests = append(b.requests, rec)
	resp := b.responses[rec.Path]
	b.mu.Unlock()

	if strings.HasPrefix(strings.TrimSpace(resp.Body), "{") || strings.HasPrefix(strings.TrimSpace(resp.Body), "[") {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.Status)
	_, _ = io.WriteString(w, resp.Body)
}
