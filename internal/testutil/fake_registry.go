// Package testutil provides fixtures shared by package tests: a fake
// registry server and person builders.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/opticshield/opticshield/internal/person"
)

// RecordedRequest is one request received by the fake registry.
type RecordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// FakeRegistry is an in-memory registry served over httptest. It speaks the
// same routes as the real service and assigns uuid ids.
type FakeRegistry struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	records  []person.Person
	requests []RecordedRequest
	failures map[string][]int // method -> queued status codes
	listBody *string
	plainIDs bool
}

// NewFakeRegistry starts a fake registry that is closed with the test.
func NewFakeRegistry(t *testing.T) *FakeRegistry {
	t.Helper()
	f := &FakeRegistry{t: t, failures: make(map[string][]int)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

// URL is the base URL to hand to registry.NewHTTPClient.
func (f *FakeRegistry) URL() string {
	return f.server.URL
}

// Seed stores persons as if they had been created. Empty ids get a uuid.
func (f *FakeRegistry) Seed(persons ...person.Person) *FakeRegistry {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range persons {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		f.records = append(f.records, p)
	}
	return f
}

// Records returns a copy of the stored persons in creation order.
func (f *FakeRegistry) Records() []person.Person {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]person.Person(nil), f.records...)
}

// Requests returns every request received so far.
func (f *FakeRegistry) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// Count returns how many requests used method.
func (f *FakeRegistry) Count(method string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// FailNext makes the next request with method answer status instead.
// Calls queue up.
func (f *FakeRegistry) FailNext(method string, status int) *FakeRegistry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], status)
	return f
}

// ServeListBody makes GET answer with body verbatim (e.g. "null").
func (f *FakeRegistry) ServeListBody(body string) *FakeRegistry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listBody = &body
	return f
}

// UsePlainIDs emits `id` instead of `_id` in responses.
func (f *FakeRegistry) UsePlainIDs() *FakeRegistry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plainIDs = true
	return f
}

func (f *FakeRegistry) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, RecordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})

	if queued := f.failures[r.Method]; len(queued) > 0 {
		f.failures[r.Method] = queued[1:]
		writeJSON(w, queued[0], map[string]string{"error": http.StatusText(queued[0])})
		return
	}

	id, hasID := strings.CutPrefix(r.URL.Path, "/api/persons/")
	switch {
	case r.URL.Path == "/api/persons" && r.Method == http.MethodGet:
		if f.listBody != nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, *f.listBody)
			return
		}
		out := make([]map[string]any, 0, len(f.records))
		for _, p := range f.records {
			out = append(out, f.wire(p))
		}
		writeJSON(w, http.StatusOK, out)

	case r.URL.Path == "/api/persons" && r.Method == http.MethodPost:
		name, _ := body["name"].(string)
		if strings.TrimSpace(name) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
			return
		}
		flag, _ := body["flag"].(string)
		c, err := person.ParseClassification(flag)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		p := person.Person{ID: uuid.NewString(), Name: name, Classification: c}
		if m, ok := body["metadata"].(string); ok {
			p.Metadata = &m
		}
		p.Image, _ = body["image"].(string)
		f.records = append(f.records, p)
		writeJSON(w, http.StatusCreated, f.wire(p))

	case hasID && r.Method == http.MethodPut:
		i := f.indexOf(id)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "person not found"})
			return
		}
		flag, _ := body["flag"].(string)
		c, err := person.ParseClassification(flag)
		if err != nil || flag == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid flag"})
			return
		}
		f.records[i].Classification = c
		writeJSON(w, http.StatusOK, f.wire(f.records[i]))

	case hasID && r.Method == http.MethodDelete:
		i := f.indexOf(id)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "person not found"})
			return
		}
		f.records = append(f.records[:i], f.records[i+1:]...)
		w.WriteHeader(http.StatusNoContent)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route"})
	}
}

func (f *FakeRegistry) indexOf(id string) int {
	for i, p := range f.records {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeRegistry) wire(p person.Person) map[string]any {
	idKey := "_id"
	if f.plainIDs {
		idKey = "id"
	}
	m := map[string]any{idKey: p.ID, "name": p.Name, "flag": string(p.Classification)}
	if p.Metadata != nil {
		m["metadata"] = *p.Metadata
	}
	if p.Image != "" {
		m["image"] = p.Image
	}
	return m
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
