package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/opticshield/opticshield/internal/flags"
	"github.com/opticshield/opticshield/internal/log"
	"github.com/opticshield/opticshield/internal/person"
)

const (
	personsPath = "/api/persons"
	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 4 << 10
)

// HTTPClient implements Registry against the REST API.
type HTTPClient struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	flags      *flags.Registry
}

var _ Registry = (*HTTPClient)(nil)

// HTTPClientOption configures the HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// WithFlags lets feature flags shape request payloads.
func WithFlags(f *flags.Registry) HTTPClientOption {
	return func(c *HTTPClient) {
		c.flags = f
	}
}

// NewHTTPClient creates a client for the registry at baseURL. The default
// http.Client has no timeout.
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the current base URL.
func (c *HTTPClient) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL points later requests at a different registry. Requests already
// in flight are unaffected.
func (c *HTTPClient) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.mu.Unlock()
	log.Info(log.CatRegistry, "base url changed", "base_url", baseURL)
}

type createBody struct {
	Name     string `json:"name"`
	Flag     string `json:"flag"`
	Metadata string `json:"metadata"`
	Image    string `json:"image"`
	PersonID string `json:"personId,omitempty"`
}

type updateBody struct {
	Flag string `json:"flag"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// wirePerson accepts both document-store (`_id`) and plain (`id`) ids. When
// both are present `_id` keys every action and `id` is only shown.
type wirePerson struct {
	MongoID  string          `json:"_id"`
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Flag     string          `json:"flag"`
	Metadata *string         `json:"metadata"`
	Image    string          `json:"image"`
}

func (w wirePerson) toPerson() (person.Person, error) {
	c, err := person.ParseClassification(w.Flag)
	if err != nil {
		return person.Person{}, err
	}
	plain, err := scalarID(w.ID)
	if err != nil {
		return person.Person{}, err
	}
	p := person.Person{
		ID:             w.MongoID,
		Name:           w.Name,
		Classification: c,
		Metadata:       w.Metadata,
		Image:          w.Image,
	}
	if p.ID == "" {
		p.ID = plain
	} else if plain != p.ID {
		p.DisplayID = plain
	}
	return p, nil
}

// scalarID renders a string or numeric id. Absent and null yield "".
func scalarID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number, got %s", raw)
	}
	return n.String(), nil
}

// Create submits a new record and returns the server's copy of it.
func (c *HTTPClient) Create(ctx context.Context, req CreateRequest) (person.Person, error) {
	body := createBody{
		Name:     req.Name,
		Flag:     string(req.Classification),
		Metadata: req.Metadata,
		Image:    req.Image,
	}
	if c.flags.Enabled(flags.FlagSendPersonID) {
		body.PersonID = req.PersonID
	}

	var created wirePerson
	if err := c.do(ctx, "create", http.MethodPost, personsPath, body, &created); err != nil {
		return person.Person{}, err
	}
	p, err := created.toPerson()
	if err != nil {
		return person.Person{}, c.decodeError("create", http.MethodPost, personsPath, err)
	}
	return p, nil
}

// List fetches every record. An empty registry yields an empty, non-nil slice.
func (c *HTTPClient) List(ctx context.Context) ([]person.Person, error) {
	var wire []wirePerson
	if err := c.do(ctx, "list", http.MethodGet, personsPath, nil, &wire); err != nil {
		return nil, err
	}

	out := make([]person.Person, 0, len(wire))
	for i, w := range wire {
		p, err := w.toPerson()
		if err != nil {
			return nil, c.decodeError("list", http.MethodGet, personsPath, fmt.Errorf("record %d: %w", i, err))
		}
		out = append(out, p)
	}
	return out, nil
}

// UpdateClassification sets the flag of record id.
func (c *HTTPClient) UpdateClassification(ctx context.Context, id string, cl person.Classification) error {
	return c.do(ctx, "update", http.MethodPut, recordPath(id), updateBody{Flag: string(cl)}, nil)
}

// Remove deletes record id.
func (c *HTTPClient) Remove(ctx context.Context, id string) error {
	return c.do(ctx, "remove", http.MethodDelete, recordPath(id), nil, nil)
}

func recordPath(id string) string {
	return personsPath + "/" + url.PathEscape(id)
}

func (c *HTTPClient) decodeError(op, method, path string, err error) error {
	reqErr := &RequestError{Op: op, Method: method, URL: c.BaseURL() + path, Err: fmt.Errorf("%w: %w", ErrDecode, err)}
	log.ErrorErr(log.CatRegistry, "response rejected", reqErr, "op", op)
	return reqErr
}

// do sends one request. A nil out discards the response body.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, in, out any) error {
	endpoint := c.BaseURL() + path
	fail := func(status int, msg string, err error) error {
		reqErr := &RequestError{Op: op, Method: method, URL: endpoint, StatusCode: status, Message: msg, Err: err}
		log.ErrorErr(log.CatRegistry, "request failed", reqErr, "op", op)
		return reqErr
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fail(0, "", fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fail(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug(log.CatRegistry, "response", "op", op, "method", method, "url", endpoint,
		"status", resp.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fail(resp.StatusCode, serverMessage(raw), ErrStatus)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("%w: %w", ErrDecode, err))
	}
	return nil
}

func serverMessage(raw []byte) string {
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		return eb.Error
	}
	return ""
}
