// Package transport carries normalized payloads to the tour backend and
// reads catalogs from it.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/tour"
)

// ErrRejected marks a request the backend refused. The wrapped message is the
// backend's explanation.
var ErrRejected = errors.New("transport: rejected")

// ErrNotFound is returned when the requested tour does not exist.
var ErrNotFound = errors.New("transport: tour not found")

// Transport is the backend contract used by the editor.
type Transport interface {
	Create(ctx context.Context, payload tour.CreatePayload) (tour.Persisted, error)
	Update(ctx context.Context, id string, payload tour.UpdatePayload) (tour.Persisted, error)
	Get(ctx context.Context, id string) (tour.Persisted, error)
	List(ctx context.Context) ([]tour.Persisted, error)
}

// Rejection carries the backend's reasons for refusing a request.
type Rejection struct {
	Status  int
	Message string
	Reasons []string
}

func (r *Rejection) Error() string {
	msg := r.Message
	if msg == "" {
		msg = http.StatusText(r.Status)
	}
	if len(r.Reasons) > 0 {
		msg += ": " + strings.Join(r.Reasons, "; ")
	}
	return "transport: rejected: " + msg
}

func (r *Rejection) Unwrap() error { return ErrRejected }

// CatalogResponse is the envelope for catalog collections.
type CatalogResponse struct {
	Success bool            `json:"success"`
	Data    []catalog.Entry `json:"data"`
	Message string          `json:"message,omitempty"`
}

const defaultTimeout = 15 * time.Second

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// HTTPClient talks to the backend over its JSON API.
type HTTPClient struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the backend at base.
func NewHTTP(base string) *HTTPClient {
	return &HTTPClient{
		Base: strings.TrimRight(strings.TrimSpace(base), "/"),
		HTTP: &http.Client{Timeout: defaultTimeout},
	}
}

var (
	_ Transport      = (*HTTPClient)(nil)
	_ catalog.Source = (*HTTPClient)(nil)
)

func (c *HTTPClient) Create(ctx context.Context, payload tour.CreatePayload) (tour.Persisted, error) {
	var out tour.Response
	if err := c.do(ctx, http.MethodPost, "/tours", payload, &out); err != nil {
		return tour.Persisted{}, fmt.Errorf("transport: create tour: %w", err)
	}
	return persisted(out)
}

func (c *HTTPClient) Update(ctx context.Context, id string, payload tour.UpdatePayload) (tour.Persisted, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return tour.Persisted{}, fmt.Errorf("transport: update tour: id is required")
	}
	var out tour.Response
	if err := c.do(ctx, http.MethodPut, "/tours/"+url.PathEscape(id), payload, &out); err != nil {
		return tour.Persisted{}, fmt.Errorf("transport: update tour %s: %w", id, err)
	}
	return persisted(out)
}

func (c *HTTPClient) Get(ctx context.Context, id string) (tour.Persisted, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return tour.Persisted{}, fmt.Errorf("transport: get tour: id is required")
	}
	var out tour.Response
	if err := c.do(ctx, http.MethodGet, "/tours/"+url.PathEscape(id), nil, &out); err != nil {
		return tour.Persisted{}, fmt.Errorf("transport: get tour %s: %w", id, err)
	}
	return persisted(out)
}

func (c *HTTPClient) List(ctx context.Context) ([]tour.Persisted, error) {
	var out tour.ListResponse
	if err := c.do(ctx, http.MethodGet, "/tours", nil, &out); err != nil {
		return nil, fmt.Errorf("transport: list tours: %w", err)
	}
	if !out.Success {
		return nil, &Rejection{Status: http.StatusOK, Message: out.Message}
	}
	return out.Data, nil
}

// Load fetches one catalog collection.
func (c *HTTPClient) Load(ctx context.Context, kind catalog.Kind) ([]catalog.Entry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("transport: load %q: %w", kind, catalog.ErrUnknownKind)
	}
	var out CatalogResponse
	if err := c.do(ctx, http.MethodGet, "/"+kind.Plural(), nil, &out); err != nil {
		return nil, fmt.Errorf("transport: load %s: %w", kind.Plural(), err)
	}
	if !out.Success {
		return nil, &Rejection{Status: http.StatusOK, Message: out.Message}
	}
	return out.Data, nil
}

func persisted(out tour.Response) (tour.Persisted, error) {
	if !out.Success || out.Data == nil {
		return tour.Persisted{}, &Rejection{Status: http.StatusOK, Message: out.Message, Reasons: out.Errors}
	}
	return *out.Data, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejection(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// rejection extracts the envelope message from an error body when there is
// one.
func rejection(status int, data []byte) error {
	var env struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	r := &Rejection{Status: status}
	if err := json.Unmarshal(data, &env); err == nil {
		r.Message = env.Message
		r.Reasons = env.Errors
	} else {
		r.Message = strings.TrimSpace(string(data))
	}
	if r.Message == "" {
		r.Message = http.StatusText(status)
	}
	return r
}
