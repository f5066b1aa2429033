// Package client talks to a recstore server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roach88/recstore/internal/record"
)

// DefaultTimeout is used when New is given a nil *http.Client.
const DefaultTimeout = 10 * time.Second

// Client is an HTTP client for the /movie routes.
type Client struct {
	baseURL string
	http    *http.Client
}

// StatusError is returned for responses the client has no mapping for.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Body)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// New creates a Client for baseURL, e.g. "http://127.0.0.1:1234".
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Put stores rec. A 400 answer is reported as a DUPLICATE_ID error.
func (c *Client) Put(ctx context.Context, rec record.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/movie", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case http.StatusBadRequest:
		// Payloads this client builds are always well-formed, so 400 only
		// means the id is taken.
		return record.NewDuplicateIDError(rec.ID)
	default:
		return statusError(req, resp)
	}
}

// Get fetches the record for id. A 404 answer is reported as NOT_FOUND.
func (c *Client) Get(ctx context.Context, id string) (record.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/movie/"+url.PathEscape(id), nil)
	if err != nil {
		return record.Record{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return record.Record{}, fmt.Errorf("get record: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var rec record.Record
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return record.Record{}, fmt.Errorf("decode record: %w", err)
		}
		return rec, nil
	case http.StatusNotFound:
		return record.Record{}, record.NewNotFoundError(id)
	default:
		return record.Record{}, statusError(req, resp)
	}
}

func statusError(req *http.Request, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &StatusError{
		Method: req.Method,
		Path:   req.URL.Path,
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(data)),
	}
}
