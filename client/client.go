// Package client is a Go library for the userdesk console API: an HTTP
// wrapper with a uniform error shape, a durable auth session, a role
// capability policy, a generic resource data adapter, and CSV bulk transfer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Response is the normalized success shape of a request. Body is the parsed
// JSON object; Raw keeps the bytes for non-JSON payloads such as CSV.
type Response struct {
	Status int
	Header http.Header
	Body   map[string]interface{}
	Raw    []byte
}

// Client wraps an HTTP transport with default headers and the error
// taxonomy. Callers wanting timeouts or cancellation set them on the
// context or on HTTPClient; the client itself never retries.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	session    *Session
}

// New returns a client rooted at baseURL, attaching the session's bearer
// token to every request.
func New(baseURL string, session *Session) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		session:    session,
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session {
	return c.session
}

// Request sends a JSON request and normalizes the response. Caller headers
// override the defaults. Any failure is returned as *Error; an error that
// already carries a status passes through unwrapped.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}
	return c.Do(ctx, method, path, reader, headers)
}

// Do sends a request with a raw body reader. Used directly by the multipart
// upload path, which supplies its own content type.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*Response, error) {
	url := c.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// Pass through errors already carrying a status
		var clientErr *Error
		if errors.As(err, &clientErr) {
			return nil, clientErr
		}
		return nil, &Error{Status: 0, Message: msgNetwork, URL: url}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: 0, Message: msgNetwork, URL: url}
	}

	parsed := parseBody(raw)

	if resp.StatusCode >= 400 {
		return nil, newHTTPError(resp.StatusCode, url, parsed)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   parsed,
		Raw:    raw,
	}, nil
}

// parseBody decodes the response body as a JSON object. When the body is not
// JSON, the raw text is carried under both "message" and "detail" so callers
// still have something to render.
func parseBody(raw []byte) map[string]interface{} {
	if len(raw) == 0 {
		return map[string]interface{}{}
	}

	var asObject map[string]interface{}
	if err := json.Unmarshal(raw, &asObject); err == nil {
		return asObject
	}

	var asList []interface{}
	if err := json.Unmarshal(raw, &asList); err == nil {
		return map[string]interface{}{"items": asList}
	}

	text := string(raw)
	return map[string]interface{}{"message": text, "detail": text}
}
