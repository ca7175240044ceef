// Package remote talks to the commerce REST API and the postal code service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mercacomp/internal/errs"
)

// APIError is a non-2xx answer from the commerce API that is not an auth failure.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string { return fmt.Sprintf("api status %d: %s", e.Status, e.Msg) }

// HTTPCode passes client errors through and reports server errors as a bad gateway.
func (e *APIError) HTTPCode() int {
	if e.Status >= 400 && e.Status < 500 {
		return e.Status
	}
	return http.StatusBadGateway
}
func (e *APIError) ErrorCode() string { return "api_error" }
func (e *APIError) Message() string   { return e.Msg }

type Client struct {
	baseURL string
	http    *http.Client
}

// NewTracedHTTPClient wraps the default transport with OpenTelemetry spans.
func NewTracedHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = NewTracedHTTPClient(10 * time.Second)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type call struct {
	method   string
	path     string
	token    string
	body     any
	authed   bool
	fallback string // message when the API sends none
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	var rdr io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, rdr)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(errs.ErrUpstream, "%s %s: %v", cl.method, cl.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return errors.Wrapf(errs.ErrUpstream, "read %s: %v", cl.path, err)
	}

	if cl.authed && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return errors.Wrapf(errs.ErrUnauthorized, "%s %s", cl.method, cl.path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Msg: messageOf(raw, cl.fallback)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(errs.ErrUpstream, "decode %s: %v", cl.path, err)
	}
	return nil
}

func messageOf(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if fallback == "" {
		return "Erro na requisição."
	}
	return fallback
}
