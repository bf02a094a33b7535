// Package httpx is the shared JSON HTTP client for quote providers: bounded
// retries with jittered backoff and status mapping into the engine's error
// taxonomy. Provider failures surface as collaborator errors with the cause
// intact.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	ngerr "github.com/liqshift/liqshift-go/errors"
)

type Client struct {
	httpClient *http.Client
	retries    int
	userAgent  string
}

func New(timeout time.Duration, retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
		userAgent:  "liqshift/1.0",
	}
}

// DoJSON executes req and decodes the JSON response into out, retrying
// transient failures (network errors, 429, 5xx) up to the configured count.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ngerr.Wrap(ngerr.KindCollaborator, "request cancelled", ctx.Err())
			case <-time.After(backoff(attempt)):
			}
		}

		cloneReq := req.Clone(ctx)
		if req.Body != nil && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return ngerr.Wrap(ngerr.KindInternal, "clone request body", err)
			}
			cloneReq.Body = body
		}

		resp, err := c.httpClient.Do(cloneReq)
		if err != nil {
			lastErr = mapNetError(err)
			if attempt < c.retries {
				continue
			}
			return lastErr
		}

		buf, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return ngerr.Wrap(ngerr.KindCollaborator, "read provider response", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			lastErr = ngerr.Newf(ngerr.KindCollaborator, "provider unavailable (status %d)", resp.StatusCode)
			if attempt < c.retries {
				continue
			}
			return lastErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return ngerr.Newf(ngerr.KindCollaborator, "provider returned unexpected status %d", resp.StatusCode)
		}

		if out == nil {
			return nil
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			return ngerr.New(ngerr.KindCollaborator, "provider returned empty response")
		}
		if err := json.Unmarshal(buf, out); err != nil {
			return ngerr.Wrap(ngerr.KindCollaborator, "decode provider JSON", err)
		}
		return nil
	}

	if lastErr != nil {
		return lastErr
	}
	return ngerr.New(ngerr.KindCollaborator, "request failed")
}

// GetJSON issues a GET against url and decodes the response.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ngerr.Wrap(ngerr.KindInternal, "build request", err)
	}
	return c.DoJSON(ctx, req, out)
}

// PostJSON issues a POST with a JSON body and decodes the response.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ngerr.Wrap(ngerr.KindInternal, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.DoJSON(ctx, req, out)
}

func mapNetError(err error) error {
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return ngerr.Wrap(ngerr.KindCollaborator, "provider timeout", err)
	}
	return ngerr.Wrap(ngerr.KindCollaborator, "provider request failed", err)
}

func backoff(attempt int) time.Duration {
	base := 120 * time.Millisecond
	d := base * time.Duration(1<<uint(attempt-1))
	if d > 2*time.Second {
		d = 2 * time.Second
	}
	jitter := time.Duration(rand.Intn(75)) * time.Millisecond
	return d + jitter
}
