package areas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brettbedarf/areafs"
)

type HTTPMethod = string

const (
	HTTPMethodGet  HTTPMethod = "GET"
	HTTPMethodHead HTTPMethod = "HEAD"
)

// HTTPClient is the subset of *http.Client used by [HTTPArea]
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource contains http-specific area config fields
type HTTPSource struct {
	Type    string            `json:"type"`
	BaseURL string            `json:"base_url"`
	Headers map[string]string `json:"headers,omitempty"`
}

func RegisterHTTP() {
	Register(HTTPAreaType, func(raw []byte) (areafs.Area, error) {
		var src HTTPSource
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, err
		}
		return NewHTTPArea(http.DefaultClient, &src)
	})
}

// HTTPArea implements a read-only [areafs.Area] for files served under a base URL
type HTTPArea struct {
	client  HTTPClient
	baseURL string
	headers map[string]string
}

// NewHTTPArea validates src.BaseURL and returns the area. Only http and https
// URLs with a host and no user info are accepted.
func NewHTTPArea(client HTTPClient, src *HTTPSource) (*HTTPArea, error) {
	base := strings.TrimSpace(src.BaseURL)
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url %q: %w", src.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base_url %q: scheme must be http or https", src.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base_url %q: missing host", src.BaseURL)
	}
	if u.User != nil {
		return nil, fmt.Errorf("invalid base_url %q: user info not allowed", src.BaseURL)
	}
	return &HTTPArea{client: client, baseURL: base, headers: src.Headers}, nil
}

func (h *HTTPArea) newRequest(ctx context.Context, method HTTPMethod, p string) (*http.Request, error) {
	target, err := url.JoinPath(h.baseURL, cleanPath(p))
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}

	// Add custom headers
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// do sends the request and closes the body on any non-2xx response
func (h *HTTPArea) do(ctx context.Context, method HTTPMethod, p string) (*http.Response, error) {
	req, err := h.newRequest(ctx, method, p)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", method, p, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %q: %w", method, p, areafs.ErrNotFound)
	}
	return nil, fmt.Errorf("%s %q: unexpected status %s", method, p, resp.Status)
}

func (h *HTTPArea) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	resp, err := h.do(ctx, HTTPMethodGet, p)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (h *HTTPArea) ReadFile(ctx context.Context, p string) ([]byte, error) {
	body, err := h.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (h *HTTPArea) Rename(ctx context.Context, oldPath, newPath string) error {
	return fmt.Errorf("rename %q: %w", oldPath, areafs.ErrReadOnlyArea)
}

func (h *HTTPArea) Copy(ctx context.Context, oldPath, newPath string) error {
	return fmt.Errorf("copy %q: %w", oldPath, areafs.ErrReadOnlyArea)
}

func (h *HTTPArea) Update(ctx context.Context, dir, base string, content []byte, f *areafs.File) error {
	return fmt.Errorf("update %q: %w", base, areafs.ErrReadOnlyArea)
}

func (h *HTTPArea) Delete(ctx context.Context, p string) error {
	return fmt.Errorf("delete %q: %w", p, areafs.ErrReadOnlyArea)
}

func (h *HTTPArea) URL(ctx context.Context, p string) (string, error) {
	return url.JoinPath(h.baseURL, cleanPath(p))
}

// Permissions is always read-only for everyone
func (h *HTTPArea) Permissions(ctx context.Context, p string) (string, error) {
	return "0444", nil
}

// Time reads the Last-Modified header; servers do not report creation times
// so both kinds return it
func (h *HTTPArea) Time(ctx context.Context, p string, kind areafs.TimeKind) (time.Time, error) {
	resp, err := h.do(ctx, HTTPMethodHead, p)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	lm := resp.Header.Get("Last-Modified")
	if lm == "" {
		return time.Time{}, fmt.Errorf("time %q: no Last-Modified header", p)
	}
	return http.ParseTime(lm)
}

func (h *HTTPArea) Size(ctx context.Context, p string) (int64, error) {
	resp, err := h.do(ctx, HTTPMethodHead, p)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("size %q: unknown content length", p)
	}
	return resp.ContentLength, nil
}

func (h *HTTPArea) ResolvePath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("resolve: empty path")
	}
	return cleanPath(raw), nil
}

var _ areafs.Area = (*HTTPArea)(nil)
