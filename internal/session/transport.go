package session

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/jpalmerr/finboard/internal/cache"
)

const (
	cacheHeader = "X-Finboard-Cache"
	cacheHit    = "hit"
)

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(req)
}

// limitTransport waits on every limiter before forwarding the request.
type limitTransport struct {
	next     http.RoundTripper
	limiters []*rate.Limiter
}

func (t *limitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for _, l := range t.limiters {
		if err := l.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	return t.next.RoundTrip(req)
}

// cacheTransport serves fresh cached GET responses and stores new 200s.
// Cache failures are logged and fall through to the network.
type cacheTransport struct {
	next   http.RoundTripper
	store  *cache.Store
	logger *slog.Logger
}

func cacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}

func (t *cacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.next.RoundTrip(req)
	}

	key := cacheKey(req)
	entry, ok, err := t.store.Get(req.Context(), key)
	if err != nil {
		t.logger.Warn("cache lookup failed", "url", req.URL.String(), "error", err)
	}
	if ok {
		header := entry.Header.Clone()
		if header == nil {
			header = http.Header{}
		}
		header.Set(cacheHeader, cacheHit)
		return &http.Response{
			Status:        fmt.Sprintf("%d %s", entry.StatusCode, http.StatusText(entry.StatusCode)),
			StatusCode:    entry.StatusCode,
			Proto:         "HTTP/1.1",
			ProtoMajor:    1,
			ProtoMinor:    1,
			Header:        header,
			Body:          io.NopCloser(bytes.NewReader(entry.Body)),
			ContentLength: int64(len(entry.Body)),
			Request:       req,
		}, nil
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		return resp, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > maxResponseBodySize {
		// hand the body on uncut and leave it out of the cache
		t.logger.Warn("response too large to cache", "url", req.URL.String(), "limit_bytes", maxResponseBodySize)
		resp.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(body), resp.Body), resp.Body}
		return resp, nil
	}
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if err := t.store.Put(req.Context(), key, cache.Entry{StatusCode: resp.StatusCode, Header: resp.Header.Clone(), Body: body}); err != nil {
		t.logger.Warn("cache store failed", "url", req.URL.String(), "error", err)
	}
	return resp, nil
}
