package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultBaseURL = "https://public.api.bsky.app"
	resolvePath    = "/xrpc/com.atproto.identity.resolveHandle"

	defaultTimeout   = 10 * time.Second
	defaultRetryMax  = 2
	maxResponseBytes = 1 << 16
)

// HTTPResolver resolves handles against the com.atproto.identity
// resolveHandle endpoint. Transient failures are retried by the
// underlying client; callers still see a plain error on exhaustion.
type HTTPResolver struct {
	baseURL string
	client  *retryablehttp.Client
}

type HTTPResolverOption func(*HTTPResolver)

func WithBaseURL(baseURL string) HTTPResolverOption {
	return func(r *HTTPResolver) {
		r.baseURL = baseURL
	}
}

func WithTimeout(timeout time.Duration) HTTPResolverOption {
	return func(r *HTTPResolver) {
		r.client.HTTPClient.Timeout = timeout
	}
}

func NewHTTPResolver(options ...HTTPResolverOption) *HTTPResolver {
	client := retryablehttp.NewClient()
	client.RetryMax = defaultRetryMax
	client.HTTPClient.Timeout = defaultTimeout
	client.Logger = nil

	r := &HTTPResolver{
		baseURL: defaultBaseURL,
		client:  client,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// ResolveHandle implements Resolver.
func (r *HTTPResolver) ResolveHandle(ctx context.Context, handle string) (string, error) {
	endpoint := r.baseURL + resolvePath + "?handle=" + url.QueryEscape(handle)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", handle, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resolve %q: unexpected status %d", handle, resp.StatusCode)
	}

	var out struct {
		Did string `json:"did"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Did == "" {
		return "", fmt.Errorf("resolve %q: empty did in response", handle)
	}
	return out.Did, nil
}

var _ Resolver = (*HTTPResolver)(nil)
