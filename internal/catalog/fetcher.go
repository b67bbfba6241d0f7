package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrTimeout marks a fetch that exceeded its time bound. Distinct from plain
// transport errors so callers can tell the two failure modes apart in logs.
var ErrTimeout = errors.New("catalog fetch timed out")

// StatusError is returned for any non-2xx response from the catalog endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

// Fetcher retrieves the remote models catalog document. Implementations must
// honor ctx cancellation; the engine bounds every call with a deadline.
type Fetcher interface {
	Fetch(ctx context.Context) (*ModelsConfig, error)
}

// HTTPFetcher fetches the catalog from a fixed URL over HTTPS.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher for the given catalog URL.
func NewHTTPFetcher(url string) *HTTPFetcher {
	return &HTTPFetcher{URL: url, Client: &http.Client{}}
}

// Fetch issues a no-cache GET for the catalog document.
func (f *HTTPFetcher) Fetch(ctx context.Context) (*ModelsConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", f.URL, err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.Client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, f.URL)
		}
		return nil, fmt.Errorf("fetch %s: %w", f.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, f.URL)
		}
		return nil, fmt.Errorf("reading response from %s: %w", f.URL, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseConfig decodes a catalog document, rejecting payloads that are valid
// JSON but not the expected shape.
func parseConfig(data []byte) (*ModelsConfig, error) {
	var cfg ModelsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing catalog document: %w", err)
	}
	if cfg.Providers == nil {
		return nil, errors.New("parsing catalog document: missing providers map")
	}
	return &cfg, nil
}
