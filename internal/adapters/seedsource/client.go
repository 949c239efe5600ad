// Package seedsource fetches seed documents from http(s) URLs.
package seedsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxSeedBytes bounds a fetched seed document.
const maxSeedBytes = 4 << 20

// HTTPFetcher downloads seed documents.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher using client, or http.DefaultClient when nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

// IsRemote reports whether location should be fetched rather than read from disk.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch returns the body of url. Non-200 responses and bodies over the size limit fail.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create seed request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, text/plain")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch seed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	if len(body) > maxSeedBytes {
		return nil, fmt.Errorf("seed document exceeds %d bytes", maxSeedBytes)
	}
	return body, nil
}
