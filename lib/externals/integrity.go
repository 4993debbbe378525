package externals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// IntegrityURL is where the main library publishes the integrity hashes of
// its hosted files.
func (s *Session) IntegrityURL() string {
	return fmt.Sprintf("%s%s/%s/sri-json.json", s.opts.PrefixURL, s.project.MainName, s.mainVersion)
}

// FetchIntegrity loads the integrity hash table once per build. It is skipped
// in debug mode. Any failure leaves the table empty and only logs a warning,
// so descriptors are emitted without integrity attributes.
func (s *Session) FetchIntegrity(ctx context.Context, client *http.Client) {
	if s.opts.Debug || s.project.MainName == "" {
		return
	}
	if client == nil {
		client = http.DefaultClient
	}

	hashes, err := fetchIntegrity(ctx, client, s.IntegrityURL())
	if err != nil {
		s.log.Warn("Error fetching SRI hashes", "url", s.IntegrityURL(), "error", err)
		return
	}
	s.integrity = hashes
}

func fetchIntegrity(ctx context.Context, client *http.Client, url string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var hashes map[string]string
	if err := json.Unmarshal(data, &hashes); err != nil {
		return nil, fmt.Errorf("failed to parse SRI hashes: %w", err)
	}
	if hashes == nil {
		hashes = map[string]string{}
	}
	return hashes, nil
}

// SetIntegrity replaces the integrity hash table.
func (s *Session) SetIntegrity(hashes map[string]string) {
	if hashes == nil {
		hashes = map[string]string{}
	}
	s.integrity = hashes
}
