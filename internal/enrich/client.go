package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/monsterswithink/dazzle-resume/internal/logger"
)

// ErrUnavailable means the enrichment service could not serve the
// request: transport failure, non-2xx status, or an unreadable body.
// The sync flow treats this as fatal so a stored payload is never
// overwritten with an empty one.
var ErrUnavailable = errors.New("enrichment service unavailable")

const profilePath = "/api/v2/profile"

// includeParams is the fixed set of optional field categories requested
// on every call. The values are opaque flags defined by the provider.
var includeParams = []string{
	"extra",
	"github_profile_id",
	"facebook_profile_id",
	"twitter_profile_id",
	"personal_contact_number",
	"personal_email",
	"inferred_salary",
	"skills",
}

// Client calls the third-party profile enrichment API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a client with a bounded per-call timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchProfile requests the enrichment document for profileURL and
// returns it verbatim. The cache policy prefers cached data when
// present and falls back to cached data when the upstream errors; both
// knobs are opaque query parameters on the provider side.
func (c *Client) FetchProfile(ctx context.Context, profileURL string) (json.RawMessage, error) {

	q := url.Values{}
	q.Set("linkedin_profile_url", profileURL)
	for _, p := range includeParams {
		q.Set(p, "include")
	}
	q.Set("use_cache", "if-present")
	q.Set("fallback_to_cache", "on-error")

	reqURL := c.baseURL + profilePath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("enrichment call failed", map[string]any{
			"status":      resp.StatusCode,
			"profile_url": profileURL,
		})
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid json", ErrUnavailable)
	}

	return json.RawMessage(body), nil
}
