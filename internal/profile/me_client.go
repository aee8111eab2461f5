package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultMeBaseURL = "https://api.linkedin.com"

// MeClient calls the identity provider's member profile endpoint to
// recover a vanity name when the stored metadata has none.
type MeClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMeClient returns a client with a bounded per-call timeout.
// baseURL overrides the production endpoint, used by tests.
func NewMeClient(baseURL string, timeout time.Duration) *MeClient {
	if baseURL == "" {
		baseURL = defaultMeBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MeClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// VanityName fetches the member's vanity name using their OAuth access
// token.
func (c *MeClient) VanityName(ctx context.Context, accessToken string) (string, error) {

	url := c.baseURL + "/v2/me?projection=(id,vanityName)"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("me endpoint call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("me endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		ID         string `json:"id"`
		VanityName string `json:"vanityName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("me endpoint response decode failed: %w", err)
	}

	if body.VanityName == "" {
		return "", errors.New("me endpoint response has no vanity name")
	}

	return body.VanityName, nil
}
