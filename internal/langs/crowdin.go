// Package langs refreshes the languages collection from the Crowdin project
// that hosts the dataset's translations.
package langs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoToken is returned when no Crowdin API token is configured.
var ErrNoToken = errors.New("crowdin token not set")

// TargetLanguage is one language of the Crowdin project.
type TargetLanguage struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Locale           string `json:"locale"`
	TextDirection    string `json:"textDirection"`
	TwoLettersCode   string `json:"twoLettersCode"`
	ThreeLettersCode string `json:"threeLettersCode"`
}

// Mapping overrides the codes Crowdin uses for a language.
type Mapping struct {
	TwoLettersCode string `json:"two_letters_code"`
}

// Project is the subset of the Crowdin project resource used here.
type Project struct {
	TargetLanguages []TargetLanguage
	// LanguageMapping is keyed by Crowdin language id.
	LanguageMapping map[string]Mapping
}

type projectResponse struct {
	Data struct {
		TargetLanguages []TargetLanguage `json:"targetLanguages"`
		// Crowdin sends [] instead of {} when no mapping is configured.
		LanguageMapping json.RawMessage `json:"languageMapping"`
	} `json:"data"`
}

// Client fetches the project resource.
type Client struct {
	HTTP  *http.Client
	URL   string
	Token string
}

// NewClient returns a client with a hard request timeout.
func NewClient(url, token string, timeout time.Duration) *Client {
	return &Client{
		HTTP:  &http.Client{Timeout: timeout},
		URL:   url,
		Token: token,
	}
}

// Fetch downloads the project. Any failure is returned; there is no retry.
func (c *Client) Fetch(ctx context.Context) (*Project, error) {
	if c.Token == "" {
		return nil, ErrNoToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.URL, err)
	}
	defer func() { _ = resp.Body.Close() }() // safe to ignore

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: %s: %s", c.URL, resp.Status, body)
	}

	var pr projectResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}

	p := &Project{
		TargetLanguages: pr.Data.TargetLanguages,
		LanguageMapping: map[string]Mapping{},
	}
	if raw := pr.Data.LanguageMapping; len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &p.LanguageMapping); err != nil {
			return nil, fmt.Errorf("decode language mapping: %w", err)
		}
	}
	return p, nil
}
