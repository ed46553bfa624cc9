package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.duckduckgo.com/"

// DuckDuckGo queries the instant-answer API. It is a last-resort, best
// effort source: no key, coarse results, and it may be blocked entirely.
type DuckDuckGo struct {
	baseURL string
	client  *http.Client
}

type instantAnswer struct {
	AbstractText  string `json:"AbstractText"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// New creates a client with the given timeout. baseURL is overridable for
// tests; pass "" for the real endpoint.
func New(baseURL string, timeout time.Duration) *DuckDuckGo {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &DuckDuckGo{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Search returns up to four snippet lines: the abstract plus three related
// topics, each capped at 320 characters.
func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_redirect", "1")
	params.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var snippets []string
	if answer.AbstractText != "" {
		snippets = append(snippets, "- Abstract: "+truncate(answer.AbstractText, 320)+"...")
	}
	for i, topic := range answer.RelatedTopics {
		if i >= 3 {
			break
		}
		if topic.Text != "" {
			snippets = append(snippets, "- "+truncate(topic.Text, 320)+"...")
		}
	}

	if len(snippets) == 0 {
		return "Web search returned no useful snippets.", nil
	}
	return strings.Join(snippets, "\n"), nil
}

// truncate caps s at n runes, never splitting a multibyte character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
