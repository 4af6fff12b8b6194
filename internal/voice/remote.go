package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"billvox/internal/intent"
)

// RemoteParser calls the hosted NLU endpoint. Responses are normalized to
// lowercase snake_case intent names so the router sees the same vocabulary as
// the local cascade.
type RemoteParser struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewRemoteParser builds a client for the given endpoint. A zero timeout
// defaults to five seconds; per-call deadlines come from the caller's context.
func NewRemoteParser(endpoint, apiKey string, timeout time.Duration) *RemoteParser {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteParser{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type remoteRequest struct {
	Text   string `json:"text"`
	UserID string `json:"userId"`
	Locale string `json:"locale"`
}

type remoteResponse struct {
	Intent   string          `json:"intent"`
	Entities json.RawMessage `json:"entities"`
}

// Parse sends one utterance for remote understanding. Any transport error or
// non-2xx status is returned as an error so the session's circuit breaker can
// count it.
func (p *RemoteParser) Parse(ctx context.Context, text, userID, locale string) (*intent.Intent, error) {
	body, err := json.Marshal(remoteRequest{Text: text, UserID: userID, Locale: locale})
	if err != nil {
		return nil, fmt.Errorf("remote parser: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remote parser: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote parser: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote parser: status %d", resp.StatusCode)
	}

	var decoded remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("remote parser: decode response: %w", err)
	}

	out := &intent.Intent{Name: normalizeIntentName(decoded.Intent)}
	if len(decoded.Entities) > 0 {
		if err := json.Unmarshal(decoded.Entities, &out.Entities); err != nil {
			return nil, fmt.Errorf("remote parser: decode entities: %w", err)
		}
	}
	return out, nil
}

// normalizeIntentName lowercases and snake_cases whatever the service sent
// ("AddItem", "add-item", "ADD ITEM" all become "add_item").
func normalizeIntentName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				prev := rune(name[i-1])
				if prev >= 'a' && prev <= 'z' {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ' || r == '-':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}
