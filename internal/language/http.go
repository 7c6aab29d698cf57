package language

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultLemmatizerURL is the default NLP sidecar endpoint.
	DefaultLemmatizerURL = "http://localhost:8090"

	// DefaultLemmatizerTimeout bounds one lemmatization request.
	DefaultLemmatizerTimeout = 60 * time.Second

	// apiPathLemmatize is the sidecar's lemmatization endpoint.
	apiPathLemmatize = "/lemmatize"
)

// HTTPLemmatizer calls an external NLP service (a spaCy sidecar or
// compatible) over JSON HTTP.
type HTTPLemmatizer struct {
	baseURL string
	client  *http.Client
}

// LemmatizerOption configures an HTTPLemmatizer.
type LemmatizerOption func(*HTTPLemmatizer)

// WithBaseURL sets the sidecar base URL.
func WithBaseURL(url string) LemmatizerOption {
	return func(l *HTTPLemmatizer) {
		l.baseURL = url
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) LemmatizerOption {
	return func(l *HTTPLemmatizer) {
		l.client.Timeout = timeout
	}
}

// NewHTTPLemmatizer creates a lemmatizer client.
func NewHTTPLemmatizer(opts ...LemmatizerOption) *HTTPLemmatizer {
	l := &HTTPLemmatizer{
		baseURL: DefaultLemmatizerURL,
		client:  &http.Client{Timeout: DefaultLemmatizerTimeout},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type lemmatizeRequest struct {
	Text string `json:"text"`
}

type lemmatizeResponse struct {
	Lemmas []string `json:"lemmas"`
}

// Lemmatize implements Lemmatizer.
func (l *HTTPLemmatizer) Lemmatize(ctx context.Context, text string) ([]string, error) {
	body, err := json.Marshal(lemmatizeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		l.baseURL+apiPathLemmatize, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lemmatizer returned status %d", resp.StatusCode)
	}

	var parsed lemmatizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return parsed.Lemmas, nil
}
