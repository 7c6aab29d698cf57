package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultTranslatorTimeout bounds one translation request.
const DefaultTranslatorTimeout = 30 * time.Second

// HTTPTranslator is a JSON adapter for one named translation provider
// behind a proxy service.
type HTTPTranslator struct {
	name    string
	baseURL string
	client  *http.Client
}

// TranslatorOption configures an HTTPTranslator.
type TranslatorOption func(*HTTPTranslator)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) TranslatorOption {
	return func(t *HTTPTranslator) {
		t.client = hc
	}
}

// NewHTTPTranslator creates a provider adapter. name selects the
// upstream service ("yandex", "bing", "google") on the proxy.
func NewHTTPTranslator(name, baseURL string, opts ...TranslatorOption) *HTTPTranslator {
	t := &HTTPTranslator{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTranslatorTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type translateRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	To       string `json:"to"`
}

type translateResponse struct {
	Text string `json:"text"`
}

// Translate implements Translator. The target language name is
// truncated to its two-letter code, matching provider conventions.
func (t *HTTPTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	to := target
	if len(to) > 2 {
		to = to[:2]
	}

	body, err := json.Marshal(translateRequest{Text: text, Provider: t.name, To: to})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned status %d", t.name, resp.StatusCode)
	}

	var parsed translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return parsed.Text, nil
}

// Name implements Translator.
func (t *HTTPTranslator) Name() string {
	return t.name
}
