package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Cache memoizes word translations so identical input is never sent
// for translation twice, within or across runs. It is append-only
// during a run and persisted explicitly at process boundaries. Live
// calls are throttled to one per second regardless of provider.
type Cache struct {
	mu           sync.Mutex
	translations map[string]string
	translator   Translator
	target       string
	limiter      *rate.Limiter
}

// NewCache creates an empty cache that fills misses through the given
// translator (normally a Chain) toward the target language.
func NewCache(translator Translator, target string) *Cache {
	return &Cache{
		translations: map[string]string{},
		translator:   translator,
		target:       target,
		limiter:      rate.NewLimiter(rate.Limit(1), 1),
	}
}

// Load replaces the cache content from a JSON word-map file. A missing
// file leaves the cache empty and is not an error: the first run has
// nothing to load.
func (c *Cache) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading translation cache: %w", err)
	}

	translations := map[string]string{}
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("parsing translation cache: %w", err)
	}

	c.mu.Lock()
	c.translations = translations
	c.mu.Unlock()
	return nil
}

// Save writes the cache to disk as indented JSON with readable
// non-ASCII (the cache is a hand-inspectable artifact).
func (c *Cache) Save(path string) error {
	c.mu.Lock()
	translations := make(map[string]string, len(c.translations))
	for k, v := range c.translations {
		translations[k] = v
	}
	c.mu.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "   ")
	if err := enc.Encode(translations); err != nil {
		return fmt.Errorf("encoding translation cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing translation cache: %w", err)
	}
	return nil
}

// Len reports how many word translations the cache holds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.translations)
}

// TranslateWord returns the cached translation of a word or
// expression, issuing at most one external call per distinct lowercase
// input over the cache's lifetime.
func (c *Cache) TranslateWord(ctx context.Context, word string) (string, error) {
	word = strings.ToLower(word)

	c.mu.Lock()
	if cached, ok := c.translations[word]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	translated, err := c.translator.Translate(ctx, word, c.target)
	if err != nil {
		return "", fmt.Errorf("translating %q: %w", word, err)
	}
	translated = strings.ToLower(translated)

	c.mu.Lock()
	c.translations[word] = translated
	c.mu.Unlock()
	return translated, nil
}
