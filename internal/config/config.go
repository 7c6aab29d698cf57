// Package config handles pipeline configuration: defaults, an
// optional YAML file, and environment overrides, in that precedence
// order (env wins). A .env file is folded into the environment first.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// File names inside the data directory.
const (
	DBFile           = "articles.db"
	IndexFile        = "index.gob"
	ModelFile        = "model.gob"
	VocabularyFile   = "vocabulary.txt"
	TranslationsFile = "translations.json"
	RetryLogFile     = "retry.log"
	BlockLogFile     = "block.log"
)

// Config is the full pipeline configuration.
type Config struct {
	DataDir            string   `yaml:"data_dir"`
	SourceURL          string   `yaml:"source_url"`
	TargetLanguage     string   `yaml:"target_language"`
	LemmatizerURL      string   `yaml:"lemmatizer_url"`
	TranslatorURL      string   `yaml:"translator_url"`
	Translators        []string `yaml:"translators"`
	VocabularySize     int      `yaml:"vocabulary_size"`
	ResultLimit        int      `yaml:"result_limit"`
	ExpansionSize      int      `yaml:"expansion_size"`
	ExpansionThreshold float64  `yaml:"expansion_threshold"`
	ArticlesPerPage    int      `yaml:"articles_per_page"`
	PageOffset         int      `yaml:"page_offset"`
	LemmatizeBatch     int      `yaml:"lemmatize_batch"`
	LemmatizeWorkers   int      `yaml:"lemmatize_workers"`
	LogLevel           string   `yaml:"log_level"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		DataDir:            "data",
		SourceURL:          "https://cyberleninka.ru",
		TargetLanguage:     "russian",
		LemmatizerURL:      "http://localhost:8090",
		TranslatorURL:      "http://localhost:8091",
		Translators:        []string{"yandex", "bing", "google"},
		VocabularySize:     10000,
		ResultLimit:        10,
		ExpansionSize:      2,
		ExpansionThreshold: 0.4,
		ArticlesPerPage:    20,
		PageOffset:         2,
		LemmatizeBatch:     50,
		LemmatizeWorkers:   4,
		LogLevel:           "info",
	}
}

// Load builds the effective configuration. path names a YAML file and
// may be empty; a missing file at the default location is fine, a
// missing explicitly named file is an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = "fts.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file, defaults apply.
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("FTS_DATA_DIR", &c.DataDir)
	setString("FTS_SOURCE_URL", &c.SourceURL)
	setString("FTS_TARGET_LANGUAGE", &c.TargetLanguage)
	setString("FTS_LEMMATIZER_URL", &c.LemmatizerURL)
	setString("FTS_TRANSLATOR_URL", &c.TranslatorURL)
	setString("FTS_LOG_LEVEL", &c.LogLevel)
	setInt("FTS_VOCABULARY_SIZE", &c.VocabularySize)
	setInt("FTS_RESULT_LIMIT", &c.ResultLimit)
	setInt("FTS_EXPANSION_SIZE", &c.ExpansionSize)
	setInt("FTS_ARTICLES_PER_PAGE", &c.ArticlesPerPage)
	setInt("FTS_PAGE_OFFSET", &c.PageOffset)
	setInt("FTS_LEMMATIZE_BATCH", &c.LemmatizeBatch)
	setInt("FTS_LEMMATIZE_WORKERS", &c.LemmatizeWorkers)

	if v := os.Getenv("FTS_TRANSLATORS"); v != "" {
		var providers []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				providers = append(providers, p)
			}
		}
		if len(providers) > 0 {
			c.Translators = providers
		}
	}
	if v := os.Getenv("FTS_EXPANSION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ExpansionThreshold = f
		}
	}
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.SourceURL == "" {
		return fmt.Errorf("source_url must not be empty")
	}
	if c.TargetLanguage == "" {
		return fmt.Errorf("target_language must not be empty")
	}
	if len(c.Translators) == 0 {
		return fmt.Errorf("translators must name at least one provider")
	}
	if c.VocabularySize <= 0 {
		return fmt.Errorf("vocabulary_size must be positive, got %d", c.VocabularySize)
	}
	return nil
}

// DBPath returns the sqlite database path.
func (c *Config) DBPath() string { return filepath.Join(c.DataDir, DBFile) }

// IndexPath returns the vector index bundle path.
func (c *Config) IndexPath() string { return filepath.Join(c.DataDir, IndexFile) }

// ModelPath returns the embedding model path.
func (c *Config) ModelPath() string { return filepath.Join(c.DataDir, ModelFile) }

// VocabularyPath returns the vocabulary word list path.
func (c *Config) VocabularyPath() string { return filepath.Join(c.DataDir, VocabularyFile) }

// TranslationsPath returns the translation cache path.
func (c *Config) TranslationsPath() string { return filepath.Join(c.DataDir, TranslationsFile) }

// RetryLogPath returns the store gateway's retry log path.
func (c *Config) RetryLogPath() string { return filepath.Join(c.DataDir, RetryLogFile) }

// BlockLogPath returns the anti-bot blocking event log path.
func (c *Config) BlockLogPath() string { return filepath.Join(c.DataDir, BlockLogFile) }

// EnsureDataDir creates the data directory if needed.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}
