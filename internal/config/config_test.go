package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when no file exists", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.TargetLanguage != "russian" {
			t.Errorf("TargetLanguage = %q, want russian", cfg.TargetLanguage)
		}
		if cfg.VocabularySize != 10000 {
			t.Errorf("VocabularySize = %d, want 10000", cfg.VocabularySize)
		}
		if len(cfg.Translators) != 3 || cfg.Translators[0] != "yandex" {
			t.Errorf("Translators = %v", cfg.Translators)
		}
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fts.yaml")
		content := "data_dir: /srv/fts\nvocabulary_size: 500\ntranslators: [google]\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.DataDir != "/srv/fts" {
			t.Errorf("DataDir = %q", cfg.DataDir)
		}
		if cfg.VocabularySize != 500 {
			t.Errorf("VocabularySize = %d, want 500", cfg.VocabularySize)
		}
		if len(cfg.Translators) != 1 || cfg.Translators[0] != "google" {
			t.Errorf("Translators = %v, want [google]", cfg.Translators)
		}
		// Untouched keys keep their defaults.
		if cfg.ResultLimit != 10 {
			t.Errorf("ResultLimit = %d, want 10", cfg.ResultLimit)
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fts.yaml")
		if err := os.WriteFile(path, []byte("vocabulary_size: 500\n"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		t.Setenv("FTS_VOCABULARY_SIZE", "750")
		t.Setenv("FTS_TRANSLATORS", "bing, google")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.VocabularySize != 750 {
			t.Errorf("VocabularySize = %d, want 750", cfg.VocabularySize)
		}
		if len(cfg.Translators) != 2 || cfg.Translators[0] != "bing" {
			t.Errorf("Translators = %v, want [bing google]", cfg.Translators)
		}
	})

	t.Run("explicitly named missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fts.yaml")
		if err := os.WriteFile(path, []byte("vocabulary_size: -1\n"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatal("expected an error for a negative vocabulary size")
		}
	})
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/srv/fts"
	if got := cfg.DBPath(); got != "/srv/fts/articles.db" {
		t.Errorf("DBPath = %q", got)
	}
	if got := cfg.IndexPath(); got != "/srv/fts/index.gob" {
		t.Errorf("IndexPath = %q", got)
	}
	if got := cfg.TranslationsPath(); got != "/srv/fts/translations.json" {
		t.Errorf("TranslationsPath = %q", got)
	}
}
