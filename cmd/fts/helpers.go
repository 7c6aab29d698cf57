package main

import (
	"log/slog"
	"os"

	"github.com/john-neg/full-text-search/internal/config"
	"github.com/john-neg/full-text-search/internal/language"
	"github.com/john-neg/full-text-search/internal/lifecycle"
	"github.com/john-neg/full-text-search/internal/logging"
	"github.com/john-neg/full-text-search/internal/source"
	"github.com/john-neg/full-text-search/internal/store"
	"github.com/john-neg/full-text-search/internal/translate"
)

// mustLoadConfig loads the effective configuration or exits.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading configuration: %v", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// mustOpenGateway opens the article store behind the retrying gateway.
// The caller owns the returned closer.
func mustOpenGateway(cfg *config.Config) (*store.Gateway, func()) {
	db, err := store.Open(cfg.DBPath())
	if err != nil {
		exitWithError(ExitConfigError, "opening database %s: %v", cfg.DBPath(), err)
	}
	gw := store.NewGateway(db, store.DefaultRetryPolicy, store.NewRetryLog(cfg.RetryLogPath()))
	return gw, func() { db.Close() }
}

// newLogger builds the process logger on stderr, keeping stdout free
// for command output.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.LogLevel)
}

// newTranslatorChain builds the provider fallback chain in configured
// order.
func newTranslatorChain(cfg *config.Config) *translate.Chain {
	providers := make([]translate.Translator, 0, len(cfg.Translators))
	for _, name := range cfg.Translators {
		providers = append(providers, translate.NewHTTPTranslator(name, cfg.TranslatorURL))
	}
	return translate.NewChain(providers...)
}

// mustLoadCache loads the persistent word-translation cache.
func mustLoadCache(cfg *config.Config, chain *translate.Chain) *translate.Cache {
	cache := translate.NewCache(chain, cfg.TargetLanguage)
	if err := cache.Load(cfg.TranslationsPath()); err != nil {
		exitWithError(ExitDataError, "loading translation cache: %v", err)
	}
	return cache
}

// saveCache persists the translation cache; a failed save only warns,
// the translations are reproducible.
func saveCache(cfg *config.Config, cache *translate.Cache, logger *slog.Logger) {
	if err := cache.Save(cfg.TranslationsPath()); err != nil {
		logger.Warn("saving translation cache", "error", err)
	}
}

func newLemmatizer(cfg *config.Config) *language.HTTPLemmatizer {
	return language.NewHTTPLemmatizer(language.WithBaseURL(cfg.LemmatizerURL))
}

// newController wires the full lifecycle controller. The translation
// cache is returned so commands can persist it after a run.
func newController(cfg *config.Config, gw *store.Gateway, logger *slog.Logger) (*lifecycle.Controller, *translate.Cache) {
	chain := newTranslatorChain(cfg)
	cache := mustLoadCache(cfg, chain)
	ctrl := lifecycle.New(gw, source.NewWebSource(cfg.SourceURL),
		language.NewLinguaDetector(), cache, chain,
		language.NewPipe(newLemmatizer(cfg), cfg.LemmatizeWorkers),
		cfg.TargetLanguage, lifecycle.Options{
			ArticlesPerPage: cfg.ArticlesPerPage,
			PageOffset:      cfg.PageOffset,
			BlockLog:        store.NewRetryLog(cfg.BlockLogPath()),
			Logger:          logger,
		})
	return ctrl, cache
}
