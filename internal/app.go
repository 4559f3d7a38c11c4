package internal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// App holds the application state and dependencies
type App struct {
	config  *Config
	logger  *slog.Logger
	db      *sql.DB
	store   *Store
	fetcher Fetcher
	ai      Summarizer
	session *Session
}

// AppOption customizes App creation
type AppOption func(*App)

// WithFetcher sets a custom video fetcher
func WithFetcher(fetcher Fetcher) AppOption {
	return func(a *App) {
		a.fetcher = fetcher
	}
}

// WithSummarizer sets a custom AI backend
func WithSummarizer(ai Summarizer) AppOption {
	return func(a *App) {
		a.ai = ai
	}
}

// NewApp initializes the application: logger, database, fetcher, AI
// backend, and the session orchestrator on top of them.
func NewApp(ctx context.Context, config *Config, logger *slog.Logger, options ...AppOption) (*App, error) {
	app := &App{config: config, logger: logger}

	for _, option := range options {
		option(app)
	}

	if err := EnsureDirs(filepath.Dir(config.DatabasePath)); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sql.Open("sqlite3", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	app.db = db

	app.store, err = NewStore(db, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	// Commands that only read the store (cp, paths) run without API
	// credentials; the fetcher is wired only when a key is present.
	if app.fetcher == nil && config.YouTubeAPIKey != "" {
		youtube, err := NewYouTube(ctx, config.YouTubeAPIKey)
		if err != nil {
			db.Close()
			return nil, err
		}
		app.fetcher = youtube
	}

	if app.ai == nil {
		app.ai = NewAIWithKey(config.OpenAIAPIKey, config.ChatModel, config.MaxSummaryWords, config.SummaryTimeout, logger)
	}

	app.session = NewSession(app.store, app.fetcher, app.ai, config.HistoryLimit, logger)
	return app, nil
}

// Close releases the application's resources.
func (app *App) Close() error {
	return app.db.Close()
}

// Session returns the message orchestrator.
func (app *App) Session() *Session { return app.session }

// Store returns the persistence layer.
func (app *App) Store() *Store { return app.store }

// Config returns the application configuration.
func (app *App) Config() *Config { return app.config }

// Logger returns the application logger.
func (app *App) Logger() *slog.Logger { return app.logger }
