// Package app wires the application's subsystems together for the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lingomate/lingomate-cli/internal/api"
	"github.com/lingomate/lingomate-cli/internal/auth"
	"github.com/lingomate/lingomate-cli/internal/config"
	"github.com/lingomate/lingomate-cli/internal/review"
	"github.com/lingomate/lingomate-cli/internal/session"
	"github.com/lingomate/lingomate-cli/internal/stats"
	"github.com/lingomate/lingomate-cli/internal/storage"
)

// App holds the wired subsystems shared by every CLI command.
type App struct {
	Config  *config.Config
	Paths   *storage.PathManager
	Auth    *auth.Authenticator
	Client  *api.Client
	Reviews *review.Store
	Stats   *stats.Store

	transcripts storage.TranscriptStore
	logger      *log.Logger
}

// New assembles the application from configuration. The transcript database
// is opened lazily on first use so read-only commands stay cheap.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	paths := storage.NewPathManagerAt(dataDir)

	tokenPath, err := paths.GetTokenPath()
	if err != nil {
		return nil, err
	}
	authenticator := auth.NewAuthenticator(
		cfg.Auth.Domain, cfg.Auth.ClientID, cfg.Auth.Audience, cfg.Auth.Scopes,
		auth.NewFileTokenStore(tokenPath))

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout(),
		api.WithTokenSource(authenticator))

	reviewPath, err := paths.GetReviewHistoryPath()
	if err != nil {
		return nil, err
	}
	statsPath, err := paths.GetLocalStatsPath()
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Paths:   paths,
		Auth:    authenticator,
		Client:  client,
		Reviews: review.NewStore(reviewPath, cfg.Review.MaxBatches),
		Stats:   stats.NewStore(statsPath),
		logger:  log.WithPrefix("app"),
	}, nil
}

// Transcripts returns the local transcript archive, opening it on first use.
func (a *App) Transcripts() (storage.TranscriptStore, error) {
	if a.transcripts != nil {
		return a.transcripts, nil
	}
	dbPath, err := a.Paths.GetTranscriptDatabasePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewTranscriptStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript archive: %w", err)
	}
	a.transcripts = store
	return store, nil
}

// NewSessionController builds a controller for one conversation session,
// wired to the backend, the review pipeline, and the transcript archive.
func (a *App) NewSessionController(opts ...session.ControllerOption) *session.Controller {
	aggregator := review.NewAggregator(a.Client, a.Reviews)

	all := []session.ControllerOption{
		session.WithRegister(a.Config.Register),
	}
	if archive, err := a.Transcripts(); err == nil {
		all = append(all, session.WithArchive(archive))
	} else {
		a.logger.Warn("transcript archive unavailable", "error", err)
	}
	all = append(all, opts...)

	return session.NewController(a.Client, aggregator, a.Config.SessionBudget(), all...)
}

// RecordFinishedSession folds a finalized session into the local stats.
func (a *App) RecordFinishedSession(res *session.FinalizeResult) {
	var learned []string
	for _, c := range res.Cards {
		learned = append(learned, c.Corrected)
	}
	if err := a.Stats.RecordSession(res.DurationMs, res.Score, learned); err != nil {
		a.logger.Warn("failed to record local stats", "error", err)
	}
}

// Close releases held resources.
func (a *App) Close() {
	if a.transcripts != nil {
		a.transcripts.Close()
		a.transcripts = nil
	}
}
