// Package app holds the assembled application: the wired components plus
// their ordered startup and shutdown.
package app

import (
	"context"
	"log/slog"

	"github.com/driftaldev/redline/internal/config"
	"github.com/driftaldev/redline/internal/gitutil"
	"github.com/driftaldev/redline/internal/jobs"
	"github.com/driftaldev/redline/internal/repomanager"
	"github.com/driftaldev/redline/internal/server"
	"github.com/driftaldev/redline/internal/storage"
)

// App holds the main application components. The exported fields are the
// services the CLI drives directly; the server and dispatcher stay internal
// to Start and Stop.
type App struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Store     storage.Store
	RepoMgr   repomanager.Manager
	GitClient *gitutil.Client
	ReviewJob *jobs.ReviewJob

	ctx        context.Context
	server     *server.Server
	dispatcher *jobs.Dispatcher
}

// NewApp assembles the application from its wired components.
func NewApp(
	ctx context.Context,
	cfg *config.Config,
	store storage.Store,
	repoMgr repomanager.Manager,
	gitClient *gitutil.Client,
	reviewJob *jobs.ReviewJob,
	dispatcher *jobs.Dispatcher,
	srv *server.Server,
	logger *slog.Logger,
) *App {
	return &App{
		Cfg:        cfg,
		Logger:     logger,
		Store:      store,
		RepoMgr:    repoMgr,
		GitClient:  gitClient,
		ReviewJob:  reviewJob,
		ctx:        ctx,
		server:     srv,
		dispatcher: dispatcher,
	}
}

// Start runs the HTTP server and blocks until shutdown.
func (a *App) Start() error {
	a.Logger.Info("starting redline",
		"port", a.Cfg.Server.Port,
		"max_workers", a.Cfg.Server.MaxWorkers,
	)
	return a.server.Start()
}

// Stop shuts the application down: the server first so no new work arrives,
// then the dispatcher so in-flight reviews finish.
func (a *App) Stop() error {
	a.Logger.Info("shutting down redline services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.Logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()

	if serverErr != nil {
		return serverErr
	}
	a.Logger.Info("redline stopped")
	return nil
}
