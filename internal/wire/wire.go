//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/driftaldev/redline/internal/app"
	"github.com/driftaldev/redline/internal/config"
	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/db"
	"github.com/driftaldev/redline/internal/gitutil"
	"github.com/driftaldev/redline/internal/jobs"
	"github.com/driftaldev/redline/internal/llm"
	"github.com/driftaldev/redline/internal/repomanager"
	"github.com/driftaldev/redline/internal/server"
	"github.com/driftaldev/redline/internal/storage"
)

// InitializeApp builds the full application graph. The returned cleanup
// closes the database pool.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		server.NewServer,
		config.LoadConfig,
		db.NewDatabase,
		storage.NewStore,
		repomanager.New,
		gitutil.NewClient,
		jobs.NewDispatcher,
		jobs.NewReviewJob,
		llm.NewPromptManager,
		llm.NewGeneratorModel,
		llm.NewRoleAnalyzer,
		provideLogger,
		provideAIConfig,
		provideDBConfig,
		provideMaxWorkers,
		provideEmbedder,
		provideVectorStore,
		provideParserRegistry,
		wire.Bind(new(core.Analyzer), new(*llm.RoleAnalyzer)),
		wire.Bind(new(core.Job), new(*jobs.ReviewJob)),
		wire.Bind(new(core.JobDispatcher), new(*jobs.Dispatcher)),
		wire.FieldsOf(new(*db.DB), "DB"),
	)
	return &app.App{}, nil, nil
}
