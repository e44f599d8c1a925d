package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/mvcarvalho/docsentinel/internal/config"
	"github.com/mvcarvalho/docsentinel/internal/core/ports"
	"github.com/mvcarvalho/docsentinel/internal/core/usecase"
	"github.com/mvcarvalho/docsentinel/internal/infrastructure/pdfinspect"
	"github.com/mvcarvalho/docsentinel/internal/infrastructure/queue/nats"
	"github.com/mvcarvalho/docsentinel/internal/infrastructure/report/excel"
	"github.com/mvcarvalho/docsentinel/internal/infrastructure/repository/postgres"
	"github.com/mvcarvalho/docsentinel/internal/infrastructure/resilience"
	"github.com/mvcarvalho/docsentinel/internal/infrastructure/scorer/ollama"
	"github.com/mvcarvalho/docsentinel/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.ScanRepository
	Renderer ports.ReportRenderer

	SubmitUC  *usecase.SubmitScanUseCase
	ProcessUC *usecase.ProcessScanUseCase
	ResultUC  *usecase.ResultUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewScanRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var scorer ports.ContentScorer
	if cfg.ScorerEnabled {
		client := ollama.New(
			cfg.ScorerURL,
			cfg.ScorerModel,
			ollama.WithTimeout(time.Duration(cfg.ScorerTimeoutSecs)*time.Second),
			ollama.WithResilienceExecutor(executor),
		)
		scorer = ollama.NewScorer(client, cfg.ScorerMaxChars)
	}

	inspector := pdfinspect.NewInspector()
	reconciler := pdfinspect.NewReconciler()
	renderer := excel.NewRenderer()

	submitUC := usecase.NewSubmitScanUseCase(repo, storage, queue, cfg.MaxUploadBytes)
	processUC := usecase.NewProcessScanUseCase(repo, storage, inspector, reconciler, scorer, cfg.MinBytesPerPage)
	resultUC := usecase.NewResultUseCase(repo)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Repo:     repo,
		Renderer: renderer,

		SubmitUC:  submitUC,
		ProcessUC: processUC,
		ResultUC:  resultUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
