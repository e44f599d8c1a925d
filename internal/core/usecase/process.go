package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
	"github.com/mvcarvalho/docsentinel/internal/core/ports"
)

// ProcessScanUseCase runs the full analysis pipeline for one queued job:
// structural extraction, page reconciliation, heuristic detection, content
// scoring and result persistence. Extraction errors are fatal to the job;
// the job moves to failed and keeps the error message.
type ProcessScanUseCase struct {
	repo            ports.ScanRepository
	storage         ports.ObjectStorage
	inspector       ports.DocumentInspector
	reconciler      ports.PageReconciler
	scorer          ports.ContentScorer
	minBytesPerPage int
}

func NewProcessScanUseCase(
	repo ports.ScanRepository,
	storage ports.ObjectStorage,
	inspector ports.DocumentInspector,
	reconciler ports.PageReconciler,
	scorer ports.ContentScorer,
	minBytesPerPage int,
) *ProcessScanUseCase {
	return &ProcessScanUseCase{
		repo:            repo,
		storage:         storage,
		inspector:       inspector,
		reconciler:      reconciler,
		scorer:          scorer,
		minBytesPerPage: minBytesPerPage,
	}
}

func (uc *ProcessScanUseCase) ProcessByID(ctx context.Context, scanID string) error {
	job, err := uc.loadJob(ctx, scanID)
	if err != nil {
		return err
	}
	// The queue delivers at-least-once; a redelivery for a finished job is
	// acknowledged without reopening it.
	if job.Status.IsTerminal() {
		slog.Info("scan already finished, skipping redelivery", "scan_id", scanID, "status", job.Status)
		return nil
	}

	if err := uc.markStatus(ctx, scanID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	result, err := uc.runPipeline(ctx, job)
	if err != nil {
		if failErr := uc.markFailed(ctx, scanID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveResult(ctx, result); err != nil {
		if failErr := uc.markFailed(ctx, scanID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("save scan result: %w", err)
	}

	if err := uc.markStatus(ctx, scanID, domain.StatusCompleted, ""); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}
	return nil
}

func (uc *ProcessScanUseCase) runPipeline(ctx context.Context, job *domain.ScanJob) (*domain.ScanResult, error) {
	raw, err := uc.loadDocument(ctx, job)
	if err != nil {
		return nil, err
	}

	analysis, err := uc.Analyze(ctx, raw)
	if err != nil {
		return nil, err
	}

	iaScore := uc.scoreContent(ctx, job.ID, analysis.TextContent)
	card := ScoreFlags(analysis.SuspiciousFeatures, iaScore)

	return &domain.ScanResult{
		ID:             job.ID,
		FileName:       job.FileName,
		ScoreTotal:     card.ScoreTotal,
		TechnicalScore: card.TechnicalScore,
		IAScore:        card.IAScore,
		RiskLevel:      card.RiskLevel,
		Recommendation: card.Recommendation,
		Flags:          analysis.SuspiciousFeatures,
		Justification:  analysis.Justification,
		HasHiddenPages: analysis.HasHiddenPages,
		PageDetails:    analysis.PageDetails,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Analyze runs the synchronous extraction+detection pipeline over one
// document. It is straight-line, single-document work: metadata first, then
// per-page reconciliation, then the heuristic pass.
func (uc *ProcessScanUseCase) Analyze(ctx context.Context, raw []byte) (*domain.AnalysisResult, error) {
	meta, fullText, err := uc.inspector.ExtractMetadata(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extract metadata: %w", err)
	}

	pages := uc.reconciler.Reconcile(ctx, raw, meta.NumPages, fullText)
	flags, justification := DetectSuspiciousFeatures(meta, len(raw), pages, uc.minBytesPerPage)

	return &domain.AnalysisResult{
		Metadata:           meta,
		TextContent:        fullText,
		HasHiddenPages:     HasHiddenPages(pages),
		SuspiciousFeatures: flags,
		PageDetails:        pages,
		Justification:      justification,
	}, nil
}

func (uc *ProcessScanUseCase) loadJob(ctx context.Context, scanID string) (*domain.ScanJob, error) {
	job, err := uc.repo.GetJob(ctx, scanID)
	if err != nil {
		return nil, fmt.Errorf("fetch scan job: %w", err)
	}
	return job, nil
}

func (uc *ProcessScanUseCase) loadDocument(ctx context.Context, job *domain.ScanJob) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, job.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	return raw, nil
}

// scoreContent degrades to zero on scorer failure; the content model is an
// optional collaborator, not a gate for the structural analysis.
func (uc *ProcessScanUseCase) scoreContent(ctx context.Context, scanID, text string) float64 {
	if uc.scorer == nil {
		return 0
	}
	score, err := uc.scorer.ScoreContent(ctx, text)
	if err != nil {
		slog.Warn("content scorer unavailable, using zero score", "scan_id", scanID, "error", err)
		return 0
	}
	return score
}

func (uc *ProcessScanUseCase) markStatus(ctx context.Context, scanID string, status domain.ScanStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, scanID, status, errMessage)
}

func (uc *ProcessScanUseCase) markFailed(ctx context.Context, scanID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, scanID, domain.StatusFailed, processErr.Error())
}
