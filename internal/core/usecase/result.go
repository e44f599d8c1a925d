package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
	"github.com/mvcarvalho/docsentinel/internal/core/ports"
)

// ResultUseCase is the read side of the job lifecycle: it distinguishes
// not-ready, failed and unknown jobs so the transport layer can map each to
// its own response.
type ResultUseCase struct {
	repo ports.ScanRepository
}

func NewResultUseCase(repo ports.ScanRepository) *ResultUseCase {
	return &ResultUseCase{repo: repo}
}

func (uc *ResultUseCase) GetJob(ctx context.Context, id string) (*domain.ScanJob, error) {
	return uc.repo.GetJob(ctx, id)
}

func (uc *ResultUseCase) GetResult(ctx context.Context, id string) (*domain.ScanResult, error) {
	job, err := uc.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case domain.StatusQueued, domain.StatusProcessing:
		return nil, domain.WrapError(domain.ErrScanNotReady, "get result",
			fmt.Errorf("scan %s is %s", id, job.Status))
	case domain.StatusFailed:
		reason := job.Error
		if reason == "" {
			reason = "analysis failed"
		}
		return nil, domain.WrapError(domain.ErrScanFailed, "get result", errors.New(reason))
	}

	return uc.repo.GetResult(ctx, id)
}
