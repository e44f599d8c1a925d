package ports

import (
	"context"
	"io"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

// ScanSubmitter is the inbound contract for accepting a document upload and
// creating its scan job.
type ScanSubmitter interface {
	Submit(ctx context.Context, filename, mimeType string, size int64, body io.Reader) (*domain.ScanJob, error)
}

// ScanResultReader is the inbound read model for job state and results.
type ScanResultReader interface {
	GetJob(ctx context.Context, id string) (*domain.ScanJob, error)
	GetResult(ctx context.Context, id string) (*domain.ScanResult, error)
}

// ScanProcessor is the inbound contract for asynchronous scan analysis.
type ScanProcessor interface {
	ProcessByID(ctx context.Context, scanID string) error
}
