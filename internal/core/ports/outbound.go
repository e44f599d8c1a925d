package ports

import (
	"context"
	"io"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

// ScanRepository persists and reads scan job state and the immutable result.
type ScanRepository interface {
	Create(ctx context.Context, job *domain.ScanJob) error
	GetJob(ctx context.Context, id string) (*domain.ScanJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.ScanStatus, errMessage string) error
	SaveResult(ctx context.Context, result *domain.ScanResult) error
	GetResult(ctx context.Context, id string) (*domain.ScanResult, error)
}

// ObjectStorage stores the submitted document bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes scan job events.
type MessageQueue interface {
	PublishScanQueued(ctx context.Context, scanID string) error
	SubscribeScanQueued(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentInspector performs the structural parse of a document: metadata,
// low-level container signals, and the whole-document extracted text.
// A parse failure is fatal to the analysis; there is no partial success.
type DocumentInspector interface {
	ExtractMetadata(ctx context.Context, raw []byte) (domain.DocumentMetadata, string, error)
}

// PageReconciler produces one PageDetail per declared page. It never fails:
// a page whose content cannot be determined is reported as empty.
type PageReconciler interface {
	Reconcile(ctx context.Context, raw []byte, numPages int, fullText string) []domain.PageDetail
}

// ContentScorer rates the extracted text for tampering likelihood on a
// 0..100 scale. Pluggable; a scorer failure degrades the analysis, it does
// not fail the job.
type ContentScorer interface {
	ScoreContent(ctx context.Context, text string) (float64, error)
}

// ReportRenderer renders a completed result into a downloadable report.
type ReportRenderer interface {
	Render(result *domain.ScanResult) (io.WriterTo, error)
}
