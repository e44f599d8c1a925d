package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

type processRepoFake struct {
	job       *domain.ScanJob
	jobErr    error
	saveErr   error
	statuses  []domain.ScanStatus
	lastError string
	saved     *domain.ScanResult
}

func (f *processRepoFake) Create(context.Context, *domain.ScanJob) error {
	return errors.New("not implemented")
}

func (f *processRepoFake) GetJob(context.Context, string) (*domain.ScanJob, error) {
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	return f.job, nil
}

func (f *processRepoFake) UpdateStatus(_ context.Context, _ string, status domain.ScanStatus, errMessage string) error {
	f.statuses = append(f.statuses, status)
	f.lastError = errMessage
	return nil
}

func (f *processRepoFake) SaveResult(_ context.Context, result *domain.ScanResult) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = result
	return nil
}

func (f *processRepoFake) GetResult(context.Context, string) (*domain.ScanResult, error) {
	return f.saved, nil
}

type processStorageFake struct {
	raw []byte
	err error
}

func (f *processStorageFake) Save(context.Context, string, io.Reader) error {
	return errors.New("not implemented")
}

func (f *processStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.raw)), nil
}

type inspectorFake struct {
	meta domain.DocumentMetadata
	text string
	err  error
}

func (f *inspectorFake) ExtractMetadata(context.Context, []byte) (domain.DocumentMetadata, string, error) {
	if f.err != nil {
		return domain.DocumentMetadata{}, "", f.err
	}
	return f.meta, f.text, nil
}

type reconcilerFake struct {
	pages []domain.PageDetail
}

func (f *reconcilerFake) Reconcile(context.Context, []byte, int, string) []domain.PageDetail {
	return f.pages
}

type scorerFake struct {
	score float64
	err   error
	calls int
}

func (f *scorerFake) ScoreContent(context.Context, string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.score, nil
}

func queuedJob() *domain.ScanJob {
	now := time.Now().UTC()
	return &domain.ScanJob{
		ID:          "scan-1",
		FileName:    "contract.pdf",
		MimeType:    "application/pdf",
		StoragePath: "scan-1_contract.pdf",
		SizeBytes:   60_000,
		Status:      domain.StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProcessCleanDocument(t *testing.T) {
	same, _ := time.Parse(time.RFC3339, "2024-03-01T10:00:00Z")
	repo := &processRepoFake{job: queuedJob()}
	scorer := &scorerFake{score: 12}

	uc := NewProcessScanUseCase(
		repo,
		&processStorageFake{raw: bytes.Repeat([]byte("x"), 60_000)},
		&inspectorFake{
			meta: domain.DocumentMetadata{
				NumPages:         3,
				Producer:         "LibreOffice",
				CreationDate:     &same,
				ModificationDate: &same,
				HeaderCount:      1,
			},
			text: "page one\fpage two\fpage three",
		},
		&reconcilerFake{pages: contentPages(120, 90, 210)},
		scorer,
		1000,
	)

	if err := uc.ProcessByID(context.Background(), "scan-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if len(repo.statuses) != 2 || repo.statuses[0] != domain.StatusProcessing || repo.statuses[1] != domain.StatusCompleted {
		t.Fatalf("unexpected status transitions: %v", repo.statuses)
	}
	if repo.saved == nil {
		t.Fatalf("expected saved result")
	}
	if len(repo.saved.Flags) != 0 {
		t.Fatalf("clean document must carry no flags, got %v", repo.saved.Flags)
	}
	if repo.saved.HasHiddenPages {
		t.Fatalf("clean document must not report hidden pages")
	}
	if repo.saved.RiskLevel != domain.RiskLow {
		t.Fatalf("expected low risk, got %s", repo.saved.RiskLevel)
	}
	if len(repo.saved.PageDetails) != 3 {
		t.Fatalf("expected 3 page entries, got %d", len(repo.saved.PageDetails))
	}
	if scorer.calls != 1 {
		t.Fatalf("expected one scorer call, got %d", scorer.calls)
	}
}

func TestProcessFlagsVersionsAndHiddenPages(t *testing.T) {
	repo := &processRepoFake{job: queuedJob()}

	uc := NewProcessScanUseCase(
		repo,
		&processStorageFake{raw: bytes.Repeat([]byte("x"), 60_000)},
		&inspectorFake{
			meta: domain.DocumentMetadata{NumPages: 3, HeaderCount: 2},
			text: "page one\f\fpage three",
		},
		&reconcilerFake{pages: contentPages(120, 0, 210)},
		&scorerFake{score: 40},
		1000,
	)

	if err := uc.ProcessByID(context.Background(), "scan-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	got := tags(repo.saved.Flags)
	want := []domain.FeatureTag{domain.FeatureMultiplePDFVersions, domain.FeatureHiddenPages}
	if len(got) != len(want) {
		t.Fatalf("expected flags %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected flags %v, got %v", want, got)
		}
	}
	if !repo.saved.HasHiddenPages {
		t.Fatalf("expected hasHiddenPages=true")
	}
	if repo.saved.TechnicalScore <= 0 {
		t.Fatalf("expected a positive technical score, got %.0f", repo.saved.TechnicalScore)
	}
}

func TestProcessExtractionErrorMarksFailed(t *testing.T) {
	repo := &processRepoFake{job: queuedJob()}

	uc := NewProcessScanUseCase(
		repo,
		&processStorageFake{raw: []byte("not really a pdf")},
		&inspectorFake{err: errors.New("malformed xref table")},
		&reconcilerFake{},
		nil,
		1000,
	)

	err := uc.ProcessByID(context.Background(), "scan-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	last := repo.statuses[len(repo.statuses)-1]
	if last != domain.StatusFailed {
		t.Fatalf("expected final status failed, got %s", last)
	}
	if repo.lastError == "" {
		t.Fatalf("expected error message persisted on the job")
	}
	if repo.saved != nil {
		t.Fatalf("no result must be saved on failure")
	}
}

func TestProcessScorerFailureDegradesToZero(t *testing.T) {
	repo := &processRepoFake{job: queuedJob()}

	uc := NewProcessScanUseCase(
		repo,
		&processStorageFake{raw: bytes.Repeat([]byte("x"), 60_000)},
		&inspectorFake{meta: domain.DocumentMetadata{NumPages: 1, HeaderCount: 1}, text: "hello"},
		&reconcilerFake{pages: contentPages(5)},
		&scorerFake{err: errors.New("model offline")},
		1000,
	)

	if err := uc.ProcessByID(context.Background(), "scan-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if repo.saved.IAScore != 0 {
		t.Fatalf("expected ia score 0 on scorer failure, got %.0f", repo.saved.IAScore)
	}
	if repo.statuses[len(repo.statuses)-1] != domain.StatusCompleted {
		t.Fatalf("scorer failure must not fail the job: %v", repo.statuses)
	}
}

func TestProcessSkipsRedeliveredFinishedScan(t *testing.T) {
	for _, status := range []domain.ScanStatus{domain.StatusCompleted, domain.StatusFailed} {
		job := queuedJob()
		job.Status = status
		repo := &processRepoFake{job: job}
		storage := &processStorageFake{err: errors.New("must not be opened")}
		scorer := &scorerFake{}

		uc := NewProcessScanUseCase(repo, storage, &inspectorFake{}, &reconcilerFake{}, scorer, 1000)

		if err := uc.ProcessByID(context.Background(), "scan-1"); err != nil {
			t.Fatalf("%s: redelivery must be acknowledged, got %v", status, err)
		}
		if len(repo.statuses) != 0 {
			t.Fatalf("%s: finished scan must not change status, got %v", status, repo.statuses)
		}
		if repo.saved != nil {
			t.Fatalf("%s: finished scan must not be overwritten", status)
		}
		if scorer.calls != 0 {
			t.Fatalf("%s: pipeline must not rerun, scorer called %d times", status, scorer.calls)
		}
	}
}

func TestProcessStorageErrorMarksFailed(t *testing.T) {
	repo := &processRepoFake{job: queuedJob()}

	uc := NewProcessScanUseCase(
		repo,
		&processStorageFake{err: errors.New("no such file")},
		&inspectorFake{},
		&reconcilerFake{},
		nil,
		1000,
	)

	if err := uc.ProcessByID(context.Background(), "scan-1"); err == nil {
		t.Fatalf("expected error")
	}
	if repo.statuses[len(repo.statuses)-1] != domain.StatusFailed {
		t.Fatalf("expected failed status, got %v", repo.statuses)
	}
}
