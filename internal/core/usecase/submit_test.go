package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

type submitRepoFake struct {
	created *domain.ScanJob
	err     error
}

func (f *submitRepoFake) Create(_ context.Context, job *domain.ScanJob) error {
	if f.err != nil {
		return f.err
	}
	copyJob := *job
	f.created = &copyJob
	return nil
}

func (f *submitRepoFake) GetJob(context.Context, string) (*domain.ScanJob, error) {
	return nil, errors.New("not implemented")
}
func (f *submitRepoFake) UpdateStatus(context.Context, string, domain.ScanStatus, string) error {
	return errors.New("not implemented")
}
func (f *submitRepoFake) SaveResult(context.Context, *domain.ScanResult) error {
	return errors.New("not implemented")
}
func (f *submitRepoFake) GetResult(context.Context, string) (*domain.ScanResult, error) {
	return nil, errors.New("not implemented")
}

type submitStorageFake struct {
	savedKey  string
	savedBody []byte
	err       error
}

func (f *submitStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = raw
	return nil
}

func (f *submitStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type submitQueueFake struct {
	scanID string
	err    error
}

func (f *submitQueueFake) PublishScanQueued(_ context.Context, scanID string) error {
	if f.err != nil {
		return f.err
	}
	f.scanID = scanID
	return nil
}

func (f *submitQueueFake) SubscribeScanQueued(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func pdfBody(extra string) []byte {
	return []byte("%PDF-1.7\n" + extra)
}

func TestSubmitSuccess(t *testing.T) {
	repo := &submitRepoFake{}
	storage := &submitStorageFake{}
	queue := &submitQueueFake{}
	uc := NewSubmitScanUseCase(repo, storage, queue, 1<<20)

	body := pdfBody("1 0 obj")
	job, err := uc.Submit(context.Background(), "invoice 2024.pdf", "application/pdf", int64(len(body)), bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if job.ID == "" {
		t.Fatalf("expected job id")
	}
	if job.Status != domain.StatusQueued {
		t.Fatalf("expected status queued, got %s", job.Status)
	}
	if repo.created == nil {
		t.Fatalf("expected repo.Create call")
	}
	if queue.scanID != job.ID {
		t.Fatalf("expected queued scan id %s, got %s", job.ID, queue.scanID)
	}
	if !strings.Contains(storage.savedKey, "_invoice_2024.pdf") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
	if !bytes.Equal(storage.savedBody, body) {
		t.Fatalf("stored bytes differ from upload")
	}
}

func TestSubmitRejectsNonPDFBytes(t *testing.T) {
	uc := NewSubmitScanUseCase(&submitRepoFake{}, &submitStorageFake{}, &submitQueueFake{}, 1<<20)

	_, err := uc.Submit(context.Background(), "note.pdf", "application/pdf", 5, strings.NewReader("hello"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitRejectsUnsupportedMimeType(t *testing.T) {
	uc := NewSubmitScanUseCase(&submitRepoFake{}, &submitStorageFake{}, &submitQueueFake{}, 1<<20)

	body := pdfBody("")
	_, err := uc.Submit(context.Background(), "sheet.xlsx", "application/vnd.ms-excel", int64(len(body)), bytes.NewReader(body))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitRejectsOversizedUpload(t *testing.T) {
	uc := NewSubmitScanUseCase(&submitRepoFake{}, &submitStorageFake{}, &submitQueueFake{}, 16)

	body := pdfBody(strings.Repeat("a", 64))
	_, err := uc.Submit(context.Background(), "big.pdf", "application/pdf", int64(len(body)), bytes.NewReader(body))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitQueueError(t *testing.T) {
	uc := NewSubmitScanUseCase(&submitRepoFake{}, &submitStorageFake{}, &submitQueueFake{err: errors.New("queue down")}, 1<<20)

	body := pdfBody("")
	_, err := uc.Submit(context.Background(), "doc.pdf", "application/pdf", int64(len(body)), bytes.NewReader(body))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "publish scan event") {
		t.Fatalf("expected publish error, got %v", err)
	}
}
