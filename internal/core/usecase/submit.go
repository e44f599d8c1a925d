package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
	"github.com/mvcarvalho/docsentinel/internal/core/ports"
)

const pdfMagic = "%PDF-"

// SubmitScanUseCase accepts a document upload, stores the bytes, creates the
// scan job in queued state and hands it to the worker queue.
type SubmitScanUseCase struct {
	repo           ports.ScanRepository
	storage        ports.ObjectStorage
	queue          ports.MessageQueue
	maxUploadBytes int64
}

func NewSubmitScanUseCase(
	repo ports.ScanRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	maxUploadBytes int64,
) *SubmitScanUseCase {
	return &SubmitScanUseCase{
		repo:           repo,
		storage:        storage,
		queue:          queue,
		maxUploadBytes: maxUploadBytes,
	}
}

func (uc *SubmitScanUseCase) Submit(
	ctx context.Context,
	filename, mimeType string,
	size int64,
	body io.Reader,
) (*domain.ScanJob, error) {
	raw, err := uc.readUpload(size, body)
	if err != nil {
		return nil, err
	}
	if err := validateUpload(mimeType, raw); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	job := &domain.ScanJob{
		ID:          id,
		FileName:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		SizeBytes:   int64(len(raw)),
		Status:      domain.StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create scan job: %w", err)
	}

	if err := uc.queue.PublishScanQueued(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("publish scan event: %w", err)
	}

	return job, nil
}

func (uc *SubmitScanUseCase) readUpload(size int64, body io.Reader) ([]byte, error) {
	if uc.maxUploadBytes > 0 && size > uc.maxUploadBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload",
			fmt.Errorf("file exceeds %d bytes", uc.maxUploadBytes))
	}

	limit := uc.maxUploadBytes
	if limit <= 0 {
		limit = 1 << 30
	}
	raw, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload",
			fmt.Errorf("file exceeds %d bytes", limit))
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload", errors.New("empty file"))
	}
	return raw, nil
}

func validateUpload(mimeType string, raw []byte) error {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])) {
	case "application/pdf", "application/x-pdf", "application/octet-stream", "":
	default:
		return domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("unsupported content type %q", mimeType))
	}
	if !bytes.HasPrefix(raw, []byte(pdfMagic)) {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload",
			errors.New("file is not a PDF document"))
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.pdf"
	}
	return base
}
