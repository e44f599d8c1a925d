package pdfinspect

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

// Reconciler produces one entry per declared page, whatever it takes. The
// primary path walks the page tree and renders each page; when the tree walk
// is unavailable it falls back to splitting the already-extracted text on
// form feeds. Either way the slice length equals numPages.
type Reconciler struct{}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

func (r *Reconciler) Reconcile(ctx context.Context, raw []byte, numPages int, fullText string) []domain.PageDetail {
	if numPages <= 0 {
		return []domain.PageDetail{}
	}

	pages, err := walkPages(ctx, raw, numPages)
	if err != nil {
		slog.Warn("page tree walk unavailable, splitting extracted text", "error", err)
		return splitByFormFeed(fullText, numPages)
	}
	return pages
}

func walkPages(ctx context.Context, raw []byte, numPages int) (pages []domain.PageDetail, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}

	pages = make([]domain.PageDetail, 0, numPages)
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		pages = append(pages, renderPage(reader, pageNum))
	}
	return pages, nil
}

// renderPage never fails: a page that cannot be rendered is reported as
// empty, which downstream treats as a hidden-page candidate.
func renderPage(reader *pdf.Reader, pageNum int) domain.PageDetail {
	detail := domain.PageDetail{PageNum: pageNum}

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return detail
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return detail
	}

	length := textLength(text)
	detail.HasContent = length > 0
	detail.TextLength = length
	return detail
}

// splitByFormFeed distributes the flat extracted text over the declared page
// count. Fewer segments than pages yields trailing empty entries; extra
// segments are folded into the last page.
func splitByFormFeed(fullText string, numPages int) []domain.PageDetail {
	segments := strings.Split(fullText, "\f")
	if len(segments) > numPages {
		segments[numPages-1] = strings.Join(segments[numPages-1:], "\f")
		segments = segments[:numPages]
	}

	pages := make([]domain.PageDetail, numPages)
	for i := range pages {
		pages[i].PageNum = i + 1
		if i < len(segments) {
			length := textLength(segments[i])
			pages[i].HasContent = length > 0
			pages[i].TextLength = length
		}
	}
	return pages
}

func textLength(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}
