package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

// DefaultMinBytesPerPage is the empirical floor below which a document looks
// aggressively recompressed or stripped of content.
const DefaultMinBytesPerPage = 1000

// DetectSuspiciousFeatures evaluates the fixed heuristic set over the
// structural metadata and the reconciled page details. Heuristics are
// independent and additive; the output order is the evaluation order.
// The returned justification describes what fired, for human review.
func DetectSuspiciousFeatures(
	meta domain.DocumentMetadata,
	rawLen int,
	pages []domain.PageDetail,
	minBytesPerPage int,
) ([]domain.SuspiciousFeature, string) {
	if minBytesPerPage <= 0 {
		minBytesPerPage = DefaultMinBytesPerPage
	}

	flags := []domain.SuspiciousFeature{}
	var reasons []string

	if datesDiffer(meta.CreationDate, meta.ModificationDate) {
		flags = append(flags, domain.SuspiciousFeature{
			Tag:         domain.FeatureModificationAfterCreation,
			Description: "modification date differs from creation date",
		})
		reasons = append(reasons, fmt.Sprintf(
			"the document was modified after creation (created %s, modified %s)",
			meta.CreationDate.UTC().Format(time.RFC3339),
			meta.ModificationDate.UTC().Format(time.RFC3339),
		))
	}

	if meta.HeaderCount > 1 {
		flags = append(flags, domain.SuspiciousFeature{
			Tag:         domain.FeatureMultiplePDFVersions,
			Description: fmt.Sprintf("%d PDF headers found in the file body", meta.HeaderCount),
		})
		reasons = append(reasons, fmt.Sprintf(
			"the file carries %d incremental-update bodies, a strong signal of post-creation editing",
			meta.HeaderCount,
		))
	}

	if meta.NumPages > 0 && rawLen/meta.NumPages < minBytesPerPage {
		flags = append(flags, domain.SuspiciousFeature{
			Tag: domain.FeatureAbnormalCompression,
			Description: fmt.Sprintf("%d bytes per page is below the %d floor",
				rawLen/meta.NumPages, minBytesPerPage),
		})
		reasons = append(reasons,
			"the byte-per-page ratio is abnormally low, suggesting aggressive recompression or content stripping")
	}

	if hidden := countHiddenPages(pages); hidden > 0 {
		flags = append(flags, domain.SuspiciousFeature{
			Tag:         domain.FeatureHiddenPages,
			Description: fmt.Sprintf("%d of %d pages have no extractable text", hidden, len(pages)),
		})
		reasons = append(reasons, fmt.Sprintf(
			"%d declared page(s) expose no visible text content under any extraction strategy", hidden))
	}

	if len(reasons) == 0 {
		return flags, "No tampering signals were detected; the document structure is consistent with an unmodified original."
	}
	return flags, "Suspicious signals: " + strings.Join(reasons, "; ") + "."
}

// HasHiddenPages reports whether any declared page exposes no extractable
// content.
func HasHiddenPages(pages []domain.PageDetail) bool {
	return countHiddenPages(pages) > 0
}

func countHiddenPages(pages []domain.PageDetail) int {
	hidden := 0
	for _, p := range pages {
		if !p.HasContent {
			hidden++
		}
	}
	return hidden
}

// datesDiffer compares at millisecond precision and requires both dates.
func datesDiffer(created, modified *time.Time) bool {
	if created == nil || modified == nil {
		return false
	}
	return created.UnixMilli() != modified.UnixMilli()
}
