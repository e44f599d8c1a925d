package pdfinspect

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

var (
	pdfHeader        = []byte("%PDF-")
	linearizedMarker = []byte("/Linearized")
	xfaMarker        = []byte("/XFA")
)

// Inspector extracts document metadata and plain text from a PDF. Structural
// markers (extra headers, linearization, XFA forms) come from a raw byte scan
// so they survive even when objects hide behind incremental updates; the rest
// comes from the structured parse.
type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

func (i *Inspector) ExtractMetadata(ctx context.Context, raw []byte) (meta domain.DocumentMetadata, fullText string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return domain.DocumentMetadata{}, "", err
	}

	meta.HeaderCount, meta.IsLinearized, meta.HasXFA = structuralSignals(raw)

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return domain.DocumentMetadata{}, "", fmt.Errorf("parse pdf: %w", err)
	}

	meta.NumPages = reader.NumPage()

	info := reader.Trailer().Key("Info")
	if !info.IsNull() {
		meta.Producer = infoString(info.Key("Producer"))
		meta.Creator = infoString(info.Key("Creator"))
		meta.CreationDate = parsePDFDate(infoString(info.Key("CreationDate")))
		meta.ModificationDate = parsePDFDate(infoString(info.Key("ModDate")))
	}

	fullText = extractText(reader, meta.NumPages)
	return meta, fullText, nil
}

// structuralSignals scans the raw bytes without parsing. Multiple %PDF-
// headers indicate concatenated or incrementally rebuilt documents.
func structuralSignals(raw []byte) (headerCount int, isLinearized, hasXFA bool) {
	return bytes.Count(raw, pdfHeader),
		bytes.Contains(raw, linearizedMarker),
		bytes.Contains(raw, xfaMarker)
}

// extractText joins per-page plain text with form feeds so the page
// boundaries stay recoverable downstream. Pages that fail to render
// contribute an empty segment.
func extractText(reader *pdf.Reader, numPages int) string {
	segments := make([]string, 0, numPages)
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			segments = append(segments, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			segments = append(segments, "")
			continue
		}
		segments = append(segments, text)
	}
	return strings.Join(segments, "\f")
}

func infoString(value pdf.Value) string {
	if value.IsNull() {
		return ""
	}
	if text := value.Text(); text != "" {
		return text
	}
	return value.RawString()
}

// pdfDateLayouts cover the common truncations of the D:YYYYMMDDHHmmSS form.
// Offsets are normalized before matching because PDF writes them as +HH'mm'.
var pdfDateLayouts = []string{
	"20060102150405-07:00",
	"20060102150405Z",
	"20060102150405",
	"200601021504",
	"2006010215",
	"20060102",
	"200601",
	"2006",
}

// parsePDFDate parses a PDF date string such as D:20240301100000+00'00'.
// Returns nil when the value is absent or unparseable; callers treat a
// missing date as "not comparable", never as zero time.
func parsePDFDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "D:")
	if value == "" {
		return nil
	}

	// +HH'mm' / +HH' / +HHmm -> +HH:mm
	if idx := strings.IndexAny(value, "+-"); idx > 0 {
		offset := strings.ReplaceAll(value[idx:], "'", "")
		sign := offset[:1]
		digits := offset[1:]
		switch len(digits) {
		case 2:
			digits += "00"
		case 4:
		default:
			digits = ""
		}
		if digits != "" {
			value = value[:idx] + sign + digits[:2] + ":" + digits[2:]
		} else {
			value = value[:idx]
		}
	}

	for _, layout := range pdfDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}
