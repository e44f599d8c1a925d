package excel

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

const (
	summarySheet = "Summary"
	pagesSheet   = "Pages"
)

// Renderer produces a two-sheet XLSX report for a completed scan: a summary
// sheet with scores and flags, and a per-page sheet mirroring pageDetails.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(result *domain.ScanResult) (io.WriterTo, error) {
	f := excelize.NewFile()

	if err := buildSummarySheet(f, result); err != nil {
		return nil, err
	}
	if err := buildPagesSheet(f, result); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize report: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf, nil
}

func buildSummarySheet(f *excelize.File, result *domain.ScanResult) error {
	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	rows := [][]any{
		{"Scan ID", result.ID},
		{"File name", result.FileName},
		{"Completed at", result.CreatedAt.Format(time.RFC3339)},
		{"Total score", result.ScoreTotal},
		{"Technical score", result.TechnicalScore},
		{"Content score", result.IAScore},
		{"Risk level", string(result.RiskLevel)},
		{"Recommendation", result.Recommendation},
		{"Hidden pages", result.HasHiddenPages},
		{"Justification", result.Justification},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary cell name: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}

	flagsStart := len(rows) + 2
	header := []any{"Flag", "Description"}
	cell, err := excelize.CoordinatesToCellName(1, flagsStart)
	if err != nil {
		return fmt.Errorf("flags cell name: %w", err)
	}
	if err := f.SetSheetRow(summarySheet, cell, &header); err != nil {
		return fmt.Errorf("write flags header: %w", err)
	}
	for i, flag := range result.Flags {
		row := []any{string(flag.Tag), flag.Description}
		cell, err := excelize.CoordinatesToCellName(1, flagsStart+1+i)
		if err != nil {
			return fmt.Errorf("flag cell name: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write flag row: %w", err)
		}
	}
	return nil
}

func buildPagesSheet(f *excelize.File, result *domain.ScanResult) error {
	if _, err := f.NewSheet(pagesSheet); err != nil {
		return fmt.Errorf("create pages sheet: %w", err)
	}

	header := []any{"Page", "Has content", "Text length"}
	if err := f.SetSheetRow(pagesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write pages header: %w", err)
	}
	for i, page := range result.PageDetails {
		row := []any{page.PageNum, page.HasContent, page.TextLength}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("page cell name: %w", err)
		}
		if err := f.SetSheetRow(pagesSheet, cell, &row); err != nil {
			return fmt.Errorf("write page row: %w", err)
		}
	}
	return nil
}
