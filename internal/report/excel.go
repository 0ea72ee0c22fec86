package report

import (
	"fmt"

	"github.com/docuprep/docverify/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelWriter exports a document's verification summary as an xlsx workbook
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates a new report writer
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

// Summary bundles everything that goes into one report
type Summary struct {
	Document    *entity.Document
	Suggestions []*entity.OptimizationSuggestion
	Score       int
	Submissions []*entity.ProviderSubmission
}

const timeFormat = "2006-01-02 15:04:05"

// Write renders the summary into workbook bytes
func (w *ExcelWriter) Write(summary *Summary) ([]byte, error) {
	if summary == nil || summary.Document == nil {
		return nil, fmt.Errorf("nothing to report")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.fillOverview(f, summary); err != nil {
		return nil, err
	}
	if err := w.fillSuggestions(f, summary.Suggestions); err != nil {
		return nil, err
	}
	if err := w.fillSubmissions(f, summary.Submissions); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	w.logger.Info("Verification report generated",
		zap.String("document_id", summary.Document.ID),
		zap.Int("suggestions", len(summary.Suggestions)))

	return buf.Bytes(), nil
}

func (w *ExcelWriter) fillOverview(f *excelize.File, summary *Summary) error {
	const sheet = "Overview"
	doc := summary.Document

	// The default sheet is renamed so every sheet carries a meaningful name
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to set up overview sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Document ID", doc.ID},
		{"Document Type", doc.DocumentType},
		{"File Name", doc.FileName},
		{"Verification Status", doc.StatusOrDefault()},
		{"Workflow State", doc.WorkflowStateOrDefault()},
		{"Optimization Score", summary.Score},
		{"Created At", doc.CreatedAt.Format(timeFormat)},
		{"Updated At", doc.UpdatedAt.Format(timeFormat)},
	}

	if details := doc.VerificationDetails; details != nil {
		if details.VerificationMethod != "" {
			rows = append(rows, []interface{}{"Verification Method", details.VerificationMethod})
		}
		if details.RequestedAt != nil {
			rows = append(rows, []interface{}{"Requested At", details.RequestedAt.Format(timeFormat)})
		}
		if details.RejectionReason != "" {
			rows = append(rows, []interface{}{"Rejection Reason", details.RejectionReason})
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write overview row: %w", err)
		}
	}

	return nil
}

func (w *ExcelWriter) fillSuggestions(f *excelize.File, suggestions []*entity.OptimizationSuggestion) error {
	const sheet = "Suggestions"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create suggestions sheet: %w", err)
	}

	header := []interface{}{"Index", "Severity", "Message", "Applied"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, s := range suggestions {
		row := []interface{}{s.Index, s.Severity, s.Message, s.Applied}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write suggestion row: %w", err)
		}
	}

	return nil
}

func (w *ExcelWriter) fillSubmissions(f *excelize.File, submissions []*entity.ProviderSubmission) error {
	const sheet = "Provider Submissions"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create submissions sheet: %w", err)
	}

	header := []interface{}{"Provider", "Reference", "Submitted At"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, sub := range submissions {
		row := []interface{}{sub.ProviderID, sub.Reference, sub.SubmittedAt.Format(timeFormat)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write submission row: %w", err)
		}
	}

	return nil
}
