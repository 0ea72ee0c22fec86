package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PDFTextExtractor extracts plain text from document files. PDF pages go
// through go-fitz; plain text files are read directly.
type PDFTextExtractor struct {
	logger *zap.Logger
}

// NewPDFTextExtractor creates a new text extractor
func NewPDFTextExtractor(logger *zap.Logger) *PDFTextExtractor {
	return &PDFTextExtractor{logger: logger}
}

// ExtractText returns the text content of the file at filePath
func (e *PDFTextExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("file not accessible: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return e.extractPDF(ctx, filePath)
	case ".txt", ".md":
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func (e *PDFTextExtractor) extractPDF(ctx context.Context, filePath string) (string, error) {
	doc, err := fitz.New(filePath)
	if err != nil {
		e.logger.Error("Failed to open PDF",
			zap.String("path", filePath),
			zap.Error(err))
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := doc.Text(page)
		if err != nil {
			e.logger.Warn("Failed to extract page text",
				zap.String("path", filePath),
				zap.Int("page", page),
				zap.Error(err))
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("no extractable text in %s", filepath.Base(filePath))
	}

	e.logger.Debug("Extracted PDF text",
		zap.String("path", filePath),
		zap.Int("pages", doc.NumPage()),
		zap.Int("chars", len(result)))

	return result, nil
}
