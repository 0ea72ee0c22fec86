package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/docuprep/docverify/internal/application/port"
	"go.uber.org/zap"
)

// LocalFolderManager implements port.FolderManager for local filesystem
type LocalFolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFolderManager creates a new LocalFolderManager
func NewLocalFolderManager(baseDir string, logger *zap.Logger) port.FolderManager {
	return &LocalFolderManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// CreateFolder creates a folder for a document, returning the relative path
func (m *LocalFolderManager) CreateFolder(ctx context.Context, documentID string) (string, error) {
	folderName := m.SanitizeName(documentID)
	if folderName == "" {
		return "", fmt.Errorf("invalid folder name derived from %q", documentID)
	}

	fullPath := filepath.Join(m.baseDir, folderName)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		m.logger.Error("Failed to create folder",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	m.logger.Debug("Folder created", zap.String("path", fullPath))
	return folderName, nil
}

// GetPath returns the relative folder path for a document
func (m *LocalFolderManager) GetPath(documentID string) string {
	return m.SanitizeName(documentID)
}

// Exists checks whether the document folder exists
func (m *LocalFolderManager) Exists(ctx context.Context, documentID string) bool {
	fullPath := filepath.Join(m.baseDir, m.SanitizeName(documentID))
	info, err := os.Stat(fullPath)
	return err == nil && info.IsDir()
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeName strips path separators and unsafe characters from a name
func (m *LocalFolderManager) SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "..", "")
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	return name
}

// Verify interface compliance
var _ port.FolderManager = (*LocalFolderManager)(nil)
