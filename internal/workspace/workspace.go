package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/plantbuild/internal/logfields"
)

// Manager owns the scratch directory of one build pass.
type Manager struct {
	baseDir string
	tempDir string
	seq     atomic.Uint64
}

// NewManager creates a workspace manager rooted at baseDir (the system temp
// directory when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create makes a fresh timestamped directory below the base directory.
func (m *Manager) Create() error {
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base: %w", err)
	}
	prefix := fmt.Sprintf("plantbuild-%s-", time.Now().Format("20060102-150405"))
	tempDir, err := os.MkdirTemp(m.baseDir, prefix)
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.tempDir = tempDir
	slog.Debug("Created workspace", logfields.Path(tempDir))
	return nil
}

// GetPath returns the path to the workspace directory.
func (m *Manager) GetPath() string {
	return m.tempDir
}

// WriteFile stores data under a unique name derived from hint and returns the
// file path. Safe for concurrent use once Create succeeded.
func (m *Manager) WriteFile(hint string, data []byte) (string, error) {
	if m.tempDir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	hint = strings.Map(func(r rune) rune {
		if r == filepath.Separator || r == '/' {
			return '_'
		}
		return r
	}, filepath.Base(hint))
	name := fmt.Sprintf("%04d-%s", m.seq.Add(1), hint)
	path := filepath.Join(m.tempDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write workspace file: %w", err)
	}
	return path, nil
}

// Cleanup removes the workspace directory.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}
	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}
