package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestReadRevision(t *testing.T) {
	repoPath := t.TempDir()
	repo, err := git.PlainInit(repoPath, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}

	srcDir := filepath.Join(repoPath, "docs", "diagrams", "src")
	if mkdirErr := os.MkdirAll(srcDir, 0o750); mkdirErr != nil {
		t.Fatalf("Failed to create source dir: %v", mkdirErr)
	}
	if writeErr := os.WriteFile(filepath.Join(srcDir, "a.puml"), []byte("@startuml\n@enduml\n"), 0o600); writeErr != nil {
		t.Fatalf("Failed to write file: %v", writeErr)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	if _, addErr := w.Add("."); addErr != nil {
		t.Fatalf("Failed to add files: %v", addErr)
	}
	commit, err := w.Commit("Add diagram", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	rev, err := ReadRevision(srcDir)
	if err != nil {
		t.Fatalf("ReadRevision: %v", err)
	}
	if rev.Commit != commit.String() {
		t.Errorf("commit = %s, want %s", rev.Commit, commit)
	}
	if rev.Branch != "master" {
		t.Errorf("branch = %q, want master", rev.Branch)
	}
}

func TestReadRevision_NotRepository(t *testing.T) {
	_, err := ReadRevision(t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Fatalf("expected ErrNotRepository, got %v", err)
	}
}
