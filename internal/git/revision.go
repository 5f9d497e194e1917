package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository indicates the path is not inside a git working tree.
var ErrNotRepository = errors.New("not a git repository")

// Revision describes the checked out state of the repository containing a root.
type Revision struct {
	Commit string `json:"commit"`
	Branch string `json:"branch,omitempty"`
}

// ReadRevision resolves HEAD of the repository containing path, searching
// parent directories for the .git directory.
func ReadRevision(path string) (Revision, error) {
	repository, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Revision{}, fmt.Errorf("%w: %s", ErrNotRepository, path)
		}
		return Revision{}, fmt.Errorf("open repository: %w", err)
	}

	ref, err := repository.Head()
	if err != nil {
		return Revision{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	rev := Revision{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		rev.Branch = ref.Name().Short()
	}
	return rev, nil
}
