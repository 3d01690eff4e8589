// Package gitlib reads working-tree state through libgit2 so lint runs can
// be narrowed to the files a change touches.
package gitlib

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrBareRepository is returned for repositories without a working tree.
var ErrBareRepository = errors.New("repository has no working tree")

// Repository wraps a libgit2 repository.
type Repository struct {
	repo    *git2go.Repository
	workdir string
}

// OpenRepository opens the repository containing path, searching parent
// directories like git does.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepositoryExtended(path, 0, "")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	workdir := repo.Workdir()
	if workdir == "" {
		repo.Free()

		return nil, fmt.Errorf("open repository %s: %w", path, ErrBareRepository)
	}

	return &Repository{repo: repo, workdir: filepath.Clean(workdir)}, nil
}

// Workdir returns the absolute working tree root.
func (r *Repository) Workdir() string {
	return r.workdir
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// ChangedFiles lists files that differ from HEAD in the index or working
// tree, untracked files included. Deleted files are omitted. Paths are
// absolute and sorted.
func (r *Repository) ChangedFiles() ([]string, error) {
	list, err := r.repo.StatusList(&git2go.StatusOptions{
		Show: git2go.StatusShowIndexAndWorkdir,
		Flags: git2go.StatusOptIncludeUntracked |
			git2go.StatusOptRecurseUntrackedDirs |
			git2go.StatusOptRenamesHeadToIndex |
			git2go.StatusOptExcludeSubmodules,
	})
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	defer list.Free()

	count, err := list.EntryCount()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	var paths []string

	for idx := range count {
		entry, entryErr := list.ByIndex(idx)
		if entryErr != nil {
			return nil, fmt.Errorf("status entry %d: %w", idx, entryErr)
		}

		if path, ok := entryPath(entry); ok {
			paths = append(paths, filepath.Join(r.workdir, filepath.FromSlash(path)))
		}
	}

	return sortedUnique(paths), nil
}

// ChangedSince lists files that differ between the tree of rev and the
// working tree (staged changes included). Deleted files are omitted.
func (r *Repository) ChangedSince(rev string) ([]string, error) {
	obj, err := r.repo.RevparseSingle(rev)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	defer obj.Free()

	peeled, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	defer peeled.Free()

	commit, err := peeled.AsCommit()
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", rev, err)
	}
	defer tree.Free()

	diff, err := r.repo.DiffTreeToWorkdirWithIndex(tree, nil)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", rev, err)
	}

	defer func() { _ = diff.Free() }()

	count, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", rev, err)
	}

	var paths []string

	for idx := range count {
		delta, deltaErr := diff.Delta(idx)
		if deltaErr != nil {
			return nil, fmt.Errorf("diff delta %d: %w", idx, deltaErr)
		}

		if delta.Status == git2go.DeltaDeleted {
			continue
		}

		paths = append(paths, filepath.Join(r.workdir, filepath.FromSlash(delta.NewFile.Path)))
	}

	return sortedUnique(paths), nil
}

const deletedMask = git2go.StatusIndexDeleted | git2go.StatusWtDeleted

func entryPath(entry git2go.StatusEntry) (string, bool) {
	if entry.Status&deletedMask != 0 || entry.Status&git2go.StatusIgnored != 0 {
		return "", false
	}

	if entry.IndexToWorkdir.NewFile.Path != "" {
		return entry.IndexToWorkdir.NewFile.Path, true
	}

	if entry.HeadToIndex.NewFile.Path != "" {
		return entry.HeadToIndex.NewFile.Path, true
	}

	return "", false
}

func sortedUnique(paths []string) []string {
	slices.Sort(paths)

	return slices.Compact(paths)
}
