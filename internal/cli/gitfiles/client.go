// Package gitfiles resolves the file lists behind the changes and pr
// commands from the state of a Git repository, using go-git so no git
// binary is required.
package gitfiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrGitOperation is the base error for all failures in this package.
var ErrGitOperation = errors.New("git operation failed")

func errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrGitOperation, fmt.Sprintf(format, args...))
}

const patchTimeout = 60 * time.Second

// Client reads changed-file lists from a repository worktree.
type Client struct {
	logger *slog.Logger
}

// NewClient creates a Client logging through the given handler.
func NewClient(loggerHandler slog.Handler) *Client {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "gitfiles"))
	return &Client{logger: logger}
}

func (c *Client) openRepo(repoPath string) (*git.Repository, error) {
	absRepoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, errorf("failed to get absolute path for repository '%s': %v", repoPath, err)
	}
	repo, err := git.PlainOpenWithOptions(absRepoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errorf("repository not found at or above path '%s': %v", absRepoPath, err)
		}
		return nil, errorf("failed to open repository at '%s': %v", absRepoPath, err)
	}
	return repo, nil
}

// WorktreeChanges returns the absolute paths of files that are modified,
// staged, or deleted in the worktree relative to HEAD. Untracked files are
// excluded. Deleted files are skipped: there is nothing left to review.
func (c *Client) WorktreeChanges(repoPath string) ([]string, error) {
	c.logger.Debug("Collecting worktree changes", slog.String("repo", repoPath))

	repo, err := c.openRepo(repoPath)
	if err != nil {
		return nil, err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, errorf("failed to get worktree for repository '%s': %v", repoPath, err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, errorf("failed to get git status for repository '%s': %v", repoPath, err)
	}

	root := worktree.Filesystem.Root()
	var files []string
	for path, fileStatus := range status {
		isUntracked := fileStatus.Staging == git.Untracked && fileStatus.Worktree == git.Untracked
		isChanged := !isUntracked && (fileStatus.Staging != git.Unmodified || fileStatus.Worktree != git.Unmodified)
		if !isChanged {
			continue
		}
		abs := filepath.Join(root, filepath.FromSlash(path))
		if _, statErr := os.Stat(abs); statErr != nil {
			c.logger.Debug("Skipping changed file that no longer exists", slog.String("path", path))
			continue
		}
		files = append(files, abs)
	}
	sort.Strings(files)
	c.logger.Debug("Worktree changes collected", slog.Int("count", len(files)))
	return files, nil
}

// ChangedSince returns the absolute paths of files that differ between the
// given reference and HEAD. The reference may be a branch, tag, hash, or a
// relative form such as HEAD~1. Files deleted since ref are skipped.
func (c *Client) ChangedSince(repoPath, ref string) ([]string, error) {
	if ref == "" {
		return nil, errorf("a non-empty base reference is required")
	}
	c.logger.Debug("Collecting changes since reference", slog.String("repo", repoPath), slog.String("ref", ref))

	repo, err := c.openRepo(repoPath)
	if err != nil {
		return nil, err
	}

	headRef, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			c.logger.Warn("HEAD reference not found, repository might be empty", slog.String("repo", repoPath))
			return []string{}, nil
		}
		return nil, errorf("failed to get HEAD reference for repository '%s': %v", repoPath, err)
	}
	headCommit, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, errorf("failed to get HEAD commit object for repository '%s': %v", repoPath, err)
	}

	sinceHash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, errorf("invalid git reference '%s': %v", ref, err)
		}
		return nil, errorf("could not resolve git reference '%s': %v", ref, err)
	}
	sinceCommit, err := repo.CommitObject(*sinceHash)
	if err != nil {
		return nil, errorf("failed to get commit object for reference '%s': %v", ref, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), patchTimeout)
	defer cancel()
	patch, err := sinceCommit.PatchContext(ctx, headCommit)
	if err != nil {
		return nil, errorf("failed to generate patch between '%s' and HEAD: %v", ref, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, errorf("failed to get worktree for repository '%s': %v", repoPath, err)
	}
	root := worktree.Filesystem.Root()

	seen := make(map[string]struct{})
	var files []string
	for _, filePatch := range patch.FilePatches() {
		_, to := filePatch.Files()
		if to == nil {
			// Deleted since ref.
			continue
		}
		abs := filepath.Join(root, filepath.FromSlash(to.Path()))
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}
	sort.Strings(files)
	c.logger.Debug("Changes since reference collected", slog.String("ref", ref), slog.Int("count", len(files)))
	return files, nil
}
