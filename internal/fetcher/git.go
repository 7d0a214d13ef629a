// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Git cloning and revision pinning

package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/sony-level/ktp-tester/internal/logsink"
)

// Clone clones url into destination, streaming progress to sink as system lines
func Clone(ctx context.Context, url, destination string, sink logsink.Sink) (*FetchResult, error) {
	if sink == nil {
		sink = logsink.Discard
	}

	sink.Append(fmt.Sprintf("Cloning %s", url), logsink.TagSystem)

	progress := logsink.NewLineWriter(sink, logsink.TagSystem)
	defer progress.Flush()

	repo, err := git.PlainCloneContext(ctx, destination, false, &git.CloneOptions{
		URL:      url,
		Progress: progress,
	})
	if err != nil {
		// Clean up partial clone on failure
		_ = os.RemoveAll(destination)
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}

	result := &FetchResult{
		URL:         url,
		Destination: destination,
	}

	if head, err := repo.Head(); err == nil {
		result.Head = head.Hash().String()
	}

	// Non-fatal: counts are informational only
	result.FilesCloned, result.BytesCloned, _ = countFiles(destination)

	return result, nil
}

// Checkout pins the repository at destination to revision.
// Revision may be a full or abbreviated commit hash, a branch or a tag.
func Checkout(ctx context.Context, destination, revision string, sink logsink.Sink) (string, error) {
	if sink == nil {
		sink = logsink.Discard
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPin, err)
	}

	sink.Append(fmt.Sprintf("Checking out commit %s", revision), logsink.TagSystem)

	repo, err := git.PlainOpen(destination)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrPin, destination, err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return "", fmt.Errorf("%w: resolve %s: %w", ErrPin, revision, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPin, err)
	}

	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", fmt.Errorf("%w: checkout %s: %w", ErrPin, revision, err)
	}

	sink.Append(fmt.Sprintf("HEAD is now at %s", shortHash(hash.String())), logsink.TagSystem)
	return hash.String(), nil
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

// countFiles counts files and total bytes in a directory, skipping .git
func countFiles(dir string) (int, int64, error) {
	var fileCount int
	var byteCount int64

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && info.Name() == ".git" {
			return filepath.SkipDir
		}
		if !info.IsDir() {
			fileCount++
			byteCount += info.Size()
		}
		return nil
	})

	return fileCount, byteCount, err
}
