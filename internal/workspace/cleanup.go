// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Cleanup functionality

package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cleanup removes an ephemeral workspace. Retained workspaces are kept.
func (w *Workspace) Cleanup() error {
	if w.Retained || w.holder == "" {
		return nil
	}

	if err := os.RemoveAll(w.holder); err != nil {
		return fmt.Errorf("failed to cleanup workspace %s: %w", w.holder, err)
	}
	return nil
}

// CleanupAll removes every retained workspace under projectsRoot
func CleanupAll(projectsRoot string) error {
	info, err := os.Stat(projectsRoot)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat projects root %s: %w", projectsRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", projectsRoot)
	}

	if err := os.RemoveAll(projectsRoot); err != nil {
		return fmt.Errorf("failed to cleanup all workspaces: %w", err)
	}

	return nil
}

// CleanupStale removes ephemeral workspaces in tempRoot older than maxAge.
// Useful for workspaces left behind by runs that were killed.
func CleanupStale(tempRoot string, maxAge time.Duration) (int, error) {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}

	entries, err := os.ReadDir(tempRoot)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read temp directory: %w", err)
	}

	now := time.Now()
	cleaned := 0

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), TempDirPrefix) {
			continue
		}

		entryInfo, err := entry.Info()
		if err != nil {
			continue
		}

		if now.Sub(entryInfo.ModTime()) >= maxAge {
			wsPath := filepath.Join(tempRoot, entry.Name())
			if err := os.RemoveAll(wsPath); err == nil {
				cleaned++
			}
		}
	}

	return cleaned, nil
}
