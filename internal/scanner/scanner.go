// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Main scanner logic

package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Scan walks the tree breadth-first, visiting entries of each directory in
// lexical order. A file closer to the root is always listed before a file of
// the same name deeper in the tree, so "first match" is deterministic.
func Scan(config *ScanConfig) (*ScanResult, error) {
	if config == nil {
		return nil, fmt.Errorf("scan config cannot be nil")
	}

	if config.RootPath == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	info, err := os.Stat(config.RootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", config.RootPath)
	}

	skip := make(map[string]bool)
	skipDirs := config.SkipDirs
	if skipDirs == nil {
		skipDirs = DefaultSkipDirs
	}
	for _, name := range skipDirs {
		skip[name] = true
	}

	startTime := time.Now()

	result := &ScanResult{
		RootPath: config.RootPath,
		Files:    make(map[string][]string),
		Errors:   []error{},
	}

	type level struct {
		path  string
		depth int
	}
	queue := []level{{path: config.RootPath}}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		// os.ReadDir returns entries sorted by filename
		entries, err := os.ReadDir(dir.path)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir.path, entry.Name())

			if entry.IsDir() {
				if skip[entry.Name()] {
					continue
				}
				if config.MaxDepth > 0 && dir.depth+1 > config.MaxDepth {
					continue
				}
				result.TotalDirs++
				queue = append(queue, level{path: path, depth: dir.depth + 1})
				continue
			}

			// Symlinked files count as files; symlinked directories are not entered
			if entry.Type()&os.ModeSymlink != 0 {
				if config.SkipLinks {
					continue
				}
				target, err := os.Stat(path)
				if err != nil {
					result.Errors = append(result.Errors, err)
					continue
				}
				if target.IsDir() {
					continue
				}
			}

			result.TotalFiles++
			result.Files[entry.Name()] = append(result.Files[entry.Name()], path)
		}
	}

	result.ScanDuration = time.Since(startTime)

	return result, nil
}

// FindFirst scans root and returns the first file named name
func FindFirst(root, name string) (string, bool, error) {
	result, err := Scan(&ScanConfig{RootPath: root})
	if err != nil {
		return "", false, err
	}
	path, ok := result.First(name)
	return path, ok, nil
}
