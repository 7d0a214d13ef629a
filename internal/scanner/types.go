// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Scanner types and constants

package scanner

import "time"

// DefaultSkipDirs are never descended into.
// Environment and VCS directories would otherwise shadow project files.
var DefaultSkipDirs = []string{
	".git",
	".svn",
	".hg",
	"__pycache__",
	"node_modules",
	".venv",
	"venv",
	"env",
	".tox",
	".mypy_cache",
	".pytest_cache",
	".idea",
	".vscode",
}

// ScanConfig holds configuration for scanning
type ScanConfig struct {
	RootPath  string   // Root directory to scan (workspace root)
	MaxDepth  int      // Maximum directory depth, 0 for unlimited
	SkipDirs  []string // Directory names to skip (default: DefaultSkipDirs)
	SkipLinks bool     // Ignore symlinked files (default: false)
}

// ScanResult lists files by base name in traversal order
type ScanResult struct {
	RootPath     string              // Scanned root path
	Files        map[string][]string // Base name to absolute paths, shallowest first
	TotalFiles   int                 // Total files scanned
	TotalDirs    int                 // Total directories scanned
	ScanDuration time.Duration       // Time taken to scan
	Errors       []error             // Non-fatal errors during scan
}

// First returns the first path found for name
func (r *ScanResult) First(name string) (string, bool) {
	paths := r.Files[name]
	if len(paths) == 0 {
		return "", false
	}
	return paths[0], true
}

// FirstOf returns the first path found for the earliest name that exists.
// Names are tried in order; traversal order only breaks ties within one name.
func (r *ScanResult) FirstOf(names ...string) (string, bool) {
	for _, name := range names {
		if path, ok := r.First(name); ok {
			return path, true
		}
	}
	return "", false
}

// All returns every path found for name
func (r *ScanResult) All(name string) []string {
	return r.Files[name]
}
