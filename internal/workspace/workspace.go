// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Main workspace logic

package workspace

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sony-level/ktp-tester/internal/fetcher"
)

var (
	// mutex ensures thread-safe run ID generation
	idMutex sync.Mutex
	// lastTimestamp prevents duplicate IDs in the same minute
	lastTimestamp string
	lastCounter   int
)

// ResetRunIDState resets the global run ID generation state (for testing)
func ResetRunIDState() {
	idMutex.Lock()
	defer idMutex.Unlock()
	lastTimestamp = ""
	lastCounter = 0
}

// GenerateRunID creates a unique run ID with format: ktp-YYYYMMDD-HHMM-3hexchars
// or ktp-YYYYMMDD-HHMM-NNN (counter format) for rapid successive calls
func GenerateRunID() (string, error) {
	idMutex.Lock()
	defer idMutex.Unlock()

	now := time.Now()
	timestamp := now.Format("20060102-1504")

	if timestamp == lastTimestamp {
		lastCounter++
		return fmt.Sprintf("%s-%s-%03d", RunIDPrefix, timestamp, lastCounter), nil
	}

	randomBytes := make([]byte, 2)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	randomHex := hex.EncodeToString(randomBytes)[:3]

	lastTimestamp = timestamp
	lastCounter = 0

	return fmt.Sprintf("%s-%s-%s", RunIDPrefix, timestamp, randomHex), nil
}

// Provision prepares the workspace root for a repository.
// A retained workspace replaces whatever a previous run left at the same
// path. The root directory itself is left for the clone to create.
func Provision(config *WorkspaceConfig, id fetcher.RepoIdentity, retained bool) (*Workspace, error) {
	if config == nil {
		config = &WorkspaceConfig{}
	}

	runID, err := GenerateRunID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run ID: %w", err)
	}

	ws := &Workspace{
		RunID:    runID,
		Retained: retained,
	}

	if retained {
		projectsRoot := config.ProjectsRoot
		if projectsRoot == "" {
			projectsRoot = DefaultProjectsRoot
		}
		projectsRoot, err = filepath.Abs(projectsRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve projects root: %w", err)
		}

		ws.Root = filepath.Join(projectsRoot, id.Owner, id.Name)

		// Last run wins: no merge with a previous checkout
		if err := os.RemoveAll(ws.Root); err != nil {
			return nil, fmt.Errorf("failed to remove previous workspace %s: %w", ws.Root, err)
		}
		if err := os.MkdirAll(filepath.Dir(ws.Root), 0755); err != nil {
			return nil, fmt.Errorf("failed to create workspace parent %s: %w", filepath.Dir(ws.Root), err)
		}
		return ws, nil
	}

	// Run IDs already carry TempDirPrefix, so stale cleanup still matches
	holder, err := os.MkdirTemp(config.TempRoot, runID+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary workspace: %w", err)
	}
	holder, err = filepath.Abs(holder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temporary workspace: %w", err)
	}

	ws.holder = holder
	ws.Root = filepath.Join(holder, id.Name)
	return ws, nil
}

// EnvPath returns the path of the isolated environment inside the workspace
func (w *Workspace) EnvPath() string {
	return filepath.Join(w.Root, EnvSubdir)
}

// Exists checks if the workspace root exists
func (w *Workspace) Exists() bool {
	info, err := os.Stat(w.Root)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// String returns a string representation of the workspace
func (w *Workspace) String() string {
	return fmt.Sprintf("Workspace{RunID: %s, Root: %s, Retained: %v}", w.RunID, w.Root, w.Retained)
}
