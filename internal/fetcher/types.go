// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Fetcher types and constants

package fetcher

import (
	"errors"
	"regexp"
)

const (
	// CommitDelimiter separates a repository URL from a pinned revision,
	// as in https://github.com/user/repo/commit/<sha>
	CommitDelimiter = "/commit/"
	// CloneSuffix is the canonical suffix of a clone target
	CloneSuffix = ".git"
)

var (
	// ErrMalformedReference is returned when owner/name cannot be derived
	ErrMalformedReference = errors.New("malformed repository reference")
	// ErrFetch is returned when cloning fails
	ErrFetch = errors.New("fetch failed")
	// ErrPin is returned when checking out the pinned revision fails
	ErrPin = errors.New("pin failed")
)

// SSH shorthand: git@github.com:user/repo.git
var scpLikePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9._-]+:`)

// RepoReference is the parsed form of the raw input
type RepoReference struct {
	FetchURL       string // Clone target
	PinnedRevision string // Empty when no revision was given
}

// Pinned reports whether a revision must be checked out after cloning
func (r RepoReference) Pinned() bool {
	return r.PinnedRevision != ""
}

// RepoIdentity names a repository by owner and name
type RepoIdentity struct {
	Owner string
	Name  string
}

// String returns owner/name
func (id RepoIdentity) String() string {
	return id.Owner + "/" + id.Name
}

// FetchResult contains the result of a clone
type FetchResult struct {
	URL         string // Clone target
	Destination string // Where the repository was cloned
	Head        string // Commit hash checked out after cloning
	FilesCloned int    // Number of files in the working tree
	BytesCloned int64  // Total bytes in the working tree
}
