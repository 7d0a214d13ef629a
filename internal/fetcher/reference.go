// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Repository reference parsing

package fetcher

import (
	"fmt"
	"strings"
)

// Parse splits a raw reference into a clone target and an optional revision.
// Without the commit delimiter the input is returned unchanged as FetchURL.
func Parse(raw string) RepoReference {
	base, revision, found := strings.Cut(raw, CommitDelimiter)
	if !found {
		return RepoReference{FetchURL: raw}
	}

	fetchURL := base
	if !strings.HasSuffix(fetchURL, CloneSuffix) {
		fetchURL += CloneSuffix
	}

	return RepoReference{
		FetchURL:       fetchURL,
		PinnedRevision: revision,
	}
}

// String rebuilds the commit-style reference
func (r RepoReference) String() string {
	if !r.Pinned() {
		return r.FetchURL
	}
	return strings.TrimSuffix(r.FetchURL, CloneSuffix) + CommitDelimiter + r.PinnedRevision
}

// Identify derives owner and name from the last two path segments of fetchURL
func Identify(fetchURL string) (RepoIdentity, error) {
	path := strings.TrimRight(fetchURL, "/")

	// git@host:owner/repo has no slash between host and owner
	if loc := scpLikePattern.FindStringIndex(path); loc != nil {
		path = path[:loc[1]-1] + "/" + path[loc[1]:]
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return RepoIdentity{}, fmt.Errorf("%w: %q has fewer than two path segments", ErrMalformedReference, fetchURL)
	}

	id := RepoIdentity{
		Owner: parts[len(parts)-2],
		Name:  strings.TrimSuffix(parts[len(parts)-1], CloneSuffix),
	}

	if !validSegment(id.Owner) || !validSegment(id.Name) {
		return RepoIdentity{}, fmt.Errorf("%w: cannot derive owner/name from %q", ErrMalformedReference, fetchURL)
	}

	return id, nil
}

// validSegment rejects empty segments and ones that would escape the projects root
func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `\:`)
}
