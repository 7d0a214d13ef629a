// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// workspace types/constants

package workspace

const (
	TempDirPrefix       = "ktp-"
	RunIDPrefix         = "ktp"
	EnvSubdir           = "env"
	DefaultProjectsRoot = "projects"
)

// Workspace is the directory a repository is cloned into.
// Retained workspaces live at <projectsRoot>/<owner>/<name>; ephemeral ones
// under a fresh directory in the temp root owned by a single run.
type Workspace struct {
	RunID    string
	Root     string
	Retained bool
	holder   string // ephemeral parent directory removed on cleanup
}

// WorkspaceConfig holds configuration for workspace creation
type WorkspaceConfig struct {
	ProjectsRoot string // Base for retained workspaces (default: ./projects)
	TempRoot     string // Base for ephemeral workspaces (default: os.TempDir())
}
