// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Prerequisite checker for tool existence and versions

package prereq

import (
	"fmt"
	"os/exec"
	"strings"
)

// Checker verifies tool existence
type Checker struct {
	tools    map[string]*Tool
	lookPath func(string) (string, error)
}

// NewChecker creates a new prerequisite checker
func NewChecker() *Checker {
	return NewCheckerWithTools(DefaultTools())
}

// NewCheckerWithTools creates a checker with custom tools
func NewCheckerWithTools(tools map[string]*Tool) *Checker {
	return &Checker{
		tools:    tools,
		lookPath: exec.LookPath,
	}
}

// CheckTool checks if a specific tool exists
func (c *Checker) CheckTool(name string) CheckResult {
	result := CheckResult{Name: name}

	tool, ok := c.tools[strings.ToLower(name)]
	if !ok {
		// Unknown tool - try direct command check
		if path, err := c.lookPath(name); err == nil {
			result.Found = true
			result.Path = path
		}
		return result
	}

	for _, command := range tool.Commands() {
		path, err := c.lookPath(command)
		if err != nil {
			continue
		}
		result.Found = true
		result.Path = path
		result.Version = getVersion(path, tool.VersionArgs)
		return result
	}

	return result
}

// CheckMultiple checks multiple tools and returns a summary
func (c *Checker) CheckMultiple(names []string) *CheckSummary {
	summary := NewCheckSummary()
	for _, name := range names {
		summary.AddResult(c.CheckTool(name))
	}
	return summary
}

// Preflight checks every named tool and returns an error listing the
// missing ones with their install guides
func (c *Checker) Preflight(names ...string) error {
	summary := c.CheckMultiple(names)
	if summary.AllFound {
		return nil
	}
	return fmt.Errorf("%w: %s\n\n%s", ErrMissing, strings.Join(summary.MissingTools, ", "), strings.TrimSpace(c.FormatMissing(summary)))
}

// Resolve returns the path of a tool. A non-empty override is used instead
// of the tool's default commands and must itself resolve. The error wraps
// ErrMissing and carries the install guide.
func (c *Checker) Resolve(name, override string) (string, error) {
	if override != "" {
		path, err := c.lookPath(override)
		if err != nil {
			return "", fmt.Errorf("%w: %s (configured as %q)\n\n%s", ErrMissing, name, override, c.GetInstallGuide(name))
		}
		return path, nil
	}

	result := c.CheckTool(name)
	if !result.Found {
		return "", fmt.Errorf("%w: %s\n\n%s", ErrMissing, name, c.GetInstallGuide(name))
	}
	return result.Path, nil
}

// GetTool returns a tool definition by name
func (c *Checker) GetTool(name string) *Tool {
	return c.tools[strings.ToLower(name)]
}

// GetInstallGuide returns installation instructions for a tool
func (c *Checker) GetInstallGuide(name string) string {
	tool := c.GetTool(name)
	if tool == nil {
		return "No installation guide available for " + name
	}
	return tool.InstallGuide
}

// FormatMissing returns a formatted string of missing tools with install guides
func (c *Checker) FormatMissing(summary *CheckSummary) string {
	if summary.AllFound {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Missing prerequisites:\n\n")

	for _, name := range summary.MissingTools {
		sb.WriteString("─────────────────────────────────\n")
		sb.WriteString(name + "\n")
		sb.WriteString("─────────────────────────────────\n")
		sb.WriteString(c.GetInstallGuide(name))
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// getVersion runs the version command and returns the first line of output
func getVersion(path string, args []string) string {
	if len(args) == 0 {
		return ""
	}

	out, err := exec.Command(path, args...).CombinedOutput()
	if err != nil {
		return ""
	}

	output := strings.TrimSpace(string(out))
	if idx := strings.Index(output, "\n"); idx > 0 {
		output = output[:idx]
	}
	return output
}
