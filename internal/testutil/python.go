// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Fake Python interpreter for process tests

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakePython understands just enough of the interpreter command line for a
// run: "-m venv DIR" copies itself into DIR/bin/python, "-m pip ..." echoes
// its arguments and exits with $KTP_FAKE_PIP_EXIT, "-m streamlit run FILE"
// and "FILE" run FILE as a shell script.
const fakePython = `#!/bin/sh
if [ "$1" = "-m" ]; then
  case "$2" in
    venv)
      mkdir -p "$3/bin" && cp "$0" "$3/bin/python" && chmod +x "$3/bin/python"
      exit $?
      ;;
    pip)
      shift 2
      echo "pip $*"
      exit ${KTP_FAKE_PIP_EXIT:-0}
      ;;
    streamlit)
      exec /bin/sh "$4"
      ;;
  esac
  echo "No module named $2" 1>&2
  exit 1
fi
exec /bin/sh "$1"
`

// RequireShell skips the test where /bin/sh is unavailable
func RequireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on /bin/sh")
	}
}

// FakePython writes the fake interpreter to a temporary directory and
// returns its path
func FakePython(t *testing.T) string {
	t.Helper()
	RequireShell(t)
	return WriteScript(t, t.TempDir(), "python", fakePython)
}

// WriteScript writes an executable file and returns its path
func WriteScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteFile writes a regular file below root, creating parent directories
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
