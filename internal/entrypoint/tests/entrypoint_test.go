// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Tests for entry-point detection

package tests

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sony-level/ktp-tester/internal/entrypoint"
	"github.com/sony-level/ktp-tester/internal/installer"
	"github.com/sony-level/ktp-tester/internal/testutil"
	"github.com/sony-level/ktp-tester/internal/workspace"
)

func TestClassify(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    entrypoint.Kind
	}{
		{"marker", "streamlit==1.30\npandas\n", entrypoint.Server},
		{"uppercase marker", "Streamlit>=1.0\n", entrypoint.Server},
		{"no marker", "requests\nnumpy\n", entrypoint.Script},
		{"empty", "", entrypoint.Script},
	}

	d := entrypoint.NewDetector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, root, tt.name+".txt", tt.content)
			if got := d.Classify(installer.Manifest{Path: path}); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyWithoutManifest(t *testing.T) {
	d := entrypoint.NewDetector(nil)

	if got := d.Classify(installer.Manifest{}); got != entrypoint.Script {
		t.Errorf("Classify() = %s, want script", got)
	}

	missing := installer.Manifest{Path: filepath.Join(t.TempDir(), "requirements.txt")}
	if got := d.Classify(missing); got != entrypoint.Script {
		t.Errorf("Classify() on unreadable manifest = %s, want script", got)
	}
}

func TestClassifyCustomMarker(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "requirements.txt", "Flask\n")

	d := entrypoint.NewDetector(&entrypoint.DetectorConfig{Marker: "FLASK"})
	if got := d.Classify(installer.Manifest{Path: path}); got != entrypoint.Server {
		t.Errorf("Classify() = %s, want server", got)
	}
}

func TestLocateScript(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "app.py", "")
	want := testutil.WriteFile(t, root, "src/main.py", "")

	d := entrypoint.NewDetector(nil)
	ep, err := d.Locate(&workspace.Workspace{Root: root}, entrypoint.Script)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if ep.File != want || ep.Kind != entrypoint.Script {
		t.Errorf("Locate() = %+v, want %s", ep, want)
	}
}

func TestLocateScriptNotFound(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "app.py", "")

	d := entrypoint.NewDetector(nil)
	_, err := d.Locate(&workspace.Workspace{Root: root}, entrypoint.Script)
	if !errors.Is(err, entrypoint.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocateServerOrder(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"main wins", []string{"streamlit_app.py", "app.py", "main.py"}, "main.py"},
		{"app before framework name", []string{"streamlit_app.py", "app.py"}, "app.py"},
		{"framework name", []string{"streamlit_app.py"}, "streamlit_app.py"},
		{"name order beats depth", []string{"app.py", "pages/main.py"}, "pages/main.py"},
	}

	d := entrypoint.NewDetector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tt.files {
				testutil.WriteFile(t, root, f, "")
			}

			ep, err := d.Locate(&workspace.Workspace{Root: root}, entrypoint.Server)
			if err != nil {
				t.Fatalf("Locate() error = %v", err)
			}
			if ep.File != filepath.Join(root, filepath.FromSlash(tt.want)) {
				t.Errorf("Locate() = %s, want %s", ep.File, tt.want)
			}
			if ep.Kind != entrypoint.Server {
				t.Errorf("Kind = %s, want server", ep.Kind)
			}
		})
	}
}

func TestLocateIgnoresEnvironment(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "env/lib/main.py", "")

	d := entrypoint.NewDetector(nil)
	_, err := d.Locate(&workspace.Workspace{Root: root}, entrypoint.Script)
	if !errors.Is(err, entrypoint.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
