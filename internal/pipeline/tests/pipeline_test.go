// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// End-to-end pipeline tests with a fake fetcher and interpreter

package tests

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sony-level/ktp-tester/internal/config"
	"github.com/sony-level/ktp-tester/internal/entrypoint"
	"github.com/sony-level/ktp-tester/internal/exec"
	"github.com/sony-level/ktp-tester/internal/fetcher"
	"github.com/sony-level/ktp-tester/internal/logsink"
	"github.com/sony-level/ktp-tester/internal/pipeline"
	"github.com/sony-level/ktp-tester/internal/testutil"
	"github.com/sony-level/ktp-tester/internal/venv"
)

const testHead = "0123456789abcdef0123456789abcdef01234567"

// fixtureFetcher "clones" a fixed file set into the destination
type fixtureFetcher struct {
	t     *testing.T
	files map[string]string
	err   error

	mu        sync.Mutex
	clones    int
	checkouts []string
}

func (f *fixtureFetcher) Clone(ctx context.Context, url, destination string, sink logsink.Sink) (*fetcher.FetchResult, error) {
	f.mu.Lock()
	f.clones++
	f.mu.Unlock()

	sink.Append("Cloning "+url, logsink.TagSystem)
	if f.err != nil {
		return nil, f.err
	}
	for rel, content := range f.files {
		testutil.WriteFile(f.t, destination, rel, content)
	}
	return &fetcher.FetchResult{URL: url, Destination: destination, Head: testHead}, nil
}

func (f *fixtureFetcher) Checkout(ctx context.Context, destination, revision string, sink logsink.Sink) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, revision)
	return revision, nil
}

func (f *fixtureFetcher) cloneCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clones
}

type harness struct {
	pipeline *pipeline.Pipeline
	sink     *logsink.Recorder
	fetcher  *fixtureFetcher
	config   *config.Config
	opened   chan string
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Python = testutil.FakePython(t)
	cfg.TempRoot = t.TempDir()
	cfg.ProjectsRoot = filepath.Join(t.TempDir(), "projects")

	h := &harness{
		sink:    logsink.NewRecorder(),
		fetcher: &fixtureFetcher{t: t, files: files},
		config:  cfg,
		opened:  make(chan string, 4),
	}

	p, err := pipeline.New(&pipeline.Options{
		Config:  cfg,
		Sink:    h.sink,
		Fetcher: h.fetcher,
		OpenURL: func(url string) error {
			h.opened <- url
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.pipeline = p

	t.Cleanup(func() { p.Registry().Shutdown() })
	return h
}

func TestScriptEndToEnd(t *testing.T) {
	h := newHarness(t, map[string]string{"main.py": "echo hello\n"})

	result, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/proj"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := h.sink.Tagged(logsink.TagStudent); len(got) != 1 || got[0] != "hello" {
		t.Errorf("Student lines = %v, want [hello]", got)
	}
	if errs := h.sink.Tagged(logsink.TagError); len(errs) != 0 {
		t.Errorf("Unexpected error entries: %v", errs)
	}

	system := h.sink.Tagged(logsink.TagSystem)
	if system[len(system)-1] != pipeline.FinishedNotice {
		t.Errorf("Last system entry = %q, want %q", system[len(system)-1], pipeline.FinishedNotice)
	}

	if result.Identity.String() != "alice/proj" {
		t.Errorf("Identity = %s", result.Identity)
	}
	if result.Head != testHead {
		t.Errorf("Head = %s", result.Head)
	}
	if result.EntryPoint == nil || result.EntryPoint.Kind != entrypoint.Script {
		t.Errorf("EntryPoint = %+v, want script", result.EntryPoint)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d", result.ExitCode)
	}
	if result.Workspace.Exists() {
		t.Error("Ephemeral workspace should be removed after a script run")
	}
}

func TestScriptWithoutManifestWarnsOnce(t *testing.T) {
	h := newHarness(t, map[string]string{"main.py": "echo hello\n"})

	result, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/proj"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Manifest.Present() {
		t.Errorf("Manifest = %s, want none", result.Manifest.Path)
	}

	warnings := h.sink.Tagged(logsink.TagWarning)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "requirements.txt") {
		t.Errorf("Warnings = %v, want one missing-manifest warning", warnings)
	}
}

func TestScriptNonZeroExit(t *testing.T) {
	h := newHarness(t, map[string]string{"main.py": "echo oops 1>&2\nexit 3\n"})

	result, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/proj"})
	if err != nil {
		t.Fatalf("A failing script is not a pipeline error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if got := h.sink.Tagged(logsink.TagStudent); len(got) != 1 || got[0] != "oops" {
		t.Errorf("Student lines = %v", got)
	}
	if len(h.sink.Tagged(logsink.TagError)) != 0 {
		t.Error("No error entry expected")
	}
}

func TestInstallFailureContinues(t *testing.T) {
	h := newHarness(t, map[string]string{
		"requirements.txt": "does-not-exist\n",
		"main.py":          "echo still running\n",
	})
	t.Setenv("KTP_FAKE_PIP_EXIT", "1")

	_, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/proj"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	student := h.sink.Tagged(logsink.TagStudent)
	if len(student) == 0 || student[len(student)-1] != "still running" {
		t.Errorf("Entry file should still run, student lines = %v", student)
	}

	var installWarning bool
	for _, w := range h.sink.Tagged(logsink.TagWarning) {
		if strings.Contains(w, "installation failed") {
			installWarning = true
		}
	}
	if !installWarning {
		t.Errorf("Expected an install warning, got %v", h.sink.Tagged(logsink.TagWarning))
	}
}

func TestServerEndToEnd(t *testing.T) {
	h := newHarness(t, map[string]string{
		"requirements.txt": "Streamlit==1.30\n",
		"app.py":           "echo \"Local URL: http://localhost:9999\"\necho \"Local URL: http://localhost:9999\"\necho serving\nsleep 30\n",
	})

	result, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/dash"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.EntryPoint == nil || result.EntryPoint.Kind != entrypoint.Server {
		t.Fatalf("EntryPoint = %+v, want server", result.EntryPoint)
	}
	if filepath.Base(result.EntryPoint.File) != "app.py" {
		t.Errorf("Entry file = %s, want app.py", result.EntryPoint.File)
	}

	handle := result.Handle
	if handle == nil {
		t.Fatal("Server mode must return a live handle")
	}

	select {
	case url := <-h.opened:
		if url != "http://localhost:9999" {
			t.Errorf("Opened %q, want http://localhost:9999", url)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Ready signal never opened the URL")
	}

	waitFor(t, func() bool {
		for _, line := range h.sink.Tagged(logsink.TagStudent) {
			if line == "serving" {
				return true
			}
		}
		return false
	})

	if extra := len(h.opened); extra != 0 {
		t.Errorf("URL opened %d extra times", extra)
	}
	if handle.State() != exec.StateRunning {
		t.Fatalf("State = %s, want running", handle.State())
	}
	if live := h.pipeline.Registry().Live(); len(live) != 1 || live[0] != handle {
		t.Errorf("Registry should track the handle, live = %d", len(live))
	}
	if !result.Workspace.Exists() {
		t.Error("Workspace must stay while the server runs")
	}

	if err := handle.Terminate(); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	select {
	case <-handle.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("Server did not stop")
	}
	if handle.State() != exec.StateTerminated {
		t.Errorf("State = %s, want terminated", handle.State())
	}

	waitFor(t, func() bool { return !result.Workspace.Exists() })
}

func TestServerEnvironment(t *testing.T) {
	t.Setenv("STREAMLIT_SERVER_HEADLESS", "true")
	h := newHarness(t, map[string]string{
		"requirements.txt": "streamlit\n",
		"app.py":           "echo \"$STREAMLIT_BROWSER_GATHER_USAGE_STATS $STREAMLIT_SERVER_HEADLESS\"\n",
	})

	result, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/dash"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Handle == nil {
		t.Fatal("Server mode must return a handle")
	}

	select {
	case <-result.Handle.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("Server did not exit")
	}

	// Handle exit can precede the last streamed line
	server := func() []string {
		var lines []string
		for _, line := range h.sink.Tagged(logsink.TagStudent) {
			if !strings.HasPrefix(line, "pip ") {
				lines = append(lines, line)
			}
		}
		return lines
	}
	waitFor(t, func() bool { return len(server()) > 0 })
	if got := server()[0]; got != "false false" {
		t.Errorf("Server saw %q, want telemetry and headless disabled", got)
	}
}

func TestMalformedReference(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "not-a-repository"})
	if !errors.Is(err, fetcher.ErrMalformedReference) {
		t.Fatalf("Expected ErrMalformedReference, got %v", err)
	}

	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StageLocate {
		t.Errorf("Expected a locate StageError, got %v", err)
	}
	if h.fetcher.cloneCount() != 0 {
		t.Error("No fetch may happen for a malformed reference")
	}
	if errs := h.sink.Tagged(logsink.TagError); len(errs) != 1 {
		t.Errorf("Error entries = %v, want exactly one", errs)
	}
}

func TestFetchFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.err = errors.New("repository not found")

	result, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/proj"})
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StageFetch {
		t.Fatalf("Expected a fetch StageError, got %v", err)
	}
	if errs := h.sink.Tagged(logsink.TagError); len(errs) != 1 {
		t.Errorf("Error entries = %v, want exactly one", errs)
	}
	if len(h.sink.Tagged(logsink.TagStudent)) != 0 {
		t.Error("Nothing may run after a failed fetch")
	}
	if result.Workspace.Exists() {
		t.Error("Ephemeral workspace should be removed after a failure")
	}
}

func TestPinnedRevision(t *testing.T) {
	h := newHarness(t, map[string]string{"main.py": "echo pinned\n"})

	result, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/proj/commit/abc1234"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(h.fetcher.checkouts) != 1 || h.fetcher.checkouts[0] != "abc1234" {
		t.Errorf("Checkouts = %v", h.fetcher.checkouts)
	}
	if result.Head != "abc1234" {
		t.Errorf("Head = %s", result.Head)
	}
	if result.Reference.FetchURL != "https://example.com/alice/proj.git" {
		t.Errorf("FetchURL = %s", result.Reference.FetchURL)
	}
}

func TestEnvironmentFailure(t *testing.T) {
	h := newHarness(t, map[string]string{"main.py": "echo never\n"})
	h.config.Python = filepath.Join(t.TempDir(), "no-python")

	p, err := pipeline.New(&pipeline.Options{Config: h.config, Sink: h.sink, Fetcher: h.fetcher})
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/proj"})
	if !errors.Is(err, venv.ErrEnvironment) {
		t.Fatalf("Expected ErrEnvironment, got %v", err)
	}
	if errs := h.sink.Tagged(logsink.TagError); len(errs) != 1 {
		t.Errorf("Error entries = %v, want exactly one", errs)
	}
	if len(h.sink.Tagged(logsink.TagStudent)) != 0 {
		t.Error("Nothing may run after a failed environment")
	}
}

func TestEntryNotFound(t *testing.T) {
	h := newHarness(t, map[string]string{"README.md": "# nothing to run\n"})

	result, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/proj"})
	if err != nil {
		t.Fatalf("A missing entry file is not an error: %v", err)
	}
	if result.EntryPoint != nil {
		t.Errorf("EntryPoint = %+v, want nil", result.EntryPoint)
	}

	var found bool
	for _, w := range h.sink.Tagged(logsink.TagWarning) {
		if strings.Contains(w, "main.py") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a missing main.py warning, got %v", h.sink.Tagged(logsink.TagWarning))
	}
	if len(h.sink.Tagged(logsink.TagError)) != 0 {
		t.Error("No error entry expected")
	}
}

func TestRetainedWorkspace(t *testing.T) {
	h := newHarness(t, map[string]string{"main.py": "echo kept\n"})

	result, err := h.pipeline.Run(context.Background(), pipeline.Request{Reference: "https://example.com/alice/proj.git", Retain: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := filepath.Join(h.config.ProjectsRoot, "alice", "proj")
	if abs, _ := filepath.Abs(want); result.Workspace.Root != abs {
		t.Errorf("Root = %s, want %s", result.Workspace.Root, abs)
	}
	if !result.Workspace.Exists() {
		t.Error("Retained workspace must survive the run")
	}
}

func TestConcurrentStarts(t *testing.T) {
	h := newHarness(t, map[string]string{"main.py": "echo run\n"})

	runs := []*pipeline.Run{
		h.pipeline.Start(context.Background(), pipeline.Request{Reference: "https://example.com/alice/one"}),
		h.pipeline.Start(context.Background(), pipeline.Request{Reference: "https://example.com/bob/two"}),
	}

	for _, r := range runs {
		select {
		case <-r.Done():
		case <-time.After(30 * time.Second):
			t.Fatal("Run did not finish")
		}
		if _, err := r.Wait(); err != nil {
			t.Errorf("Run %s error = %v", r.Request.Reference, err)
		}
	}

	if got := h.sink.Tagged(logsink.TagStudent); len(got) != 2 {
		t.Errorf("Student lines = %v, want two", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
