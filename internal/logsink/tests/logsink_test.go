// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Log sink tests

package tests

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/sony-level/ktp-tester/internal/logsink"
)

func TestRecorderSplitsLines(t *testing.T) {
	rec := logsink.NewRecorder()
	rec.Append("first\nsecond\n", logsink.TagSystem)

	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %v", len(entries), entries)
	}
	if entries[0].Text != "first" || entries[1].Text != "second" {
		t.Errorf("Unexpected entries: %v", entries)
	}
	for _, e := range entries {
		if e.Tag != logsink.TagSystem {
			t.Errorf("Expected tag system, got %s", e.Tag)
		}
	}
}

func TestRecorderTagged(t *testing.T) {
	rec := logsink.NewRecorder()
	rec.Append("a", logsink.TagStudent)
	rec.Append("b", logsink.TagWarning)
	rec.Append("c", logsink.TagStudent)

	got := rec.Tagged(logsink.TagStudent)
	if strings.Join(got, ",") != "a,c" {
		t.Errorf("Tagged(student) = %v, want [a c]", got)
	}
	if len(rec.Tagged(logsink.TagError)) != 0 {
		t.Error("Expected no error entries")
	}
}

func TestWriterSinkFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := logsink.NewWriterSink(&buf)
	sink.Append("hello\r\n", logsink.TagStudent)

	if buf.String() != "[student] hello\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestWriterSinkConcurrentAppends(t *testing.T) {
	var buf bytes.Buffer
	sink := logsink.NewWriterSink(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sink.Append("line", logsink.TagSystem)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 400 {
		t.Fatalf("Expected 400 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if line != "[system] line" {
			t.Fatalf("Interleaved write detected: %q", line)
		}
	}
}

func TestLineWriter(t *testing.T) {
	rec := logsink.NewRecorder()
	w := logsink.NewLineWriter(rec, logsink.TagSystem)

	w.Write([]byte("Counting objects: 1\rCounting objects: 2\r"))
	w.Write([]byte("Enumerating"))
	w.Write([]byte(" objects\npartial"))

	got := rec.Tagged(logsink.TagSystem)
	want := []string{"Counting objects: 1", "Counting objects: 2", "Enumerating objects"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Got %v, want %v", got, want)
	}

	w.Flush()
	got = rec.Tagged(logsink.TagSystem)
	if got[len(got)-1] != "partial" {
		t.Errorf("Flush should deliver the partial line, got %v", got)
	}
}

func TestMultiSink(t *testing.T) {
	a := logsink.NewRecorder()
	b := logsink.NewRecorder()
	m := logsink.Multi{a, nil, b}

	m.Append("x", logsink.TagError)

	if len(a.Entries()) != 1 || len(b.Entries()) != 1 {
		t.Error("Multi should forward to every non-nil sink")
	}
}

func TestTerminalSinkWritesEveryLine(t *testing.T) {
	var buf bytes.Buffer
	sink := logsink.NewTerminalSink(&buf)
	sink.Append("one\ntwo", logsink.TagWarning)

	out := buf.String()
	if !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Errorf("Terminal output missing lines: %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("Expected 2 lines, got %q", out)
	}
}

func TestTagValid(t *testing.T) {
	for _, tag := range logsink.Tags() {
		if !tag.Valid() {
			t.Errorf("%s should be valid", tag)
		}
	}
	if logsink.Tag("debug").Valid() {
		t.Error("debug should not be a valid tag")
	}
}
