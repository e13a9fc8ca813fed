package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeExport(t *testing.T, name, payload string) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
	if err := os.WriteFile(name, []byte(payload), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return name
}

func TestCLIValidExport(t *testing.T) {
	path := writeExport(t, "export.json", `[{"video_id":3,"interval_sets":[
		{"name":"captions","interval_set":[{"bounds":{"t1":0,"t2":2},"data":{"spatial_type":{"tag":"caption","text":"hi"}}}]},
		{"name":"_edits","interval_set":[]}
	]}]`)

	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-input", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d, stderr=%s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"video 3: 2 channel(s)",
		"captions: 1 interval(s)",
		"_edits: 0 interval(s) (hidden)",
		"Annotation validation passed.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLIMalformedExportFails(t *testing.T) {
	path := writeExport(t, "broken.json", `[{"video_id":1,"interval_sets":[{"name":"c","interval_set":[{"bounds":{"t1":5}}]}]}]`)

	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-input", path}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Annotation validation failed") {
		t.Fatalf("expected failure banner, got %s", stderr.String())
	}
}

func TestCLIStrictRejectsUnknownTag(t *testing.T) {
	payload := `[{"video_id":1,"interval_sets":[{"name":"c","interval_set":[
		{"bounds":{"t1":0,"t2":1},"data":{"spatial_type":{"tag":"mystery","blob":true}}}
	]}]}]`
	path := writeExport(t, "export.json", payload)

	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-input", path, "-strict"}, &stdout, &stderr); code != 1 {
		t.Fatalf("strict mode must reject unknown tags, got exit %d", code)
	}

	// Tolerant mode preserves the unknown tag as opaque and passes.
	stdout.Reset()
	stderr.Reset()
	if code := cli([]string{"-input", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("tolerant mode: expected exit 0, got %d, stderr=%s", code, stderr.String())
	}
}

func TestCLIWarningsReportedWithoutFailing(t *testing.T) {
	// The caption rule warns on empty text but does not block.
	path := writeExport(t, "export.json", `[{"video_id":2,"interval_sets":[
		{"name":"captions","interval_set":[{"bounds":{"t1":0,"t2":1},"data":{"spatial_type":{"tag":"caption","text":""}}}]}
	]}]`)

	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-input", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("warnings must not fail the run, got exit %d, stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "warning: caption_text") {
		t.Fatalf("expected caption_text warning in output:\n%s", stdout.String())
	}
}

func TestCLIFlagAndPathErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-bogus"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2 on flag error, got %d", code)
	}
	if code := cli([]string{"-input", ""}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 on empty path, got %d", code)
	}
	if code := cli([]string{"-input", filepath.Join("..", "escape.json")}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 on traversal path, got %d", code)
	}
}
