package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	site, err := filepath.Abs(filepath.Join("..", "..", "..", "..", "testdata", "site"))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	body := fmt.Sprintf("site:\n  name: CLI\npaths:\n  content: %q\n  public: %q\n  themes: %q\nauth:\n  admin_token: token\n",
		filepath.Join(site, "content"), filepath.Join(site, "public"), filepath.Join(site, "themes"))
	path := filepath.Join(t.TempDir(), "flatcms.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewCmdRoot()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRenderWritesPageToStdout(t *testing.T) {
	stdout, _, err := execute(t, "--no-color", "--config", writeConfig(t), "render", "/blog/second")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(stdout, "Second post.") || strings.Contains(stdout, "Hidden notes.") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestRenderAdminToFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out", "second.html")
	stdout, stderr, err := execute(t, "--no-color", "-c", writeConfig(t), "render", "/blog/second", "--admin", "--output", output)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected nothing on stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "wrote "+output) {
		t.Fatalf("expected confirmation on stderr, got %q", stderr)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "Hidden notes.") {
		t.Fatalf("expected unlocked auth block:\n%s", data)
	}
}

func TestRenderMissingRoute(t *testing.T) {
	if _, _, err := execute(t, "--config", writeConfig(t), "render", "/nowhere"); err == nil {
		t.Fatal("expected error for missing page")
	}
}

func TestRenderRequiresRoute(t *testing.T) {
	if _, _, err := execute(t, "--config", writeConfig(t), "render"); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestIndexPrintsFolders(t *testing.T) {
	stdout, _, err := execute(t, "--no-color", "--config", writeConfig(t), "index")
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	for _, want := range []string{"content: 5 pages, 3 folders, 1 drafts", "Blog /blog (3)", "Docs /docs (1)"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestIndexJSON(t *testing.T) {
	stdout, _, err := execute(t, "--config", writeConfig(t), "index", "--json")
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	var report indexReport
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if report.Stats.Pages != 5 || len(report.Folders) != 2 || report.Folders[0].Route != "blog" {
		t.Fatalf("unexpected report %#v", report)
	}
}

func TestLoadModuleRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  provider: syslog\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := execute(t, "--config", path, "index"); err == nil {
		t.Fatal("expected config error")
	}
}

func TestBuildWritesSite(t *testing.T) {
	out := t.TempDir()
	stdout, _, err := execute(t, "--no-color", "-c", writeConfig(t), "build", "--out", out)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.HasPrefix(stdout, "built: 5 pages, 3 assets") {
		t.Fatalf("unexpected summary %q", stdout)
	}
	for _, name := range []string{"index.html", "blog/hello/index.html", "sitemap.xml", "robots.txt"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestBuildDryRunSingleRoute(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")
	stdout, _, err := execute(t, "--no-color", "-c", writeConfig(t), "build", "--out", out, "--route", "/blog/hello", "--dry-run")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.HasPrefix(stdout, "dry run: 1 pages") {
		t.Fatalf("unexpected summary %q", stdout)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("expected no output directory, got %v", err)
	}
}
