package di

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-flatcms/internal/runtimeconfig"
)

// testConfig lays out a small site under a temp dir and points cfg at it.
func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"content/index.md":       "---\ntitle: Home\n---\n[pages /blog/ 5 rows]\n\nUse `[pages]` to list pages.\n",
		"content/blog/index.md":  "---\ntitle: Blog\n---\n[bloglist]\n",
		"content/blog/alpha.md":  "---\ntitle: Alpha\ndate: 2024-01-10\ntags: [go]\n---\nAlpha body\n",
		"content/blog/beta.md":   "---\ntitle: Beta\ndate: 2024-03-05\ntags: [go, cms]\n---\nBeta body\n",
		"content/members.md":     "[authstart]members only[authstop]\n",
		"public/assets/site.css": "body{}",
	}
	for name, body := range files {
		writeSiteFile(t, root, name, body)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Paths.Content = filepath.Join(root, "content")
	cfg.Paths.Public = filepath.Join(root, "public")
	cfg.Paths.Themes = filepath.Join(root, "themes")
	cfg.Site.Name = "Test Site"
	return cfg
}

func writeSiteFile(t *testing.T, root, name, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
