package shortcode

import (
	"strings"
	"testing"
)

func TestProtectCodeHidesEveryCodeForm(t *testing.T) {
	content := strings.Join([]string{
		"```go",
		"fmt.Println(`[pages]`)",
		"```",
		"inline `[tags]` and ``a ` b``",
		"~~~",
		"[folder]",
		"~~~",
		`<code class="x">[gallery x]</code>`,
		"<PRE>\n[bloglist]\n</PRE>",
	}, "\n")

	vault := NewVault(WithTokenPrefix("PFX_"))
	protected := ProtectCode(vault, content)

	for _, leaked := range []string{"[pages]", "[tags]", "[folder]", "[gallery", "[bloglist]", "`"} {
		if strings.Contains(protected, leaked) {
			t.Fatalf("expected %q to be protected, got:\n%s", leaked, protected)
		}
	}
	if vault.Len() != 6 {
		t.Fatalf("expected 6 protected spans, got %d", vault.Len())
	}
	if restored := vault.RestoreAll(protected); restored != content {
		t.Fatalf("expected byte identical restore\nwant %q\n got %q", content, restored)
	}
}

func TestProtectCodeTreatsFenceAsOneUnit(t *testing.T) {
	content := "```\nuse `inline` here\n```"
	vault := NewVault(WithTokenPrefix("PFX_"))

	protected := ProtectCode(vault, content)

	if protected != "PFX_CODEBLOCK_1___" {
		t.Fatalf("expected the whole fence as a single token, got %q", protected)
	}
	if vault.Len() != 1 {
		t.Fatalf("expected inline pass not to fire inside the fence, got %d entries", vault.Len())
	}
}

func TestProtectCodeMatchesLazily(t *testing.T) {
	content := "```\na\n```\n[pages]\n```\nb\n```"
	vault := NewVault(WithTokenPrefix("PFX_"))

	protected := ProtectCode(vault, content)

	if !strings.Contains(protected, "[pages]") {
		t.Fatalf("expected text between fences to stay visible, got %q", protected)
	}
}

func TestProtectCodeLeavesUnterminatedFence(t *testing.T) {
	content := "```\nno closing fence [pages]"
	vault := NewVault()

	protected := ProtectCode(vault, content)

	if !strings.Contains(protected, "[pages]") {
		t.Fatalf("expected unterminated fence to stay visible, got %q", protected)
	}
}
