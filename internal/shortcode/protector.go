package shortcode

import "regexp"

// protectionPass pairs a lexical pattern with the vault category its matches
// are stored under.
type protectionPass struct {
	category Category
	pattern  *regexp.Regexp
}

// protectionPasses run in order. Fenced blocks go first so backticks inside a
// fence are already hidden when the inline pass runs.
var protectionPasses = []protectionPass{
	{category: CategoryCodeBlock, pattern: regexp.MustCompile("(?s)```.*?```|~~~.*?~~~")},
	{category: CategoryInlineCode, pattern: regexp.MustCompile("``.+?``|`[^`\n]+`")},
	{category: CategoryHTMLCode, pattern: regexp.MustCompile(`(?is)<code(?:\s[^>]*)?>.*?</code>`)},
	{category: CategoryHTMLPre, pattern: regexp.MustCompile(`(?is)<pre(?:\s[^>]*)?>.*?</pre>`)},
}

// ProtectCode replaces fenced blocks, inline code spans and rendered
// <code>/<pre> regions with vault tokens. Each match is stored verbatim.
func ProtectCode(vault *Vault, content string) string {
	for _, pass := range protectionPasses {
		content = pass.pattern.ReplaceAllStringFunc(content, func(match string) string {
			return vault.Protect(pass.category, match)
		})
	}
	return content
}
