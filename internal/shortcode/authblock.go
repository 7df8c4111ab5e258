package shortcode

import (
	"context"
	"regexp"
	"strings"
)

// authBlockPattern matches [authstart]...[authstop] with an optional quoted
// message. The first [authstop] closes the block; nesting is not supported.
var authBlockPattern = regexp.MustCompile(`(?is)\[authstart(?:\s+message="([^"]*)")?\s*\](.*?)\[authstop\]`)

// AuthBlock is a parsed access gated region.
type AuthBlock struct {
	Message string
	Body    string
}

// ParseAuthBlocks returns the auth blocks found in content in document order.
func ParseAuthBlocks(content string) []AuthBlock {
	matches := authBlockPattern.FindAllStringSubmatch(content, -1)
	blocks := make([]AuthBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, AuthBlock{Message: m[1], Body: m[2]})
	}
	return blocks
}

// expandAuthBlocks replaces every auth block with its body when the caller is
// authenticated and with a locked notice otherwise. Unterminated start tags
// are left as they are.
func (s *Service) expandAuthBlocks(ctx context.Context, content string, locale string) (string, int) {
	if !strings.Contains(strings.ToLower(content), "[authstart") {
		return content, 0
	}

	var (
		checked       bool
		authenticated bool
		count         int
	)
	out := authBlockPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := authBlockPattern.FindStringSubmatch(match)
		block := AuthBlock{Message: m[1], Body: m[2]}
		count++

		if !checked {
			authenticated = s.auth != nil && s.auth.IsAuthenticated(ctx)
			checked = true
		}
		if authenticated {
			return "<div class=\"auth-content\">\n\n" + block.Body + "\n\n</div>"
		}

		message := escape(strings.TrimSpace(block.Message))
		if message == "" {
			message = escape(s.translate(locale, keyAuthLocked))
		}
		return alert(alertWarning, message)
	})
	return out, count
}
