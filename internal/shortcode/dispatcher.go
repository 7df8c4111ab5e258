package shortcode

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Kind identifies a known shortcode.
type Kind int

const (
	KindUnknown Kind = iota
	KindPages
	KindTags
	KindFolder
	KindGallery
	KindBlogList
)

var kindNames = map[string]Kind{
	"pages":    KindPages,
	"tags":     KindTags,
	"folder":   KindFolder,
	"gallery":  KindGallery,
	"bloglist": KindBlogList,
}

// KindOf resolves a shortcode name case-insensitively.
func KindOf(name string) Kind {
	return kindNames[strings.ToLower(name)]
}

func (k Kind) String() string {
	switch k {
	case KindPages:
		return "pages"
	case KindTags:
		return "tags"
	case KindFolder:
		return "folder"
	case KindGallery:
		return "gallery"
	case KindBlogList:
		return "bloglist"
	default:
		return "unknown"
	}
}

// Invocation is a single parsed [name params...] tag.
type Invocation struct {
	Name   string
	Kind   Kind
	Params []string
	Raw    string
}

// Param returns the positional parameter at i, or "".
func (inv Invocation) Param(i int) string {
	if i < 0 || i >= len(inv.Params) {
		return ""
	}
	return inv.Params[i]
}

// IntParam parses the parameter at i as a positive integer, returning fallback
// when it is missing or invalid.
func (inv Invocation) IntParam(i, fallback int) int {
	n, err := strconv.Atoi(inv.Param(i))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Handler renders one invocation into an HTML fragment. Handlers report
// failures as notices in the returned fragment rather than as errors.
type Handler func(ctx context.Context, inv Invocation, req interfaces.RequestContext) string

// Parameters are separated by literal spaces and never span lines or tabs.
var (
	invocationPattern = regexp.MustCompile(`\[([a-zA-Z]+)(?: +([^\]\[\t\r\n]*))?\]`)
	leadingInvocation = regexp.MustCompile(`^` + invocationPattern.String())
)

// ParseInvocations returns every bracket tag in content, known or not.
// Tags directly followed by "(", ":" or a bracket that does not open a known
// shortcode are markdown links or reference definitions and are skipped.
func ParseInvocations(content string) []Invocation {
	var out []Invocation
	for _, loc := range invocationPattern.FindAllStringSubmatchIndex(content, -1) {
		if isLinkSyntax(content, loc[1]) {
			continue
		}
		out = append(out, newInvocation(content, loc))
	}
	return out
}

func newInvocation(content string, loc []int) Invocation {
	name := content[loc[2]:loc[3]]
	var params []string
	if loc[4] >= 0 {
		for _, field := range strings.Split(content[loc[4]:loc[5]], " ") {
			if field = strings.TrimSpace(field); field != "" {
				params = append(params, field)
			}
		}
	}
	return Invocation{
		Name:   name,
		Kind:   KindOf(name),
		Params: params,
		Raw:    content[loc[0]:loc[1]],
	}
}

func isLinkSyntax(content string, end int) bool {
	if end >= len(content) {
		return false
	}
	switch content[end] {
	case '(', ':':
		return true
	case '[':
		return !startsKnownShortcode(content[end:])
	}
	return false
}

func startsKnownShortcode(s string) bool {
	loc := leadingInvocation.FindStringSubmatchIndex(s)
	return loc != nil && KindOf(s[loc[2]:loc[3]]) != KindUnknown
}

// dispatch replaces known shortcodes with their rendered fragments. Unknown
// names are copied through verbatim.
func (s *Service) dispatch(ctx context.Context, content string, req interfaces.RequestContext) (string, int) {
	locs := invocationPattern.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return content, 0
	}

	var (
		b        strings.Builder
		last     int
		rendered int
	)
	b.Grow(len(content))
	for _, loc := range locs {
		if isLinkSyntax(content, loc[1]) {
			continue
		}
		inv := newInvocation(content, loc)
		handler, ok := s.handlers[inv.Kind]
		if !ok || inv.Kind == KindUnknown {
			continue
		}
		b.WriteString(content[last:loc[0]])
		b.WriteString(s.render(ctx, handler, inv, req))
		last = loc[1]
		rendered++
	}
	b.WriteString(content[last:])
	return b.String(), rendered
}
