package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// GoldmarkParser implements interfaces.MarkdownParser using goldmark. Engines
// are built once per distinct option set and reused; goldmark engines are safe
// for concurrent Convert calls.
type GoldmarkParser struct {
	defaults interfaces.ParseOptions
	engines  sync.Map
}

var _ interfaces.MarkdownParser = (*GoldmarkParser)(nil)

// NewGoldmarkParser returns a parser with the given default options. With no
// extensions configured gfm, linkify and tasklist are enabled; raw HTML is
// passed through unless SafeMode is set.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{defaults: defaults}
}

// Parse renders markdown with the default options.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaults)
}

// ParseWithOptions renders markdown with opts.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.engine(opts).Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *GoldmarkParser) engine(opts interfaces.ParseOptions) goldmark.Markdown {
	exts := extensionNames(opts.Extensions)
	key := fmt.Sprintf("%s|%t|%t", strings.Join(exts, ","), opts.HardWraps, opts.SafeMode)
	if cached, ok := p.engines.Load(key); ok {
		return cached.(goldmark.Markdown)
	}
	engine, _ := p.engines.LoadOrStore(key, newEngine(exts, opts))
	return engine.(goldmark.Markdown)
}

func newEngine(exts []string, opts interfaces.ParseOptions) goldmark.Markdown {
	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	extenders := make([]goldmark.Extender, 0, len(exts))
	for _, name := range exts {
		extenders = append(extenders, extensionRegistry[name])
	}

	return goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
		goldmark.WithExtensions(extenders...),
	)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

var extensionAliases = map[string]string{
	"tables":   "table",
	"autolink": "linkify",
}

var defaultExtensions = []string{"gfm", "linkify", "tasklist"}

// extensionNames resolves configured names to known registry keys, dropping
// unknown names and duplicates. The result is sorted so it can key the engine
// cache.
func extensionNames(names []string) []string {
	if len(names) == 0 {
		return defaultExtensions
	}
	var out []string
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if alias, ok := extensionAliases[key]; ok {
			key = alias
		}
		if _, ok := extensionRegistry[key]; ok && !slices.Contains(out, key) {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}
