package markdown

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"maps"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// ParseFrontMatter splits source into its metadata header and Markdown body.
// YAML (---), TOML (+++) and JSON headers are recognised. Documents without a
// header return empty metadata and the full source as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta envelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta.frontMatter(), body, nil
}

// BuildDocument parses source into a Document. BodyHTML is left empty.
func BuildDocument(filePath string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	sum := sha256.Sum256(source)
	return &interfaces.Document{
		FilePath:     filePath,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
		Checksum:     sum[:],
	}, nil
}

// TitleFor returns the front matter title, or a title derived from the file
// name. Index pages take the name of their folder.
func TitleFor(doc *interfaces.Document) string {
	if doc == nil {
		return ""
	}
	if title := strings.TrimSpace(doc.FrontMatter.Title); title != "" {
		return title
	}
	name := strings.TrimSuffix(path.Base(doc.FilePath), path.Ext(doc.FilePath))
	if name == "index" {
		if dir := path.Dir(doc.FilePath); dir != "." && dir != "/" {
			name = path.Base(dir)
		}
	}
	return Humanize(name)
}

// Humanize turns a file or folder name like "getting-started_guide" into
// "Getting started guide".
func Humanize(name string) string {
	name = strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(name))
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

type envelope struct {
	Title       string         `yaml:"title" toml:"title" json:"title"`
	Slug        string         `yaml:"slug" toml:"slug" json:"slug"`
	Description string         `yaml:"description" toml:"description" json:"description"`
	Summary     string         `yaml:"summary" toml:"summary" json:"summary"`
	Template    string         `yaml:"template" toml:"template" json:"template"`
	Tags        []string       `yaml:"tags" toml:"tags" json:"tags"`
	Author      string         `yaml:"author" toml:"author" json:"author"`
	Date        time.Time      `yaml:"date" toml:"date" json:"date"`
	Draft       bool           `yaml:"draft" toml:"draft" json:"draft"`
	Custom      map[string]any `yaml:",inline" toml:"-" json:"-"`
}

func (e envelope) frontMatter() interfaces.FrontMatter {
	custom := maps.Clone(e.Custom)
	if custom == nil {
		custom = map[string]any{}
	}

	raw := maps.Clone(custom)
	set := func(key string, value any, ok bool) {
		if ok {
			raw[key] = value
		}
	}
	set("title", e.Title, e.Title != "")
	set("slug", e.Slug, e.Slug != "")
	set("description", e.Description, e.Description != "")
	set("summary", e.Summary, e.Summary != "")
	set("template", e.Template, e.Template != "")
	set("tags", append([]string(nil), e.Tags...), len(e.Tags) > 0)
	set("author", e.Author, e.Author != "")
	set("date", e.Date, !e.Date.IsZero())
	raw["draft"] = e.Draft

	description := e.Description
	if description == "" {
		description = e.Summary
	}

	return interfaces.FrontMatter{
		Title:       e.Title,
		Slug:        e.Slug,
		Description: description,
		Summary:     e.Summary,
		Template:    e.Template,
		Tags:        normalizeTags(e.Tags),
		Author:      e.Author,
		Date:        e.Date,
		Draft:       e.Draft,
		Custom:      custom,
		Raw:         raw,
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
