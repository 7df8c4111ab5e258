package content

import (
	"slices"
	"strings"

	"github.com/goliatone/go-slug"
)

// NormalizeSlug applies the default slug normalization rules.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// tagKey groups spellings of the same tag ("Go", "go ") under one slug.
func tagKey(tag string) string {
	key, err := NormalizeSlug(tag)
	if err != nil || key == "" {
		return strings.ToLower(strings.TrimSpace(tag))
	}
	return key
}

// tagTally counts tags by slug and remembers the first spelling seen.
type tagTally struct {
	order  []string
	names  map[string]string
	counts map[string]int
}

func newTagTally() *tagTally {
	return &tagTally{names: map[string]string{}, counts: map[string]int{}}
}

func (t *tagTally) add(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	key := tagKey(tag)
	if _, ok := t.names[key]; !ok {
		t.names[key] = tag
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// top returns the limit most used tags keyed by display name. Ties keep the
// alphabetically first names.
func (t *tagTally) top(limit int) map[string]int {
	keys := slices.Clone(t.order)
	slices.SortStableFunc(keys, func(a, b string) int {
		if c := t.counts[b] - t.counts[a]; c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(t.names[a]), strings.ToLower(t.names[b]))
	})
	keys = capped(keys, limit)

	out := make(map[string]int, len(keys))
	for _, key := range keys {
		out[t.names[key]] = t.counts[key]
	}
	return out
}
