package shortcode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

type indexCall struct {
	method  string
	path    string
	limit   int
	perPage int
	page    int
}

type stubIndex struct {
	pages   []interfaces.PageSummary
	tags    map[string]int
	folders []interfaces.FolderSummary
	listing *interfaces.BlogListing
	err     error
	calls   []indexCall
}

func (s *stubIndex) FolderPages(_ context.Context, path string, limit int) ([]interfaces.PageSummary, error) {
	s.calls = append(s.calls, indexCall{method: "pages", path: path, limit: limit})
	return s.pages, s.err
}

func (s *stubIndex) FolderTags(_ context.Context, path string, limit int) (map[string]int, error) {
	s.calls = append(s.calls, indexCall{method: "tags", path: path, limit: limit})
	return s.tags, s.err
}

func (s *stubIndex) DirectSubfolders(_ context.Context, path string, limit int) ([]interfaces.FolderSummary, error) {
	s.calls = append(s.calls, indexCall{method: "folders", path: path, limit: limit})
	return s.folders, s.err
}

func (s *stubIndex) BlogList(_ context.Context, path string, perPage, page int) (*interfaces.BlogListing, error) {
	s.calls = append(s.calls, indexCall{method: "bloglist", path: path, perPage: perPage, page: page})
	return s.listing, s.err
}

type stubAuth bool

func (a stubAuth) IsAuthenticated(context.Context) bool { return bool(a) }

type stubTranslator map[string]string

func (t stubTranslator) Translate(locale, key string, args ...any) (string, error) {
	msg, ok := t[locale+":"+key]
	if !ok {
		return key, nil
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...), nil
	}
	return msg, nil
}

type metricsStub struct {
	mu        sync.Mutex
	durations map[string]int
	errors    map[string]int
}

func newMetricsStub() *metricsStub {
	return &metricsStub{
		durations: map[string]int{},
		errors:    map[string]int{},
	}
}

func (m *metricsStub) ObserveRenderDuration(name string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[name]++
}

func (m *metricsStub) IncrementRenderError(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[name]++
}

func (m *metricsStub) durationCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.durations[name]
}

func (m *metricsStub) errorCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[name]
}

func pageSummaries(n int) []interfaces.PageSummary {
	out := make([]interfaces.PageSummary, n)
	for i := range out {
		out[i] = interfaces.PageSummary{
			Title: fmt.Sprintf("Page %d", i),
			Route: fmt.Sprintf("blog/page-%d", i),
		}
	}
	return out
}
