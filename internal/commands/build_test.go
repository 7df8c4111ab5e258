package commands

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-flatcms/internal/generator"
)

type stubBuilder struct {
	opts generator.BuildOptions
	err  error
}

func (s *stubBuilder) Build(_ context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	return &generator.BuildResult{PagesBuilt: len(opts.Routes), DryRun: opts.DryRun}, nil
}

func TestBuildSiteHandlerPassesOptions(t *testing.T) {
	builder := &stubBuilder{}
	var reported *generator.BuildResult
	h := NewBuildSiteHandler(builder, func(result *generator.BuildResult) { reported = result })

	cmd := BuildSiteCommand{OutputDir: "dist", Routes: []string{"blog", "docs"}, DryRun: true}
	if err := h.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if builder.opts.OutputDir != "dist" || len(builder.opts.Routes) != 2 || !builder.opts.DryRun {
		t.Fatalf("unexpected build options %#v", builder.opts)
	}
	if reported == nil || reported.PagesBuilt != 2 || !reported.DryRun {
		t.Fatalf("unexpected report %#v", reported)
	}
}

func TestBuildSiteHandlerRejectsTraversal(t *testing.T) {
	h := NewBuildSiteHandler(&stubBuilder{}, nil)

	err := h.Execute(context.Background(), BuildSiteCommand{Routes: []string{"../secret"}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestBuildSiteHandlerWrapsFailures(t *testing.T) {
	h := NewBuildSiteHandler(&stubBuilder{err: errors.New("disk full")}, nil)

	err := h.Execute(context.Background(), BuildSiteCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}
