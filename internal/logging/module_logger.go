package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

const (
	rootModule      = "flatcms"
	shortcodeModule = "flatcms.shortcode"
	contentModule   = "flatcms.content"
	markdownModule  = "flatcms.markdown"
	themesModule    = "flatcms.themes"
	httpModule      = "flatcms.http"
	commandsModule  = "flatcms.commands"
)

const (
	fieldRoute  = "route"
	fieldLocale = "locale"
	fieldPage   = "page"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields a
// no-op logger. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ShortcodeLogger returns the logger used by the shortcode pipeline.
func ShortcodeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, shortcodeModule)
}

// ContentLogger returns the logger used by the content index and watcher.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// MarkdownLogger returns the logger used by page loading and rendering.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, themesModule)
}

func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithRequest enriches logger with the route, locale and page of a request.
// Empty values are skipped.
func WithRequest(logger interfaces.Logger, req interfaces.RequestContext) interfaces.Logger {
	fields := map[string]any{}
	if route := strings.TrimSpace(req.Route); route != "" {
		fields[fieldRoute] = route
	}
	if locale := strings.TrimSpace(req.Locale); locale != "" {
		fields[fieldLocale] = locale
	}
	if req.Page > 0 {
		fields[fieldPage] = req.Page
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
