package shortcode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// DefaultItemsPerPage is used by bloglist when no per page value is configured.
const DefaultItemsPerPage = 10

// Service runs the shortcode pipeline: protect code, expand auth blocks,
// dispatch shortcodes, restore code.
type Service struct {
	index         interfaces.ContentIndex
	auth          interfaces.AuthChecker
	translator    interfaces.Translator
	logger        interfaces.Logger
	metrics       interfaces.ShortcodeMetrics
	handlers      map[Kind]Handler
	publicPath    string
	itemsPerPage  int
	defaultLocale string
	vaultOptions  []VaultOption
}

// ServiceOption customises service behaviour.
type ServiceOption func(*Service)

// WithContentIndex sets the index queried by the listing shortcodes.
func WithContentIndex(index interfaces.ContentIndex) ServiceOption {
	return func(s *Service) {
		s.index = index
	}
}

// WithAuthChecker sets the capability query used by auth blocks. Without one
// every caller is treated as anonymous.
func WithAuthChecker(auth interfaces.AuthChecker) ServiceOption {
	return func(s *Service) {
		s.auth = auth
	}
}

// WithTranslator sets the translator used for notices.
func WithTranslator(translator interfaces.Translator) ServiceOption {
	return func(s *Service) {
		s.translator = translator
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires the metrics recorder used for telemetry.
func WithMetrics(metrics interfaces.ShortcodeMetrics) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithPublicPath sets the document root galleries are read from.
func WithPublicPath(path string) ServiceOption {
	return func(s *Service) {
		s.publicPath = path
	}
}

// WithItemsPerPage sets the bloglist page size default.
func WithItemsPerPage(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.itemsPerPage = n
		}
	}
}

// WithDefaultLocale sets the locale used when a request carries none.
func WithDefaultLocale(locale string) ServiceOption {
	return func(s *Service) {
		s.defaultLocale = strings.TrimSpace(locale)
	}
}

// WithHandler registers or replaces the handler for a known kind.
func WithHandler(kind Kind, handler Handler) ServiceOption {
	return func(s *Service) {
		if kind == KindUnknown {
			return
		}
		if handler == nil {
			delete(s.handlers, kind)
			return
		}
		s.handlers[kind] = handler
	}
}

// WithVaultOptions forwards options to the vault created for each call.
func WithVaultOptions(opts ...VaultOption) ServiceOption {
	return func(s *Service) {
		s.vaultOptions = append(s.vaultOptions, opts...)
	}
}

// NewService constructs a shortcode service with the built-in handlers.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		logger:       logging.NoOp(),
		metrics:      NoOpMetrics(),
		publicPath:   "public",
		itemsPerPage: DefaultItemsPerPage,
	}
	s.handlers = map[Kind]Handler{
		KindPages:    s.renderPages,
		KindTags:     s.renderTags,
		KindFolder:   s.renderFolder,
		KindGallery:  s.renderGallery,
		KindBlogList: s.renderBlogList,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process expands the shortcodes in content. Code spans are never expanded
// and handler failures are rendered inline, so the returned error is reserved
// for a cancelled context.
func (s *Service) Process(ctx context.Context, content string, req interfaces.RequestContext) (string, error) {
	if strings.TrimSpace(content) == "" {
		return content, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Locale == "" {
		req.Locale = s.defaultLocale
	}
	req.Route = NormalizePath(req.Route)

	logger := logging.WithFields(logging.WithRequest(s.baseLogger(ctx), req), map[string]any{
		"operation": "shortcode.process",
	})
	start := time.Now()

	vault := NewVault(s.vaultOptions...)
	output := ProtectCode(vault, content)
	protected := vault.Len()

	output, authBlocks := s.expandAuthBlocks(ctx, output, req.Locale)
	output, rendered := s.dispatch(ctx, output, req)
	output = vault.RestoreAll(output)

	logging.WithFields(logger, map[string]any{
		"protected":   protected,
		"auth_blocks": authBlocks,
		"shortcodes":  rendered,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("shortcode.service.process_completed")

	return output, nil
}

// render runs a single handler and records telemetry. A panicking handler is
// reported as an unavailable notice.
func (s *Service) render(ctx context.Context, handler Handler, inv Invocation, req interfaces.RequestContext) (out string) {
	name := inv.Kind.String()
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		s.metrics.ObserveRenderDuration(name, elapsed)

		fields := map[string]any{
			"shortcode":   name,
			"params":      inv.Params,
			"duration_ms": elapsed.Milliseconds(),
		}
		if r := recover(); r != nil {
			s.metrics.IncrementRenderError(name)
			fields["error"] = fmt.Sprint(r)
			logging.WithFields(s.baseLogger(ctx), fields).Error("shortcode.service.render_failed")
			out = s.unavailable(inv.Kind, req.Locale)
			return
		}
		if strings.HasPrefix(out, `<div class="alert alert-`+alertDanger) {
			s.metrics.IncrementRenderError(name)
		}
		logging.WithFields(s.baseLogger(ctx), fields).Debug("shortcode.service.render_succeeded")
	}()
	return handler(ctx, inv, req)
}

// translate resolves key through the translator, falling back to the built-in
// English messages.
func (s *Service) translate(locale, key string, args ...any) string {
	if s.translator != nil {
		if msg, err := s.translator.Translate(locale, key, args...); err == nil && msg != "" && msg != key {
			return msg
		}
	}
	msg, ok := defaultMessages[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func (s *Service) baseLogger(ctx context.Context) interfaces.Logger {
	logger := s.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

var _ interfaces.ShortcodeService = (*Service)(nil)

type noOpService struct{}

// NewNoOpService returns a shortcode service that leaves content untouched.
func NewNoOpService() interfaces.ShortcodeService {
	return noOpService{}
}

func (noOpService) Process(_ context.Context, content string, _ interfaces.RequestContext) (string, error) {
	return content, nil
}
