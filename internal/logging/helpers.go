package logging

import (
	"maps"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// WithFields returns logger with fields attached when it implements
// interfaces.FieldsLogger, otherwise logger unchanged. The map is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}

