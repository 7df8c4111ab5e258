package commands

import (
	"strings"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

const commandModuleRoot = "flatcms.commands"

// CommandLogger returns a logger scoped to a command module, tagged so
// command executions can be filtered together.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
