package commands

import (
	"strings"

	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

const moduleRoot = "site.commands"

// CommandLogger returns a logger for the handlers of one command module,
// e.g. "navigation" logs as site.commands.navigation.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, moduleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
