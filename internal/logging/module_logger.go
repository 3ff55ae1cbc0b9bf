package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

const (
	rootModule      = "site"
	MenusModule     = "site.menus"
	LinksModule     = "site.links"
	LayoutModule    = "site.layout"
	TagsModule      = "site.tags"
	PagesModule     = "site.pages"
	FragmentsModule = "site.fragments"
	HTTPModule      = "site.http"
	CommandsModule  = "site.commands"
)

// ModuleLogger returns the provider's logger for module annotated with a
// "module" field. A nil provider yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	var logger interfaces.Logger = NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// WithFields applies fields when the logger supports FieldsLogger and
// returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fl, ok := logger.(interfaces.FieldsLogger); ok {
		return fl.WithFields(maps.Clone(fields))
	}
	return logger
}

// WithMenuContext annotates a logger with the menu being resolved and the
// request locale. Empty values are skipped.
func WithMenuContext(logger interfaces.Logger, menuID, locale string) interfaces.Logger {
	fields := map[string]any{}
	if menuID = strings.TrimSpace(menuID); menuID != "" {
		fields["menu_id"] = menuID
	}
	if locale = strings.TrimSpace(locale); locale != "" {
		fields["locale"] = locale
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger   { return n }
func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
