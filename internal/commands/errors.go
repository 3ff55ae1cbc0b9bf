package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation      = "COMMAND_VALIDATION_FAILED"
	codeContextCanceled = "COMMAND_CONTEXT_CANCELED"
	codeContextTimeout  = "COMMAND_CONTEXT_TIMEOUT"
	codeContextError    = "COMMAND_CONTEXT_ERROR"
	codeExecuteFailed   = "COMMAND_EXECUTION_FAILED"
)

// wrapCommand tags err with the command category unless it already
// carries a go-errors category.
func wrapCommand(err error, message, code string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(codeValidation)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return wrapCommand(err, "command execution cancelled", codeContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return wrapCommand(err, "command execution deadline exceeded", codeContextTimeout)
	default:
		return wrapCommand(err, "command context error", codeContextError)
	}
}

func wrapExecuteError(err error) error {
	return wrapCommand(err, "command execution failed", codeExecuteFailed)
}
