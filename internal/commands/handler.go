package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/enzedonline/enzedonline-sub000/internal/logging"
	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// DefaultTimeout bounds every command unless WithTimeout overrides it.
const DefaultTimeout = 30 * time.Second

type HandlerOption[T command.Message] func(*Handler[T])

// Handler runs a command function with message validation, a deadline,
// structured logging and go-errors categorisation. It satisfies
// command.Commander[T] so it can be subscribed to the go-command dispatcher.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	now       func() time.Time
}

func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return wrapValidationError(err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return wrapContextError(err)
	}

	fields := map[string]any{"command": command.GetMessageType(msg)}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	logger := logging.WithFields(h.logger, fields)
	started := h.now()
	logger.Debug("command.execute.start")

	if err := h.exec(ctx, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Error("command.execute.context_error", "error", err, "elapsed", h.now().Sub(started))
			return wrapContextError(ctxErr)
		}
		logger.Error("command.execute.failed", "error", err, "elapsed", h.now().Sub(started))
		return wrapExecuteError(err)
	}

	logger.Info("command.execute.success", "elapsed", h.now().Sub(started))
	return nil
}

// WithTimeout overrides DefaultTimeout; zero or less disables the deadline.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger == nil {
			logger = logging.NoOp()
		}
		h.logger = logger
	}
}

// WithOperation names the operation in every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}
