package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"

	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

type purgeMessage struct {
	Slug string
}

func (purgeMessage) Type() string { return "site.test.purge" }

func (m purgeMessage) Validate() error {
	if m.Slug == "" {
		return errors.New("slug is required")
	}
	return nil
}

type entry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]entry
	fields  map[string]any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]entry{}, fields: map[string]any{}}
}

func (r *recordingLogger) record(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, entry{level: level, msg: msg, fields: r.fields})
}

func (r *recordingLogger) Trace(msg string, _ ...any) { r.record("trace", msg) }
func (r *recordingLogger) Debug(msg string, _ ...any) { r.record("debug", msg) }
func (r *recordingLogger) Info(msg string, _ ...any)  { r.record("info", msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)  { r.record("warn", msg) }
func (r *recordingLogger) Error(msg string, _ ...any) { r.record("error", msg) }
func (r *recordingLogger) Fatal(msg string, _ ...any) { r.record("fatal", msg) }

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{mu: r.mu, entries: r.entries, fields: merged}
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func TestHandlerExecute(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name     string
		ctx      context.Context
		msg      purgeMessage
		exec     func(context.Context, purgeMessage) error
		opts     []HandlerOption[purgeMessage]
		category string
		wantRun  bool
	}{
		{
			name:    "success",
			ctx:     context.Background(),
			msg:     purgeMessage{Slug: "about"},
			exec:    func(context.Context, purgeMessage) error { return nil },
			wantRun: true,
		},
		{
			name:     "validation short circuits",
			ctx:      context.Background(),
			msg:      purgeMessage{},
			exec:     func(context.Context, purgeMessage) error { return nil },
			category: "validation",
		},
		{
			name:     "cancelled context",
			ctx:      cancelled,
			msg:      purgeMessage{Slug: "about"},
			exec:     func(context.Context, purgeMessage) error { return nil },
			category: "command",
		},
		{
			name:     "execution error",
			ctx:      context.Background(),
			msg:      purgeMessage{Slug: "about"},
			exec:     func(context.Context, purgeMessage) error { return errors.New("store offline") },
			category: "command",
			wantRun:  true,
		},
		{
			name: "timeout",
			ctx:  context.Background(),
			msg:  purgeMessage{Slug: "about"},
			exec: func(ctx context.Context, _ purgeMessage) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
					return nil
				}
			},
			opts:     []HandlerOption[purgeMessage]{WithTimeout[purgeMessage](10 * time.Millisecond)},
			category: "command",
			wantRun:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ran := false
			h := NewHandler(func(ctx context.Context, msg purgeMessage) error {
				ran = true
				return tc.exec(ctx, msg)
			}, tc.opts...)

			err := h.Execute(tc.ctx, tc.msg)
			if tc.category == "" {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
			} else if !hasCategory(err, tc.category) {
				t.Fatalf("expected %s category, got %v", tc.category, err)
			}
			if ran != tc.wantRun {
				t.Fatalf("expected run=%v, got %v", tc.wantRun, ran)
			}
		})
	}
}

func hasCategory(err error, name string) bool {
	switch name {
	case "validation":
		return goerrors.IsCategory(err, goerrors.CategoryValidation)
	case "command":
		return goerrors.IsCategory(err, goerrors.CategoryCommand)
	}
	return false
}

func TestHandlerKeepsExistingCategory(t *testing.T) {
	inner := goerrors.Wrap(errors.New("bad set"), goerrors.CategoryValidation, "tag set rejected")
	h := NewHandler(func(context.Context, purgeMessage) error { return inner })

	err := h.Execute(context.Background(), purgeMessage{Slug: "about"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected the handler's own category to survive, got %v", err)
	}
}

func TestHandlerLogsOperation(t *testing.T) {
	logger := newRecordingLogger()
	h := NewHandler(func(context.Context, purgeMessage) error { return nil },
		WithLogger[purgeMessage](logger),
		WithOperation[purgeMessage]("pages.fragments.purge"),
	)
	if err := h.Execute(context.Background(), purgeMessage{Slug: "about"}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	entries := *logger.entries
	if len(entries) != 2 {
		t.Fatalf("expected start and success entries, got %+v", entries)
	}
	last := entries[1]
	if last.msg != "command.execute.success" || last.level != "info" {
		t.Fatalf("unexpected final entry %+v", last)
	}
	if last.fields["operation"] != "pages.fragments.purge" || last.fields["command"] != "site.test.purge" {
		t.Fatalf("missing command fields: %+v", last.fields)
	}
}

type retryMessage struct{}

func (retryMessage) Type() string { return "site.test.retry" }

func (retryMessage) Validate() error { return nil }

type exhaustMessage struct{}

func (exhaustMessage) Type() string { return "site.test.exhaust" }

func (exhaustMessage) Validate() error { return nil }

func TestDispatcherRetries(t *testing.T) {
	attempts := 0
	retry := NewHandler(func(context.Context, retryMessage) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient failure")
		}
		return nil
	}, WithTimeout[retryMessage](time.Second))
	sub := dispatcher.SubscribeCommand(retry, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), retryMessage{}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}

	failures := 0
	exhaust := NewHandler(func(context.Context, exhaustMessage) error {
		failures++
		return errors.New("permanent failure")
	}, WithTimeout[exhaustMessage](time.Second))
	sub2 := dispatcher.SubscribeCommand(exhaust, runner.WithMaxRetries(2))
	t.Cleanup(sub2.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), exhaustMessage{}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if failures != 3 {
		t.Fatalf("expected 3 attempts, got %d", failures)
	}
}

func TestCommandLoggerNamesModule(t *testing.T) {
	var got string
	provider := providerFunc(func(name string) interfaces.Logger {
		got = name
		return newRecordingLogger()
	})
	CommandLogger(provider, "navigation")
	if got != "site.commands.navigation" {
		t.Fatalf("unexpected logger name %q", got)
	}
	CommandLogger(provider, " ")
	if got != "site.commands.core" {
		t.Fatalf("unexpected default logger name %q", got)
	}
}

type providerFunc func(name string) interfaces.Logger

func (f providerFunc) GetLogger(name string) interfaces.Logger { return f(name) }
