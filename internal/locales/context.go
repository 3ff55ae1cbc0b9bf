package locales

import "context"

type activeKey struct{}

// WithActive stores the active locale code on ctx.
func WithActive(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, activeKey{}, Normalize(code))
}

// Active returns the locale stored by WithActive.
func Active(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	code, ok := ctx.Value(activeKey{}).(string)
	return code, ok && code != ""
}
