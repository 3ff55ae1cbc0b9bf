package interfaces

import (
	"context"
	"time"
)

// FragmentStore holds pre-rendered template fragments keyed by dotted names
// such as "template.cache.menu.main.en". Patterns passed to DeletePattern use
// glob syntax where '*' matches any run of characters.
type FragmentStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) (int, error)
}
