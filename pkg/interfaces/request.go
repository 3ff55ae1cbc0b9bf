package interfaces

// RequestContext captures the per-request inputs that influence navigation:
// the active locale and whether the caller is signed in. Path is the current
// request path, used for active-state highlighting.
type RequestContext struct {
	Locale        string
	Authenticated bool
	Path          string
}
