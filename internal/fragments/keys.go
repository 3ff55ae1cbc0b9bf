package fragments

import "strings"

const (
	// KeyPrefix namespaces every rendered template fragment.
	KeyPrefix = "template.cache"

	NameMenu = "menu"
	NamePage = "page"
)

// Key builds "template.cache.<name>.<vary...>". Empty vary parts are kept so
// keys stay positional.
func Key(name string, vary ...string) string {
	var b strings.Builder
	b.WriteString(KeyPrefix)
	b.WriteByte('.')
	b.WriteString(name)
	for _, v := range vary {
		b.WriteByte('.')
		b.WriteString(v)
	}
	return b.String()
}

// patterns returns the exact key for name plus the glob covering every
// vary suffix below it.
func patterns(name string, vary ...string) []string {
	base := Key(name, vary...)
	return []string{base, base + ".*"}
}
