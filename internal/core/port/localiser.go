package port

type Localiser interface {
	// Localise resolves key in the closest supported locale and applies
	// printf-style args. Unknown keys resolve in the base locale or, failing
	// that, return the key itself.
	Localise(locale, key string, args ...any) string
}
