package domain

import "strings"

// Correlation tokens are embedded in component custom IDs as
// key:arg1:arg2:... with backslash-escaped delimiters, so any argument
// value round-trips exactly.
const tokenDelimiter = ':'

var tokenEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`)

// EncodeToken builds a correlation token from a registry key and ordered
// string arguments.
func EncodeToken(key string, args ...string) string {
	var sb strings.Builder
	sb.WriteString(tokenEscaper.Replace(key))
	for _, arg := range args {
		sb.WriteByte(tokenDelimiter)
		sb.WriteString(tokenEscaper.Replace(arg))
	}
	return sb.String()
}

// DecodeToken splits a correlation token back into its key and arguments.
// Malformed input (empty key, dangling escape) returns ok=false so a stale
// or tampered token is a non-match rather than a failure.
func DecodeToken(token string) (string, []string, bool) {
	if token == "" {
		return "", nil, false
	}

	parts := []string{}
	var sb strings.Builder
	escaped := false

	for _, r := range token {
		switch {
		case escaped:
			sb.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == tokenDelimiter:
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}

	if escaped {
		return "", nil, false
	}

	parts = append(parts, sb.String())
	if parts[0] == "" {
		return "", nil, false
	}

	return parts[0], parts[1:], true
}
