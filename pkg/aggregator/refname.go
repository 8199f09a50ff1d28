package aggregator

import (
	"regexp"
	"strings"
)

var reNonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FormatRefName builds the deterministic identifier that keys a resource in
// the graph. The same input always yields the same refName; create-vs-update
// resolution depends on this stability.
func FormatRefName(prefix, s, suffix string) string {
	s = strings.Replace(s, "}", " Var ", -1)
	s = reNonAlphanumeric.ReplaceAllString(s, " ")

	words := strings.Fields(s)

	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}

	return prefix + strings.Join(words, "") + suffix
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
