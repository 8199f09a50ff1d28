// Package vars implements ${name} variable substitution over arbitrary
// JSON- and YAML-compatible trees.
package vars

import (
	"fmt"
	"sort"
	"strings"
)

// maxReplaceIterations bounds repeated replacement of a single variable
// within one string so a value containing its own token cannot loop
// forever.
const maxReplaceIterations = 100

// Substitute walks tree and replaces ${name} tokens in string leaves using
// vars. Maps and slices are copied, never mutated. A non-string variable
// value whose token appears in a string replaces that entire string and
// stops further substitution on it. Tokens with no matching variable pass
// through verbatim.
func Substitute(tree interface{}, vars map[string]interface{}) interface{} {
	switch t := tree.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, v := range t {
			out[k] = Substitute(v, vars)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[interface{}]interface{}, len(t))
		for k, v := range t {
			out[k] = Substitute(v, vars)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, v := range t {
			out[i] = Substitute(v, vars)
		}
		return out
	case string:
		return substituteString(t, vars)
	default:
		return tree
	}
}

// SubstituteStrings is Substitute for a string-only variable map.
func SubstituteStrings(tree interface{}, vars map[string]string) interface{} {
	vs := make(map[string]interface{}, len(vars))

	for k, v := range vars {
		vs[k] = v
	}

	return Substitute(tree, vs)
}

func substituteString(s string, vars map[string]interface{}) interface{} {
	names := make([]string, 0, len(vars))

	for name := range vars {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		token := fmt.Sprintf("${%s}", name)

		sv, ok := vars[name].(string)
		if !ok {
			if strings.Contains(s, token) {
				return vars[name]
			}
			continue
		}

		for i := 0; strings.Contains(s, token) && i < maxReplaceIterations; i++ {
			s = strings.Replace(s, token, sv, -1)
		}
	}

	return s
}
