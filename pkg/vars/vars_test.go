package vars_test

import (
	"testing"

	"github.com/corefw/aag/pkg/vars"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

func TestSubstituteString(t *testing.T) {
	v := map[string]interface{}{"x": "Q"}

	out := vars.Substitute(map[string]interface{}{"a": "${x}-${x}"}, v)

	require.Equal(t, map[string]interface{}{"a": "Q-Q"}, out)
}

func TestSubstituteNested(t *testing.T) {
	v := map[string]interface{}{
		"name":   "widgets",
		"branch": "main",
	}

	in := map[string]interface{}{
		"service": "${name}",
		"tags":    []interface{}{"${branch}", "static"},
		"meta": map[string]interface{}{
			"stage": "branch-${branch}",
			"count": 3,
		},
	}

	out := vars.Substitute(in, v)

	require.Equal(t, map[string]interface{}{
		"service": "widgets",
		"tags":    []interface{}{"main", "static"},
		"meta": map[string]interface{}{
			"stage": "branch-main",
			"count": 3,
		},
	}, out)
}

func TestSubstituteNonString(t *testing.T) {
	v := map[string]interface{}{"x": 42}

	out := vars.Substitute(map[string]interface{}{"a": "val=${x}"}, v)

	require.Equal(t, map[string]interface{}{"a": 42}, out)
}

func TestSubstituteNonStringStopsProcessing(t *testing.T) {
	v := map[string]interface{}{
		"count": 7,
		"other": "should-not-appear",
	}

	out := vars.Substitute("${count} ${other}", v)

	require.Equal(t, 7, out)
}

func TestSubstituteUnknownToken(t *testing.T) {
	out := vars.Substitute(map[string]interface{}{"a": "${unknown}"}, map[string]interface{}{})

	require.Equal(t, map[string]interface{}{"a": "${unknown}"}, out)
}

func TestSubstituteIdempotent(t *testing.T) {
	v := map[string]interface{}{"x": "Q", "y": "R"}

	in := map[string]interface{}{
		"a": "${x}/${y}",
		"b": []interface{}{"${x}", 1, true},
	}

	once := vars.Substitute(in, v)
	twice := vars.Substitute(once, v)

	require.Equal(t, once, twice)
}

func TestSubstituteSelfReference(t *testing.T) {
	v := map[string]interface{}{"x": "<${x}>"}

	out := vars.Substitute("${x}", v)

	// the iteration cap stops the expansion rather than looping forever
	s, ok := out.(string)
	require.True(t, ok)
	require.Contains(t, s, "${x}")
}

func TestSubstituteScalars(t *testing.T) {
	v := map[string]interface{}{"x": "Q"}

	require.Equal(t, 5, vars.Substitute(5, v))
	require.Equal(t, true, vars.Substitute(true, v))
	require.Equal(t, nil, vars.Substitute(nil, v))
}

func TestSubstituteYamlTree(t *testing.T) {
	var tree interface{}

	err := yaml.Unmarshal([]byte("properties:\n  name: ${apiName}\n  stage: ${gitBranch}\n"), &tree)
	require.NoError(t, err)

	out := vars.SubstituteStrings(tree, map[string]string{
		"apiName":   "aggregated-api",
		"gitBranch": "main",
	})

	m, ok := out.(map[interface{}]interface{})
	require.True(t, ok)

	props, ok := m["properties"].(map[interface{}]interface{})
	require.True(t, ok)
	require.Equal(t, "aggregated-api", props["name"])
	require.Equal(t, "main", props["stage"])
}
