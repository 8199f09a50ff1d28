package aggregator_test

import (
	"testing"

	"github.com/corefw/aag/pkg/aggregator"
	"github.com/stretchr/testify/require"
)

func TestFormatRefName(t *testing.T) {
	require.Equal(t, "MyFunction01AagPerms", aggregator.FormatRefName("", "my-function_01", "AagPerms"))
	require.Equal(t, "AagResourceWidgetsList", aggregator.FormatRefName("AagResource", "widgets/list", ""))
	require.Equal(t, "AagMethodWidgetsGet", aggregator.FormatRefName("AagMethod", "/widgets", "Get"))
	require.Equal(t, "OrdersApiAagRestApi", aggregator.FormatRefName("", "orders-api", "AagRestApi"))
}

func TestFormatRefNameVarMarker(t *testing.T) {
	require.Equal(t, "StageVar", aggregator.FormatRefName("", "${stage}", ""))
}

func TestFormatRefNameDeterministic(t *testing.T) {
	a := aggregator.FormatRefName("AagResource", "a/b c-d_e", "")
	b := aggregator.FormatRefName("AagResource", "a/b c-d_e", "")

	require.Equal(t, a, b)
	require.Equal(t, "AagResourceABCDE", a)
}

func TestFormatRefNameEmpty(t *testing.T) {
	require.Equal(t, "PrefixSuffix", aggregator.FormatRefName("Prefix", "", "Suffix"))
}
