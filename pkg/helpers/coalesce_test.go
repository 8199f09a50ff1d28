package helpers_test

import (
	"testing"

	"github.com/corefw/aag/pkg/helpers"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	require.Equal(t, "a", helpers.Coalesce("a", "b"))
	require.Equal(t, "b", helpers.Coalesce("", "b"))
	require.Equal(t, "", helpers.Coalesce("", ""))
	require.Equal(t, "", helpers.Coalesce())
}
