package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-patient-portal/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestToStringSlice(t *testing.T) {
	require.Equal(t, []string{"a"}, utils.ToStringSlice("a"))
	require.Nil(t, utils.ToStringSlice(""))
	require.Equal(t, []string{"a", "b"}, utils.ToStringSlice([]string{"a", "", "b"}))
	require.Equal(t, []string{"a", "c"}, utils.ToStringSlice([]any{"a", 1, "c", ""}))
	require.Nil(t, utils.ToStringSlice(42))
}

func TestPointers(t *testing.T) {
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
	require.Equal(t, 0, utils.Value[int](nil))
}
