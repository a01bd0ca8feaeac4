package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_AddNew(t *testing.T) {
	s := New("a")
	require.False(t, s.AddNew("a"))
	require.True(t, s.AddNew("b"))
	require.True(t, s.Has("b"))
	require.Equal(t, 2, s.Len())
}

func TestSet_Delete(t *testing.T) {
	s := New(1, 2)
	s.Delete(1)
	s.Delete(3)
	require.False(t, s.Has(1))
	require.Equal(t, 1, s.Len())
	require.True(t, s.AddNew(1))
}
