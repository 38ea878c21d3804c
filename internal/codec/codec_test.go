package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSet(t *testing.T) {
	cmd := NewSet("k", "v")
	require.Equal(t, Set, cmd.Type)
	require.Equal(t, "k", cmd.Key)
	require.Equal(t, "v", cmd.Value)
}

func TestNewRemove(t *testing.T) {
	cmd := NewRemove("k")
	require.Equal(t, Remove, cmd.Type)
	require.Equal(t, "k", cmd.Key)
	require.Empty(t, cmd.Value)
}
