package forceclose

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatchSetConfirmCancelsSiblings(t *testing.T) {
	ws := NewWatchSet([]uint64{1, 2, 3})

	canceled := ws.Confirm(2)
	require.ElementsMatch(t, []uint64{1, 3}, canceled)
	require.Equal(t, uint64(2), ws.Winner)

	require.True(t, ws.Active(2))
	require.False(t, ws.Active(1))
	require.False(t, ws.Active(3))
}
