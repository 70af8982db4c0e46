package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewBoard(3 * time.Second)
	b.now = func() time.Time { return now }

	_, ok := b.Current()
	assert.False(t, ok)

	var received []Notice
	b.OnNotice(func(n Notice) {
		received = append(received, n)
	})

	b.Notify("Workout saved!", true)
	n, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "Workout saved!", n.Message)
	assert.True(t, n.Success)
	require.Len(t, received, 1)

	b.Notify("Could not save", false)
	n, ok = b.Current()
	require.True(t, ok)
	assert.False(t, n.Success)

	now = now.Add(4 * time.Second)
	_, ok = b.Current()
	assert.False(t, ok)
	assert.Len(t, received, 2)
}
