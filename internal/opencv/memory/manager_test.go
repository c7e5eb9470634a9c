package memory

import (
	"testing"
	"time"

	"histoview/internal/logger"
	"histoview/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestTrackAndRelease(t *testing.T) {
	m := NewManager(logger.Nop())

	a, err := safe.NewMat(4, 5, gocv.MatTypeCV8UC3)
	require.NoError(t, err)
	b, err := safe.NewMat(2, 2, gocv.MatTypeCV8UC1)
	require.NoError(t, err)

	m.Track(a, "a")
	m.Track(b, "b")
	m.Track(a, "a-again")

	stats := m.Stats()
	assert.Equal(t, int64(2), stats.TotalTracked)
	assert.Equal(t, int64(2), stats.ActiveMats)
	assert.Equal(t, int64(4*5*3+2*2), stats.ActiveBytes)

	m.Release(a)
	assert.False(t, a.IsValid())
	assert.Equal(t, int64(1), m.Stats().ActiveMats)

	assert.Equal(t, 1, m.ReleaseAll())
	assert.False(t, b.IsValid())

	stats = m.Stats()
	assert.Equal(t, int64(0), stats.ActiveMats)
	assert.Equal(t, int64(0), stats.ActiveBytes)
	assert.Equal(t, int64(2), stats.TotalReleased)
}

func TestReleaseUntrackedStillCloses(t *testing.T) {
	m := NewManager(logger.Nop())

	mat, err := safe.NewMat(3, 3, gocv.MatTypeCV8UC1)
	require.NoError(t, err)

	m.Release(mat)
	assert.False(t, mat.IsValid())
	assert.Equal(t, int64(0), m.Stats().TotalReleased)

	m.Release(nil)
	assert.Nil(t, m.Track(nil, "nil"))
}

func TestLeaks(t *testing.T) {
	m := NewManager(logger.Nop())

	mat, err := safe.NewMat(1, 1, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	m.Track(mat, "held")

	assert.Empty(t, m.Leaks(time.Hour))
	assert.Equal(t, []string{"held"}, m.Leaks(-time.Second))

	m.ReleaseAll()
	assert.Empty(t, m.Leaks(-time.Second))
}
