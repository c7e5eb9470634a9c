package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoopStateNames(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "stopped_by_failure", StateStoppedByFailure.String())
	assert.Equal(t, "unknown", LoopState(42).String())

	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateNoInput.Terminal())
}

func TestSessionRepositoryLifecycle(t *testing.T) {
	repo := NewSessionRepository()
	assert.Equal(t, StateIdle, repo.Current().State)
	assert.False(t, repo.IsRunning())

	repo.Start("a", SourceCamera)
	assert.True(t, repo.IsRunning())

	repo.FrameDone("a")
	repo.FrameDone("a")
	repo.FrameDone("stale")

	failure := errors.New("read failed")
	repo.Finish("a", StateStoppedByFailure, failure)

	s := repo.Current()
	assert.Equal(t, 2, s.Frames)
	assert.Equal(t, StateStoppedByFailure, s.State)
	assert.Equal(t, failure, s.Err)
	assert.False(t, s.EndTime.IsZero())
	assert.GreaterOrEqual(t, s.Duration().Nanoseconds(), int64(0))

	repo.Finish("a", StateCompleted, nil)
	assert.Equal(t, StateStoppedByFailure, repo.Current().State)
}

func TestSessionRepositoryIgnoresStaleFinish(t *testing.T) {
	repo := NewSessionRepository()
	repo.Start("old", SourceStatic)
	repo.Start("new", SourceStatic)

	repo.Finish("old", StateCompleted, nil)
	assert.Equal(t, StateRunning, repo.Current().State)
	assert.Equal(t, "new", repo.Current().ID)
}
