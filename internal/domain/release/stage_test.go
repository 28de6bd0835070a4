package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestProgressAdvance walks the pipeline forward through every stage.
func TestProgressAdvance(t *testing.T) {
	t.Parallel()

	p := NewProgress()
	require.Equal(t, StagePending, p.Current())

	for _, next := range []Stage{StageBuilt, StagePackaged, StageHashed, StagePublished} {
		require.NoError(t, p.Advance(next))
		require.Equal(t, next, p.Current())
	}

	require.True(t, p.Terminal())
	require.Error(t, p.Advance(StagePublished))
}

// TestProgressRejectsSkips ensures a stage cannot be jumped over.
func TestProgressRejectsSkips(t *testing.T) {
	t.Parallel()

	p := NewProgress()
	require.Error(t, p.Advance(StagePackaged))
	require.Error(t, p.Advance(StagePublished))
	require.Equal(t, StagePending, p.Current())
}

// TestProgressFail verifies failure is terminal and records the failed stage.
func TestProgressFail(t *testing.T) {
	t.Parallel()

	p := NewProgress()
	require.NoError(t, p.Advance(StageBuilt))

	p.Fail(StagePackaged)

	failedAt, failed := p.FailedAt()
	require.True(t, failed)
	require.Equal(t, StagePackaged, failedAt)
	require.True(t, p.Terminal())

	// No recovery from failure.
	require.Error(t, p.Advance(StagePackaged))

	// A later Fail must not overwrite the original failed stage.
	p.Fail(StageHashed)

	failedAt, _ = p.FailedAt()
	require.Equal(t, StagePackaged, failedAt)
}
