package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstIndexedRunsAll(t *testing.T) {
	var calls int64
	err := FirstIndexed(0, 100, 8, func(i int) error {
		atomic.AddInt64(&calls, 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), calls)
}

func TestFirstIndexedEmptyRange(t *testing.T) {
	err := FirstIndexed(5, 5, 4, func(i int) error {
		t.Fatal("must not be called")
		return nil
	})
	assert.NoError(t, err)
}

func TestFirstIndexedLowestErrorWins(t *testing.T) {
	errLow := errors.New("low")
	errHigh := errors.New("high")

	for run := 0; run < 20; run++ {
		err := FirstIndexed(0, 64, 8, func(i int) error {
			switch i {
			case 10:
				return errLow
			case 40:
				return errHigh
			default:
				return nil
			}
		})
		require.ErrorIs(t, err, errLow, "run %d", run)
	}
}

func TestFirstIndexedSingleWorker(t *testing.T) {
	boom := errors.New("boom")
	var calls int64
	err := FirstIndexed(0, 10, 0, func(i int) error {
		atomic.AddInt64(&calls, 1)
		if i == 3 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	// One worker means strictly ordered execution; nothing past the
	// failing index needed to run beyond what was already scheduled.
	assert.LessOrEqual(t, calls, int64(5))
}
