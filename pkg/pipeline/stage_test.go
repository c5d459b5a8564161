package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageFunc(t *testing.T) {
	double := StageFunc[int, int](func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	out, err := double.Execute(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestTimed(t *testing.T) {
	type call struct {
		name    string
		elapsed time.Duration
		err     error
	}

	t.Run("reports success", func(t *testing.T) {
		var calls []call
		stage := Timed[string, int]("length", StageFunc[string, int](func(_ context.Context, s string) (int, error) {
			time.Sleep(5 * time.Millisecond)
			return len(s), nil
		}), func(name string, elapsed time.Duration, err error) {
			calls = append(calls, call{name, elapsed, err})
		})

		out, err := stage.Execute(context.Background(), "frames")
		require.NoError(t, err)
		assert.Equal(t, 6, out)
		require.Len(t, calls, 1)
		assert.Equal(t, "length", calls[0].name)
		assert.GreaterOrEqual(t, calls[0].elapsed, 5*time.Millisecond)
		assert.NoError(t, calls[0].err)
	})

	t.Run("reports failure", func(t *testing.T) {
		boom := errors.New("boom")
		var got error
		stage := Timed[int, int]("fail", StageFunc[int, int](func(context.Context, int) (int, error) {
			return 0, boom
		}), func(_ string, _ time.Duration, err error) {
			got = err
		})

		_, err := stage.Execute(context.Background(), 1)
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, got, boom)
	})

	t.Run("nil observer", func(t *testing.T) {
		inner := StageFunc[int, int](func(_ context.Context, n int) (int, error) { return n + 1, nil })
		stage := Timed[int, int]("noop", inner, nil)

		out, err := stage.Execute(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 2, out)
	})
}
