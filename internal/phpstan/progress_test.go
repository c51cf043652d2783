package phpstan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressEvent struct {
	done, total int
	pct         float64
}

func TestProgressWriter_ParsesProgressLines(t *testing.T) {
	t.Parallel()

	var events []progressEvent

	w := newProgressWriter(func(done, total int, pct float64) {
		events = append(events, progressEvent{done, total, pct})
	})

	_, err := w.Write([]byte("12/40 [===>        ] 30%\n"))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, progressEvent{12, 40, 30}, events[0])
}

func TestProgressWriter_BuffersPartialLines(t *testing.T) {
	t.Parallel()

	var events []progressEvent

	w := newProgressWriter(func(done, total int, pct float64) {
		events = append(events, progressEvent{done, total, pct})
	})

	_, _ = w.Write([]byte("20/40 [====="))
	require.Empty(t, events)

	_, _ = w.Write([]byte(">    ] 50%\n"))
	require.Len(t, events, 1)
	assert.Equal(t, progressEvent{20, 40, 50}, events[0])
}

func TestProgressWriter_CarriageReturnRepaints(t *testing.T) {
	t.Parallel()

	var events []progressEvent

	w := newProgressWriter(func(done, total int, pct float64) {
		events = append(events, progressEvent{done, total, pct})
	})

	_, _ = w.Write([]byte("10/40 [==>  ] 25%\r20/40 [====> ] 50%\r"))

	require.Len(t, events, 2)
	assert.Equal(t, float64(25), events[0].pct)
	assert.Equal(t, float64(50), events[1].pct)
}

func TestProgressWriter_IgnoresRegressions(t *testing.T) {
	t.Parallel()

	var events []progressEvent

	w := newProgressWriter(func(done, total int, pct float64) {
		events = append(events, progressEvent{done, total, pct})
	})

	_, _ = w.Write([]byte("30/40 [======>] 75%\n"))
	_, _ = w.Write([]byte("30/40 [======>] 75%\n"))
	_, _ = w.Write([]byte("8/40 [=>     ] 20%\n"))

	require.Len(t, events, 1)
	assert.Equal(t, float64(75), events[0].pct)
}

func TestProgressWriter_IgnoresNoise(t *testing.T) {
	t.Parallel()

	calls := 0

	w := newProgressWriter(func(int, int, float64) { calls++ })

	_, _ = w.Write([]byte("Note: using configuration file phpstan.neon\n"))
	assert.Zero(t, calls)
}
