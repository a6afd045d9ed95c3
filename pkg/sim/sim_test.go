package sim

import (
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/parlorgames/parlor/pkg/games/pig"
)

func TestRunPlaysToCompletion(t *testing.T) {
	ticks, err := Run("pig", `{"ints":{"target":40}}`, 2, 42, slog.Disabled)
	require.NoError(t, err)
	assert.Greater(t, ticks, int64(0))
}

func TestRunSameSeedSameDuration(t *testing.T) {
	a, err := Run("pig", `{"ints":{"target":40}}`, 3, 7, slog.Disabled)
	require.NoError(t, err)
	b, err := Run("pig", `{"ints":{"target":40}}`, 3, 7, slog.Disabled)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunClampsBotCount(t *testing.T) {
	// One bot is below pig's minimum; the run still fields a full game.
	ticks, err := Run("pig", `{"ints":{"target":30}}`, 1, 9, slog.Disabled)
	require.NoError(t, err)
	assert.Greater(t, ticks, int64(0))
}

func TestRunUnknownGame(t *testing.T) {
	_, err := Run("mumbletypeg", "", 2, 1, slog.Disabled)
	assert.Error(t, err)
}

func TestRunBadOptions(t *testing.T) {
	_, err := Run("pig", `{"ints":{"target":`, 2, 1, slog.Disabled)
	assert.Error(t, err)
}
