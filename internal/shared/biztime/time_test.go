package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatGMT(t *testing.T) {
	loc := time.FixedZone("BST", 3600)
	ts := time.Date(2026, 3, 14, 10, 30, 5, 0, loc)

	assert.Equal(t, "2026-03-14 09:30:05", FormatGMT(ts))
}

func TestSetClock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	restore := SetClock(func() time.Time { return fixed })

	assert.Equal(t, fixed, NowUTC())

	restore()
	assert.NotEqual(t, fixed, NowUTC())
}

func TestInit(t *testing.T) {
	require.Error(t, Init("Not/AZone"))
	require.NoError(t, Init("Europe/London"))
	assert.Equal(t, "Europe/London", Location().String())
	require.NoError(t, Init("UTC"))
}
