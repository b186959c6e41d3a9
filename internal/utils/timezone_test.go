package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	// 02:30 UTC is still the previous evening in Sao Paulo
	at := time.Date(2024, 3, 6, 2, 30, 0, 0, time.UTC)
	start := StartOfDay(at)
	assert.Equal(t, time.Date(2024, 3, 5, 3, 0, 0, 0, time.UTC), start.UTC())
}

func TestFormatDateTimeBR(t *testing.T) {
	assert.Equal(t, "05/03/2024, 14:04", FormatDateTimeBR(time.Date(2024, 3, 5, 17, 4, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 3, 0, 0, 0, time.UTC), d.UTC())

	_, err = ParseDate("2024-03-05T10:00:00Z")
	require.NoError(t, err)

	_, err = ParseDate("05/03/2024")
	assert.Error(t, err)
}
