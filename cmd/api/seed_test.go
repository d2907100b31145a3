package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoWeek(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

	week, err := demoWeek("", time.Monday, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), week)

	week, err = demoWeek("2026-03-09", time.Monday, now)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, week.Weekday())

	_, err = demoWeek("2026-03-10", time.Monday, now)
	assert.Error(t, err)

	_, err = demoWeek("not-a-date", time.Monday, now)
	assert.Error(t, err)
}
