package rest_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/adapters/rest"
	"github.com/eduardokochhann/app.control360.pmo-sub000/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := rest.ParseDate("2026-03-02")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), *d)

	d, err = rest.ParseDate("  ")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = rest.ParseDate("02/03/2026")
	assert.Error(t, err)
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	cases := map[string]core.Priority{
		"low":    core.PriorityLow,
		"Baixa":  core.PriorityLow,
		"medium": core.PriorityMedium,
		"média":  core.PriorityMedium,
		"HIGH":   core.PriorityHigh,
		"alta":   core.PriorityHigh,
		"":       "",
	}
	for in, want := range cases {
		got, ok := rest.ParsePriority(in)
		require.True(t, ok, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, ok := rest.ParsePriority("urgent")
	assert.False(t, ok)
}

func TestParseWorkdays(t *testing.T) {
	t.Parallel()

	week, err := rest.ParseWorkdays([]string{"mon", "Tue", " wed ", "thu", "fri"})
	require.NoError(t, err)
	assert.Equal(t, core.WorkweekMonFri, week)

	week, err = rest.ParseWorkdays([]string{"sat", "sun"})
	require.NoError(t, err)
	assert.True(t, week.WorksOn(time.Saturday))
	assert.False(t, week.WorksOn(time.Monday))

	_, err = rest.ParseWorkdays([]string{"segunda"})
	assert.Error(t, err)
}

func TestParseEstimate(t *testing.T) {
	t.Parallel()

	// absent keeps the stored value
	value, clear, err := rest.ParseEstimate(nil)
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.False(t, clear)

	// whitespace-only raw input is treated as absent
	value, clear, err = rest.ParseEstimate(json.RawMessage("  "))
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.False(t, clear)

	// null clears
	value, clear, err = rest.ParseEstimate(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.True(t, clear)

	// empty string clears too
	value, clear, err = rest.ParseEstimate(json.RawMessage(`""`))
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.True(t, clear)

	// numbers and numeric strings set
	value, clear, err = rest.ParseEstimate(json.RawMessage(`12.5`))
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, 12.5, *value)
	assert.False(t, clear)

	value, _, err = rest.ParseEstimate(json.RawMessage(`"8"`))
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, 8.0, *value)

	_, _, err = rest.ParseEstimate(json.RawMessage(`"many"`))
	assert.Error(t, err)
}
