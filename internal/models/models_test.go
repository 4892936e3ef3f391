package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_AddDaysCrossesMonthAndYear(t *testing.T) {
	d := Date{Year: 2023, Month: time.December, Day: 30}
	assert.Equal(t, "2024-01-02", d.AddDays(3).String())
	assert.Equal(t, "2023-12-24", d.AddDays(-6).String())
	assert.Equal(t, "2024-02-29", Date{2024, time.March, 1}.AddDays(-1).String())
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(Date{2024, time.March, 5})
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal(b, &d))
	assert.Equal(t, Date{2024, time.March, 5}, d)

	require.Error(t, json.Unmarshal([]byte(`"05/03/2024"`), &d))
}

func TestDate_Before(t *testing.T) {
	a := Date{2024, time.March, 5}
	assert.True(t, a.Before(a.AddDays(1)))
	assert.False(t, a.Before(a))
	assert.False(t, a.AddDays(40).Before(a))
}

func TestDateOf_UsesTimeLocation(t *testing.T) {
	loc := time.FixedZone("E", 10*3600)
	ts := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", DateOf(ts).String())
	assert.Equal(t, "2024-03-02", DateOf(ts.In(loc)).String())
}

func TestComplianceDay_Record(t *testing.T) {
	d := EmptyDay("u1", Date{2024, time.March, 1})
	assert.Equal(t, 0.0, d.Percent)

	d.Record(true)
	d.Record(false)
	assert.Equal(t, 2, d.Total)
	assert.Equal(t, 1, d.Completed)
	assert.Equal(t, 1, d.Missed)
	assert.InDelta(t, 50.0, d.Percent, 1e-9)
}

func TestPercent_ZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.InDelta(t, 100.0/3, Percent(1, 3), 1e-9)
}

func TestTaskPatch_ReschedulesTrigger(t *testing.T) {
	f := "weekly"
	title := "x"
	assert.True(t, TaskPatch{Frequency: &f}.ReschedulesTrigger())
	assert.False(t, TaskPatch{Title: &title}.ReschedulesTrigger())
}
