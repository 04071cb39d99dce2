package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-planner/internal/domain"
)

func TestNormalizeDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mon", "Monday"},
		{"Monday", "Monday"},
		{"MONDAY", "Monday"},
		{"Tues.", "Tuesday"},
		{"tue", "Tuesday"},
		{" weds ", "Wednesday"},
		{"thur", "Thursday"},
		{"thurs,", "Thursday"},
		{"FRI", "Friday"},
		{"sat", "Saturday"},
		{"Sun", "Sunday"},
		{"banana", "banana"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDay(tt.in))
		})
	}
}

func TestNormalizeDayIdempotent(t *testing.T) {
	inputs := []string{"mon", "Tues.", "weds", "Friday", "banana", ""}
	for _, in := range inputs {
		once := NormalizeDay(in)
		assert.Equal(t, once, NormalizeDay(once), "input %q", in)
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9am", "09:00"},
		{"2:30pm", "14:30"},
		{"0900", "09:00"},
		{"900", "09:00"},
		{"9:00", "09:00"},
		{"09:00", "09:00"},
		{"9.15pm", "21:15"},
		{"12am", "00:00"},
		{"12pm", "12:00"},
		{"12:30 AM", "00:30"},
		{"12:30 PM", "12:30"},
		{"11 PM", "23:00"},
		{"915pm", "21:15"},
		{"23:59", "23:59"},
		{"lunchtime", "lunchtime"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTime(tt.in))
		})
	}
}

func TestNormalizeTimeIdempotent(t *testing.T) {
	inputs := []string{"9am", "2:30pm", "0900", "900", "12am", "9.15pm", "lunchtime", "23:59"}
	for _, in := range inputs {
		once := NormalizeTime(in)
		assert.Equal(t, once, NormalizeTime(once), "input %q", in)
	}
}

func TestNormalizeTimeRoundTrip(t *testing.T) {
	// Canonical input must come back unchanged.
	for _, s := range []string{"00:00", "06:30", "09:00", "12:00", "18:45", "23:59"} {
		assert.Equal(t, s, NormalizeTime(s))
	}
}

func TestToMinutes(t *testing.T) {
	mins, ok := ToMinutes("09:30")
	require.True(t, ok)
	assert.Equal(t, 570, mins)

	_, ok = ToMinutes("24:00")
	assert.False(t, ok)
	_, ok = ToMinutes("09:60")
	assert.False(t, ok)
	_, ok = ToMinutes("garbage")
	assert.False(t, ok)
	_, ok = ToMinutes("")
	assert.False(t, ok)
}

func TestMinutesToTime(t *testing.T) {
	assert.Equal(t, "09:00", MinutesToTime(540))
	assert.Equal(t, "00:05", MinutesToTime(5))
	assert.Equal(t, "23:59", MinutesToTime(1439))
}

func TestSanitizeAIEvents(t *testing.T) {
	raws := []domain.RawEvent{
		{Day: "Mon", StartTime: "9am", EndTime: "10am", Title: "Maths"},
		{Day: "tues.", StartTime: "1400", EndTime: "1500", EventName: "Physics"},
		{Day: "banana", StartTime: "09:00", EndTime: "10:00", Title: "Dropped"},
		{Day: "Friday", StartTime: "09:00", EndTime: "10:00"}, // no title
		{Day: "sun", StartTime: "6.30pm", EndTime: "7.30pm", Name: "Dinner"},
	}

	got := SanitizeAIEvents(raws)
	require.Len(t, got, 3)

	assert.Equal(t, "Monday", got[0].Day)
	assert.Equal(t, "09:00", got[0].StartTime)
	assert.Equal(t, "10:00", got[0].EndTime)
	assert.Equal(t, "Maths", got[0].Title)

	assert.Equal(t, "Tuesday", got[1].Day)
	assert.Equal(t, "Physics", got[1].Title)
	assert.Equal(t, "14:00", got[1].StartTime)

	assert.Equal(t, "Sunday", got[2].Day)
	assert.Equal(t, "Dinner", got[2].Title)
	assert.Equal(t, "18:30", got[2].StartTime)
	assert.Equal(t, "19:30", got[2].EndTime)
}

func TestColorForTitle(t *testing.T) {
	// Deterministic and stable across calls.
	assert.Equal(t, ColorForTitle("Maths"), ColorForTitle("Maths"))
	assert.Contains(t, palette, ColorForTitle("anything"))
	assert.Equal(t, palette[0], ColorForTitle(""))
}
