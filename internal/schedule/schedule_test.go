package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDay(t *testing.T) {
	week := DefaultWeek()

	// 2025-06-02 is a Monday
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	hours, ok := ResolveDay(week, monday)
	require.True(t, ok)
	assert.Equal(t, "09:00", hours.Start)
	assert.Equal(t, "17:00", hours.End)

	sunday := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, ok = ResolveDay(week, sunday)
	assert.False(t, ok, "weekend should be unavailable by default")

	delete(week, time.Monday)
	_, ok = ResolveDay(week, monday)
	assert.False(t, ok, "missing day record should resolve as unavailable")
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9:00", 0, true},
		{"0900", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:00", FormatClock(540))
	assert.Equal(t, "00:05", FormatClock(5))
	assert.Equal(t, "16:30", FormatClock(990))
}

func TestAvailableSlotsEmptyDay(t *testing.T) {
	day := DayHours{Start: "09:00", End: "17:00", Available: true}
	slots, err := AvailableSlots(day, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"09:00", "10:00", "11:00", "12:00",
		"13:00", "14:00", "15:00", "16:00",
	}, slots)
}

func TestAvailableSlotsExcludesBooked(t *testing.T) {
	day := DayHours{Start: "09:00", End: "12:00", Available: true}
	booked := []Interval{{Start: 600, End: 660}} // 10:00 for 60 minutes

	slots, err := AvailableSlots(day, booked)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, slots)
}

func TestAvailableSlotsPartialOverlap(t *testing.T) {
	day := DayHours{Start: "09:00", End: "13:00", Available: true}
	// 10:30-11:30 knocks out both the 10:00 and 11:00 slots
	booked := []Interval{{Start: 630, End: 690}}

	slots, err := AvailableSlots(day, booked)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "12:00"}, slots)
}

func TestAvailableSlotsWindowTooShort(t *testing.T) {
	day := DayHours{Start: "09:00", End: "09:30", Available: true}
	slots, err := AvailableSlots(day, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlotsInvalidHours(t *testing.T) {
	day := DayHours{Start: "nine", End: "17:00", Available: true}
	_, err := AvailableSlots(day, nil)
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	a := Interval{Start: 600, End: 660}
	assert.True(t, Overlaps(a, Interval{Start: 630, End: 690}))
	assert.True(t, Overlaps(a, Interval{Start: 600, End: 660}))
	assert.True(t, Overlaps(a, Interval{Start: 570, End: 630}))
	assert.False(t, Overlaps(a, Interval{Start: 660, End: 720}), "touching intervals do not overlap")
	assert.False(t, Overlaps(a, Interval{Start: 540, End: 600}))
}

func TestWeekJSONRoundTrip(t *testing.T) {
	week := DefaultWeek()
	data, err := json.Marshal(week)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"monday"`)

	var decoded Week
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, week, decoded)
}

func TestWeekUnmarshalRejectsUnknownDay(t *testing.T) {
	var week Week
	err := json.Unmarshal([]byte(`{"moonday":{"start":"09:00","end":"17:00","available":true}}`), &week)
	assert.Error(t, err)
}

func TestWeekValidate(t *testing.T) {
	week := DefaultWeek()
	require.NoError(t, week.Validate())

	week[time.Monday] = DayHours{Start: "17:00", End: "09:00", Available: true}
	assert.Error(t, week.Validate())

	week[time.Monday] = DayHours{Start: "bogus", End: "09:00", Available: true}
	assert.Error(t, week.Validate())

	// inverted hours on an unavailable day are tolerated
	week[time.Monday] = DayHours{Start: "17:00", End: "09:00", Available: false}
	assert.NoError(t, week.Validate())
}
