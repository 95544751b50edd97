// Package schedule implements the time arithmetic behind therapist
// availability: resolving a weekly recurring schedule against a calendar
// date, cutting the working window into bookable slots, and testing
// proposed sessions against existing ones for overlap.
package schedule

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SlotDurationMinutes is the fixed length of a bookable slot.
const SlotDurationMinutes = 60

// DayHours is one day's working window in a therapist's weekly schedule.
// Start and End are wall-clock times in "HH:MM" form.
type DayHours struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// Week maps each day of the week to its working hours. Days are keyed by
// time.Weekday rather than a positional index so a reordered literal can
// never shift Monday's hours onto Tuesday.
type Week map[time.Weekday]DayHours

var dayNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

var daysByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, len(dayNames))
	for d, name := range dayNames {
		m[name] = d
	}
	return m
}()

// DefaultWeek returns the schedule assigned to newly registered
// therapists: weekdays 09:00-17:00, weekends off. Callers get a fresh
// copy each time; mutating it never affects other therapists.
func DefaultWeek() Week {
	return WeekdayWeek("09:00", "17:00")
}

// WeekdayWeek builds a week with the given hours Monday through Friday
// and weekends off.
func WeekdayWeek(start, end string) Week {
	w := make(Week, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		switch d {
		case time.Saturday, time.Sunday:
			w[d] = DayHours{Start: start, End: end, Available: false}
		default:
			w[d] = DayHours{Start: start, End: end, Available: true}
		}
	}
	return w
}

// MarshalJSON encodes the week keyed by lowercase day names.
func (w Week) MarshalJSON() ([]byte, error) {
	out := make(map[string]DayHours, len(w))
	for d, h := range w {
		out[dayNames[d]] = h
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a week keyed by lowercase day names. Unknown day
// names are rejected so a typo cannot silently drop a day.
func (w *Week) UnmarshalJSON(data []byte) error {
	var raw map[string]DayHours
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	week := make(Week, len(raw))
	for name, h := range raw {
		d, ok := daysByName[name]
		if !ok {
			return fmt.Errorf("unknown day name: %q", name)
		}
		week[d] = h
	}
	*w = week
	return nil
}

// Validate checks every present day has a well-formed, non-inverted window.
func (w Week) Validate() error {
	for d, h := range w {
		start, err := ParseClock(h.Start)
		if err != nil {
			return fmt.Errorf("%s start: %w", dayNames[d], err)
		}
		end, err := ParseClock(h.End)
		if err != nil {
			return fmt.Errorf("%s end: %w", dayNames[d], err)
		}
		if h.Available && end <= start {
			return fmt.Errorf("%s: end %s is not after start %s", dayNames[d], h.End, h.Start)
		}
	}
	return nil
}

// ResolveDay looks up the working hours for the given calendar date.
// The second return is false when the day is absent from the week or
// marked unavailable.
func ResolveDay(week Week, date time.Time) (DayHours, bool) {
	hours, ok := week[date.Weekday()]
	if !ok || !hours.Available {
		return DayHours{}, false
	}
	return hours, true
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return hh*60 + mm, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Interval is a booked span of a day in minutes since midnight,
// half-open: [Start, End).
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && a.End > b.Start
}

// AvailableSlots partitions the day's working window into fixed-length
// slots and drops every slot that intersects a booked interval. Candidate
// starts run from the opening time to closing minus one slot length,
// inclusive, stepping by the slot length. The result is ordered.
func AvailableSlots(day DayHours, booked []Interval) ([]string, error) {
	open, err := ParseClock(day.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid working hours start: %w", err)
	}
	close, err := ParseClock(day.End)
	if err != nil {
		return nil, fmt.Errorf("invalid working hours end: %w", err)
	}

	sorted := make([]Interval, len(booked))
	copy(sorted, booked)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	slots := make([]string, 0, (close-open)/SlotDurationMinutes)
	for t := open; t+SlotDurationMinutes <= close; t += SlotDurationMinutes {
		candidate := Interval{Start: t, End: t + SlotDurationMinutes}
		conflict := false
		for _, b := range sorted {
			if b.Start >= candidate.End {
				break
			}
			if Overlaps(candidate, b) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, FormatClock(t))
		}
	}
	return slots, nil
}
