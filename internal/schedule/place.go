package schedule

import (
	"sort"

	"service-planner/internal/domain"
)

const (
	defaultDurationMinutes = 60
	defaultEarliest        = "06:00"
	defaultLatest          = "22:00"
	unplacedNote           = "Unplaced task"
)

// Interval is a half-open [Start, End) span in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Occupied maps canonical day names to the intervals already taken on
// that day. It is an explicit per-run accumulator: callers build one,
// hand it to Suggest, and can inspect it afterwards. It is never shared
// across runs.
type Occupied map[string][]Interval

// NewOccupied returns an accumulator with an empty slot list for every
// canonical day.
func NewOccupied() Occupied {
	occ := make(Occupied, len(domain.Days))
	for _, day := range domain.Days {
		occ[day] = nil
	}
	return occ
}

// OccupiedFromEvents seeds an accumulator from existing events. Entries
// without a canonical day, an unparseable time, or an inverted interval
// are skipped silently; a malformed stored event must not poison a
// placement run.
func OccupiedFromEvents(events []domain.Event) Occupied {
	occ := NewOccupied()
	for _, ev := range events {
		if !domain.IsCanonicalDay(ev.Day) {
			continue
		}
		s, okS := ToMinutes(ev.StartTime)
		e, okE := ToMinutes(ev.EndTime)
		if !okS || !okE || e <= s {
			continue
		}
		occ[ev.Day] = append(occ[ev.Day], Interval{Start: s, End: e})
	}
	return occ
}

// Add records an interval against a day.
func (o Occupied) Add(day string, iv Interval) {
	o[day] = append(o[day], iv)
}

// Constraints are the run-level earliest/latest bounds; a task-level
// bound overrides them, and both fall back to 06:00/22:00.
type Constraints struct {
	Earliest string
	Latest   string
}

// Suggest places tasks greedily, first-fit, in input order, against the
// occupied accumulator. Successful placements grow the accumulator, so
// later tasks in the same run see earlier reservations. A task no
// preferred day can admit is emitted as an unplaced marker rather than
// an error. The algorithm is deterministic and order-sensitive; it
// never backtracks or reorders tasks.
func Suggest(tasks []domain.ScheduleTask, occ Occupied, constraints Constraints) []domain.PlacedEvent {
	placed := make([]domain.PlacedEvent, 0, len(tasks))

	for _, task := range tasks {
		duration := task.DurationMinutes
		if duration <= 0 {
			duration = defaultDurationMinutes
		}
		preferred := task.PreferredDays
		if len(preferred) == 0 {
			preferred = domain.Days
		}
		earliest := resolveBound(task.Earliest, constraints.Earliest, defaultEarliest)
		latest := resolveBound(task.Latest, constraints.Latest, defaultLatest)

		var result *domain.PlacedEvent
		for _, day := range preferred {
			start, ok := findSlot(occ[day], duration, earliest, latest)
			if !ok {
				continue
			}
			end := start + duration
			occ.Add(day, Interval{Start: start, End: end})
			startStr := MinutesToTime(start)
			endStr := MinutesToTime(end)
			result = &domain.PlacedEvent{
				Title:       task.Title,
				Description: task.Description,
				Day:         day,
				StartTime:   &startStr,
				EndTime:     &endStr,
				FromAI:      true,
			}
			break
		}

		if result == nil {
			day := "Monday"
			if len(preferred) > 0 {
				day = preferred[0]
			}
			note := task.Note
			if note == "" {
				note = unplacedNote
			}
			result = &domain.PlacedEvent{
				Title:       task.Title,
				Description: task.Description,
				Day:         day,
				Unplaced:    true,
				Note:        note,
				FromAI:      true,
			}
		}
		placed = append(placed, *result)
	}

	return placed
}

// findSlot scans a day's intervals with a moving cursor and returns the
// first start minute where duration fits between earliest and latest.
func findSlot(intervals []Interval, duration, earliest, latest int) (int, bool) {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	cursor := earliest
	for _, iv := range sorted {
		if cursor+duration <= iv.Start {
			return cursor, true
		}
		if iv.End > cursor {
			cursor = iv.End
		}
		if cursor+duration > latest {
			return 0, false
		}
	}
	if cursor+duration <= latest {
		return cursor, true
	}
	return 0, false
}

func resolveBound(taskBound, runBound, fallback string) int {
	for _, candidate := range []string{taskBound, runBound, fallback} {
		if candidate == "" {
			continue
		}
		if mins, ok := ToMinutes(candidate); ok {
			return mins
		}
	}
	mins, _ := ToMinutes(fallback)
	return mins
}

// Overlaps applies the half-open interval test to two canonical "HH:MM"
// pairs: [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1. Zero-padded
// strings compare lexically exactly as their minute values would.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}
