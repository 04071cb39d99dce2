package domain

// Days is the canonical weekday set, Monday-first. It drives sorting,
// recurrence expansion and default placement preference order.
var Days = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// DayIndex returns the position of day in the canonical Monday-first
// ordering, or -1 if day is not one of the seven canonical names.
func DayIndex(day string) int {
	for i, d := range Days {
		if d == day {
			return i
		}
	}
	return -1
}

// IsCanonicalDay reports whether day is one of the seven full English
// weekday names.
func IsCanonicalDay(day string) bool {
	return DayIndex(day) >= 0
}
