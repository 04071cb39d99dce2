// Package schedule contains the timetable normalization and placement
// engine. Everything in here is pure computation over in-memory values;
// all I/O (storage, the generative backend) stays with the callers.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"service-planner/internal/domain"
)

// dayAliases maps lower-cased day spellings and abbreviations to the
// canonical full name.
var dayAliases = map[string]string{
	"mon":       "Monday",
	"monday":    "Monday",
	"tue":       "Tuesday",
	"tues":      "Tuesday",
	"tuesday":   "Tuesday",
	"wed":       "Wednesday",
	"weds":      "Wednesday",
	"wednesday": "Wednesday",
	"thu":       "Thursday",
	"thur":      "Thursday",
	"thurs":     "Thursday",
	"thursday":  "Thursday",
	"fri":       "Friday",
	"friday":    "Friday",
	"sat":       "Saturday",
	"saturday":  "Saturday",
	"sun":       "Sunday",
	"sunday":    "Sunday",
}

var (
	nonWordRe   = regexp.MustCompile(`[^\w]`)
	hhmmRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\s*(AM|PM|am|pm))?$`)
	bareAmPmRe  = regexp.MustCompile(`^(\d{1,2})(?::?(\d{2}))?\s*(AM|PM|am|pm)$`)
	clockRe     = regexp.MustCompile(`^\d{3,4}$`)
	multiSpaces = regexp.MustCompile(`\s+`)
)

// NormalizeDay maps free-form day spellings ("Tues.", "MONDAY", "weds")
// to the canonical full weekday name. Unrecognized input is returned
// unchanged; callers must treat a non-canonical result as invalid.
func NormalizeDay(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(raw))
	if day, ok := dayAliases[s]; ok {
		return day
	}
	cleaned := nonWordRe.ReplaceAllString(s, "")
	if day, ok := dayAliases[cleaned]; ok {
		return day
	}
	return raw
}

// NormalizeTime converts the time shapes the AI (and users) actually
// produce into zero-padded 24-hour "HH:MM":
//
//	"9:00"   -> "09:00"     "2:30pm" -> "14:30"
//	"9am"    -> "09:00"     "9.15PM" -> "21:15"
//	"900"    -> "09:00"     "0900"   -> "09:00"
//
// Anything that matches none of the shapes comes back unchanged, so the
// function is idempotent and canonical input round-trips as-is.
func NormalizeTime(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", ":")
	s = strings.TrimSpace(multiSpaces.ReplaceAllString(s, " "))

	if m := hhmmRe.FindStringSubmatch(s); m != nil {
		hh, _ := strconv.Atoi(m[1])
		if m[3] != "" {
			hh = to24Hour(hh, m[3])
		}
		return fmt.Sprintf("%02d:%s", hh, m[2])
	}

	if m := bareAmPmRe.FindStringSubmatch(s); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm := m[2]
		if mm == "" {
			mm = "00"
		}
		hh = to24Hour(hh, m[3])
		return fmt.Sprintf("%02d:%s", hh, mm)
	}

	if clockRe.MatchString(s) {
		cut := len(s) - 2
		hh := s[:cut]
		mm := s[cut:]
		if len(hh) == 1 {
			hh = "0" + hh
		}
		return hh + ":" + mm
	}

	return s
}

func to24Hour(hh int, ampm string) int {
	switch strings.ToUpper(ampm) {
	case "PM":
		if hh < 12 {
			hh += 12
		}
	case "AM":
		if hh == 12 {
			hh = 0
		}
	}
	return hh
}

// ToMinutes parses a canonical "HH:MM" string into minutes since
// midnight. The second return is false for anything non-canonical.
func ToMinutes(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// MinutesToTime formats minutes-since-midnight as zero-padded "HH:MM".
func MinutesToTime(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// ValidTimeString reports whether s is already canonical "HH:MM".
func ValidTimeString(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, ok := ToMinutes(s)
	return ok
}

// SanitizedEvent is a raw event after boundary normalization.
type SanitizedEvent struct {
	Title       string
	Description string
	Day         string
	StartTime   string
	EndTime     string
	Color       string
}

// SanitizeAIEvents normalizes a batch of event-shaped records from the
// AI path: day and time strings are coerced, the title aliases are
// resolved, and entries left without a canonical day or a title are
// dropped. This is the single ingestion point for the duck-typed shape;
// downstream code sees only the sanitized form.
func SanitizeAIEvents(raws []domain.RawEvent) []SanitizedEvent {
	out := make([]SanitizedEvent, 0, len(raws))
	for _, r := range raws {
		ev := SanitizedEvent{
			Title:       strings.TrimSpace(r.DisplayTitle()),
			Description: strings.TrimSpace(r.Description),
			Day:         NormalizeDay(r.Day),
			StartTime:   NormalizeTime(r.StartTime),
			EndTime:     NormalizeTime(r.EndTime),
			Color:       r.Color,
		}
		if ev.Title == "" || !domain.IsCanonicalDay(ev.Day) {
			continue
		}
		out = append(out, ev)
	}
	return out
}
