package domain

// ScheduleTask is a placement request. It is never persisted; it exists
// only for the duration of one suggestion run.
type ScheduleTask struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DurationMinutes int      `json:"durationMinutes"`
	PreferredDays   []string `json:"preferredDays"`
	Earliest        string   `json:"earliest"`
	Latest          string   `json:"latest"`
	Note            string   `json:"note"`
}

// PlacedEvent is one placement outcome. An unplaced task is a normal
// terminal state, not an error: StartTime and EndTime are nil and
// Unplaced is set, leaving the caller to decide what to do with it.
type PlacedEvent struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Day         string  `json:"day"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	FromAI      bool    `json:"fromAI"`
	Unplaced    bool    `json:"unplaced,omitempty"`
	Note        string  `json:"note,omitempty"`
}
