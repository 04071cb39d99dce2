package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is a persisted calendar entry. StartTime and EndTime are
// zero-padded 24-hour "HH:MM" strings; because both are zero-padded,
// lexical comparison matches numeric comparison.
type Event struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"-"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Day         string    `db:"day" json:"day"`
	StartTime   string    `db:"start_time" json:"startTime"`
	EndTime     string    `db:"end_time" json:"endTime"`
	Color       string    `db:"color" json:"color"`
	FromAI      bool      `db:"from_ai" json:"fromAI"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// RawEvent is an event-shaped record as received from outside the trust
// boundary (AI output, bulk import). Field aliases for the title are
// resolved once at ingestion; nothing downstream re-checks them.
type RawEvent struct {
	Day         string `json:"day"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Title       string `json:"title"`
	EventName   string `json:"eventName"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// DisplayTitle resolves the duck-typed title aliases in priority order.
func (r RawEvent) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	if r.EventName != "" {
		return r.EventName
	}
	return r.Name
}
