package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"service-planner/internal/domain"
	"service-planner/internal/repository"
	"service-planner/internal/schedule"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

const RecurrenceEveryday = "everyday"

// EventService owns the event lifecycle: strict validation and overlap
// checking for manual entries, best-effort coercion for AI batches,
// recurrence expansion, and ICS export.
//
// The overlap check and the insert run inside one ReadCommitted
// transaction but are not serialized across requests: two concurrent
// creates for the same owner can both pass the check before either
// commits. There is no per-owner locking and no exclusion constraint
// in the schema, so such rows land without error.
type EventService struct {
	txManager repository.TxManager
	clock     func() time.Time
}

func NewEventService(txManager repository.TxManager) *EventService {
	return &EventService{
		txManager: txManager,
		clock:     time.Now,
	}
}

type CreateEventInput struct {
	Title       string
	Description string
	Day         string
	StartTime   string
	EndTime     string
	Recurrence  string
	FromAI      bool
}

type UpdateEventInput struct {
	Title       *string
	Description *string
	Day         *string
	StartTime   *string
	EndTime     *string
}

// List returns the owner's events ordered by canonical day (Monday
// first), then start time. An empty day filter returns the whole week.
func (s *EventService) List(ctx context.Context, userID uuid.UUID, day string) ([]domain.Event, error) {
	var events []domain.Event
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		events, err = repos.Events.ListByUser(ctx, userID, day)
		return err
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		di, dj := domain.DayIndex(events[i].Day), domain.DayIndex(events[j].Day)
		if di != dj {
			return di < dj
		}
		return events[i].StartTime < events[j].StartTime
	})
	return events, nil
}

func (s *EventService) Get(ctx context.Context, userID, id uuid.UUID) (domain.Event, error) {
	var event domain.Event
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		event, err = repos.Events.GetByID(ctx, userID, id)
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	})
	return event, err
}

// Create validates and persists a manual event, expanding an "everyday"
// recurrence into seven day-scoped rows. Manual input is never coerced:
// a day or time that is not already canonical is rejected. Each row is
// overlap-checked against the owner's existing events unless the
// AI-origin flag is set.
func (s *EventService) Create(ctx context.Context, userID uuid.UUID, input CreateEventInput) ([]domain.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.StartTime == "" || input.EndTime == "" {
		return nil, ErrInvalidInput
	}
	if !schedule.ValidTimeString(input.StartTime) || !schedule.ValidTimeString(input.EndTime) {
		return nil, ErrInvalidInput
	}
	if input.EndTime <= input.StartTime {
		return nil, ErrInvalidInput
	}

	days := []string{input.Day}
	if input.Recurrence == RecurrenceEveryday {
		days = domain.Days
	} else if !domain.IsCanonicalDay(input.Day) {
		return nil, ErrInvalidInput
	}

	var created []domain.Event
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		color, err := s.resolveColor(ctx, repos, userID, title, "")
		if err != nil {
			return err
		}

		now := s.clock()
		rows := make([]domain.Event, 0, len(days))
		for _, day := range days {
			event := domain.Event{
				ID:          uuid.New(),
				UserID:      userID,
				Title:       title,
				Description: strings.TrimSpace(input.Description),
				Day:         day,
				StartTime:   input.StartTime,
				EndTime:     input.EndTime,
				Color:       color,
				FromAI:      input.FromAI,
				CreatedAt:   now,
			}
			if !event.FromAI {
				overlapping, err := repos.Events.FindOverlapping(ctx, userID, day, event.StartTime, event.EndTime, uuid.Nil)
				if err != nil {
					return err
				}
				if len(overlapping) > 0 {
					return ErrConflict
				}
			}
			rows = append(rows, event)
		}

		if err := repos.Events.InsertMany(ctx, rows); err != nil {
			return err
		}
		created = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateBatch ingests an AI-sourced batch. Every item goes through the
// sanitizer; items that come out without a canonical day, a title, or
// parseable times are dropped rather than failing the batch. Overlap
// validation is skipped for the whole batch.
func (s *EventService) CreateBatch(ctx context.Context, userID uuid.UUID, raws []domain.RawEvent) ([]domain.Event, error) {
	if len(raws) == 0 {
		return nil, ErrInvalidInput
	}

	sanitized := schedule.SanitizeAIEvents(raws)

	var created []domain.Event
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		now := s.clock()
		rows := make([]domain.Event, 0, len(sanitized))
		for _, item := range sanitized {
			if !schedule.ValidTimeString(item.StartTime) || !schedule.ValidTimeString(item.EndTime) {
				continue
			}
			if item.EndTime <= item.StartTime {
				continue
			}
			color, err := s.resolveColor(ctx, repos, userID, item.Title, item.Color)
			if err != nil {
				return err
			}
			rows = append(rows, domain.Event{
				ID:          uuid.New(),
				UserID:      userID,
				Title:       item.Title,
				Description: item.Description,
				Day:         item.Day,
				StartTime:   item.StartTime,
				EndTime:     item.EndTime,
				Color:       color,
				FromAI:      true,
				CreatedAt:   now,
			})
		}
		if err := repos.Events.InsertMany(ctx, rows); err != nil {
			return err
		}
		created = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a partial field replace, re-validates the merged
// record, and re-runs the overlap check excluding the row itself.
func (s *EventService) Update(ctx context.Context, userID, id uuid.UUID, patch UpdateEventInput) (domain.Event, error) {
	var updated domain.Event
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		event, err := repos.Events.GetByID(ctx, userID, id)
		if isNoRows(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if patch.Title != nil {
			event.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			event.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Day != nil {
			event.Day = *patch.Day
		}
		if patch.StartTime != nil {
			event.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			event.EndTime = *patch.EndTime
		}

		if event.Title == "" || !domain.IsCanonicalDay(event.Day) {
			return ErrInvalidInput
		}
		if !schedule.ValidTimeString(event.StartTime) || !schedule.ValidTimeString(event.EndTime) {
			return ErrInvalidInput
		}
		if event.EndTime <= event.StartTime {
			return ErrInvalidInput
		}

		if !event.FromAI {
			overlapping, err := repos.Events.FindOverlapping(ctx, userID, event.Day, event.StartTime, event.EndTime, event.ID)
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				return ErrConflict
			}
		}

		updated, err = repos.Events.Update(ctx, event)
		if isNoRows(err) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return domain.Event{}, err
	}
	return updated, nil
}

func (s *EventService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		deleted, err := repos.Events.Delete(ctx, userID, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
}

// Clear wipes every event the owner has. Returns the number of rows
// removed.
func (s *EventService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	var removed int64
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		removed, err = repos.Events.Clear(ctx, userID)
		return err
	})
	return removed, err
}

// ExportICS renders the owner's weekly calendar as an iCalendar
// document: one weekly-recurring VEVENT per stored event, anchored at
// the next occurrence of the event's weekday.
func (s *EventService) ExportICS(ctx context.Context, userID uuid.UUID) (string, error) {
	events, err := s.List(ctx, userID, "")
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//service-planner//weekly schedule//EN")

	now := s.clock()
	for _, event := range events {
		start, okS := schedule.ToMinutes(event.StartTime)
		end, okE := schedule.ToMinutes(event.EndTime)
		if !okS || !okE {
			continue
		}
		anchor := nextWeekday(now, event.Day)

		ve := cal.AddEvent(fmt.Sprintf("%s@service-planner", event.ID))
		ve.SetDtStampTime(now)
		ve.SetSummary(event.Title)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		ve.SetStartAt(atMinutes(anchor, start))
		ve.SetEndAt(atMinutes(anchor, end))
		ve.AddRrule("FREQ=WEEKLY;BYDAY=" + icalDayCodes[event.Day])
	}

	return cal.Serialize(), nil
}

func (s *EventService) resolveColor(ctx context.Context, repos repository.TxRepositories, userID uuid.UUID, title, provided string) (string, error) {
	if provided != "" {
		return provided, nil
	}
	existing, err := repos.Events.ColorForTitle(ctx, userID, title)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}
	return schedule.ColorForTitle(title), nil
}

var icalDayCodes = map[string]string{
	"Monday":    "MO",
	"Tuesday":   "TU",
	"Wednesday": "WE",
	"Thursday":  "TH",
	"Friday":    "FR",
	"Saturday":  "SA",
	"Sunday":    "SU",
}

var goWeekdays = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
	"Sunday":    time.Sunday,
}

// nextWeekday returns the next local date (today included) falling on
// the given canonical weekday.
func nextWeekday(now time.Time, day string) time.Time {
	local := now.In(time.Local)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	target := goWeekdays[day]
	for date.Weekday() != target {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

func atMinutes(date time.Time, mins int) time.Time {
	return date.Add(time.Duration(mins) * time.Minute)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
