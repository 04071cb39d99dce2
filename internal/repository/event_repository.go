package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"service-planner/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const eventColumns = "id, user_id, title, description, day, start_time, end_time, color, from_ai, created_at"

// EventRepository persists calendar events. Every query is scoped by
// owner id; there is no way to reach another user's rows through it.
type EventRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, day string) ([]domain.Event, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Event, error)
	InsertMany(ctx context.Context, events []domain.Event) error
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
	FindOverlapping(ctx context.Context, userID uuid.UUID, day, startTime, endTime string, excludeID uuid.UUID) ([]domain.Event, error)
	ColorForTitle(ctx context.Context, userID uuid.UUID, title string) (string, error)
}

type EventPostgresRepository struct {
	execer sqlx.ExtContext
}

func NewEventPostgresRepository(execer sqlx.ExtContext) *EventPostgresRepository {
	return &EventPostgresRepository{execer: execer}
}

func (r *EventPostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, day string) ([]domain.Event, error) {
	builder := psql.
		Select(eventColumns).
		From("planner.events").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("day ASC", "start_time ASC")
	if day != "" {
		builder = builder.Where(sq.Eq{"day": day})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var events []domain.Event
	if err := sqlx.SelectContext(ctx, r.execer, &events, query, args...); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventPostgresRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Event, error) {
	query, args, err := psql.
		Select(eventColumns).
		From("planner.events").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return domain.Event{}, err
	}

	var event domain.Event
	if err := sqlx.GetContext(ctx, r.execer, &event, query, args...); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (r *EventPostgresRepository) InsertMany(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	builder := psql.
		Insert("planner.events").
		Columns("id", "user_id", "title", "description", "day", "start_time", "end_time", "color", "from_ai", "created_at")
	for _, ev := range events {
		builder = builder.Values(
			ev.ID, ev.UserID, ev.Title, ev.Description, ev.Day,
			ev.StartTime, ev.EndTime, ev.Color, ev.FromAI, ev.CreatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.execer.ExecContext(ctx, query, args...)
	return err
}

func (r *EventPostgresRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	query, args, err := psql.
		Update("planner.events").
		SetMap(map[string]any{
			"title":       event.Title,
			"description": event.Description,
			"day":         event.Day,
			"start_time":  event.StartTime,
			"end_time":    event.EndTime,
			"color":       event.Color,
			"from_ai":     event.FromAI,
		}).
		Where(sq.Eq{"id": event.ID, "user_id": event.UserID}).
		Suffix("RETURNING " + eventColumns).
		ToSql()
	if err != nil {
		return domain.Event{}, err
	}

	var updated domain.Event
	if err := sqlx.GetContext(ctx, r.execer, &updated, query, args...); err != nil {
		return domain.Event{}, err
	}
	return updated, nil
}

func (r *EventPostgresRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query, args, err := psql.
		Delete("planner.events").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, err
	}

	result, err := r.execer.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *EventPostgresRepository) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	query, args, err := psql.
		Delete("planner.events").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := r.execer.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// FindOverlapping applies the half-open interval test in SQL: rows with
// start_time < endTime AND end_time > startTime on the same owner/day.
// Zero-padded HH:MM text compares correctly with plain string operators.
func (r *EventPostgresRepository) FindOverlapping(ctx context.Context, userID uuid.UUID, day, startTime, endTime string, excludeID uuid.UUID) ([]domain.Event, error) {
	builder := psql.
		Select(eventColumns).
		From("planner.events").
		Where(sq.Eq{"user_id": userID, "day": day}).
		Where(sq.Lt{"start_time": endTime}).
		Where(sq.Gt{"end_time": startTime})
	if excludeID != uuid.Nil {
		builder = builder.Where(sq.NotEq{"id": excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var events []domain.Event
	if err := sqlx.SelectContext(ctx, r.execer, &events, query, args...); err != nil {
		return nil, err
	}
	return events, nil
}

// ColorForTitle returns the color of the owner's most recent event with
// the same title, so repeated titles keep rendering the same swatch.
// An empty string means no prior color exists.
func (r *EventPostgresRepository) ColorForTitle(ctx context.Context, userID uuid.UUID, title string) (string, error) {
	query, args, err := psql.
		Select("color").
		From("planner.events").
		Where(sq.Eq{"user_id": userID, "title": title}).
		Where(sq.NotEq{"color": ""}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", err
	}

	var color string
	if err := sqlx.GetContext(ctx, r.execer, &color, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return color, nil
}
