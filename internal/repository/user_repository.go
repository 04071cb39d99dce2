package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"service-planner/internal/domain"
)

const userColumns = "id, mobile, name, password_hash, is_verified, otp, otp_expires_at, created_at"

type UserRepository interface {
	Insert(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByName(ctx context.Context, name string) (domain.User, error)
	GetByMobile(ctx context.Context, mobile string) (domain.User, error)
	ExistsByNameOrMobile(ctx context.Context, name, mobile string) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, mobile string) (domain.User, error)
	UpdatePasswordByID(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordByMobile(ctx context.Context, mobile, passwordHash string) error
	SetOTP(ctx context.Context, mobile, otp string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, mobile string) error
	PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

type UserPostgresRepository struct {
	execer sqlx.ExtContext
}

func NewUserPostgresRepository(execer sqlx.ExtContext) *UserPostgresRepository {
	return &UserPostgresRepository{execer: execer}
}

func (r *UserPostgresRepository) Insert(ctx context.Context, user domain.User) error {
	query, args, err := psql.
		Insert("planner.users").
		Columns("id", "mobile", "name", "password_hash", "is_verified", "created_at").
		Values(user.ID, user.Mobile, user.Name, user.PasswordHash, user.IsVerified, user.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.execer.ExecContext(ctx, query, args...)
	return err
}

func (r *UserPostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return r.getWhere(ctx, sq.Eq{"id": id})
}

func (r *UserPostgresRepository) GetByName(ctx context.Context, name string) (domain.User, error) {
	return r.getWhere(ctx, sq.Eq{"name": name})
}

func (r *UserPostgresRepository) GetByMobile(ctx context.Context, mobile string) (domain.User, error) {
	return r.getWhere(ctx, sq.Eq{"mobile": mobile})
}

func (r *UserPostgresRepository) getWhere(ctx context.Context, pred any) (domain.User, error) {
	query, args, err := psql.
		Select(userColumns).
		From("planner.users").
		Where(pred).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	var user domain.User
	if err := sqlx.GetContext(ctx, r.execer, &user, query, args...); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserPostgresRepository) ExistsByNameOrMobile(ctx context.Context, name, mobile string) (bool, error) {
	query, args, err := psql.
		Select("1").
		From("planner.users").
		Where(sq.Or{sq.Eq{"name": name}, sq.Eq{"mobile": mobile}}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = sqlx.GetContext(ctx, r.execer, &one, query, args...)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *UserPostgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, mobile string) (domain.User, error) {
	query, args, err := psql.
		Update("planner.users").
		SetMap(map[string]any{"name": name, "mobile": mobile}).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	var user domain.User
	if err := sqlx.GetContext(ctx, r.execer, &user, query, args...); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserPostgresRepository) UpdatePasswordByID(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updatePassword(ctx, sq.Eq{"id": id}, passwordHash)
}

func (r *UserPostgresRepository) UpdatePasswordByMobile(ctx context.Context, mobile, passwordHash string) error {
	return r.updatePassword(ctx, sq.Eq{"mobile": mobile}, passwordHash)
}

func (r *UserPostgresRepository) updatePassword(ctx context.Context, pred any, passwordHash string) error {
	query, args, err := psql.
		Update("planner.users").
		Set("password_hash", passwordHash).
		Where(pred).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.execer.ExecContext(ctx, query, args...)
	return err
}

func (r *UserPostgresRepository) SetOTP(ctx context.Context, mobile, otp string, expiresAt time.Time) error {
	query, args, err := psql.
		Update("planner.users").
		SetMap(map[string]any{"otp": otp, "otp_expires_at": expiresAt}).
		Where(sq.Eq{"mobile": mobile}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.execer.ExecContext(ctx, query, args...)
	return err
}

func (r *UserPostgresRepository) MarkVerified(ctx context.Context, mobile string) error {
	query, args, err := psql.
		Update("planner.users").
		SetMap(map[string]any{"is_verified": true, "otp": nil, "otp_expires_at": nil}).
		Where(sq.Eq{"mobile": mobile}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.execer.ExecContext(ctx, query, args...)
	return err
}

// PurgeExpiredOTPs clears codes past their expiry. Invoked by the cron
// job wired up in internal/app.
func (r *UserPostgresRepository) PurgeExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := psql.
		Update("planner.users").
		SetMap(map[string]any{"otp": nil, "otp_expires_at": nil}).
		Where(sq.NotEq{"otp": nil}).
		Where(sq.LtOrEq{"otp_expires_at": now}).
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

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
