package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type TxRepositories struct {
	Events EventRepository
	Users  UserRepository
}

type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

type PostgresTxManager struct {
	db *sqlx.DB
}

func NewPostgresTxManager(db *sqlx.DB) *PostgresTxManager {
	return &PostgresTxManager{db: db}
}

func (m *PostgresTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	repos := TxRepositories{
		Events: NewEventPostgresRepository(tx),
		Users:  NewUserPostgresRepository(tx),
	}

	if err := fn(ctx, repos); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	return tx.Commit()
}
