package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrSlugTaken = errors.New("slug already taken")
	ErrDuplicate = errors.New("duplicate record")
)

const (
	pgUniqueViolation = "23505"
	articleSlugKey    = "articles_slug_key"
)

// mapError переводит ошибки драйвера в ошибки репозитория.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == articleSlugKey {
			return ErrSlugTaken
		}
		return ErrDuplicate
	}
	return err
}
