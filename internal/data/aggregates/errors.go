package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// MapError maps store failures into catalog error codes. Errors that already
// carry a catalog code pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var catErr *catalog.Error
	if errors.As(err, &catErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return catalog.Wrap(catalog.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return catalog.Wrap(catalog.CodeConstraintViolation, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return catalog.Wrap(catalog.CodeInternal, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505", "23503": // unique_violation, foreign_key_violation
			return catalog.Wrap(catalog.CodeConstraintViolation, op, err)
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "foreign key constraint"):
		return catalog.Wrap(catalog.CodeConstraintViolation, op, err)
	default:
		return catalog.Wrap(catalog.CodeInternal, op, err)
	}
}
