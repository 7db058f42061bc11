package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !catalog.IsCode(err, catalog.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", catalog.CodeOf(err), err)
	}
}

func TestMapError_TranslatedConstraint(t *testing.T) {
	for _, in := range []error{gorm.ErrDuplicatedKey, gorm.ErrForeignKeyViolated} {
		err := MapError("op", fmt.Errorf("insert: %w", in))
		if !catalog.IsCode(err, catalog.CodeConstraintViolation) {
			t.Fatalf("expected constraint_violation for %v, got %q", in, catalog.CodeOf(err))
		}
	}
}

func TestMapError_PgCodes(t *testing.T) {
	for _, code := range []string{"23505", "23503"} {
		err := MapError("op", &pgconn.PgError{Code: code, Message: "boom"})
		if !catalog.IsCode(err, catalog.CodeConstraintViolation) {
			t.Fatalf("expected constraint_violation for %s, got %q", code, catalog.CodeOf(err))
		}
	}
}

func TestMapError_SQLiteMessage(t *testing.T) {
	err := MapError("op", errors.New("FOREIGN KEY constraint failed"))
	if !catalog.IsCode(err, catalog.CodeConstraintViolation) {
		t.Fatalf("expected constraint_violation, got %q", catalog.CodeOf(err))
	}
}

func TestMapError_PassthroughCatalogError(t *testing.T) {
	in := catalog.NotFound("op", "menu not found")
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough catalog error")
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil must map to nil")
	}
}

func TestMapError_DefaultInternal(t *testing.T) {
	err := MapError("op", errors.New("disk on fire"))
	if !catalog.IsCode(err, catalog.CodeInternal) {
		t.Fatalf("expected internal, got %q", catalog.CodeOf(err))
	}
}
