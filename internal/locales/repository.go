package locales

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrLocaleNotFound is matched by NotFoundError.
var ErrLocaleNotFound = errors.New("locales: locale not found")

// Repository persists locales.
type Repository interface {
	Create(ctx context.Context, locale *Locale) (*Locale, error)
	GetByCode(ctx context.Context, code string) (*Locale, error)
	List(ctx context.Context) ([]*Locale, error)
}

// NotFoundError reports a missing locale code.
type NotFoundError struct {
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("locale %q not found", e.Code)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrLocaleNotFound
}

// NewLocaleRepository builds the go-repository-bun base for locales.
func NewLocaleRepository(db *bun.DB) repository.Repository[*Locale] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Locale]{
		NewRecord: func() *Locale { return &Locale{} },
		GetID: func(l *Locale) uuid.UUID {
			return l.ID
		},
		SetID: func(l *Locale, id uuid.UUID) {
			l.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(l *Locale) string {
			return l.Code
		},
	})
}
