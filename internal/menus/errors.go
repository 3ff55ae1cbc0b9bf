package menus

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrMenuNotFound      = errors.New("menus: menu not found")
	ErrMenuTitleRequired = errors.New("menus: title is required")
	ErrMenuCodeExists    = errors.New("menus: code already exists")
	ErrValidation        = errors.New("menus: validation failed")
	ErrRepository        = errors.New("menus: repository not configured")
)

// NotFoundError identifies a missing menu or item.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrMenuNotFound && e.Resource == "menu"
}

// ValidationError carries field errors grouped by item collection and
// index, e.g. Fields["link_items"]["0"]["title"].
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "menus: " + e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Field returns the error recorded for field on the item at index of the
// given collection, or nil.
func (e *ValidationError) Field(collection string, index int, field string) error {
	if e == nil {
		return nil
	}
	if collection == "" {
		return e.Fields[field]
	}
	items, ok := e.Fields[collection].(validation.Errors)
	if !ok {
		return nil
	}
	item, ok := items[fmt.Sprint(index)].(validation.Errors)
	if !ok {
		return nil
	}
	return item[field]
}
