package tags

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Type groups tags for filter UIs.
type Type int

const (
	TypeCuisine  Type = 10
	TypeCategory Type = 20
	TypeKeyword  Type = 30
)

func (t Type) Valid() bool {
	switch t {
	case TypeCuisine, TypeCategory, TypeKeyword:
		return true
	}
	return false
}

func (t Type) String() string {
	switch t {
	case TypeCuisine:
		return "cuisine"
	case TypeCategory:
		return "category"
	case TypeKeyword:
		return "keyword"
	}
	return "unknown"
}

// ParseType accepts a type name or its numeric value.
func ParseType(value string) (Type, bool) {
	switch value {
	case "cuisine", "10":
		return TypeCuisine, true
	case "category", "20":
		return TypeCategory, true
	case "keyword", "30":
		return TypeKeyword, true
	}
	return 0, false
}

// Tag is a term within a named set; (Set, Slug) is unique.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Set       string    `bun:"tag_set,notnull" json:"set"`
	Name      string    `bun:"name,notnull" json:"name"`
	Slug      string    `bun:"slug,notnull" json:"slug"`
	Type      Type      `bun:"tag_type,notnull,default:30" json:"type"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Tagging links a tag to a page.
type Tagging struct {
	bun.BaseModel `bun:"table:taggings,alias:tg"`

	TagID  uuid.UUID `bun:"tag_id,pk,type:uuid" json:"tag_id"`
	PageID uuid.UUID `bun:"page_id,pk,type:uuid" json:"page_id"`
}

// TagRef is the name/slug pair rendered in active filter chips.
type TagRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func cloneTag(t *Tag) *Tag {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}
