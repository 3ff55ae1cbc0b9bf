package locales

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Locale is a language the site publishes in.
type Locale struct {
	bun.BaseModel `bun:"table:locales,alias:l"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Code      string    `bun:"code,notnull,unique" json:"code"`
	Display   string    `bun:"display_name,notnull" json:"display_name"`
	IsActive  bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	IsDefault bool      `bun:"is_default,notnull,default:false" json:"is_default"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
