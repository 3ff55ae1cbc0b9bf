package layout

import (
	"context"
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/internal/links"
)

// Block types with registered validators.
const (
	BlockLink     = "link"
	BlockCSVTable = "csv_table"
)

// LinkBlock is a call-to-action button pointing at a page or a URL.
type LinkBlock struct {
	InternalPage *uuid.UUID `json:"internal_page,omitempty"`
	URLLink      string     `json:"url_link,omitempty"`
	ButtonText   string     `json:"button_text"`
	Appearance   string     `json:"appearance,omitempty"`
	Placement    string     `json:"placement,omitempty"`
	Size         string     `json:"size,omitempty"`
	Optional     bool       `json:"optional,omitempty"`
}

// LinkResolver resolves link targets. *links.Resolver satisfies it.
type LinkResolver interface {
	Resolve(ctx context.Context, target links.Target, locale string) (string, error)
}

// DecodeLinkBlock reads a link block value and fills presentation
// defaults.
func DecodeLinkBlock(raw json.RawMessage) (*LinkBlock, error) {
	block := &LinkBlock{}
	if err := unmarshalValue(raw, block); err != nil {
		return nil, err
	}
	if block.Appearance == "" {
		block.Appearance = "btn-primary"
	}
	if block.Placement == "" {
		block.Placement = "end"
	}
	return block, nil
}

func (b *LinkBlock) Spec() links.Spec {
	return links.Spec{
		Target:   links.Target{PageID: b.InternalPage, URL: b.URLLink},
		Required: !b.Optional,
	}
}

// URL resolves the button target in locale. It returns "" with no error
// for an optional block with no target.
func (b *LinkBlock) URL(ctx context.Context, resolver LinkResolver, locale string) (string, error) {
	spec := b.Spec()
	if !spec.HasPage() && !spec.HasURL() {
		return "", nil
	}
	return resolver.Resolve(ctx, spec.Target, locale)
}

func (b *LinkBlock) Validate() validation.Errors {
	errs := validation.Errors{}
	if err := links.Validate(b.Spec()); err != nil {
		if fields, ok := err.(validation.Errors); ok {
			for k, v := range fields {
				errs[k] = v
			}
		}
	}
	if !b.Optional && strings.TrimSpace(b.ButtonText) == "" {
		errs["button_text"] = validation.NewError("validation_required", "cannot be blank")
	}
	return errs
}

func validateLinkBlock(raw json.RawMessage) validation.Errors {
	block, err := DecodeLinkBlock(raw)
	if err != nil {
		return validation.Errors{"value": validation.NewError("validation_block_decode", err.Error())}
	}
	return block.Validate()
}
