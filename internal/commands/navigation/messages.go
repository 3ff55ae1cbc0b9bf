// Package navigationcmd exposes navigation maintenance as go-command
// messages: menu cache invalidation, page fragment purging and tag cleanup.
package navigationcmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	invalidateMenuCacheType = "site.menus.cache.invalidate"
	purgePageFragmentsType  = "site.pages.fragments.purge"
	cleanupTagsType         = "site.tags.cleanup"
)

// InvalidateMenuCache drops cached menu reads and rendered menu fragments.
type InvalidateMenuCache struct{}

func (InvalidateMenuCache) Type() string    { return invalidateMenuCacheType }
func (InvalidateMenuCache) Validate() error { return nil }

// PurgePageFragments drops every fragment rendered for one page.
type PurgePageFragments struct {
	Slug string
}

func (PurgePageFragments) Type() string { return purgePageFragmentsType }

func (m PurgePageFragments) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Slug, validation.Required),
	)
}

// CleanupTags removes the tags of Set no page carries any more. A set
// PageID names a deleted page whose taggings are dropped first.
type CleanupTags struct {
	Set    string
	PageID uuid.UUID
}

func (CleanupTags) Type() string { return cleanupTagsType }

func (m CleanupTags) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Set, validation.Required),
	)
}
