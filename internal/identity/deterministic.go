// Package identity derives stable ids for records that are seeded from
// configuration or front-matter documents, so re-running a seed updates rows
// instead of duplicating them.
package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "site:"

// UUID hashes key into a UUID. Empty keys map to uuid.Nil.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || id == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return id
}

func MenuID(code string) uuid.UUID {
	return UUID(namespace + "menu:" + normalize(code))
}

// MenuItemID keys an item by its menu, collection kind and position.
func MenuItemID(menuID uuid.UUID, kind string, position int) uuid.UUID {
	return UUID(namespace + "menu_item:" + menuID.String() + ":" + normalize(kind) + ":" + strconv.Itoa(position))
}

func PageID(slug string) uuid.UUID {
	return UUID(namespace + "page:" + normalize(slug))
}

func LocaleID(code string) uuid.UUID {
	return UUID(namespace + "locale:" + normalize(code))
}

func TagID(set, slug string) uuid.UUID {
	return UUID(namespace + "tag:" + normalize(set) + ":" + strings.TrimSpace(slug))
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
