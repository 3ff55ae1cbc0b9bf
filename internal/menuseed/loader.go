package menuseed

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// DefaultPattern matches the files LoadDir reads.
const DefaultPattern = "*.md"

// LoadDir parses every document under dir matching pattern, walking
// sub-directories. Documents are returned in path order so seeding is
// repeatable.
func LoadDir(ctx context.Context, fsys fs.FS, dir, pattern string) ([]*Document, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if dir == "" {
		dir = "."
	}

	var paths []string
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := path.Match(pattern, path.Base(p))
		if err != nil {
			return err
		}
		if ok {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("menuseed: walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	docs := make([]*Document, 0, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("menuseed: read %s: %w", p, err)
		}
		doc, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("menuseed: %s: %w", p, err)
		}
		doc.Path = p
		docs = append(docs, doc)
	}
	return docs, nil
}
