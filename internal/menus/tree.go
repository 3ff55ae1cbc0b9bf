package menus

import (
	"context"

	"github.com/google/uuid"

	"github.com/enzedonline/enzedonline-sub000/pkg/interfaces"
)

// DefaultMaxDepth bounds sub-menu expansion when no depth is configured.
const DefaultMaxDepth = 4

// Node is a resolved entry with its sub-menu expanded.
type Node struct {
	Entry
	Active   bool   `json:"active"`
	Children []Node `json:"children,omitempty"`
}

type treeBuilder struct {
	menus    MenuLookup
	resolver *Resolver
	rc       interfaces.RequestContext
	maxDepth int
	visited  map[uuid.UUID]bool
}

// renderTree expands sub-menu entries depth first. A menu already on the
// current path renders with no children, which breaks reference cycles;
// siblings may still expand the same menu.
func renderTree(ctx context.Context, root *Menu, lookup MenuLookup, resolver *Resolver, rc interfaces.RequestContext, maxDepth int) []Node {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	b := &treeBuilder{
		menus:    lookup,
		resolver: resolver,
		rc:       rc,
		maxDepth: maxDepth,
		visited:  map[uuid.UUID]bool{},
	}
	return b.expand(ctx, root, 1)
}

func (b *treeBuilder) expand(ctx context.Context, menu *Menu, depth int) []Node {
	if menu == nil || b.visited[menu.ID] {
		return nil
	}
	b.visited[menu.ID] = true
	defer delete(b.visited, menu.ID)

	entries := b.resolver.Resolve(ctx, menu, b.rc)
	if len(entries) == 0 {
		return nil
	}
	nodes := make([]Node, 0, len(entries))
	for _, entry := range entries {
		node := Node{Entry: entry, Active: entry.IsActive(b.rc.Path)}
		if entry.IsSubMenu && depth < b.maxDepth {
			if child, err := b.menus.GetByID(ctx, entry.SubMenuID); err == nil {
				node.Children = b.expand(ctx, child, depth+1)
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}
