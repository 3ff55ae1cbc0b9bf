package layout

import "encoding/json"

// Node is either a *Leaf or one of the container types.
type Node interface {
	NodeType() string
}

// Leaf is a content block the layout layer does not look into beyond the
// registered block validators.
type Leaf struct {
	BlockType string
	ID        string
	Value     json.RawMessage
}

func (l *Leaf) NodeType() string { return l.BlockType }

// Bounds are optional pixel limits on a column's width.
type Bounds struct {
	Min *int
	Max *int
}

// FullWidth is a single stream spanning the page.
type FullWidth struct {
	ID     string
	Column []Node
}

func (*FullWidth) NodeType() string { return string(KindFullWidth) }

type TwoColumn struct {
	ID                string
	Ratio             Ratio
	Breakpoint        Breakpoint
	Left              Bounds
	Right             Bounds
	HorizontalPadding int
	VerticalBorder    bool
	Order             MobileOrder
	Hide              Hide
	LeftColumn        []Node
	RightColumn       []Node
}

func (*TwoColumn) NodeType() string { return string(KindTwoColumn) }

// NewTwoColumn returns a two-column container with the editor defaults.
func NewTwoColumn() *TwoColumn {
	return &TwoColumn{
		Ratio:             DefaultTwoColumnRatio,
		Breakpoint:        DefaultTwoBreakpoint,
		HorizontalPadding: DefaultPadding,
		Order:             LeftFirst,
		Hide:              HideNone,
	}
}

// ThreeColumn shares one set of bounds between its outer columns.
type ThreeColumn struct {
	ID                string
	Ratio             Ratio
	Breakpoint        Breakpoint
	Outer             Bounds
	HorizontalPadding int
	VerticalBorder    bool
	Hide              Hide
	LeftColumn        []Node
	CentreColumn      []Node
	RightColumn       []Node
}

func (*ThreeColumn) NodeType() string { return string(KindThreeColumn) }

func NewThreeColumn() *ThreeColumn {
	return &ThreeColumn{
		Ratio:             DefaultThreeColumnRatio,
		Breakpoint:        DefaultThreeBreakpoint,
		HorizontalPadding: DefaultPadding,
		Hide:              HideNone,
	}
}

// Document is a page body: an ordered stream of nodes.
type Document struct {
	Body []Node
}
