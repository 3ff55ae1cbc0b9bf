package layout

import (
	"encoding/json"
	"fmt"
)

type rawBlock struct {
	Type  string          `json:"type"`
	ID    string          `json:"id,omitempty"`
	Value json.RawMessage `json:"value"`
}

type rawDocument struct {
	Body []rawBlock `json:"body"`
}

type fullWidthValue struct {
	Column []rawBlock `json:"column"`
}

type twoColumnValue struct {
	ColumnLayout      *string    `json:"column_layout,omitempty"`
	Breakpoint        *string    `json:"breakpoint,omitempty"`
	LeftMin           *int       `json:"left_min,omitempty"`
	LeftMax           *int       `json:"left_max,omitempty"`
	RightMin          *int       `json:"right_min,omitempty"`
	RightMax          *int       `json:"right_max,omitempty"`
	HorizontalPadding *int       `json:"horizontal_padding,omitempty"`
	VerticalBorder    bool       `json:"vertical_border"`
	Order             string     `json:"order,omitempty"`
	Hide              string     `json:"hide,omitempty"`
	LeftColumn        []rawBlock `json:"left_column"`
	RightColumn       []rawBlock `json:"right_column"`
}

type threeColumnValue struct {
	ColumnLayout      *string    `json:"column_layout,omitempty"`
	Breakpoint        *string    `json:"breakpoint,omitempty"`
	OuterMin          *int       `json:"outer_min,omitempty"`
	OuterMax          *int       `json:"outer_max,omitempty"`
	HorizontalPadding *int       `json:"horizontal_padding,omitempty"`
	VerticalBorder    bool       `json:"vertical_border"`
	Hide              string     `json:"hide,omitempty"`
	LeftColumn        []rawBlock `json:"left_column"`
	CentreColumn      []rawBlock `json:"centre_column"`
	RightColumn       []rawBlock `json:"right_column"`
}

// buildStream converts wire blocks into nodes, filling container defaults
// for absent fields. Values are kept as given so Validate can report them.
func buildStream(blocks []rawBlock) ([]Node, error) {
	nodes := make([]Node, 0, len(blocks))
	for i, block := range blocks {
		node, err := buildNode(block)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func buildNode(block rawBlock) (Node, error) {
	switch Kind(block.Type) {
	case KindFullWidth:
		var v fullWidthValue
		if err := unmarshalValue(block.Value, &v); err != nil {
			return nil, err
		}
		column, err := buildStream(v.Column)
		if err != nil {
			return nil, err
		}
		return &FullWidth{ID: block.ID, Column: column}, nil

	case KindTwoColumn:
		var v twoColumnValue
		if err := unmarshalValue(block.Value, &v); err != nil {
			return nil, err
		}
		node := NewTwoColumn()
		node.ID = block.ID
		if v.ColumnLayout != nil {
			node.Ratio = Ratio(*v.ColumnLayout)
		}
		if v.Breakpoint != nil {
			node.Breakpoint = normalizeBreakpoint(*v.Breakpoint)
		}
		node.Left = Bounds{Min: v.LeftMin, Max: v.LeftMax}
		node.Right = Bounds{Min: v.RightMin, Max: v.RightMax}
		if v.HorizontalPadding != nil {
			node.HorizontalPadding = *v.HorizontalPadding
		}
		node.VerticalBorder = v.VerticalBorder
		if v.Order != "" {
			node.Order = MobileOrder(v.Order)
		}
		if v.Hide != "" {
			node.Hide = Hide(v.Hide)
		}
		var err error
		if node.LeftColumn, err = buildStream(v.LeftColumn); err != nil {
			return nil, err
		}
		if node.RightColumn, err = buildStream(v.RightColumn); err != nil {
			return nil, err
		}
		return node, nil

	case KindThreeColumn:
		var v threeColumnValue
		if err := unmarshalValue(block.Value, &v); err != nil {
			return nil, err
		}
		node := NewThreeColumn()
		node.ID = block.ID
		if v.ColumnLayout != nil {
			node.Ratio = Ratio(*v.ColumnLayout)
		}
		if v.Breakpoint != nil {
			node.Breakpoint = normalizeBreakpoint(*v.Breakpoint)
		}
		node.Outer = Bounds{Min: v.OuterMin, Max: v.OuterMax}
		if v.HorizontalPadding != nil {
			node.HorizontalPadding = *v.HorizontalPadding
		}
		node.VerticalBorder = v.VerticalBorder
		if v.Hide != "" {
			node.Hide = Hide(v.Hide)
		}
		var err error
		if node.LeftColumn, err = buildStream(v.LeftColumn); err != nil {
			return nil, err
		}
		if node.CentreColumn, err = buildStream(v.CentreColumn); err != nil {
			return nil, err
		}
		if node.RightColumn, err = buildStream(v.RightColumn); err != nil {
			return nil, err
		}
		return node, nil
	}
	return &Leaf{BlockType: block.Type, ID: block.ID, Value: block.Value}, nil
}

func unmarshalValue(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// normalizeBreakpoint keeps unknown values so validation can flag them.
func normalizeBreakpoint(value string) Breakpoint {
	if b, ok := ParseBreakpoint(value); ok {
		return b
	}
	return Breakpoint(value)
}

// MarshalJSON writes the document in the stream form Decode reads.
func (d *Document) MarshalJSON() ([]byte, error) {
	body, err := encodeStream(d.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rawDocument{Body: body})
}

func encodeStream(nodes []Node) ([]rawBlock, error) {
	out := make([]rawBlock, 0, len(nodes))
	for _, node := range nodes {
		block, err := encodeNode(node)
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}
	return out, nil
}

func encodeNode(node Node) (rawBlock, error) {
	var (
		id    string
		value any
	)
	switch n := node.(type) {
	case *Leaf:
		return rawBlock{Type: n.BlockType, ID: n.ID, Value: n.Value}, nil
	case *FullWidth:
		column, err := encodeStream(n.Column)
		if err != nil {
			return rawBlock{}, err
		}
		id, value = n.ID, fullWidthValue{Column: column}
	case *TwoColumn:
		left, err := encodeStream(n.LeftColumn)
		if err != nil {
			return rawBlock{}, err
		}
		right, err := encodeStream(n.RightColumn)
		if err != nil {
			return rawBlock{}, err
		}
		ratio, bp, padding := string(n.Ratio), breakpointValue(n.Breakpoint), n.HorizontalPadding
		id, value = n.ID, twoColumnValue{
			ColumnLayout:      &ratio,
			Breakpoint:        &bp,
			LeftMin:           n.Left.Min,
			LeftMax:           n.Left.Max,
			RightMin:          n.Right.Min,
			RightMax:          n.Right.Max,
			HorizontalPadding: &padding,
			VerticalBorder:    n.VerticalBorder,
			Order:             string(n.Order),
			Hide:              string(n.Hide),
			LeftColumn:        left,
			RightColumn:       right,
		}
	case *ThreeColumn:
		left, err := encodeStream(n.LeftColumn)
		if err != nil {
			return rawBlock{}, err
		}
		centre, err := encodeStream(n.CentreColumn)
		if err != nil {
			return rawBlock{}, err
		}
		right, err := encodeStream(n.RightColumn)
		if err != nil {
			return rawBlock{}, err
		}
		ratio, bp, padding := string(n.Ratio), breakpointValue(n.Breakpoint), n.HorizontalPadding
		id, value = n.ID, threeColumnValue{
			ColumnLayout:      &ratio,
			Breakpoint:        &bp,
			OuterMin:          n.Outer.Min,
			OuterMax:          n.Outer.Max,
			HorizontalPadding: &padding,
			VerticalBorder:    n.VerticalBorder,
			Hide:              string(n.Hide),
			LeftColumn:        left,
			CentreColumn:      centre,
			RightColumn:       right,
		}
	default:
		return rawBlock{}, fmt.Errorf("layout: cannot encode node %T", node)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return rawBlock{}, err
	}
	return rawBlock{Type: node.NodeType(), ID: id, Value: raw}, nil
}

func breakpointValue(b Breakpoint) string {
	if b == BreakpointNone {
		return "-"
	}
	return "-" + string(b)
}
