package layout

import (
	"encoding/json"
	"errors"
	"testing"
)

const sampleDocument = `{
  "body": [
    {"type": "heading", "value": {"text": "Welcome"}},
    {"type": "two_column", "id": "intro", "value": {
      "column_layout": "4-8",
      "breakpoint": "-md",
      "left_min": 200,
      "left_max": 300,
      "left_column": [{"type": "rich_text", "value": "<p>left</p>"}],
      "right_column": [
        {"type": "three_column", "value": {"outer_min": 300, "outer_max": 200}}
      ]
    }},
    {"type": "full_width", "value": {"column": []}}
  ]
}`

func TestDecodeBuildsTreeWithDefaults(t *testing.T) {
	doc, err := Decode([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Body) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(doc.Body))
	}
	if leaf, ok := doc.Body[0].(*Leaf); !ok || leaf.BlockType != "heading" {
		t.Fatalf("expected heading leaf, got %#v", doc.Body[0])
	}
	two, ok := doc.Body[1].(*TwoColumn)
	if !ok {
		t.Fatalf("expected two column, got %T", doc.Body[1])
	}
	if two.ID != "intro" || two.Ratio != "4-8" || two.Breakpoint != BreakpointMD {
		t.Fatalf("unexpected two column %+v", two)
	}
	if two.HorizontalPadding != DefaultPadding || two.Order != LeftFirst || two.Hide != HideNone {
		t.Fatalf("defaults not applied: %+v", two)
	}
	three, ok := two.RightColumn[0].(*ThreeColumn)
	if !ok {
		t.Fatalf("expected nested three column, got %T", two.RightColumn[0])
	}
	if three.Ratio != DefaultThreeColumnRatio || three.Breakpoint != BreakpointMD {
		t.Fatalf("three column defaults not applied: %+v", three)
	}

	var verr *ValidationError
	if !errors.As(Validate(doc), &verr) {
		t.Fatalf("expected nested bounds error")
	}
	if verr.Fields["body.1.right_column.0.outer_min"] == nil || verr.Fields["body.1.right_column.0.outer_max"] == nil {
		t.Fatalf("unexpected paths %v", verr.Paths())
	}
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing body":    `{}`,
		"bad breakpoint":  `{"body":[{"type":"two_column","value":{"breakpoint":"xl"}}]}`,
		"unknown field":   `{"body":[{"type":"two_column","value":{"colour":"red"}}]}`,
		"string bound":    `{"body":[{"type":"three_column","value":{"outer_min":"wide"}}]}`,
		"not json":        `{"body":`,
		"block sans type": `{"body":[{"value":{}}]}`,
	}
	for name, input := range cases {
		_, err := Decode([]byte(input))
		if !errors.Is(err, ErrSchemaInvalid) {
			t.Fatalf("%s: expected ErrSchemaInvalid, got %v", name, err)
		}
		var serr *SchemaError
		if !errors.As(err, &serr) || len(serr.Issues) == 0 {
			t.Fatalf("%s: expected issues, got %v", name, err)
		}
	}
}

func TestDocumentRoundTripsThroughDecode(t *testing.T) {
	two := NewTwoColumn()
	two.Breakpoint = BreakpointNone
	two.Left = Bounds{Min: px(0), Max: px(240)}
	two.RightColumn = []Node{&Leaf{BlockType: "rich_text", Value: json.RawMessage(`"x"`)}}

	encoded, err := json.Marshal(&Document{Body: []Node{two}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := doc.Body[0].(*TwoColumn)
	if got.Breakpoint != BreakpointNone || got.Left.Min == nil || *got.Left.Min != 0 || *got.Left.Max != 240 {
		t.Fatalf("unexpected decoded node %+v", got)
	}
	if len(got.RightColumn) != 1 {
		t.Fatalf("expected right column leaf")
	}
}
