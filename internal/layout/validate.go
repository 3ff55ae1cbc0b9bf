package layout

import (
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var ErrValidation = errors.New("layout: validation failed")

const msgMinOverMax = "Please make sure minimum is less than maximum."

// ValidationError maps node paths such as "body.1.right_min" to errors.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "layout: " + e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Paths returns the failing paths in sorted order.
func (e *ValidationError) Paths() []string {
	out := make([]string, 0, len(e.Fields))
	for path := range e.Fields {
		out = append(out, path)
	}
	slices.Sort(out)
	return out
}

// BlockValidator checks the value of a leaf block. Returned field errors
// are keyed relative to the block.
type BlockValidator func(value json.RawMessage) validation.Errors

// Validator walks layout trees. Containers are checked on their own
// settings; leaves are only checked when a validator is registered for
// their block type.
type Validator struct {
	blocks map[string]BlockValidator
}

type ValidatorOption func(*Validator)

func WithBlockValidator(blockType string, fn BlockValidator) ValidatorOption {
	return func(v *Validator) {
		if fn != nil {
			v.blocks[blockType] = fn
		}
	}
}

// NewValidator registers the link and csv_table block validators plus any
// given options.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{blocks: map[string]BlockValidator{
		BlockLink:     validateLinkBlock,
		BlockCSVTable: validateCSVTable,
	}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = NewValidator()

// Validate checks doc with the default block validators.
func Validate(doc *Document) error {
	return defaultValidator.Validate(doc)
}

func (v *Validator) Validate(doc *Document) error {
	if doc == nil {
		return nil
	}
	errs := validation.Errors{}
	v.stream("body", doc.Body, errs)
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidateNode checks a single node rooted at path.
func (v *Validator) ValidateNode(path string, node Node) error {
	errs := validation.Errors{}
	v.node(path, node, errs)
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func (v *Validator) stream(path string, nodes []Node, errs validation.Errors) {
	for i, node := range nodes {
		v.node(join(path, strconv.Itoa(i)), node, errs)
	}
}

func (v *Validator) node(path string, node Node, errs validation.Errors) {
	switch n := node.(type) {
	case *FullWidth:
		v.stream(join(path, "column"), n.Column, errs)
	case *TwoColumn:
		validateTwoColumn(path, n, errs)
		v.stream(join(path, "left_column"), n.LeftColumn, errs)
		v.stream(join(path, "right_column"), n.RightColumn, errs)
	case *ThreeColumn:
		validateThreeColumn(path, n, errs)
		v.stream(join(path, "left_column"), n.LeftColumn, errs)
		v.stream(join(path, "centre_column"), n.CentreColumn, errs)
		v.stream(join(path, "right_column"), n.RightColumn, errs)
	case *Leaf:
		if check, ok := v.blocks[n.BlockType]; ok {
			for field, err := range check(n.Value) {
				errs[join(path, field)] = err
			}
		}
	}
}

func validateTwoColumn(path string, n *TwoColumn, errs validation.Errors) {
	if _, err := ParseRatio(string(n.Ratio), 2); err != nil {
		errs[join(path, "column_layout")] = validation.NewError("validation_layout_ratio", err.Error())
	}
	validateCommon(path, n.Breakpoint, n.HorizontalPadding, errs)
	validateBounds(path, "left", n.Left, errs)
	validateBounds(path, "right", n.Right, errs)
	if !n.Order.Valid() {
		errs[join(path, "order")] = validation.NewError("validation_in_invalid", "must be left-first or right-first")
	}
	switch n.Hide {
	case HideNone, HideLeft, HideRight:
	default:
		errs[join(path, "hide")] = validation.NewError("validation_in_invalid", "must be hide-none, hide-left or hide-right")
	}
}

func validateThreeColumn(path string, n *ThreeColumn, errs validation.Errors) {
	if _, err := ParseRatio(string(n.Ratio), 3); err != nil {
		errs[join(path, "column_layout")] = validation.NewError("validation_layout_ratio", err.Error())
	}
	validateCommon(path, n.Breakpoint, n.HorizontalPadding, errs)
	validateBounds(path, "outer", n.Outer, errs)
	if n.Hide != HideNone && n.Hide != HideSides {
		errs[join(path, "hide")] = validation.NewError("validation_in_invalid", "must be hide-none or hide-sides")
	}
}

func validateCommon(path string, bp Breakpoint, padding int, errs validation.Errors) {
	if !bp.Valid() {
		errs[join(path, "breakpoint")] = validation.NewError("validation_in_invalid", "must be sm, md, lg or empty")
	}
	if err := validation.Validate(padding, validation.Min(0), validation.Max(MaxPadding)); err != nil {
		errs[join(path, "horizontal_padding")] = err
	}
}

// validateBounds reports negative values and min > max. Only a pair with
// both ends set is compared.
func validateBounds(path, position string, b Bounds, errs validation.Errors) {
	minKey := join(path, position+"_min")
	maxKey := join(path, position+"_max")
	if b.Min != nil {
		if err := validation.Validate(*b.Min, validation.Min(0)); err != nil {
			errs[minKey] = err
		}
	}
	if b.Max != nil {
		if err := validation.Validate(*b.Max, validation.Min(0)); err != nil {
			errs[maxKey] = err
		}
	}
	if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
		err := validation.NewError("validation_layout_bounds", msgMinOverMax)
		errs[minKey] = err
		errs[maxKey] = err
	}
}

func join(path, segment string) string {
	if path == "" {
		return segment
	}
	return strings.Join([]string{path, segment}, ".")
}
