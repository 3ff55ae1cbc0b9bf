package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// GridUnits is the number of grid units a multi-column ratio must fill.
const GridUnits = 12

var ErrRatioInvalid = errors.New("layout: invalid column ratio")

// Ratio is a column layout such as "4-8", "auto-" or "3-6-3".
type Ratio string

// Column is one parsed ratio slot. Auto columns size to their content;
// a column with neither Auto nor Span fills the remaining width.
type Column struct {
	Auto bool
	Span int
}

// ParseRatio parses value for a container with arity columns. Numeric
// ratios must sum to GridUnits and three-column ratios must be symmetric.
// Exactly one slot may be "auto", in which case the others are empty; a
// three-column auto ratio must be "-auto-".
func ParseRatio(value string, arity int) (Ratio, error) {
	r := Ratio(strings.ToLower(strings.TrimSpace(value)))
	if _, err := r.columns(arity); err != nil {
		return "", err
	}
	return r, nil
}

// Columns parses the ratio using its own slot count.
func (r Ratio) Columns() ([]Column, error) {
	return r.columns(strings.Count(string(r), "-") + 1)
}

// Units returns each column's span, 0 for auto and fill columns, or nil
// when the ratio does not parse.
func (r Ratio) Units() []int {
	cols, err := r.Columns()
	if err != nil {
		return nil
	}
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = c.Span
	}
	return out
}

// HasAuto reports whether any column sizes to its content.
func (r Ratio) HasAuto() bool {
	cols, err := r.Columns()
	if err != nil {
		return false
	}
	for _, c := range cols {
		if c.Auto {
			return true
		}
	}
	return false
}

func (r Ratio) columns(arity int) ([]Column, error) {
	parts := strings.Split(string(r), "-")
	if arity < 2 || len(parts) != arity {
		return nil, fmt.Errorf("%w: %q needs %d columns", ErrRatioInvalid, r, arity)
	}

	cols := make([]Column, arity)
	autoAt := -1
	for i, part := range parts {
		if part == "auto" {
			if autoAt >= 0 {
				return nil, fmt.Errorf("%w: %q has more than one auto column", ErrRatioInvalid, r)
			}
			autoAt = i
			cols[i].Auto = true
		}
	}
	if autoAt >= 0 {
		for i, part := range parts {
			if i != autoAt && part != "" {
				return nil, fmt.Errorf("%w: %q mixes auto and fixed columns", ErrRatioInvalid, r)
			}
		}
		if arity == 3 && autoAt != 1 {
			return nil, fmt.Errorf("%w: %q only the centre column can be auto", ErrRatioInvalid, r)
		}
		return cols, nil
	}

	sum := 0
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %q", ErrRatioInvalid, r)
		}
		cols[i].Span = n
		sum += n
	}
	if sum != GridUnits {
		return nil, fmt.Errorf("%w: %q sums to %d, want %d", ErrRatioInvalid, r, sum, GridUnits)
	}
	if arity == 3 && cols[0].Span != cols[2].Span {
		return nil, fmt.Errorf("%w: %q outer columns differ", ErrRatioInvalid, r)
	}
	return cols, nil
}
