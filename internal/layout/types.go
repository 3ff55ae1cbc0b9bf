package layout

import "strings"

// Kind names a container type as stored in the block stream.
type Kind string

const (
	KindFullWidth   Kind = "full_width"
	KindTwoColumn   Kind = "two_column"
	KindThreeColumn Kind = "three_column"
)

// Breakpoint is the viewport size below which columns stack. The empty
// value keeps columns side by side at every width.
type Breakpoint string

const (
	BreakpointNone Breakpoint = ""
	BreakpointSM   Breakpoint = "sm"
	BreakpointMD   Breakpoint = "md"
	BreakpointLG   Breakpoint = "lg"
)

// ParseBreakpoint accepts the stored forms "-sm", "sm", "-" and "none".
func ParseBreakpoint(value string) (Breakpoint, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.TrimPrefix(value, "-")
	switch Breakpoint(value) {
	case BreakpointNone, "none":
		return BreakpointNone, true
	case BreakpointSM, BreakpointMD, BreakpointLG:
		return Breakpoint(value), true
	}
	return BreakpointNone, false
}

func (b Breakpoint) Valid() bool {
	_, ok := ParseBreakpoint(string(b))
	return ok
}

// Infix is the class infix used by the grid CSS, e.g. "-md" in "col-md-4".
func (b Breakpoint) Infix() string {
	if b == BreakpointNone {
		return ""
	}
	return "-" + string(b)
}

// MinWidth is the media query width at which the breakpoint applies.
func (b Breakpoint) MinWidth() string {
	switch b {
	case BreakpointSM:
		return "576px"
	case BreakpointMD:
		return "768px"
	case BreakpointLG:
		return "991px"
	}
	return "0px"
}

// MobileOrder picks which column comes first once columns stack.
type MobileOrder string

const (
	LeftFirst  MobileOrder = "left-first"
	RightFirst MobileOrder = "right-first"
)

func (o MobileOrder) Valid() bool {
	return o == LeftFirst || o == RightFirst
}

// Hide selects columns dropped on small screens.
type Hide string

const (
	HideNone  Hide = "hide-none"
	HideLeft  Hide = "hide-left"
	HideRight Hide = "hide-right"
	HideSides Hide = "hide-sides"
)

const (
	DefaultTwoColumnRatio   Ratio = "6-6"
	DefaultThreeColumnRatio Ratio = "4-4-4"
	DefaultPadding                = 4
	MaxPadding                    = 5
	DefaultTwoBreakpoint          = BreakpointSM
	DefaultThreeBreakpoint        = BreakpointMD
)
