package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedSource = errors.New("malformed source")

type Kind uint8

const (
	KindUnmapped Kind = iota
	KindButton
	KindAxis
)

func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindAxis:
		return "axis"
	default:
		return "none"
	}
}

// Source identifies one physical signal: nothing, a button or one signed half of an axis.
// The zero value is unmapped.
type Source struct {
	Kind     Kind
	ID       uint8
	Positive bool // axis half, ignored for buttons
}

func Unmapped() Source {
	return Source{}
}

func Button(id uint8) Source {
	return Source{Kind: KindButton, ID: id}
}

func Axis(id uint8, positive bool) Source {
	return Source{Kind: KindAxis, ID: id, Positive: positive}
}

func (s Source) IsMapped() bool {
	return s.Kind != KindUnmapped
}

// Resolve returns the value the source carries in the given state.
// Buttons resolve to 0 or 1, axes to the selected half only (the other half reads as 0).
func (s Source) Resolve(state PhysicalState) int16 {
	switch s.Kind {
	case KindButton:
		if int(s.ID) >= MaxButtons || !state.Buttons[s.ID] {
			return 0
		}
		return 1
	case KindAxis:
		if int(s.ID) >= MaxAxes {
			return 0
		}
		v := state.Axes[s.ID]
		if s.Positive {
			if v < 0 {
				return 0
			}
			return v
		}
		if v > 0 {
			return 0
		}
		return v
	default:
		return 0
	}
}

// packed layout of a source in the controller config file:
// id in the low byte, then the axis, positive and mapped flags
const (
	packedID       = 0x00ff
	packedAxis     = 1 << 8
	packedPositive = 1 << 9
	packedMapped   = 1 << 10
	packedAll      = packedID | packedAxis | packedPositive | packedMapped
)

// Encode packs the source into its persisted integer form.
func (s Source) Encode() int16 {
	switch s.Kind {
	case KindButton:
		return int16(packedMapped | int(s.ID))
	case KindAxis:
		v := packedMapped | packedAxis | int(s.ID)
		if s.Positive {
			v |= packedPositive
		}
		return int16(v)
	default:
		return 0
	}
}

// DecodeSource unpacks a persisted source. Values with the mapped bit cleared are
// unmapped whatever the other bits say. Out of range ids and stray bits return
// ErrMalformedSource together with an unmapped source.
func DecodeSource(v int16) (Source, error) {
	u := uint16(v)
	if u&packedMapped == 0 {
		return Unmapped(), nil
	}
	if u&^packedAll != 0 {
		return Unmapped(), fmt.Errorf("%w: unexpected bits in %d", ErrMalformedSource, v)
	}

	id := u & packedID
	if u&packedAxis != 0 {
		if int(id) >= MaxAxes {
			return Unmapped(), fmt.Errorf("%w: axis id %d outside of 0-%d range", ErrMalformedSource, id, MaxAxes-1)
		}
		return Axis(uint8(id), u&packedPositive != 0), nil
	}
	if int(id) >= MaxButtons {
		return Unmapped(), fmt.Errorf("%w: button id %d outside of 0-%d range", ErrMalformedSource, id, MaxButtons-1)
	}
	return Button(uint8(id)), nil
}

// String returns the textual form used by profile files: "none", "button:3", "axis:1+", "axis:1-".
func (s Source) String() string {
	switch s.Kind {
	case KindButton:
		return fmt.Sprintf("button:%d", s.ID)
	case KindAxis:
		if s.Positive {
			return fmt.Sprintf("axis:%d+", s.ID)
		}
		return fmt.Sprintf("axis:%d-", s.ID)
	default:
		return "none"
	}
}

func ParseSource(text string) (Source, error) {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" || text == "none" {
		return Unmapped(), nil
	}

	fields := strings.SplitN(text, ":", 2)
	if len(fields) != 2 {
		return Unmapped(), fmt.Errorf("%w: %q, expected kind:id", ErrMalformedSource, text)
	}
	kind, raw := fields[0], fields[1]

	switch kind {
	case "button":
		id, err := strconv.Atoi(raw)
		if err != nil {
			return Unmapped(), fmt.Errorf("%w: %q: %v", ErrMalformedSource, text, err)
		}
		if id < 0 || id >= MaxButtons {
			return Unmapped(), fmt.Errorf("%w: button id %d outside of 0-%d range", ErrMalformedSource, id, MaxButtons-1)
		}
		return Button(uint8(id)), nil
	case "axis":
		if len(raw) < 2 {
			return Unmapped(), fmt.Errorf("%w: %q, axis needs a + or - suffix", ErrMalformedSource, text)
		}
		var positive bool
		switch raw[len(raw)-1] {
		case '+':
			positive = true
		case '-':
			positive = false
		default:
			return Unmapped(), fmt.Errorf("%w: %q, axis needs a + or - suffix", ErrMalformedSource, text)
		}
		id, err := strconv.Atoi(raw[:len(raw)-1])
		if err != nil {
			return Unmapped(), fmt.Errorf("%w: %q: %v", ErrMalformedSource, text, err)
		}
		if id < 0 || id >= MaxAxes {
			return Unmapped(), fmt.Errorf("%w: axis id %d outside of 0-%d range", ErrMalformedSource, id, MaxAxes-1)
		}
		return Axis(uint8(id), positive), nil
	default:
		return Unmapped(), fmt.Errorf("%w: unknown kind %q", ErrMalformedSource, kind)
	}
}

// Namer gives human readable names to physical buttons and axes.
type Namer interface {
	ButtonName(id int) string
	AxisName(id int, positive bool) string
}

// Label returns the name of the source as shown in the configuration UI.
func (s Source) Label(n Namer) string {
	switch s.Kind {
	case KindButton:
		return n.ButtonName(int(s.ID))
	case KindAxis:
		return n.AxisName(int(s.ID), s.Positive)
	default:
		return "Not set"
	}
}
