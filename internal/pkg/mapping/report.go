package mapping

import (
	"fmt"
	"math"
	"strings"
)

// Report is the logical console controller state of one frame, Y up is positive.
type Report struct {
	Buttons [ButtonCount]bool
	X, Y    int16
}

func (r Report) Pressed(in Input) bool {
	if !in.IsButton() {
		return false
	}
	return r.Buttons[in]
}

// status bits of the controller's joybus poll response
var statusBits = [ButtonCount]struct {
	index int
	mask  byte
}{
	A:      {0, 0x80},
	B:      {0, 0x40},
	Z:      {0, 0x20},
	Start:  {0, 0x10},
	DUp:    {0, 0x08},
	DDown:  {0, 0x04},
	DLeft:  {0, 0x02},
	DRight: {0, 0x01},
	L:      {1, 0x20},
	R:      {1, 0x10},
	CUp:    {1, 0x08},
	CDown:  {1, 0x04},
	CLeft:  {1, 0x02},
	CRight: {1, 0x01},
}

// Bytes packs the report into the four byte controller status.
func (r Report) Bytes() [4]byte {
	var b [4]byte
	for in, p := range r.Buttons {
		if p {
			bit := statusBits[in]
			b[bit.index] |= bit.mask
		}
	}
	b[2] = byte(toInt8(r.X))
	b[3] = byte(toInt8(r.Y))
	return b
}

func toInt8(v int16) int8 {
	switch {
	case v > math.MaxInt8:
		return math.MaxInt8
	case v < math.MinInt8:
		return math.MinInt8
	}
	return int8(v)
}

func (r Report) String() string {
	var pressed []string
	for in, p := range r.Buttons {
		if p {
			pressed = append(pressed, Input(in).String())
		}
	}
	if len(pressed) == 0 {
		pressed = append(pressed, "-")
	}
	return fmt.Sprintf("[%s] x: %4d, y: %4d", strings.Join(pressed, " "), r.X, r.Y)
}
