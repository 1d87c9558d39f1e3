package mapping

import "math"

const (
	DefaultRange = 80
	MaxRange     = 127 // console axis is a signed byte
)

// Slot holds the two alternative sources bound to one logical input.
type Slot struct {
	Primary   Source
	Secondary Source
}

func (s Slot) IsMapped() bool {
	return s.Primary.IsMapped() || s.Secondary.IsMapped()
}

// Table binds every logical input, it is always fully populated.
type Table [InputCount]Slot

type Tuning struct {
	Deadzone     float64
	OuterEdge    float64
	Range        int
	Clamped      bool
	A2DThreshold float64
}

type Profile struct {
	Tuning   Tuning
	Bindings Table
}

func DefaultTuning() Tuning {
	return Tuning{
		Deadzone:     0.05,
		OuterEdge:    0.95,
		Range:        DefaultRange,
		Clamped:      false,
		A2DThreshold: 0.25,
	}
}

// DefaultTable returns the stock bindings of a standard gamepad layout.
func DefaultTable() Table {
	var t Table
	t[A] = Slot{Button(0), Button(1)}
	t[B] = Slot{Button(2), Button(3)}
	t[Z] = Slot{Primary: Axis(4, true)}
	t[L] = Slot{Primary: Button(9)}
	t[R] = Slot{Axis(5, true), Button(10)}
	t[Start] = Slot{Primary: Button(6)}
	t[DUp] = Slot{Primary: Button(11)}
	t[DDown] = Slot{Primary: Button(12)}
	t[DLeft] = Slot{Primary: Button(13)}
	t[DRight] = Slot{Primary: Button(14)}
	t[CUp] = Slot{Primary: Axis(3, false)}
	t[CDown] = Slot{Primary: Axis(3, true)}
	t[CLeft] = Slot{Primary: Axis(2, false)}
	t[CRight] = Slot{Primary: Axis(2, true)}
	t[StickUp] = Slot{Primary: Axis(1, false)}
	t[StickDown] = Slot{Primary: Axis(1, true)}
	t[StickLeft] = Slot{Primary: Axis(0, false)}
	t[StickRight] = Slot{Primary: Axis(0, true)}
	return t
}

func DefaultProfile() Profile {
	return Profile{
		Tuning:   DefaultTuning(),
		Bindings: DefaultTable(),
	}
}

// Normalize clamps fractions to [0,1] and range to 0..MaxRange, NaN falls back to defaults.
func (t Tuning) Normalize() Tuning {
	def := DefaultTuning()
	t.Deadzone = fraction(t.Deadzone, def.Deadzone)
	t.OuterEdge = fraction(t.OuterEdge, def.OuterEdge)
	t.A2DThreshold = fraction(t.A2DThreshold, def.A2DThreshold)
	switch {
	case t.Range < 0:
		t.Range = 0
	case t.Range > MaxRange:
		t.Range = MaxRange
	}
	return t
}

func fraction(v, def float64) float64 {
	switch {
	case math.IsNaN(v):
		return def
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
