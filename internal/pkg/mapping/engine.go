// Package mapping turns a physical controller snapshot into console controller input.
// Everything here is pure, the live profile is shared through Store.
package mapping

import "math"

// activation returns the axis magnitude an axis has to exceed to count as pressed,
// rounded to whole axis units.
func activation(cutoff float64) int32 {
	return int32(math.Round(cutoff * AxisMax))
}

func beyond(v int16, limit int32) bool {
	return int32(v) > limit || int32(v) < -limit
}

func pressed(src Source, state PhysicalState, cutoff float64) bool {
	v := src.Resolve(state)
	switch src.Kind {
	case KindAxis:
		return beyond(v, activation(cutoff))
	case KindButton:
		return v != 0
	}
	return false
}

// ResolveButton evaluates both sources of a digital slot and ORs them.
// Axis sources count as pressed when past the analog to digital threshold.
func ResolveButton(slot Slot, state PhysicalState, a2dThreshold float64) bool {
	primary := pressed(slot.Primary, state, a2dThreshold)
	secondary := pressed(slot.Secondary, state, a2dThreshold)
	return primary || secondary
}

func contribution(src Source, state PhysicalState, sign int32) int32 {
	v := int32(src.Resolve(state))
	if src.Kind == KindButton {
		return v * sign * AxisMax
	}
	return v
}

// ResolveAxis sums the four sources of an axis pair. Buttons push the axis to full
// travel in their slot's direction, axes contribute their own signed half.
func ResolveAxis(plus, minus Slot, state PhysicalState) int16 {
	sum := contribution(plus.Primary, state, 1) +
		contribution(plus.Secondary, state, 1) +
		contribution(minus.Primary, state, -1) +
		contribution(minus.Secondary, state, -1)
	return saturate(sum)
}

func saturate(v int32) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// ScaleAndLimit removes the deadzone and stretches the remaining travel up to the outer edge
// to full scale. Overshooting axes are rescaled together so the stick direction survives.
func ScaleAndLimit(x, y int16, deadzone, outerEdge float64) (int16, int16) {
	floor := deadzone * AxisMax
	span := math.Trunc(outerEdge*AxisMax - floor)
	if span == 0 {
		return x, y
	}

	fx := (math.Abs(float64(x)) - floor) / span
	fy := (math.Abs(float64(y)) - floor) / span
	if fx > 1 {
		fy /= fx
		fx = 1
	}
	if fy > 1 {
		fx /= fy
		fy = 1
	}

	return shape(x, fx), shape(y, fy)
}

func shape(v int16, f float64) int16 {
	if v == 0 || f <= 0 {
		return 0
	}
	out := f * AxisMax
	if v < 0 {
		out = -out
	}
	return saturate(int32(out))
}

// ConsoleAnalog scales a full range axis pair to the console range, optionally restricts it
// to the octagonal gate of the N64 stick and flips Y so that up is positive.
func ConsoleAnalog(x, y int16, rng int, clamped bool) (int16, int16) {
	if rng < 0 {
		rng = 0
	}
	if rng > AxisMax {
		rng = AxisMax
	}

	cx := int32(x) * int32(rng) / AxisMax
	cy := int32(y) * int32(rng) / AxisMax
	if clamped {
		cx, cy = octagon(cx, cy, rng)
	}
	return saturate(cx), saturate(-cy)
}

// octagon projects the point onto an octagonal gate. Both limits come from the unclamped
// point, for range 80 they reach from 80 on the axes down to 70 on the diagonals.
func octagon(x, y int32, rng int) (int32, int32) {
	r := float64(rng)
	knee := r * 7 / 8
	limit := func(other int32) int32 {
		c := math.Min(math.Abs(float64(other)), knee)
		return int32(r - math.Round((c-r/80)/7))
	}
	limX, limY := limit(y), limit(x)

	if x > limX {
		y = int32(float64(y) * float64(limX) / float64(x))
		x = limX
	} else if x < -limX {
		y = int32(float64(y) * float64(-limX) / float64(x))
		x = -limX
	}
	if y > limY {
		x = int32(float64(x) * float64(limY) / float64(y))
		y = limY
	} else if y < -limY {
		x = int32(float64(x) * float64(-limY) / float64(y))
		y = -limY
	}
	return x, y
}

// Map produces the console report for one frame.
func Map(state PhysicalState, p Profile) Report {
	var r Report
	for in := A; in < StickUp; in++ {
		r.Buttons[in] = ResolveButton(p.Bindings[in], state, p.Tuning.A2DThreshold)
	}

	x := ResolveAxis(p.Bindings[StickRight], p.Bindings[StickLeft], state)
	y := ResolveAxis(p.Bindings[StickDown], p.Bindings[StickUp], state)
	x, y = ScaleAndLimit(x, y, p.Tuning.Deadzone, p.Tuning.OuterEdge)
	r.X, r.Y = ConsoleAnalog(x, y, p.Tuning.Range, p.Tuning.Clamped)
	return r
}
