package mapping

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stateWith(buttons []int, axes map[int]int16) PhysicalState {
	var s PhysicalState
	for _, b := range buttons {
		s.Buttons[b] = true
	}
	for id, v := range axes {
		s.Axes[id] = v
	}
	return s
}

func TestResolve(t *testing.T) {
	for i, tc := range []struct {
		source   Source
		state    PhysicalState
		expected int16
	}{
		{source: Unmapped(), state: stateWith([]int{0, 1, 2}, map[int]int16{0: 32767}), expected: 0},
		{source: Button(3), state: stateWith(nil, nil), expected: 0},
		{source: Button(3), state: stateWith([]int{3}, nil), expected: 1},
		{source: Button(127), state: stateWith([]int{127}, nil), expected: 1},
		{source: Button(200), state: stateWith(nil, nil), expected: 0},
		{source: Axis(0, true), state: stateWith(nil, map[int]int16{0: 5000}), expected: 5000},
		{source: Axis(0, true), state: stateWith(nil, map[int]int16{0: -5000}), expected: 0},
		{source: Axis(0, false), state: stateWith(nil, map[int]int16{0: -5000}), expected: -5000},
		{source: Axis(0, false), state: stateWith(nil, map[int]int16{0: 5000}), expected: 0},
		{source: Axis(7, false), state: stateWith(nil, map[int]int16{7: -32767}), expected: -32767},
		{source: Axis(9, true), state: stateWith(nil, nil), expected: 0},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.source.Resolve(tc.state))
		})
	}
}

func TestResolveButton(t *testing.T) {
	both := Slot{Button(0), Button(1)}
	mixed := Slot{Button(0), Axis(4, true)}

	for i, tc := range []struct {
		slot     Slot
		state    PhysicalState
		expected bool
	}{
		{slot: both, state: stateWith(nil, nil), expected: false},
		{slot: both, state: stateWith([]int{0}, nil), expected: true},
		{slot: both, state: stateWith([]int{1}, nil), expected: true},
		{slot: both, state: stateWith([]int{0, 1}, nil), expected: true},
		{slot: both, state: stateWith([]int{2}, nil), expected: false},
		// secondary axis is thresholded like a primary one
		{slot: mixed, state: stateWith(nil, map[int]int16{4: 1000}), expected: false},
		{slot: mixed, state: stateWith(nil, map[int]int16{4: 20000}), expected: true},
		{slot: Slot{}, state: stateWith([]int{0, 1}, map[int]int16{0: 32767}), expected: false},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, ResolveButton(tc.slot, tc.state, 0.25))
		})
	}
}

func TestResolveButtonThreshold(t *testing.T) {
	positive := Slot{Primary: Axis(0, true)}
	negative := Slot{Primary: Axis(0, false)}

	for i, tc := range []struct {
		slot     Slot
		value    int16
		expected bool
	}{
		{slot: positive, value: 8191, expected: false},
		{slot: positive, value: 8192, expected: false},
		{slot: positive, value: 8193, expected: true},
		{slot: positive, value: -20000, expected: false},
		{slot: negative, value: -8192, expected: false},
		{slot: negative, value: -8193, expected: true},
		{slot: negative, value: 20000, expected: false},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			state := stateWith(nil, map[int]int16{0: tc.value})
			assert.Equal(t, tc.expected, ResolveButton(tc.slot, state, 0.25))
		})
	}
}

func TestResolveAxis(t *testing.T) {
	for i, tc := range []struct {
		plus, minus Slot
		state       PhysicalState
		expected    int16
	}{
		{plus: Slot{Primary: Button(0)}, minus: Slot{Primary: Button(1)}, state: stateWith([]int{0}, nil), expected: 32767},
		{plus: Slot{Primary: Button(0)}, minus: Slot{Primary: Button(1)}, state: stateWith([]int{1}, nil), expected: -32767},
		{plus: Slot{Primary: Button(0)}, minus: Slot{Primary: Button(1)}, state: stateWith([]int{0, 1}, nil), expected: 0},
		{plus: Slot{Primary: Axis(0, true)}, minus: Slot{Primary: Axis(0, false)}, state: stateWith(nil, map[int]int16{0: 1234}), expected: 1234},
		{plus: Slot{Primary: Axis(0, true)}, minus: Slot{Primary: Axis(0, false)}, state: stateWith(nil, map[int]int16{0: -1234}), expected: -1234},
		{
			plus:     Slot{Axis(0, true), Button(0)},
			minus:    Slot{Primary: Axis(0, false)},
			state:    stateWith([]int{0}, map[int]int16{0: 20000}),
			expected: 32767,
		},
		{
			plus:     Slot{Primary: Axis(0, true)},
			minus:    Slot{Axis(1, false), Button(1)},
			state:    stateWith([]int{1}, map[int]int16{1: -32767}),
			expected: -32768,
		},
		{plus: Slot{}, minus: Slot{}, state: stateWith([]int{0, 1}, map[int]int16{0: 32767}), expected: 0},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, ResolveAxis(tc.plus, tc.minus, tc.state))
		})
	}
}

func TestScaleAndLimit(t *testing.T) {
	for i, tc := range []struct {
		x, y                int16
		deadzone, outerEdge float64
		ex, ey              int16
	}{
		{x: 0, y: 0, deadzone: 0.05, outerEdge: 0.95, ex: 0, ey: 0},
		{x: 0, y: 0, deadzone: 0, outerEdge: 1, ex: 0, ey: 0},
		{x: 0, y: 0, deadzone: 0.5, outerEdge: 0.2, ex: 0, ey: 0},
		{x: 32767, y: 32767, deadzone: 0.05, outerEdge: 0.95, ex: 32767, ey: 32767},
		{x: -32767, y: 0, deadzone: 0.05, outerEdge: 0.95, ex: -32767, ey: 0},
		{x: 1000, y: -1000, deadzone: 0.05, outerEdge: 0.95, ex: 0, ey: 0},
		{x: 16383, y: 0, deadzone: 0.05, outerEdge: 0.95, ex: 16383, ey: 0},
		// zero span leaves the input untouched
		{x: 1234, y: -4321, deadzone: 0.5, outerEdge: 0.5, ex: 1234, ey: -4321},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			x, y := ScaleAndLimit(tc.x, tc.y, tc.deadzone, tc.outerEdge)
			assert.Equal(t, tc.ex, x)
			assert.Equal(t, tc.ey, y)
		})
	}
}

func TestScaleAndLimitNegativeSpan(t *testing.T) {
	for _, v := range []int16{-32767, -20000, -100, 0, 100, 20000, 32767} {
		x, y := ScaleAndLimit(v, v, 0.9, 0.1)
		assert.True(t, x >= -AxisMax && x <= AxisMax)
		assert.True(t, y >= -AxisMax && y <= AxisMax)
	}
}

func abs32(v int16) int32 {
	if v < 0 {
		return -int32(v)
	}
	return int32(v)
}

func TestScaleAndLimitMonotonic(t *testing.T) {
	for i, dir := range []struct{ dx, dy int32 }{{1, 0}, {0, -1}, {1, 1}, {-1, 1}} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			var previous int32
			for m := int32(0); m <= AxisMax; m += 97 {
				x, y := ScaleAndLimit(int16(dir.dx*m), int16(dir.dy*m), 0.05, 0.95)
				magnitude := abs32(x) + abs32(y)
				assert.GreaterOrEqual(t, magnitude, previous, "magnitude %d", m)
				previous = magnitude
			}
		})
	}
}

func TestConsoleAnalog(t *testing.T) {
	for i, tc := range []struct {
		x, y    int16
		rng     int
		clamped bool
		ex, ey  int16
	}{
		{x: 0, y: 0, rng: 80, clamped: false, ex: 0, ey: 0},
		{x: 0, y: 0, rng: 80, clamped: true, ex: 0, ey: 0},
		{x: 32767, y: 32767, rng: 80, clamped: false, ex: 80, ey: -80},
		{x: -32767, y: -32767, rng: 80, clamped: false, ex: -80, ey: 80},
		{x: 32767, y: 0, rng: 127, clamped: false, ex: 127, ey: 0},
		{x: 32767, y: 32767, rng: 0, clamped: false, ex: 0, ey: 0},
		{x: 32767, y: 32767, rng: -5, clamped: true, ex: 0, ey: 0},
		// the octagon keeps the axes at full range and cuts the diagonals to 70
		{x: 32767, y: 0, rng: 80, clamped: true, ex: 80, ey: 0},
		{x: 0, y: -32767, rng: 80, clamped: true, ex: 0, ey: 80},
		{x: 32767, y: 32767, rng: 80, clamped: true, ex: 70, ey: -70},
		{x: -32767, y: 32767, rng: 80, clamped: true, ex: -70, ey: -70},
		{x: 24576, y: 24576, rng: 80, clamped: true, ex: 60, ey: -60},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			x, y := ConsoleAnalog(tc.x, tc.y, tc.rng, tc.clamped)
			assert.Equal(t, tc.ex, x)
			assert.Equal(t, tc.ey, y)
		})
	}
}

func TestConsoleAnalogClampBounds(t *testing.T) {
	for x := int32(-AxisMax); x <= AxisMax; x += 2048 {
		for y := int32(-AxisMax); y <= AxisMax; y += 2048 {
			cx, cy := ConsoleAnalog(int16(x), int16(y), DefaultRange, true)
			assert.LessOrEqual(t, abs32(cx), int32(DefaultRange))
			assert.LessOrEqual(t, abs32(cy), int32(DefaultRange))
			assert.LessOrEqual(t, abs32(cx)+abs32(cy), int32(2*70))
		}
	}
}

func TestMap(t *testing.T) {
	p := DefaultProfile()

	t.Run("rest", func(t *testing.T) {
		r := Map(PhysicalState{}, p)
		assert.Equal(t, Report{}, r)
	})

	t.Run("saturation", func(t *testing.T) {
		r := Map(stateWith(nil, map[int]int16{0: 32767, 1: 32767}), p)
		assert.Equal(t, int16(80), r.X)
		assert.Equal(t, int16(-80), r.Y)
	})

	t.Run("half right", func(t *testing.T) {
		r := Map(stateWith(nil, map[int]int16{0: 16383}), p)
		assert.InDelta(t, 40, r.X, 1)
		assert.Equal(t, int16(0), r.Y)
	})

	t.Run("stick up is positive", func(t *testing.T) {
		r := Map(stateWith(nil, map[int]int16{1: -32767}), p)
		assert.Equal(t, int16(0), r.X)
		assert.Equal(t, int16(80), r.Y)
	})

	t.Run("buttons", func(t *testing.T) {
		r := Map(stateWith([]int{1, 6, 9, 14}, map[int]int16{2: -20000, 4: 30000}), p)
		expected := [ButtonCount]bool{}
		expected[A] = true
		expected[Start] = true
		expected[L] = true
		expected[DRight] = true
		expected[CLeft] = true
		expected[Z] = true
		assert.Equal(t, expected, r.Buttons)
	})

	t.Run("digital stick", func(t *testing.T) {
		q := p
		q.Bindings[StickRight] = Slot{Primary: Button(14)}
		q.Bindings[StickUp] = Slot{Primary: Button(11)}
		q.Tuning.Clamped = true
		r := Map(stateWith([]int{11, 14}, nil), q)
		assert.Equal(t, int16(70), r.X)
		assert.Equal(t, int16(70), r.Y)
	})

	t.Run("full chain monotonic", func(t *testing.T) {
		var previous int16
		for m := int32(0); m <= AxisMax; m += 101 {
			r := Map(stateWith(nil, map[int]int16{0: int16(m)}), p)
			assert.GreaterOrEqual(t, r.X, previous)
			previous = r.X
		}
	})
}
