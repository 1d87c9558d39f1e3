package input

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"github.com/holoplot/go-evdev"
)

// Standard button numbering of a gamepad, stable across devices.
const (
	ButtonA = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonBack
	ButtonGuide
	ButtonStart
	ButtonLeftStick
	ButtonRightStick
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonDPadUp
	ButtonDPadDown
	ButtonDPadLeft
	ButtonDPadRight

	standardButtonCount
)

// Standard axis numbering, sticks first then triggers.
const (
	AxisLeftX = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisLeftTrigger
	AxisRightTrigger

	standardAxisCount
)

var standardButtonNames = [standardButtonCount]string{
	"a", "b", "x", "y", "back", "guide", "start", "leftstick", "rightstick",
	"leftshoulder", "rightshoulder", "dpup", "dpdown", "dpleft", "dpright",
}

var standardAxisNames = [standardAxisCount]string{
	"leftx", "lefty", "rightx", "righty", "lefttrigger", "righttrigger",
}

var standardButtons = map[evdev.EvCode]int{
	evdev.BTN_SOUTH:      ButtonA,
	evdev.BTN_EAST:       ButtonB,
	evdev.BTN_NORTH:      ButtonX,
	evdev.BTN_WEST:       ButtonY,
	evdev.BTN_SELECT:     ButtonBack,
	evdev.BTN_MODE:       ButtonGuide,
	evdev.BTN_START:      ButtonStart,
	evdev.BTN_THUMBL:     ButtonLeftStick,
	evdev.BTN_THUMBR:     ButtonRightStick,
	evdev.BTN_TL:         ButtonLeftShoulder,
	evdev.BTN_TR:         ButtonRightShoulder,
	evdev.BTN_DPAD_UP:    ButtonDPadUp,
	evdev.BTN_DPAD_DOWN:  ButtonDPadDown,
	evdev.BTN_DPAD_LEFT:  ButtonDPadLeft,
	evdev.BTN_DPAD_RIGHT: ButtonDPadRight,
}

// hat axes drive a pair of d-pad buttons, negative first
var hats = map[evdev.EvCode][2]int{
	evdev.ABS_HAT0X: {ButtonDPadLeft, ButtonDPadRight},
	evdev.ABS_HAT0Y: {ButtonDPadUp, ButtonDPadDown},
}

var keyNames = codeNames(evdev.KEYFromString)
var absNames = codeNames(evdev.ABSFromString)

// codeNames reverses an evdev name table, aliases resolve to the shortest name.
func codeNames(from map[string]evdev.EvCode) map[evdev.EvCode]string {
	names := make(map[evdev.EvCode]string, len(from))
	for name, code := range from {
		current, ok := names[code]
		if !ok || len(name) < len(current) || (len(name) == len(current) && name < current) {
			names[code] = name
		}
	}
	return names
}

type axisLayout struct {
	index    int
	min, max int32
	trigger  bool
	initial  int32
}

// Layout translates evdev events of one device into the standard numbering.
type Layout struct {
	buttons map[evdev.EvCode]int
	axes    map[evdev.EvCode]axisLayout
	hats    map[evdev.EvCode]int32

	buttonCodes map[int]evdev.EvCode
	axisCodes   map[int]evdev.EvCode
}

// NewLayout assigns indices to the reported key and abs codes. Known gamepad buttons and axes get
// their standard index, the rest is appended in code order.
func NewLayout(keys []evdev.EvCode, abs map[evdev.EvCode]evdev.AbsInfo) *Layout {
	l := &Layout{
		buttons:     make(map[evdev.EvCode]int),
		axes:        make(map[evdev.EvCode]axisLayout),
		hats:        make(map[evdev.EvCode]int32),
		buttonCodes: make(map[int]evdev.EvCode),
		axisCodes:   make(map[int]evdev.EvCode),
	}

	sortedKeys := make([]evdev.EvCode, len(keys))
	copy(sortedKeys, keys)
	sort.Slice(sortedKeys, func(i, j int) bool { return sortedKeys[i] < sortedKeys[j] })

	next := standardButtonCount
	for _, code := range sortedKeys {
		if id, ok := standardButtons[code]; ok {
			l.buttons[code] = id
			l.buttonCodes[id] = code
			continue
		}
		if next >= mapping.MaxButtons {
			continue
		}
		l.buttons[code] = next
		l.buttonCodes[next] = code
		next++
	}

	for code, info := range abs {
		if _, ok := hats[code]; ok {
			l.hats[code] = info.Value
		}
	}

	assigned := standardAxes(abs)
	var rest []evdev.EvCode
	for code := range abs {
		if _, ok := hats[code]; ok {
			continue
		}
		if _, ok := assigned[code]; !ok {
			rest = append(rest, code)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	index := standardAxisCount
	for _, code := range rest {
		if index >= mapping.MaxAxes {
			break
		}
		assigned[code] = index
		index++
	}

	for code, id := range assigned {
		info := abs[code]
		l.axes[code] = axisLayout{
			index:   id,
			min:     info.Minimum,
			max:     info.Maximum,
			trigger: id == AxisLeftTrigger || id == AxisRightTrigger,
			initial: info.Value,
		}
		l.axisCodes[id] = code
	}

	return l
}

// standardAxes picks stick and trigger codes. Pads without ABS_RX/ABS_RY report the right
// stick on ABS_Z/ABS_RZ, pads reporting triggers as brake and gas get them mapped as well.
func standardAxes(abs map[evdev.EvCode]evdev.AbsInfo) map[evdev.EvCode]int {
	has := func(code evdev.EvCode) bool {
		_, ok := abs[code]
		return ok
	}
	assigned := make(map[evdev.EvCode]int)
	set := func(code evdev.EvCode, id int) {
		if has(code) {
			assigned[code] = id
		}
	}

	set(evdev.ABS_X, AxisLeftX)
	set(evdev.ABS_Y, AxisLeftY)

	if !has(evdev.ABS_RX) && !has(evdev.ABS_RY) && has(evdev.ABS_Z) && has(evdev.ABS_RZ) {
		set(evdev.ABS_Z, AxisRightX)
		set(evdev.ABS_RZ, AxisRightY)
		set(evdev.ABS_BRAKE, AxisLeftTrigger)
		set(evdev.ABS_GAS, AxisRightTrigger)
		return assigned
	}

	set(evdev.ABS_RX, AxisRightX)
	set(evdev.ABS_RY, AxisRightY)
	if has(evdev.ABS_Z) {
		set(evdev.ABS_Z, AxisLeftTrigger)
	} else {
		set(evdev.ABS_BRAKE, AxisLeftTrigger)
	}
	if has(evdev.ABS_RZ) {
		set(evdev.ABS_RZ, AxisRightTrigger)
	} else {
		set(evdev.ABS_GAS, AxisRightTrigger)
	}
	return assigned
}

// Initial returns the state described by the abs info the device was opened with.
func (l *Layout) Initial() mapping.PhysicalState {
	var state mapping.PhysicalState
	for _, a := range l.axes {
		state.Axes[a.index] = normalize(a.initial, a)
	}
	for code, v := range l.hats {
		setHat(&state, code, v)
	}
	return state
}

// Apply updates the state with one event and tells if anything was changed.
func (l *Layout) Apply(state *mapping.PhysicalState, ev evdev.InputEvent) bool {
	switch ev.Type {
	case evdev.EV_KEY:
		id, ok := l.buttons[ev.Code]
		if !ok || ev.Value == 2 { // repeat
			return false
		}
		pressed := ev.Value != 0
		if state.Buttons[id] == pressed {
			return false
		}
		state.Buttons[id] = pressed
		return true
	case evdev.EV_ABS:
		if _, ok := hats[ev.Code]; ok {
			return setHat(state, ev.Code, ev.Value)
		}
		a, ok := l.axes[ev.Code]
		if !ok {
			return false
		}
		v := normalize(ev.Value, a)
		if state.Axes[a.index] == v {
			return false
		}
		state.Axes[a.index] = v
		return true
	}
	return false
}

func setHat(state *mapping.PhysicalState, code evdev.EvCode, v int32) bool {
	pair := hats[code]
	negative, positive := v < 0, v > 0
	changed := state.Buttons[pair[0]] != negative || state.Buttons[pair[1]] != positive
	state.Buttons[pair[0]] = negative
	state.Buttons[pair[1]] = positive
	return changed
}

// normalize maps a raw abs value onto -32767..32767 for sticks and 0..32767 for triggers.
func normalize(v int32, a axisLayout) int16 {
	if a.max <= a.min {
		return 0
	}
	if a.trigger {
		f := (float64(v) - float64(a.min)) / (float64(a.max) - float64(a.min)) * mapping.AxisMax
		switch {
		case f < 0:
			return 0
		case f > mapping.AxisMax:
			return mapping.AxisMax
		}
		return int16(math.Round(f))
	}

	center := (float64(a.min) + float64(a.max)) / 2
	half := (float64(a.max) - float64(a.min)) / 2
	f := (float64(v) - center) / half * mapping.AxisMax
	f = math.Max(math.Min(f, mapping.AxisMax), -mapping.AxisMax)
	return int16(math.Round(f))
}

func (l *Layout) ButtonName(id int) string {
	if id >= 0 && id < standardButtonCount {
		return standardButtonNames[id]
	}
	if code, ok := l.buttonCodes[id]; ok {
		if name, ok := keyNames[code]; ok {
			return strings.ToLower(name)
		}
	}
	return fmt.Sprintf("button%d", id)
}

func (l *Layout) AxisName(id int, positive bool) string {
	sign := "-"
	if positive {
		sign = "+"
	}
	if id >= 0 && id < standardAxisCount {
		return standardAxisNames[id] + sign
	}
	if code, ok := l.axisCodes[id]; ok {
		if name, ok := absNames[code]; ok {
			return strings.ToLower(name) + sign
		}
	}
	return fmt.Sprintf("axis%d%s", id, sign)
}

// Buttons returns the number of buttons known to the layout.
func (l *Layout) Buttons() int {
	return len(l.buttons)
}

// Axes returns the number of axes known to the layout, hats excluded.
func (l *Layout) Axes() int {
	return len(l.axes)
}
