package mapping

import "fmt"

// Input is one logical input of the emulated controller.
type Input int

const (
	A Input = iota
	B
	Z
	L
	R
	Start
	CUp
	CDown
	CLeft
	CRight
	DUp
	DDown
	DLeft
	DRight

	StickUp
	StickDown
	StickLeft
	StickRight

	InputCount
)

// ButtonCount is the number of digital inputs, they come first in the Input order.
const ButtonCount = int(StickUp)

var inputKeys = [InputCount]string{
	A: "a", B: "b", Z: "z", L: "l", R: "r", Start: "start",
	CUp: "cup", CDown: "cdown", CLeft: "cleft", CRight: "cright",
	DUp: "dup", DDown: "ddown", DLeft: "dleft", DRight: "dright",
	StickUp: "up", StickDown: "down", StickLeft: "left", StickRight: "right",
}

var inputLabels = [InputCount]string{
	A: "A", B: "B", Z: "Z", L: "L", R: "R", Start: "Start",
	CUp: "C-Up", CDown: "C-Down", CLeft: "C-Left", CRight: "C-Right",
	DUp: "D-Pad Up", DDown: "D-Pad Down", DLeft: "D-Pad Left", DRight: "D-Pad Right",
	StickUp: "Analog Up", StickDown: "Analog Down", StickLeft: "Analog Left", StickRight: "Analog Right",
}

// Key returns the stable name used in config and profile files.
func (in Input) Key() string {
	if in < 0 || in >= InputCount {
		return fmt.Sprintf("input%d", int(in))
	}
	return inputKeys[in]
}

func (in Input) String() string {
	if in < 0 || in >= InputCount {
		return fmt.Sprintf("Input(%d)", int(in))
	}
	return inputLabels[in]
}

func (in Input) IsButton() bool {
	return in >= 0 && in < StickUp
}

// Inputs lists every logical input in table order.
func Inputs() []Input {
	inputs := make([]Input, 0, InputCount)
	for in := A; in < InputCount; in++ {
		inputs = append(inputs, in)
	}
	return inputs
}

func ParseInput(key string) (Input, error) {
	for in, k := range inputKeys {
		if k == key {
			return Input(in), nil
		}
	}
	return 0, fmt.Errorf("unknown input %q", key)
}
