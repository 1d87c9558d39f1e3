package mapping

const (
	MaxButtons = 128
	MaxAxes    = 8

	// AxisMax is the full travel of an axis in either direction,
	// -32768 is never produced so negation stays safe
	AxisMax = 32767
)

// PhysicalState is a snapshot of a physical controller taken by the device layer.
// Button and axis indices follow the device layer's stable numbering.
type PhysicalState struct {
	Buttons [MaxButtons]bool
	Axes    [MaxAxes]int16
}
