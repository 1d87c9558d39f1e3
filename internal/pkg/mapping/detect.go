package mapping

// Detect returns the physical input that got activated between two snapshots.
// Newly pressed buttons win over axes, an axis counts once it moves past the threshold
// in a direction it was not already held in.
func Detect(before, after PhysicalState, threshold float64) (Source, bool) {
	for id, p := range after.Buttons {
		if p && !before.Buttons[id] {
			return Button(uint8(id)), true
		}
	}

	limit := activation(threshold)
	for id, v := range after.Axes {
		if !beyond(v, limit) {
			continue
		}
		prev := before.Axes[id]
		if beyond(prev, limit) && (prev > 0) == (v > 0) {
			continue
		}
		return Axis(uint8(id), v > 0), true
	}
	return Unmapped(), false
}

// Settle drops inputs from before that got released in now, so they can be detected again
// when pressed the next time.
func Settle(before, now PhysicalState, threshold float64) PhysicalState {
	for id, p := range before.Buttons {
		if p && !now.Buttons[id] {
			before.Buttons[id] = false
		}
	}

	limit := activation(threshold)
	for id, v := range now.Axes {
		if !beyond(v, limit) {
			before.Axes[id] = v
		}
	}
	return before
}
