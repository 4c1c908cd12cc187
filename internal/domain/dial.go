package domain

import "math"

// DurationDial maps a rotary drag gesture onto a study duration. Rotation is
// accumulated from per-sample deltas and clamped to one full turn, so the
// selection never jumps when a drag starts away from the current value.
type DurationDial struct {
	rotation  float64
	prevAngle float64
	dragging  bool
	selected  int
}

// NewDurationDial creates a dial showing the given minutes. Out-of-range
// values fall back to DefaultDurationMinutes.
func NewDurationDial(minutes int) *DurationDial {
	if ValidateDuration(minutes) != nil {
		minutes = DefaultDurationMinutes
	}
	return &DurationDial{
		rotation: RotationForMinutes(minutes),
		selected: minutes,
	}
}

// DialAngle returns the clockwise angle of (x, y) around (cx, cy) in degrees,
// 0 at 12 o'clock. Screen coordinates grow downward.
func DialAngle(x, y, cx, cy float64) float64 {
	angle := math.Atan2(y-cy, x-cx) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	return math.Mod(angle+90, 360)
}

// AngleDelta returns the signed shortest rotation from prev to next.
func AngleDelta(prev, next float64) float64 {
	delta := next - prev
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}
	return delta
}

// MinutesForRotation maps a rotation in [0, 360] onto the dial's minutes.
func MinutesForRotation(rotation float64) int {
	span := float64(MaxDurationMinutes - MinDurationMinutes)
	raw := rotation/360*span + MinDurationMinutes
	minutes := int(math.Round(raw/DurationStepMinutes)) * DurationStepMinutes
	if minutes < MinDurationMinutes {
		return MinDurationMinutes
	}
	if minutes > MaxDurationMinutes {
		return MaxDurationMinutes
	}
	return minutes
}

// RotationForMinutes is the inverse of MinutesForRotation.
func RotationForMinutes(minutes int) float64 {
	span := float64(MaxDurationMinutes - MinDurationMinutes)
	return float64(minutes-MinDurationMinutes) / span * 360
}

// Begin starts a drag at the given pointer position.
func (d *DurationDial) Begin(x, y, cx, cy float64) {
	d.prevAngle = DialAngle(x, y, cx, cy)
	d.dragging = true
}

// Move feeds the next pointer sample and returns the updated selection.
func (d *DurationDial) Move(x, y, cx, cy float64) int {
	if !d.dragging {
		d.Begin(x, y, cx, cy)
		return d.selected
	}
	return d.Rotate(DialAngle(x, y, cx, cy))
}

// Rotate feeds an instantaneous angle sample and returns the selection.
func (d *DurationDial) Rotate(angle float64) int {
	if !d.dragging {
		d.prevAngle = angle
		d.dragging = true
		return d.selected
	}
	delta := AngleDelta(d.prevAngle, angle)
	d.prevAngle = angle
	d.rotation = math.Max(0, math.Min(360, d.rotation+delta))
	d.selected = MinutesForRotation(d.rotation)
	return d.selected
}

// End finishes the drag. The selection is kept.
func (d *DurationDial) End() {
	d.dragging = false
}

// Nudge moves the selection by whole steps, for keyboard input.
func (d *DurationDial) Nudge(steps int) int {
	minutes := d.selected + steps*DurationStepMinutes
	if minutes < MinDurationMinutes {
		minutes = MinDurationMinutes
	}
	if minutes > MaxDurationMinutes {
		minutes = MaxDurationMinutes
	}
	d.selected = minutes
	d.rotation = RotationForMinutes(minutes)
	return d.selected
}

// Selected returns the current selection in minutes.
func (d *DurationDial) Selected() int {
	return d.selected
}

// Rotation returns the accumulated rotation in degrees.
func (d *DurationDial) Rotation() float64 {
	return d.rotation
}

// Dragging returns true between Begin and End.
func (d *DurationDial) Dragging() bool {
	return d.dragging
}
