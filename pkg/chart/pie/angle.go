package pie

// degreesPerPercent converts a percentage of the circle into degrees.
const degreesPerPercent = 3.6

// RotateFor returns the label rotation in degrees for a slice covering
// share percent of the circle, starting offset percent past 12 o'clock.
// The label sits at the slice's mid-angle: half its own share past the
// running offset.
func RotateFor(share, offset float64) float64 {
	return share/2*degreesPerPercent + offset*degreesPerPercent
}

// NeedFlip reports whether a label at the given rotation would render
// upside-down and must be mirrored. True strictly between 90 and 270
// degrees; the boundaries themselves are excluded.
func NeedFlip(rotation float64) bool {
	return rotation > 90 && rotation < 270
}

// NegateIfFlipped negates v when the rotation requires a mirror flip, so
// the label's anchor follows its mirrored coordinate system.
func NegateIfFlipped(v, rotation float64) float64 {
	if NeedFlip(rotation) {
		return -v
	}
	return v
}
