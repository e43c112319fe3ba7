package common

// Mode selects how the scene is projected and how many viewports are rendered
// per frame.
type Mode int

const (
	// ModeTwoD renders a single viewport with a 2D affine transform.
	ModeTwoD Mode = iota

	// ModeThreeD renders a single viewport with a perspective transform.
	ModeThreeD

	// ModeVR renders two stereo viewports, each with its own perspective transform.
	ModeVR
)

// ViewportCount returns the number of simultaneously rendered viewports for
// the mode: 1 for 2D and 3D, 2 for VR.
func (m Mode) ViewportCount() int {
	if m == ModeVR {
		return 2
	}
	return 1
}

// Next cycles to the following mode, wrapping around.
func (m Mode) Next() Mode {
	switch m {
	case ModeTwoD:
		return ModeThreeD
	case ModeThreeD:
		return ModeVR
	default:
		return ModeTwoD
	}
}

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeThreeD:
		return "3d"
	case ModeVR:
		return "vr"
	default:
		return "2d"
	}
}
