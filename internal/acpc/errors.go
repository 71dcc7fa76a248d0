package acpc

import "errors"

// Error values returned by the frame builder. Callers should test with
// errors.Is; the wrapped messages carry the specific failing condition.
var (
	// ErrMissingInput indicates a required line or midline point was not
	// supplied. The kernel itself assumes non-nil inputs; this value is
	// raised by the calling layer (see scene.Pipeline).
	ErrMissingInput = errors.New("acpc: required line or midline point not provided")

	// ErrDegenerateInput indicates the orientation cannot be determined
	// from the given points: AC coincides with PC, or the midline point
	// lies on the AC-PC line.
	ErrDegenerateInput = errors.New("acpc: cannot determine orientation from the given points")

	// ErrInvalidCenterMode indicates an unrecognized centering mode.
	ErrInvalidCenterMode = errors.New("acpc: center mode must be MC, AC or PC")
)
