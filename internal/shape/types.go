// Package shape provides data structures and a parser for legacy ("vanilla")
// shape files, and the code-keyed lookup of the animations they contain.
//
// Legacy animations are coarse: each keyframe names a frame index and, for a
// subset of joints, an optional offset and rotation per axis. The resampler in
// package animation turns them into dense item keyframe tracks.
package shape

// Shape is the root structure of a shape file. Only the animation section is
// modeled; every other section of the file is ignored.
type Shape struct {
	// Animations is the list of animations defined by the shape
	Animations []Animation `yaml:"animations"`

	// byCode indexes Animations by Checksum(code)
	byCode map[uint32]int
}

// Animation is a named legacy animation.
type Animation struct {
	// Name is the display name, e.g., "Hit"
	Name string `yaml:"name"`

	// Code is the lookup key, e.g., "hit"
	Code string `yaml:"code"`

	// QuantityFrames is the number of frames the animation spans
	QuantityFrames int `yaml:"quantityframes"`

	// KeyFrames is the coarse keyframe list, ordered by Frame
	KeyFrames []KeyFrame `yaml:"keyframes"`
}

// KeyFrame is a single coarse keyframe. Elements holds only the joints
// explicitly defined at this frame.
type KeyFrame struct {
	// Frame is the frame index inside the animation
	Frame int `yaml:"frame"`

	// Elements maps joint names to their transforms at this frame
	Elements map[string]JointKey `yaml:"elements"`
}

// JointKey is the transform of one joint in a coarse keyframe. All fields are
// optional; nil means the key does not specify that component.
type JointKey struct {
	OffsetX   *float64 `yaml:"offsetX,omitempty"`
	OffsetY   *float64 `yaml:"offsetY,omitempty"`
	OffsetZ   *float64 `yaml:"offsetZ,omitempty"`
	RotationX *float64 `yaml:"rotationX,omitempty"`
	RotationY *float64 `yaml:"rotationY,omitempty"`
	RotationZ *float64 `yaml:"rotationZ,omitempty"`
}
