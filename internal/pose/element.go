// Package pose models sparse joint poses for the player body and the held item,
// and the two operations defined on them: two-pose interpolation and weighted
// multi-pose composition.
//
// Every component of a pose may be absent. Absence means "no opinion" and is
// distinct from zero. Poses are values: the operations here never modify their
// inputs and always return freshly allocated results.
package pose

import "github.com/decker502/animcore/internal/easing"

// Element is the pose of a single joint: three offsets and three rotations.
// Offsets are in model units (1/16 of a block), rotations in degrees.
type Element struct {
	OffsetX   *float32
	OffsetY   *float32
	OffsetZ   *float32
	RotationX *float32
	RotationY *float32
	RotationZ *float32
}

// Slot indices of the authored float?[6] arrays.
const (
	SlotOffsetX = iota
	SlotOffsetY
	SlotOffsetZ
	SlotRotationX
	SlotRotationY
	SlotRotationZ
	SlotCount
)

// Float returns a pointer to a copy of v.
func Float(v float32) *float32 {
	return &v
}

// NewElement returns an element with all six components present.
func NewElement(offsetX, offsetY, offsetZ, rotationX, rotationY, rotationZ float32) Element {
	return Element{
		OffsetX:   Float(offsetX),
		OffsetY:   Float(offsetY),
		OffsetZ:   Float(offsetZ),
		RotationX: Float(rotationX),
		RotationY: Float(rotationY),
		RotationZ: Float(rotationZ),
	}
}

// ZeroElement returns an element with all components present and equal to zero.
func ZeroElement() Element {
	return NewElement(0, 0, 0, 0, 0, 0)
}

// ElementFromSlots builds an element from the authored slot order.
func ElementFromSlots(slots [SlotCount]*float32) Element {
	var e Element
	for i, v := range slots {
		if v != nil {
			*e.slot(i) = Float(*v)
		}
	}
	return e
}

// Slots returns the components in authored slot order. Absent components are nil.
func (e Element) Slots() [SlotCount]*float32 {
	var slots [SlotCount]*float32
	for i := range slots {
		if v := *e.slot(i); v != nil {
			slots[i] = Float(*v)
		}
	}
	return slots
}

// slot addresses component i. The receiver must be addressable.
func (e *Element) slot(i int) **float32 {
	switch i {
	case SlotOffsetX:
		return &e.OffsetX
	case SlotOffsetY:
		return &e.OffsetY
	case SlotOffsetZ:
		return &e.OffsetZ
	case SlotRotationX:
		return &e.RotationX
	case SlotRotationY:
		return &e.RotationY
	default:
		return &e.RotationZ
	}
}

// IsEmpty reports whether no component is present.
func (e Element) IsEmpty() bool {
	for _, v := range e.Slots() {
		if v != nil {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (e Element) Clone() Element {
	return ElementFromSlots(e.Slots())
}

// Equal reports whether both elements have the same components present with equal values.
func (e Element) Equal(other Element) bool {
	a, b := e.Slots(), other.Slots()
	for i := range a {
		switch {
		case a[i] == nil && b[i] == nil:
		case a[i] == nil || b[i] == nil:
			return false
		case *a[i] != *b[i]:
			return false
		}
	}
	return true
}

// InterpolateElement blends from toward to by progress.
// A component is present in the result only if it is present on both sides.
func InterpolateElement(from, to Element, progress float32) Element {
	var result Element
	for i := 0; i < SlotCount; i++ {
		a, b := *from.slot(i), *to.slot(i)
		if a == nil || b == nil {
			continue
		}
		*result.slot(i) = Float(easing.Lerp(*a, *b, progress))
	}
	return result
}

// Weighted pairs a value with its composition weight. Positive weights form the
// normalized blend group, zero and negative weights the additive group.
type Weighted[T any] struct {
	Value  T
	Weight float32
}

// ComposeElement composes weighted elements into a fully present element.
//
// For each component the positive-weight entries are averaged as Σ(v·w)/Σw, with
// absent values contributing zero while still counting in Σw. Entries with
// weight ≤ 0 are then added without scaling.
func ComposeElement(elements []Weighted[Element]) Element {
	var (
		sums  [SlotCount]float32
		total float32
	)

	for _, entry := range elements {
		if entry.Weight <= 0 {
			continue
		}
		total += entry.Weight
		for i, v := range entry.Value.Slots() {
			if v != nil {
				sums[i] += *v * entry.Weight
			}
		}
	}

	if total != 0 {
		for i := range sums {
			sums[i] /= total
		}
	}

	for _, entry := range elements {
		if entry.Weight > 0 {
			continue
		}
		for i, v := range entry.Value.Slots() {
			if v != nil {
				sums[i] += *v
			}
		}
	}

	return NewElement(sums[0], sums[1], sums[2], sums[3], sums[4], sums[5])
}

// JointPose is the renderer-facing transform of a joint.
type JointPose struct {
	TranslateX float32
	TranslateY float32
	TranslateZ float32
	DegX       float32
	DegY       float32
	DegZ       float32
}

// ModelUnitsPerBlock converts authored offsets into renderer translations.
const ModelUnitsPerBlock = 16

// Apply converts the element into a joint transform. Absent components are zero.
func (e Element) Apply() JointPose {
	return JointPose{
		TranslateX: value(e.OffsetX) / ModelUnitsPerBlock,
		TranslateY: value(e.OffsetY) / ModelUnitsPerBlock,
		TranslateZ: value(e.OffsetZ) / ModelUnitsPerBlock,
		DegX:       value(e.RotationX),
		DegY:       value(e.RotationY),
		DegZ:       value(e.RotationZ),
	}
}

func value(v *float32) float32 {
	if v == nil {
		return 0
	}
	return *v
}
