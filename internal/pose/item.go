package pose

import "sort"

// ItemPose maps item joint names to elements. It may be empty.
type ItemPose struct {
	Elements map[string]Element
}

// EmptyItemPose returns a pose with no joints.
func EmptyItemPose() ItemPose {
	return ItemPose{Elements: map[string]Element{}}
}

// NewItemPose copies elements into a new pose.
func NewItemPose(elements map[string]Element) ItemPose {
	result := ItemPose{Elements: make(map[string]Element, len(elements))}
	for name, e := range elements {
		result.Elements[name] = e.Clone()
	}
	return result
}

// IsEmpty reports whether the pose has no joints.
func (p ItemPose) IsEmpty() bool {
	return len(p.Elements) == 0
}

// Clone returns a deep copy.
func (p ItemPose) Clone() ItemPose {
	return NewItemPose(p.Elements)
}

// Joints returns the joint names in sorted order.
func (p ItemPose) Joints() []string {
	names := make([]string, 0, len(p.Elements))
	for name := range p.Elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InterpolateItem blends from toward to by progress.
// An empty from yields to unchanged. Joints only in to are copied, joints only
// in from are dropped.
func InterpolateItem(from, to ItemPose, progress float32) ItemPose {
	if from.IsEmpty() {
		return to.Clone()
	}

	result := ItemPose{Elements: make(map[string]Element, len(to.Elements))}
	for name, target := range to.Elements {
		if source, ok := from.Elements[name]; ok {
			result.Elements[name] = InterpolateElement(source, target, progress)
		} else {
			result.Elements[name] = target.Clone()
		}
	}
	return result
}

// ComposeItem blends weighted item poses. The result holds the union of all
// joints, each composed from the inputs that define it.
func ComposeItem(poses []Weighted[ItemPose]) ItemPose {
	perJoint := map[string][]Weighted[Element]{}
	for _, entry := range poses {
		for name, e := range entry.Value.Elements {
			perJoint[name] = append(perJoint[name], Weighted[Element]{Value: e, Weight: entry.Weight})
		}
	}

	result := ItemPose{Elements: make(map[string]Element, len(perJoint))}
	for name, inputs := range perJoint {
		result.Elements[name] = ComposeElement(inputs)
	}
	return result
}
