package pose

// Frame is a sampled pose of the player body and, optionally, the held item.
type Frame struct {
	Player PlayerPose
	Item   *ItemPose
}

// ZeroFrame has zeroed hands and other parts and an empty item pose.
func ZeroFrame() Frame {
	item := EmptyItemPose()
	return Frame{Player: ZeroPlayerPose(), Item: &item}
}

// EmptyFrame has no regions and no item pose.
func EmptyFrame() Frame {
	return Frame{Player: EmptyPlayerPose()}
}

// Clone returns a deep copy.
func (f Frame) Clone() Frame {
	result := Frame{Player: f.Player.Clone()}
	if f.Item != nil {
		item := f.Item.Clone()
		result.Item = &item
	}
	return result
}

// ItemOrEmpty returns the item pose, or an empty pose when the frame has none.
func (f Frame) ItemOrEmpty() ItemPose {
	if f.Item == nil {
		return EmptyItemPose()
	}
	return *f.Item
}

// ComposeFrames blends weighted frames. Player poses are composed from all
// entries, item poses from the entries that carry one.
func ComposeFrames(frames []Weighted[Frame]) Frame {
	players := make([]Weighted[PlayerPose], 0, len(frames))
	items := make([]Weighted[ItemPose], 0, len(frames))
	for _, entry := range frames {
		players = append(players, Weighted[PlayerPose]{Value: entry.Value.Player, Weight: entry.Weight})
		if entry.Value.Item != nil {
			items = append(items, Weighted[ItemPose]{Value: *entry.Value.Item, Weight: entry.Weight})
		}
	}

	item := ComposeItem(items)
	return Frame{Player: ComposePlayer(players), Item: &item}
}

// TorsoMode selects how the lower torso is posed.
type TorsoMode int

const (
	// TorsoFromPose uses the pose's own lower torso element.
	TorsoFromPose TorsoMode = iota
	TorsoStanding
	TorsoSneaking
)

var (
	standingTorso = ZeroElement()
	sneakingTorso = NewElement(0, -5, 0, 0, 0, 0)
)

// Apply resolves a joint through the player regions, then the item pose.
// The item pose wins when both define the joint.
func (f Frame) Apply(joint string) (JointPose, bool) {
	return f.ApplyWithTorso(joint, TorsoFromPose)
}

// ApplyWithTorso is Apply with an explicit lower torso mode.
func (f Frame) ApplyWithTorso(joint string, torso TorsoMode) (JointPose, bool) {
	var (
		result JointPose
		found  bool
	)

	switch {
	case joint == JointLowerTorso && torso == TorsoStanding:
		result, found = standingTorso.Apply(), true
	case joint == JointLowerTorso && torso == TorsoSneaking:
		result, found = sneakingTorso.Apply(), true
	default:
		if e, ok := f.Player.Joint(joint); ok {
			result, found = e.Apply(), true
		}
	}

	if f.Item != nil {
		if e, ok := f.Item.Elements[joint]; ok {
			result, found = e.Apply(), true
		}
	}

	return result, found
}
