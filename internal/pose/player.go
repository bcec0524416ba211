package pose

import (
	"math"

	"github.com/decker502/animcore/internal/easing"
)

// Pitch follow presets.
const (
	PitchFollowDefault  float32 = 0.8
	PitchFollowPerfect  float32 = 1.0
	PitchFollowDisabled float32 = 0

	// PitchFollowEpsilon is the distance from the default under which a pitch
	// follow value is treated as "not overridden" during composition.
	PitchFollowEpsilon = 1e-6
)

// PlayerPose is the sparse pose of the player body plus the scalar modifiers
// that travel with it. A nil region means the pose has no opinion on it.
type PlayerPose struct {
	RightHand           *RightHand
	LeftHand            *LeftHand
	OtherParts          *OtherParts
	UpperTorso          *Element
	LowerTorso          *Element
	DetachedAnchorFrame *Element

	DetachedAnchor bool
	SwitchArms     bool

	PitchFollow          float32
	FovMultiplier        float32
	BobbingAmplitude     float32
	DetachedAnchorFollow float32
}

// EmptyPlayerPose has no regions and default modifiers.
func EmptyPlayerPose() PlayerPose {
	return PlayerPose{
		PitchFollow:          PitchFollowDefault,
		FovMultiplier:        1,
		BobbingAmplitude:     1,
		DetachedAnchorFollow: 1,
	}
}

// DefaultPlayerPose is an alias of EmptyPlayerPose kept for call sites that
// describe the idle pose.
func DefaultPlayerPose() PlayerPose {
	return EmptyPlayerPose()
}

// ZeroPlayerPose has both hands and the other parts present and zeroed.
func ZeroPlayerPose() PlayerPose {
	p := EmptyPlayerPose()
	p.RightHand = ZeroRightHand()
	p.LeftHand = ZeroLeftHand()
	p.OtherParts = ZeroOtherParts()
	return p
}

// DefaultDetachedAnchorFollow returns the follow factor implied by the detached anchor flag.
func DefaultDetachedAnchorFollow(detachedAnchor bool) float32 {
	if detachedAnchor {
		return 0
	}
	return 1
}

// Clone returns a deep copy.
func (p PlayerPose) Clone() PlayerPose {
	result := p
	if p.RightHand != nil {
		result.RightHand = RightHandFromMembers(p.RightHand.Members())
	}
	if p.LeftHand != nil {
		result.LeftHand = LeftHandFromMembers(p.LeftHand.Members())
	}
	if p.OtherParts != nil {
		result.OtherParts = OtherPartsFromMembers(p.OtherParts.Members())
	}
	result.UpperTorso = cloneElement(p.UpperTorso)
	result.LowerTorso = cloneElement(p.LowerTorso)
	result.DetachedAnchorFrame = cloneElement(p.DetachedAnchorFrame)
	return result
}

func cloneElement(e *Element) *Element {
	if e == nil {
		return nil
	}
	c := e.Clone()
	return &c
}

// InterpolatePlayer blends from toward to by progress.
//
// Each region is produced only when both sides define it. Scalar modifiers are
// interpolated linearly; boolean flags are taken from to.
func InterpolatePlayer(from, to PlayerPose, progress float32) PlayerPose {
	result := PlayerPose{
		DetachedAnchor:       to.DetachedAnchor,
		SwitchArms:           to.SwitchArms,
		PitchFollow:          easing.Lerp(from.PitchFollow, to.PitchFollow, progress),
		FovMultiplier:        easing.Lerp(from.FovMultiplier, to.FovMultiplier, progress),
		BobbingAmplitude:     easing.Lerp(from.BobbingAmplitude, to.BobbingAmplitude, progress),
		DetachedAnchorFollow: easing.Lerp(from.DetachedAnchorFollow, to.DetachedAnchorFollow, progress),
	}

	if from.RightHand != nil && to.RightHand != nil {
		result.RightHand = RightHandFromMembers(interpolateMembers(from.RightHand.Members(), to.RightHand.Members(), progress))
	}
	if from.LeftHand != nil && to.LeftHand != nil {
		result.LeftHand = LeftHandFromMembers(interpolateMembers(from.LeftHand.Members(), to.LeftHand.Members(), progress))
	}
	if from.OtherParts != nil && to.OtherParts != nil {
		result.OtherParts = OtherPartsFromMembers(interpolateMembers(from.OtherParts.Members(), to.OtherParts.Members(), progress))
	}

	result.UpperTorso = interpolateSingle(from.UpperTorso, to.UpperTorso, progress)
	result.LowerTorso = interpolateSingle(from.LowerTorso, to.LowerTorso, progress)
	result.DetachedAnchorFrame = interpolateSingle(from.DetachedAnchorFrame, to.DetachedAnchorFrame, progress)

	return result
}

func interpolateSingle(from, to *Element, progress float32) *Element {
	if from == nil || to == nil {
		return nil
	}
	e := InterpolateElement(*from, *to, progress)
	return &e
}

// ComposePlayer blends weighted player poses.
//
// A region is produced if at least one input defines it, composed from the
// inputs that do. Flags are OR-ed, PitchFollow takes the first non-default
// value, and the remaining modifiers take the minimum.
func ComposePlayer(poses []Weighted[PlayerPose]) PlayerPose {
	result := EmptyPlayerPose()
	if len(poses) == 0 {
		return result
	}

	var right, left, other []Weighted[[]Element]
	var upper, lower, detached []Weighted[Element]

	pitchSet := false
	result.FovMultiplier = float32(math.Inf(1))
	result.BobbingAmplitude = float32(math.Inf(1))
	result.DetachedAnchorFollow = float32(math.Inf(1))

	for _, entry := range poses {
		p := entry.Value
		if p.RightHand != nil {
			right = append(right, Weighted[[]Element]{Value: p.RightHand.Members(), Weight: entry.Weight})
		}
		if p.LeftHand != nil {
			left = append(left, Weighted[[]Element]{Value: p.LeftHand.Members(), Weight: entry.Weight})
		}
		if p.OtherParts != nil {
			other = append(other, Weighted[[]Element]{Value: p.OtherParts.Members(), Weight: entry.Weight})
		}
		if p.UpperTorso != nil {
			upper = append(upper, Weighted[Element]{Value: *p.UpperTorso, Weight: entry.Weight})
		}
		if p.LowerTorso != nil {
			lower = append(lower, Weighted[Element]{Value: *p.LowerTorso, Weight: entry.Weight})
		}
		if p.DetachedAnchorFrame != nil {
			detached = append(detached, Weighted[Element]{Value: *p.DetachedAnchorFrame, Weight: entry.Weight})
		}

		result.DetachedAnchor = result.DetachedAnchor || p.DetachedAnchor
		result.SwitchArms = result.SwitchArms || p.SwitchArms

		if !pitchSet && math.Abs(float64(p.PitchFollow-PitchFollowDefault)) > PitchFollowEpsilon {
			result.PitchFollow = p.PitchFollow
			pitchSet = true
		}

		result.FovMultiplier = min(result.FovMultiplier, p.FovMultiplier)
		result.BobbingAmplitude = min(result.BobbingAmplitude, p.BobbingAmplitude)
		result.DetachedAnchorFollow = min(result.DetachedAnchorFollow, p.DetachedAnchorFollow)
	}

	if len(right) > 0 {
		result.RightHand = RightHandFromMembers(composeMembers(right, len(RightHandJoints)))
	}
	if len(left) > 0 {
		result.LeftHand = LeftHandFromMembers(composeMembers(left, len(LeftHandJoints)))
	}
	if len(other) > 0 {
		result.OtherParts = OtherPartsFromMembers(composeMembers(other, len(OtherPartsJoints)))
	}
	result.UpperTorso = composeSingle(upper)
	result.LowerTorso = composeSingle(lower)
	result.DetachedAnchorFrame = composeSingle(detached)

	return result
}

func composeSingle(inputs []Weighted[Element]) *Element {
	if len(inputs) == 0 {
		return nil
	}
	e := ComposeElement(inputs)
	return &e
}

// Joint returns the element for a named player joint, if the pose defines it.
func (p PlayerPose) Joint(name string) (Element, bool) {
	switch name {
	case JointItemAnchor, JointLowerArmR, JointUpperArmR:
		if p.RightHand == nil {
			return Element{}, false
		}
		return memberByName(p.RightHand.Members(), RightHandJoints, name)
	case JointItemAnchorL, JointLowerArmL, JointUpperArmL:
		if p.LeftHand == nil {
			return Element{}, false
		}
		return memberByName(p.LeftHand.Members(), LeftHandJoints, name)
	case JointNeck, JointHead, JointUpperFootR, JointUpperFootL, JointLowerFootR, JointLowerFootL:
		if p.OtherParts == nil {
			return Element{}, false
		}
		return memberByName(p.OtherParts.Members(), OtherPartsJoints, name)
	case JointUpperTorso:
		return deref(p.UpperTorso)
	case JointLowerTorso:
		return deref(p.LowerTorso)
	case JointDetachedAnchor:
		return deref(p.DetachedAnchorFrame)
	}
	return Element{}, false
}

func memberByName(members []Element, joints []string, name string) (Element, bool) {
	for i, joint := range joints {
		if joint == name {
			return members[i], true
		}
	}
	return Element{}, false
}

func deref(e *Element) (Element, bool) {
	if e == nil {
		return Element{}, false
	}
	return *e, true
}
