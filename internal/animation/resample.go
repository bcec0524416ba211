package animation

import (
	"fmt"
	"sort"

	"github.com/decker502/animcore/internal/easing"
	"github.com/decker502/animcore/internal/pose"
	"github.com/decker502/animcore/internal/shape"
)

// LegacySource resolves legacy animations by code.
type LegacySource interface {
	AnimationByCode(code string) ([]shape.KeyFrame, error)
}

// FromLegacy looks up a legacy animation and resamples it into an item track.
func FromLegacy(source LegacySource, code string) ([]ItemKeyFrame, error) {
	frames, err := source.AnimationByCode(code)
	if err != nil {
		return nil, fmt.Errorf("resolve legacy animation %q: %w", code, err)
	}
	return Resample(frames), nil
}

// Resample converts coarse legacy keyframes, where each joint is defined only
// at some frames, into dense item keyframes that define every joint at every
// frame.
//
// Gaps are filled by linear interpolation between the surrounding explicit
// values using frame-index distance. After a joint's last explicit value that
// value is held. When the first coarse frame is not frame 0, a keyframe at
// fraction 0 is prepended, seeded with each joint's first explicit value.
// Fractions are frame/lastFrame. All resampled keyframes use linear easing.
func Resample(frames []shape.KeyFrame) []ItemKeyFrame {
	if len(frames) == 0 {
		return nil
	}

	joints := collectJoints(frames)
	missingFirst := frames[0].Frame != 0

	count := len(frames)
	if missingFirst {
		count++
	}

	dense := make([]map[string]pose.Element, count)
	for i := range dense {
		dense[i] = make(map[string]pose.Element, len(joints))
	}
	for _, joint := range joints {
		for i, e := range jointSamples(joint, frames) {
			dense[i][joint] = e
		}
	}

	lastFrame := frames[len(frames)-1].Frame
	if lastFrame == 0 {
		lastFrame = 1
	}

	result := make([]ItemKeyFrame, 0, count)
	for i, elements := range dense {
		frameIndex := i
		if missingFirst {
			frameIndex--
		}

		var fraction float32
		if frameIndex >= 0 {
			fraction = float32(frames[frameIndex].Frame) / float32(lastFrame)
		}
		result = append(result, ItemKeyFrame{
			Pose:     pose.ItemPose{Elements: elements},
			Fraction: fraction,
			Easing:   easing.Linear,
		})
	}
	return result
}

func collectJoints(frames []shape.KeyFrame) []string {
	seen := map[string]struct{}{}
	for _, frame := range frames {
		for name := range frame.Elements {
			seen[name] = struct{}{}
		}
	}

	joints := make([]string, 0, len(seen))
	for name := range seen {
		joints = append(joints, name)
	}
	sort.Strings(joints)
	return joints
}

// jointSamples produces the dense samples of one joint. The first sample is the
// joint's first explicit value wherever it occurs; the rest follow the coarse
// frames, skipping frame 0 since the first sample already stands for it.
func jointSamples(joint string, frames []shape.KeyFrame) []pose.Element {
	first, _ := nextExplicit(joint, frames, 0)
	last := lastExplicit(joint, frames)

	start := 0
	if frames[0].Frame == 0 {
		start = 1
	}

	result := make([]pose.Element, 0, len(frames)+1)
	result = append(result, first.element)

	previous := first.element
	previousFrame := 0
	holding := false

	for i := start; i < len(frames); i++ {
		if holding {
			result = append(result, last.Clone())
			continue
		}

		if key, ok := frames[i].Elements[joint]; ok {
			previous = legacyElement(key)
			previousFrame = frames[i].Frame
			result = append(result, previous.Clone())
			continue
		}

		next, ok := nextExplicit(joint, frames, i+1)
		if !ok {
			holding = true
			result = append(result, last.Clone())
			continue
		}

		progress := float32(1)
		if span := next.frame - previousFrame; span != 0 {
			progress = float32(frames[i].Frame-previousFrame) / float32(span)
		}
		result = append(result, pose.InterpolateElement(previous, next.element, progress))
	}
	return result
}

type explicitSample struct {
	element pose.Element
	frame   int
}

func nextExplicit(joint string, frames []shape.KeyFrame, from int) (explicitSample, bool) {
	for i := from; i < len(frames); i++ {
		if key, ok := frames[i].Elements[joint]; ok {
			return explicitSample{element: legacyElement(key), frame: frames[i].Frame}, true
		}
	}
	return explicitSample{element: pose.ZeroElement()}, false
}

func lastExplicit(joint string, frames []shape.KeyFrame) pose.Element {
	for i := len(frames) - 1; i >= 0; i-- {
		if key, ok := frames[i].Elements[joint]; ok {
			return legacyElement(key)
		}
	}
	return pose.ZeroElement()
}

// legacyElement converts a legacy joint key into a fully present element.
// Components the key leaves unset become zero.
func legacyElement(key shape.JointKey) pose.Element {
	return pose.NewElement(
		orZero(key.OffsetX),
		orZero(key.OffsetY),
		orZero(key.OffsetZ),
		orZero(key.RotationX),
		orZero(key.RotationY),
		orZero(key.RotationZ),
	)
}

func orZero(v *float64) float32 {
	if v == nil {
		return 0
	}
	return float32(*v)
}
