package animation

import (
	"time"

	"github.com/decker502/animcore/internal/easing"
	"github.com/decker502/animcore/internal/pose"
)

// PlayerKeyFrame is a player pose reached at an absolute time from the start
// of the animation. Easing shapes the segment that ends at this keyframe.
type PlayerKeyFrame struct {
	Pose   pose.PlayerPose
	Time   time.Duration
	Easing easing.Type
}

// NewPlayerKeyFrame builds a linear player keyframe.
func NewPlayerKeyFrame(p pose.PlayerPose, at time.Duration) PlayerKeyFrame {
	return PlayerKeyFrame{Pose: p, Time: at, Easing: easing.Linear}
}

// Interpolate blends from toward this keyframe by the eased progress.
func (k PlayerKeyFrame) Interpolate(from pose.PlayerPose, progress float32) pose.PlayerPose {
	return pose.InterpolatePlayer(from, k.Pose, easing.Apply(k.Easing, progress))
}

// Clone returns a deep copy.
func (k PlayerKeyFrame) Clone() PlayerKeyFrame {
	k.Pose = k.Pose.Clone()
	return k
}

// ItemKeyFrame is an item pose reached at a fraction of the item window.
type ItemKeyFrame struct {
	Pose     pose.ItemPose
	Fraction float32
	Easing   easing.Type
}

// NewItemKeyFrame builds a linear item keyframe.
func NewItemKeyFrame(p pose.ItemPose, fraction float32) ItemKeyFrame {
	return ItemKeyFrame{Pose: p, Fraction: fraction, Easing: easing.Linear}
}

// Interpolate blends from toward this keyframe by the eased progress.
func (k ItemKeyFrame) Interpolate(from pose.ItemPose, progress float32) pose.ItemPose {
	return pose.InterpolateItem(from, k.Pose, easing.Apply(k.Easing, progress))
}

// Clone returns a deep copy.
func (k ItemKeyFrame) Clone() ItemKeyFrame {
	k.Pose = k.Pose.Clone()
	return k
}
