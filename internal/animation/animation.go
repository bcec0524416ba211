// Package animation implements the pose timeline: keyframe tracks for the
// player and the held item, the dual-clock sampling that keeps them in step,
// edge-triggered event tracks, and resampling of legacy item animations.
//
// An Animation is immutable once built. Sampling is a pure function of the
// animation, the previously rendered frame and the cursor time.
package animation

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/decker502/animcore/internal/easing"
	"github.com/decker502/animcore/internal/pose"
)

// ErrNoPlayerKeyFrames is returned when an animation is built without player keyframes.
var ErrNoPlayerKeyFrames = errors.New("animation requires at least one player keyframe")

// Animation is a timeline of player and item keyframes plus event tracks.
type Animation struct {
	playerKeyFrames []PlayerKeyFrame
	itemKeyFrames   []ItemKeyFrame
	sounds          []SoundFrame
	particles       []ParticlesFrame
	callbacks       []CallbackFrame

	itemStart  time.Duration
	itemEnd    time.Duration
	itemEndSet bool

	hold bool
}

// Option configures an Animation under construction.
type Option func(*Animation) error

// WithItemKeyFrames sets the item track.
func WithItemKeyFrames(frames ...ItemKeyFrame) Option {
	return func(a *Animation) error {
		a.itemKeyFrames = append(a.itemKeyFrames, frames...)
		return nil
	}
}

// WithSounds sets the sound track.
func WithSounds(frames ...SoundFrame) Option {
	return func(a *Animation) error {
		a.sounds = append(a.sounds, frames...)
		return nil
	}
}

// WithParticles sets the particle track.
func WithParticles(frames ...ParticlesFrame) Option {
	return func(a *Animation) error {
		a.particles = append(a.particles, frames...)
		return nil
	}
}

// WithCallbacks sets the callback track.
func WithCallbacks(frames ...CallbackFrame) Option {
	return func(a *Animation) error {
		a.callbacks = append(a.callbacks, frames...)
		return nil
	}
}

// WithItemWindow sets the player-time window the item track is stretched over.
// Without it the window spans the whole animation.
func WithItemWindow(start, end time.Duration) Option {
	return func(a *Animation) error {
		if start < 0 || end < 0 {
			return fmt.Errorf("negative item window [%v, %v]", start, end)
		}
		a.itemStart = start
		a.itemEnd = end
		a.itemEndSet = true
		return nil
	}
}

// WithHold keeps the animation unfinished once the cursor passes its end.
func WithHold(hold bool) Option {
	return func(a *Animation) error {
		a.hold = hold
		return nil
	}
}

// WithLegacyItemAnimation replaces the item track with a resampled legacy animation.
func WithLegacyItemAnimation(source LegacySource, code string) Option {
	return func(a *Animation) error {
		frames, err := FromLegacy(source, code)
		if err != nil {
			return err
		}
		a.itemKeyFrames = frames
		return nil
	}
}

// New builds an animation. Keyframes and event entries are stably sorted by
// time or fraction; the item window end is clamped to the total duration and
// the start to the end.
func New(playerKeyFrames []PlayerKeyFrame, opts ...Option) (*Animation, error) {
	if len(playerKeyFrames) == 0 {
		return nil, ErrNoPlayerKeyFrames
	}

	a := &Animation{}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.playerKeyFrames = cloneFrames(playerKeyFrames)
	a.itemKeyFrames = cloneFrames(a.itemKeyFrames)

	for _, kf := range a.playerKeyFrames {
		if kf.Time < 0 {
			return nil, fmt.Errorf("player keyframe at negative time %v", kf.Time)
		}
	}

	slices.SortStableFunc(a.playerKeyFrames, func(x, y PlayerKeyFrame) int {
		return cmp.Compare(x.Time, y.Time)
	})
	slices.SortStableFunc(a.itemKeyFrames, func(x, y ItemKeyFrame) int {
		return cmp.Compare(x.Fraction, y.Fraction)
	})
	sortTrack(a.sounds)
	sortTrack(a.particles)
	sortTrack(a.callbacks)

	total := a.TotalDuration()
	if !a.itemEndSet || a.itemEnd > total {
		a.itemEnd = total
	}
	if a.itemStart > a.itemEnd {
		a.itemStart = a.itemEnd
	}

	return a, nil
}

// MustNew is like New but panics on error. Intended for fixtures.
func MustNew(playerKeyFrames []PlayerKeyFrame, opts ...Option) *Animation {
	a, err := New(playerKeyFrames, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

func sortTrack[E Event](track []E) {
	slices.SortStableFunc(track, func(x, y E) int {
		return cmp.Compare(x.TriggerFraction(), y.TriggerFraction())
	})
}

// Zero is a single zero-pose keyframe animation.
func Zero() *Animation {
	return MustNew([]PlayerKeyFrame{NewPlayerKeyFrame(pose.ZeroPlayerPose(), 0)})
}

// TotalDuration is the time of the last player keyframe.
func (a *Animation) TotalDuration() time.Duration {
	return a.playerKeyFrames[len(a.playerKeyFrames)-1].Time
}

// Finished reports whether t has reached the end of a non-holding animation.
func (a *Animation) Finished(t time.Duration) bool {
	return !a.hold && t >= a.TotalDuration()
}

// Hold reports whether the animation holds its last pose.
func (a *Animation) Hold() bool { return a.hold }

// ItemWindow returns the player-time window of the item track.
func (a *Animation) ItemWindow() (start, end time.Duration) {
	return a.itemStart, a.itemEnd
}

// PlayerKeyFrames returns a copy of the player track.
func (a *Animation) PlayerKeyFrames() []PlayerKeyFrame { return cloneFrames(a.playerKeyFrames) }

// ItemKeyFrames returns a copy of the item track.
func (a *Animation) ItemKeyFrames() []ItemKeyFrame { return cloneFrames(a.itemKeyFrames) }

// Sounds returns the sound track.
func (a *Animation) Sounds() []SoundFrame { return slices.Clone(a.sounds) }

// Particles returns the particle track.
func (a *Animation) Particles() []ParticlesFrame { return slices.Clone(a.particles) }

// Callbacks returns the callback track.
func (a *Animation) Callbacks() []CallbackFrame { return slices.Clone(a.callbacks) }

func cloneFrames[K interface{ Clone() K }](frames []K) []K {
	result := make([]K, len(frames))
	for i, kf := range frames {
		result[i] = kf.Clone()
	}
	return result
}

// Clone returns a deep copy of the animation.
func (a *Animation) Clone() *Animation {
	c := *a
	c.playerKeyFrames = a.PlayerKeyFrames()
	c.itemKeyFrames = a.ItemKeyFrames()
	c.sounds = a.Sounds()
	c.particles = a.Particles()
	c.callbacks = a.Callbacks()
	return &c
}

// Interpolate samples the animation at time t.
//
// Player time drives the item track through a second clock: the eased player
// progress is converted back into an adjusted time, and the item progress is
// that adjusted time's position inside the item window. Segments starting
// before the first keyframe blend from previous, which is normally the last
// frame rendered.
func (a *Animation) Interpolate(previous pose.Frame, t time.Duration) pose.Frame {
	if t >= a.TotalDuration() {
		return a.lastFrame()
	}

	player, adjusted := a.interpolatePlayer(previous.Player, t)
	return pose.Frame{
		Player: player,
		Item:   a.interpolateItem(previous, adjusted),
	}
}

func (a *Animation) lastFrame() pose.Frame {
	frame := pose.Frame{Player: a.playerKeyFrames[len(a.playerKeyFrames)-1].Pose.Clone()}
	if n := len(a.itemKeyFrames); n > 0 {
		item := a.itemKeyFrames[n-1].Pose.Clone()
		frame.Item = &item
	}
	return frame
}

// interpolatePlayer returns the player pose and the adjusted time at t.
func (a *Animation) interpolatePlayer(previous pose.PlayerPose, t time.Duration) (pose.PlayerPose, time.Duration) {
	frames := a.playerKeyFrames
	k := 0
	for k < len(frames) && frames[k].Time <= t {
		k++
	}
	if k == len(frames) {
		k = len(frames) - 1
	}

	if k == 0 {
		first := frames[0]
		eased := easing.Apply(first.Easing, ratio(t, first.Time))
		return pose.InterpolatePlayer(previous, first.Pose, eased), scale(t, eased)
	}

	from, to := frames[k-1], frames[k]
	segment := to.Time - from.Time
	eased := easing.Apply(to.Easing, ratio(t-from.Time, segment))
	return pose.InterpolatePlayer(from.Pose, to.Pose, eased), from.Time + scale(segment, eased)
}

func (a *Animation) interpolateItem(previous pose.Frame, adjusted time.Duration) *pose.ItemPose {
	frames := a.itemKeyFrames
	if len(frames) == 0 {
		return nil
	}

	var progress float32
	if window := a.itemEnd - a.itemStart; window > 0 {
		progress = easing.Clamp01(float32(float64(adjusted-a.itemStart) / float64(window)))
	} else if adjusted >= a.itemStart {
		progress = 1
	}

	k := 0
	for k < len(frames) && frames[k].Fraction <= progress {
		k++
	}
	if k == len(frames) {
		k = len(frames) - 1
	}

	var result pose.ItemPose
	if k == 0 {
		first := frames[0]
		result = first.Interpolate(previous.ItemOrEmpty(), fractionRatio(progress, first.Fraction))
	} else {
		from, to := frames[k-1], frames[k]
		result = to.Interpolate(from.Pose, fractionRatio(progress-from.Fraction, to.Fraction-from.Fraction))
	}
	return &result
}

// ratio is part/whole clamped to [0, 1]; a non-positive whole counts as complete.
func ratio(part, whole time.Duration) float32 {
	if whole <= 0 {
		return 1
	}
	return easing.Clamp01(float32(float64(part) / float64(whole)))
}

func fractionRatio(part, whole float32) float32 {
	if whole <= 0 {
		return 1
	}
	return easing.Clamp01(part / whole)
}

func scale(d time.Duration, factor float32) time.Duration {
	return time.Duration(float64(d) * float64(factor))
}

// TriggeredSounds returns the sound entries crossed by the cursor advance.
func (a *Animation) TriggeredSounds(previous, current time.Duration) []SoundFrame {
	return CollectTriggered(a.sounds, a.TotalDuration(), previous, current)
}

// TriggeredParticles returns the particle entries crossed by the cursor advance.
func (a *Animation) TriggeredParticles(previous, current time.Duration) []ParticlesFrame {
	return CollectTriggered(a.particles, a.TotalDuration(), previous, current)
}

// TriggeredCallbacks returns the callback entries crossed by the cursor advance.
func (a *Animation) TriggeredCallbacks(previous, current time.Duration) []CallbackFrame {
	return CollectTriggered(a.callbacks, a.TotalDuration(), previous, current)
}

// Triggered collects all event tracks for the cursor advance.
func (a *Animation) Triggered(previous, current time.Duration) Events {
	return Events{
		Sounds:    a.TriggeredSounds(previous, current),
		Particles: a.TriggeredParticles(previous, current),
		Callbacks: a.TriggeredCallbacks(previous, current),
	}
}

// stillOffset keeps still samples just before the keyframe they aim at.
const stillOffset = time.Millisecond

// StillPlayerFrame samples the whole animation at progress through the segment
// ending at player keyframe index, starting from the zero frame.
func (a *Animation) StillPlayerFrame(index int, progress float32) pose.Frame {
	index = clampIndex(index, len(a.playerKeyFrames))
	progress = easing.Clamp01(progress)

	to := a.playerKeyFrames[index].Time
	var from time.Duration
	if index > 0 {
		from = a.playerKeyFrames[index-1].Time
	}
	t := max(from+scale(to-from, progress)-stillOffset, 0)
	return a.Interpolate(pose.ZeroFrame(), t)
}

// StillItemFrame samples the whole animation at the player time where the item
// track reaches progress of item keyframe index's fraction.
func (a *Animation) StillItemFrame(index int, progress float32) pose.Frame {
	var fraction float32
	if len(a.itemKeyFrames) > 0 {
		fraction = a.itemKeyFrames[clampIndex(index, len(a.itemKeyFrames))].Fraction
	}
	t := a.itemStart + scale(a.itemEnd-a.itemStart, fraction*easing.Clamp01(progress))
	return a.Interpolate(pose.ZeroFrame(), t)
}

// StillFrame samples the whole animation at a fraction of its duration,
// starting from the zero frame.
func (a *Animation) StillFrame(progress float32) pose.Frame {
	t := scale(a.TotalDuration(), easing.Clamp01(progress))
	return a.Interpolate(pose.ZeroFrame(), t)
}

func clampIndex(index, n int) int {
	return max(0, min(index, n-1))
}

// String summarizes the animation for logs and tooling.
func (a *Animation) String() string {
	return fmt.Sprintf("Animation{player=%d item=%d sounds=%d particles=%d callbacks=%d total=%v hold=%t}",
		len(a.playerKeyFrames), len(a.itemKeyFrames), len(a.sounds), len(a.particles), len(a.callbacks),
		a.TotalDuration(), a.hold)
}
