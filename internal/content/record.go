// Package content reads and writes the authored animation format.
//
// A content file is a map from animation code to animation record. Records may
// be written as JSON or YAML; keys are matched case-insensitively so both the
// camelCase and PascalCase spellings used by existing content are accepted.
package content

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decker502/animcore/internal/animation"
	"github.com/decker502/animcore/internal/easing"
	"github.com/decker502/animcore/internal/metrics"
	"github.com/decker502/animcore/internal/pose"
)

// ErrInvalidRecord is returned when an authored record cannot be turned into an animation.
var ErrInvalidRecord = errors.New("invalid animation record")

// Record is one authored animation.
type Record struct {
	Hold                bool                   `yaml:"hold,omitempty" json:"hold,omitempty"`
	PlayerKeyFrames     []PlayerKeyFrameRecord `yaml:"playerKeyFrames" json:"playerKeyFrames"`
	ItemKeyFrames       []ItemKeyFrameRecord   `yaml:"itemKeyFrames,omitempty" json:"itemKeyFrames,omitempty"`
	SoundFrames         []SoundFrameRecord     `yaml:"soundFrames,omitempty" json:"soundFrames,omitempty"`
	ParticlesFrames     []ParticlesFrameRecord `yaml:"particlesFrames,omitempty" json:"particlesFrames,omitempty"`
	CallbackFrames      []CallbackFrameRecord  `yaml:"callbackFrames,omitempty" json:"callbackFrames,omitempty"`
	ItemAnimationStart  int                    `yaml:"itemAnimationStart" json:"itemAnimationStart"`
	ItemAnimationEnd    *int                   `yaml:"itemAnimationEnd,omitempty" json:"itemAnimationEnd,omitempty"`
	LegacyItemAnimation string                 `yaml:"legacyItemAnimation,omitempty" json:"legacyItemAnimation,omitempty"`
}

// Slots is an authored joint array: offsetX, offsetY, offsetZ, rotationX,
// rotationY, rotationZ. Null entries are absent components.
type Slots []*float32

// MarshalYAML writes the slots on a single line.
func (s Slots) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range s {
		value := "null"
		if v != nil {
			value = strconv.FormatFloat(float64(*v), 'g', -1, 32)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
	}
	return node, nil
}

// PlayerKeyFrameRecord is an authored player keyframe. EasingTime is the
// keyframe's time from the start of the animation in milliseconds.
type PlayerKeyFrameRecord struct {
	EasingTime       float64          `yaml:"easingTimeMs" json:"easingTimeMs"`
	EasingFunction   string           `yaml:"easingFunction,omitempty" json:"easingFunction,omitempty"`
	DetachedAnchor   bool             `yaml:"detachedAnchor,omitempty" json:"detachedAnchor,omitempty"`
	SwitchArms       bool             `yaml:"switchArms,omitempty" json:"switchArms,omitempty"`
	PitchFollow      bool             `yaml:"pitchFollow,omitempty" json:"pitchFollow,omitempty"`
	PitchDontFollow  bool             `yaml:"pitchDontFollow,omitempty" json:"pitchDontFollow,omitempty"`
	FovMultiplier    *float32         `yaml:"fovMultiplier,omitempty" json:"fovMultiplier,omitempty"`
	BobbingAmplitude *float32         `yaml:"bobbingAmplitude,omitempty" json:"bobbingAmplitude,omitempty"`
	Elements         map[string]Slots `yaml:"elements" json:"elements"`
}

// ItemKeyFrameRecord is an authored item keyframe.
type ItemKeyFrameRecord struct {
	DurationFraction float32          `yaml:"durationFraction" json:"durationFraction"`
	EasingFunction   string           `yaml:"easingFunction,omitempty" json:"easingFunction,omitempty"`
	Elements         map[string]Slots `yaml:"elements" json:"elements"`
}

// SoundFrameRecord is an authored sound event. Missing range, volume and
// synchronize take the sound frame defaults.
type SoundFrameRecord struct {
	Code             Codes    `yaml:"code" json:"code"`
	DurationFraction float32  `yaml:"durationFraction" json:"durationFraction"`
	RandomizePitch   bool     `yaml:"randomizePitch,omitempty" json:"randomizePitch,omitempty"`
	Range            *float32 `yaml:"range,omitempty" json:"range,omitempty"`
	Volume           *float32 `yaml:"volume,omitempty" json:"volume,omitempty"`
	Synchronize      *bool    `yaml:"synchronize,omitempty" json:"synchronize,omitempty"`
}

// Codes accepts either a single sound code or a list of them.
type Codes []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Codes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*c = Codes{value.Value}
		return nil
	}
	var codes []string
	if err := value.Decode(&codes); err != nil {
		return err
	}
	*c = codes
	return nil
}

// ParticlesFrameRecord is an authored particle event.
type ParticlesFrameRecord struct {
	Code             string     `yaml:"code" json:"code"`
	DurationFraction float32    `yaml:"durationFraction" json:"durationFraction"`
	Position         [3]float32 `yaml:"position" json:"position"`
	Velocity         [3]float32 `yaml:"velocity" json:"velocity"`
	Intensity        float32    `yaml:"intensity" json:"intensity"`
}

// CallbackFrameRecord is an authored callback event.
type CallbackFrameRecord struct {
	Code             string  `yaml:"code" json:"code"`
	DurationFraction float32 `yaml:"durationFraction" json:"durationFraction"`
}

// pitchEpsilon is the tolerance used when mapping pitch follow back to flags.
const pitchEpsilon = 1e-3

// BuildOption configures Record.ToAnimation.
type BuildOption func(*buildConfig)

type buildConfig struct {
	legacy  animation.LegacySource
	metrics *metrics.Recorder
}

// WithLegacy resolves the record's legacyItemAnimation through source.
func WithLegacy(source animation.LegacySource) BuildOption {
	return func(c *buildConfig) {
		c.legacy = source
	}
}

// WithRecorder reports resampling time to recorder.
func WithRecorder(recorder *metrics.Recorder) BuildOption {
	return func(c *buildConfig) {
		c.metrics = recorder
	}
}

// ToAnimation builds the runtime animation. A record naming a legacy item
// animation needs WithLegacy; the resampled track replaces any authored item
// keyframes.
func (r Record) ToAnimation(opts ...BuildOption) (*animation.Animation, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(r.PlayerKeyFrames) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, animation.ErrNoPlayerKeyFrames)
	}

	player := make([]animation.PlayerKeyFrame, 0, len(r.PlayerKeyFrames))
	for i, rec := range r.PlayerKeyFrames {
		kf, err := rec.toKeyFrame()
		if err != nil {
			return nil, fmt.Errorf("%w: player keyframe %d: %w", ErrInvalidRecord, i, err)
		}
		player = append(player, kf)
	}

	items := make([]animation.ItemKeyFrame, 0, len(r.ItemKeyFrames))
	for i, rec := range r.ItemKeyFrames {
		kf, err := rec.toKeyFrame()
		if err != nil {
			return nil, fmt.Errorf("%w: item keyframe %d: %w", ErrInvalidRecord, i, err)
		}
		items = append(items, kf)
	}

	if r.LegacyItemAnimation != "" {
		if cfg.legacy == nil {
			return nil, fmt.Errorf("%w: legacy item animation %q without a legacy source", ErrInvalidRecord, r.LegacyItemAnimation)
		}
		start := time.Now()
		frames, err := animation.FromLegacy(cfg.legacy, r.LegacyItemAnimation)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		cfg.metrics.ObserveResample(time.Since(start), len(frames))
		items = frames
	}

	options := []animation.Option{
		animation.WithItemKeyFrames(items...),
		animation.WithSounds(mapSlice(r.SoundFrames, SoundFrameRecord.toSoundFrame)...),
		animation.WithParticles(mapSlice(r.ParticlesFrames, ParticlesFrameRecord.toParticlesFrame)...),
		animation.WithCallbacks(mapSlice(r.CallbackFrames, CallbackFrameRecord.toCallbackFrame)...),
		animation.WithHold(r.Hold),
	}

	if r.ItemAnimationEnd != nil {
		options = append(options, animation.WithItemWindow(milliseconds(float64(r.ItemAnimationStart)), milliseconds(float64(*r.ItemAnimationEnd))))
	} else if r.ItemAnimationStart != 0 {
		options = append(options, animation.WithItemWindow(milliseconds(float64(r.ItemAnimationStart)), math.MaxInt64))
	}

	a, err := animation.New(player, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return a, nil
}

// FromAnimation converts a runtime animation into its authored record.
// Legacy item animations are written out as their resampled keyframes.
func FromAnimation(a *animation.Animation) Record {
	start, end := a.ItemWindow()
	endMs := int(end / time.Millisecond)

	return Record{
		Hold:               a.Hold(),
		PlayerKeyFrames:    mapSlice(a.PlayerKeyFrames(), fromPlayerKeyFrame),
		ItemKeyFrames:      mapSlice(a.ItemKeyFrames(), fromItemKeyFrame),
		SoundFrames:        mapSlice(a.Sounds(), fromSoundFrame),
		ParticlesFrames:    mapSlice(a.Particles(), fromParticlesFrame),
		CallbackFrames:     mapSlice(a.Callbacks(), fromCallbackFrame),
		ItemAnimationStart: int(start / time.Millisecond),
		ItemAnimationEnd:   &endMs,
	}
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	if len(in) == 0 {
		return nil
	}
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

func milliseconds(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func parseEasing(name string) (easing.Type, error) {
	if name == "" {
		return easing.Linear, nil
	}
	return easing.Parse(name)
}

func (r PlayerKeyFrameRecord) toKeyFrame() (animation.PlayerKeyFrame, error) {
	if r.EasingTime < 0 || math.IsNaN(r.EasingTime) {
		return animation.PlayerKeyFrame{}, fmt.Errorf("invalid easing time %v", r.EasingTime)
	}

	fn, err := parseEasing(r.EasingFunction)
	if err != nil {
		return animation.PlayerKeyFrame{}, err
	}

	elements, err := toElements(r.Elements)
	if err != nil {
		return animation.PlayerKeyFrame{}, err
	}

	p := pose.EmptyPlayerPose()
	p.RightHand = group(elements, pose.RightHandJoints, pose.RightHandFromMembers)
	p.LeftHand = group(elements, pose.LeftHandJoints, pose.LeftHandFromMembers)
	p.OtherParts = group(elements, pose.OtherPartsJoints, pose.OtherPartsFromMembers)
	p.UpperTorso = single(elements, pose.JointUpperTorso)
	p.LowerTorso = single(elements, pose.JointLowerTorso)
	p.DetachedAnchorFrame = single(elements, pose.JointDetachedAnchor)

	p.DetachedAnchor = r.DetachedAnchor
	p.SwitchArms = r.SwitchArms
	p.DetachedAnchorFollow = pose.DefaultDetachedAnchorFollow(r.DetachedAnchor)
	switch {
	case r.PitchFollow:
		p.PitchFollow = pose.PitchFollowPerfect
	case r.PitchDontFollow:
		p.PitchFollow = pose.PitchFollowDisabled
	}
	if r.FovMultiplier != nil {
		p.FovMultiplier = *r.FovMultiplier
	}
	if r.BobbingAmplitude != nil {
		p.BobbingAmplitude = *r.BobbingAmplitude
	}

	return animation.PlayerKeyFrame{Pose: p, Time: milliseconds(r.EasingTime), Easing: fn}, nil
}

// group builds a region when any of its joints is authored. Missing members are zero.
func group[G any](elements map[string]pose.Element, joints []string, build func([]pose.Element) *G) *G {
	members := make([]pose.Element, len(joints))
	found := false
	for i, joint := range joints {
		if e, ok := elements[joint]; ok {
			members[i] = e
			found = true
		} else {
			members[i] = pose.ZeroElement()
		}
	}
	if !found {
		return nil
	}
	return build(members)
}

func single(elements map[string]pose.Element, joint string) *pose.Element {
	e, ok := elements[joint]
	if !ok {
		return nil
	}
	return &e
}

func toElements(authored map[string]Slots) (map[string]pose.Element, error) {
	result := make(map[string]pose.Element, len(authored))
	for name, slots := range authored {
		if len(slots) != pose.SlotCount {
			return nil, fmt.Errorf("joint %q has %d values, expected %d", name, len(slots), pose.SlotCount)
		}
		var fixed [pose.SlotCount]*float32
		copy(fixed[:], slots)
		result[name] = pose.ElementFromSlots(fixed)
	}
	return result, nil
}

func fromElement(e pose.Element) Slots {
	slots := e.Slots()
	return Slots(slots[:])
}

func fromPlayerKeyFrame(kf animation.PlayerKeyFrame) PlayerKeyFrameRecord {
	p := kf.Pose
	fov, bobbing := p.FovMultiplier, p.BobbingAmplitude
	rec := PlayerKeyFrameRecord{
		EasingTime:       float64(kf.Time) / float64(time.Millisecond),
		EasingFunction:   kf.Easing.String(),
		DetachedAnchor:   p.DetachedAnchor,
		SwitchArms:       p.SwitchArms,
		PitchFollow:      math.Abs(float64(p.PitchFollow-pose.PitchFollowPerfect)) < pitchEpsilon,
		PitchDontFollow:  math.Abs(float64(p.PitchFollow-pose.PitchFollowDisabled)) < pitchEpsilon,
		FovMultiplier:    &fov,
		BobbingAmplitude: &bobbing,
		Elements:         map[string]Slots{},
	}

	if p.RightHand != nil {
		addMembers(rec.Elements, pose.RightHandJoints, p.RightHand.Members())
	}
	if p.LeftHand != nil {
		addMembers(rec.Elements, pose.LeftHandJoints, p.LeftHand.Members())
	}
	if p.OtherParts != nil {
		addMembers(rec.Elements, pose.OtherPartsJoints, p.OtherParts.Members())
	}
	if p.UpperTorso != nil {
		rec.Elements[pose.JointUpperTorso] = fromElement(*p.UpperTorso)
	}
	if p.LowerTorso != nil {
		rec.Elements[pose.JointLowerTorso] = fromElement(*p.LowerTorso)
	}
	if p.DetachedAnchorFrame != nil {
		rec.Elements[pose.JointDetachedAnchor] = fromElement(*p.DetachedAnchorFrame)
	}
	return rec
}

func addMembers(elements map[string]Slots, joints []string, members []pose.Element) {
	for i, joint := range joints {
		elements[joint] = fromElement(members[i])
	}
}

func (r ItemKeyFrameRecord) toKeyFrame() (animation.ItemKeyFrame, error) {
	if r.DurationFraction < 0 || r.DurationFraction > 1 {
		return animation.ItemKeyFrame{}, fmt.Errorf("duration fraction %v outside [0, 1]", r.DurationFraction)
	}

	fn, err := parseEasing(r.EasingFunction)
	if err != nil {
		return animation.ItemKeyFrame{}, err
	}

	elements, err := toElements(r.Elements)
	if err != nil {
		return animation.ItemKeyFrame{}, err
	}

	return animation.ItemKeyFrame{Pose: pose.ItemPose{Elements: elements}, Fraction: r.DurationFraction, Easing: fn}, nil
}

func fromItemKeyFrame(kf animation.ItemKeyFrame) ItemKeyFrameRecord {
	rec := ItemKeyFrameRecord{
		DurationFraction: kf.Fraction,
		EasingFunction:   kf.Easing.String(),
		Elements:         make(map[string]Slots, len(kf.Pose.Elements)),
	}
	for name, e := range kf.Pose.Elements {
		rec.Elements[name] = fromElement(e)
	}
	return rec
}

func (r SoundFrameRecord) toSoundFrame() animation.SoundFrame {
	s := animation.NewSoundFrame(r.DurationFraction, r.Code...)
	s.RandomizePitch = r.RandomizePitch
	if r.Range != nil {
		s.Range = *r.Range
	}
	if r.Volume != nil {
		s.Volume = *r.Volume
	}
	if r.Synchronize != nil {
		s.Synchronize = *r.Synchronize
	}
	return s
}

func fromSoundFrame(s animation.SoundFrame) SoundFrameRecord {
	rangeValue, volume, synchronize := s.Range, s.Volume, s.Synchronize
	return SoundFrameRecord{
		Code:             Codes(s.Codes),
		DurationFraction: s.Fraction,
		RandomizePitch:   s.RandomizePitch,
		Range:            &rangeValue,
		Volume:           &volume,
		Synchronize:      &synchronize,
	}
}

func (r ParticlesFrameRecord) toParticlesFrame() animation.ParticlesFrame {
	return animation.ParticlesFrame{
		Code:      r.Code,
		Fraction:  r.DurationFraction,
		Position:  r.Position,
		Velocity:  r.Velocity,
		Intensity: r.Intensity,
	}
}

func fromParticlesFrame(p animation.ParticlesFrame) ParticlesFrameRecord {
	return ParticlesFrameRecord{
		Code:             p.Code,
		DurationFraction: p.Fraction,
		Position:         p.Position,
		Velocity:         p.Velocity,
		Intensity:        p.Intensity,
	}
}

func (r CallbackFrameRecord) toCallbackFrame() animation.CallbackFrame {
	return animation.CallbackFrame{Code: r.Code, Fraction: r.DurationFraction}
}

func fromCallbackFrame(c animation.CallbackFrame) CallbackFrameRecord {
	return CallbackFrameRecord{Code: c.Code, DurationFraction: c.Fraction}
}
