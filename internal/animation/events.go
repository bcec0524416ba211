package animation

import (
	"slices"
	"time"
)

// Event is an entry of an event track, positioned by a fraction of the total
// animation duration.
type Event interface {
	TriggerFraction() float32
}

// SoundFrame requests one of Codes to be played. With several codes one is
// picked at random by the sound sink.
type SoundFrame struct {
	Codes          []string
	Fraction       float32
	RandomizePitch bool
	Range          float32
	Volume         float32
	Synchronize    bool
}

// Sound frame defaults.
const (
	DefaultSoundRange  float32 = 32
	DefaultSoundVolume float32 = 1
)

// NewSoundFrame returns a sound frame with default range, volume and synchronization.
func NewSoundFrame(fraction float32, codes ...string) SoundFrame {
	return SoundFrame{
		Codes:       codes,
		Fraction:    fraction,
		Range:       DefaultSoundRange,
		Volume:      DefaultSoundVolume,
		Synchronize: true,
	}
}

func (s SoundFrame) TriggerFraction() float32 { return s.Fraction }

// ParticlesFrame requests a particle effect relative to the player.
type ParticlesFrame struct {
	Code      string
	Fraction  float32
	Position  [3]float32
	Velocity  [3]float32
	Intensity float32
}

func (p ParticlesFrame) TriggerFraction() float32 { return p.Fraction }

// CallbackFrame requests a named game-logic callback.
type CallbackFrame struct {
	Code     string
	Fraction float32
}

func (c CallbackFrame) TriggerFraction() float32 { return c.Fraction }

// firstTickPrevious replaces a zero previous cursor so that entries at
// fraction 0 fire on the first evaluation.
const firstTickPrevious = -time.Millisecond

// CollectTriggered returns the entries whose trigger time lies in
// (previous, current], in track order. A previous cursor of exactly zero is
// treated as -1ms. The caller owns cursor discipline; nothing is remembered
// between calls.
func CollectTriggered[E Event](track []E, total, previous, current time.Duration) []E {
	if previous == 0 {
		previous = firstTickPrevious
	}

	var result []E
	for _, entry := range track {
		at := TriggerTime(entry.TriggerFraction(), total)
		if at > previous && at <= current {
			result = append(result, entry)
		}
	}
	return result
}

// TriggerTime converts a duration fraction into an absolute offset.
func TriggerTime(fraction float32, total time.Duration) time.Duration {
	return time.Duration(float64(fraction) * float64(total))
}

// Events is the set of entries triggered by a cursor advance.
type Events struct {
	Sounds    []SoundFrame
	Particles []ParticlesFrame
	Callbacks []CallbackFrame
}

// Empty reports whether nothing was triggered.
func (e Events) Empty() bool {
	return len(e.Sounds) == 0 && len(e.Particles) == 0 && len(e.Callbacks) == 0
}

// Merge appends other to e.
func (e Events) Merge(other Events) Events {
	return Events{
		Sounds:    append(slices.Clip(e.Sounds), other.Sounds...),
		Particles: append(slices.Clip(e.Particles), other.Particles...),
		Callbacks: append(slices.Clip(e.Callbacks), other.Callbacks...),
	}
}
