package composer

import (
	"time"

	"github.com/google/uuid"

	"github.com/decker502/animcore/internal/animation"
)

// Request asks the composer to play an animation in a category. A category
// plays one animation at a time; a new request replaces the current one and
// blends from its last frame.
type Request struct {
	Animation *animation.Animation
	Category  string

	// Speed multiplies playback rate. Zero or negative plays at normal speed.
	Speed float32
	// Weight is the blend weight reached after ease-in. Zero or negative
	// weights compose additively.
	Weight float32

	EaseIn         time.Duration
	EaseOut        time.Duration
	EaseOutEnabled bool

	// OnCallback receives the codes of callback events as they trigger.
	OnCallback func(code string)
	// OnFinish is called once when playback reaches the end. Returning false
	// stops the category immediately; returning true keeps it until its
	// weight has eased out.
	OnFinish func() bool
}

func (r Request) speed() float32 {
	if r.Speed <= 0 {
		return 1
	}
	return r.Speed
}

// Handle identifies one accepted request.
type Handle struct {
	ID       uuid.UUID
	Category string
}

// Valid reports whether h refers to an accepted request.
func (h Handle) Valid() bool {
	return h.ID != uuid.Nil
}

// SoundPlayer plays triggered sound events.
type SoundPlayer interface {
	PlaySound(category string, sound animation.SoundFrame)
}

// ParticleSpawner spawns triggered particle events.
type ParticleSpawner interface {
	SpawnParticles(category string, particles animation.ParticlesFrame)
}

// CallbackHandler receives every triggered callback event.
type CallbackHandler interface {
	HandleCallback(category, code string)
}

// SpeedModifier rescales the composer's delta time. elapsed is the time since
// the modifier was installed. Returning false removes the modifier after this
// tick.
type SpeedModifier func(elapsed, delta time.Duration) (time.Duration, bool)
