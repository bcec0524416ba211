// Package composer plays animations in named categories and blends them into
// one frame per tick.
//
// Each category eases its weight in when an animation starts, holds it while
// playing and, when requested, eases it out after the animation ends. Events
// crossed by a category's cursor are dispatched to the configured sinks.
// A Composer is owned by a single goroutine.
package composer

import (
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/decker502/animcore/internal/animation"
	"github.com/decker502/animcore/internal/metrics"
	"github.com/decker502/animcore/internal/pose"
)

type queued struct {
	handle  Handle
	request Request
}

// Composer blends the animations of all active categories.
type Composer struct {
	channels map[string]*channel
	queue    []queued

	modifier        SpeedModifier
	modifierElapsed time.Duration

	sounds    SoundPlayer
	particles ParticleSpawner
	callbacks CallbackHandler
	metrics   *metrics.Recorder
}

// Option configures a Composer.
type Option func(*Composer)

// WithSoundPlayer dispatches sound events to p.
func WithSoundPlayer(p SoundPlayer) Option {
	return func(c *Composer) { c.sounds = p }
}

// WithParticleSpawner dispatches particle events to s.
func WithParticleSpawner(s ParticleSpawner) Option {
	return func(c *Composer) { c.particles = s }
}

// WithCallbackHandler dispatches every callback event to h, in addition to
// the request's own OnCallback.
func WithCallbackHandler(h CallbackHandler) Option {
	return func(c *Composer) { c.callbacks = h }
}

// WithMetrics reports composed frames, active channels and dispatched events.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(c *Composer) { c.metrics = recorder }
}

// New creates an idle composer.
func New(opts ...Option) *Composer {
	c := &Composer{channels: make(map[string]*channel)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Play queues a request. It takes effect on the next Compose.
func (c *Composer) Play(request Request) Handle {
	if request.Animation == nil {
		log.Printf("[Composer] Warning: ignoring request without animation in category '%s'", request.Category)
		return Handle{}
	}

	handle := Handle{ID: uuid.New(), Category: request.Category}
	c.queue = append(c.queue, queued{handle: handle, request: request})
	return handle
}

// Playing reports whether h is queued or is the request playing in its category.
func (c *Composer) Playing(h Handle) bool {
	for _, q := range c.queue {
		if q.handle == h {
			return true
		}
	}
	ch, ok := c.channels[h.Category]
	return ok && ch.handle == h
}

// Stop removes a category immediately.
func (c *Composer) Stop(category string) {
	delete(c.channels, category)
}

// StopAll removes every category.
func (c *Composer) StopAll() {
	clear(c.channels)
}

// Active reports whether any category is playing.
func (c *Composer) Active() bool {
	return len(c.channels) > 0
}

// Categories lists the active categories in sorted order.
func (c *Composer) Categories() []string {
	categories := make([]string, 0, len(c.channels))
	for category := range c.channels {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Weight returns the current blend weight of a category.
func (c *Composer) Weight(category string) (float32, bool) {
	ch, ok := c.channels[category]
	if !ok {
		return 0, false
	}
	return ch.weight, true
}

// SetSpeedModifier installs a modifier applied to every following delta until
// it asks to be removed.
func (c *Composer) SetSpeedModifier(m SpeedModifier) {
	c.modifier = m
	c.modifierElapsed = 0
}

// StopSpeedModifier removes the speed modifier.
func (c *Composer) StopSpeedModifier() {
	c.modifier = nil
}

// SpeedModifierActive reports whether a speed modifier is installed.
func (c *Composer) SpeedModifierActive() bool {
	return c.modifier != nil
}

// Compose advances every category by delta and returns the blended frame
// together with the events triggered during this tick. With nothing playing
// it returns the empty frame.
func (c *Composer) Compose(delta time.Duration) (pose.Frame, animation.Events) {
	c.drainQueue()

	if c.modifier != nil {
		c.modifierElapsed += delta
		var keep bool
		delta, keep = c.modifier(c.modifierElapsed, delta)
		if !keep {
			c.modifier = nil
		}
	}

	if len(c.channels) == 0 {
		c.metrics.SetActiveChannels(0)
		return pose.EmptyFrame(), animation.Events{}
	}

	categories := c.Categories()
	frames := make([]pose.Weighted[pose.Frame], 0, len(categories))
	var events animation.Events

	for _, category := range categories {
		ch := c.channels[category]
		previousCursor := ch.cursor()
		ch.advance(delta)

		frame, triggered := ch.animate(previousCursor)
		c.dispatch(ch, triggered)
		events = events.Merge(triggered)

		// a fully eased-out channel no longer contributes
		if ch.state != stateFinished {
			frames = append(frames, pose.Weighted[pose.Frame]{Value: frame, Weight: ch.weight})
		}
	}

	result := pose.EmptyFrame()
	if len(frames) > 0 {
		result = pose.ComposeFrames(frames)
	}

	for _, category := range categories {
		if c.channels[category].retire() {
			delete(c.channels, category)
		}
	}

	c.metrics.RecordComposed()
	c.metrics.SetActiveChannels(len(c.channels))
	return result, events
}

func (c *Composer) drainQueue() {
	for _, q := range c.queue {
		if ch, ok := c.channels[q.request.Category]; ok {
			ch.restart(q.handle, q.request)
			continue
		}
		c.channels[q.request.Category] = newChannel(q.handle, q.request)
	}
	c.queue = c.queue[:0]
}

func (c *Composer) dispatch(ch *channel, events animation.Events) {
	category := ch.handle.Category

	if c.sounds != nil {
		for _, s := range events.Sounds {
			c.sounds.PlaySound(category, s)
		}
		c.metrics.RecordEvents(metrics.EventSound, len(events.Sounds))
	}
	if c.particles != nil {
		for _, p := range events.Particles {
			c.particles.SpawnParticles(category, p)
		}
		c.metrics.RecordEvents(metrics.EventParticles, len(events.Particles))
	}

	for _, cb := range events.Callbacks {
		if ch.request.OnCallback != nil {
			ch.request.OnCallback(cb.Code)
		}
		if c.callbacks != nil {
			c.callbacks.HandleCallback(category, cb.Code)
		}
	}
	c.metrics.RecordEvents(metrics.EventCallback, len(events.Callbacks))
}
