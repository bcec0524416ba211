package composer

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/decker502/animcore/internal/animation"
	"github.com/decker502/animcore/internal/pose"
)

type weightState int

const (
	stateEaseIn weightState = iota
	stateStay
	stateEaseOut
	stateFinished
)

func (s weightState) String() string {
	switch s {
	case stateEaseIn:
		return "ease-in"
	case stateStay:
		return "stay"
	case stateEaseOut:
		return "ease-out"
	case stateFinished:
		return "finished"
	}
	return "unknown"
}

// channel is the playback state of one category.
type channel struct {
	handle  Handle
	request Request

	elapsed time.Duration
	ticked  bool

	weight float32
	state  weightState
	tween  *gween.Tween

	previousFrame pose.Frame
	lastFrame     pose.Frame
	finishCalled  bool
}

func newChannel(handle Handle, request Request) *channel {
	ch := &channel{previousFrame: pose.ZeroFrame(), lastFrame: pose.ZeroFrame()}
	ch.restart(handle, request)
	return ch
}

// restart switches the channel to a new request, easing in from the current
// weight and blending from the last produced frame.
func (ch *channel) restart(handle Handle, request Request) {
	ch.handle = handle
	ch.request = request
	ch.elapsed = 0
	ch.ticked = false
	ch.finishCalled = false
	ch.previousFrame = ch.lastFrame
	ch.state = stateEaseIn
	ch.tween = newWeightTween(ch.weight, request.Weight, request.EaseIn)
}

func newWeightTween(from, to float32, d time.Duration) *gween.Tween {
	if d <= 0 {
		return nil
	}
	return gween.New(from, to, seconds(d), ease.Linear)
}

func seconds(d time.Duration) float32 {
	return float32(d.Seconds())
}

func (ch *channel) cursor() time.Duration {
	return time.Duration(float64(ch.elapsed) * float64(ch.request.speed()))
}

// playbackEnd is the real time at which the cursor reaches the end.
func (ch *channel) playbackEnd() time.Duration {
	return time.Duration(float64(ch.request.Animation.TotalDuration()) / float64(ch.request.speed()))
}

func (ch *channel) stopped() bool {
	return ch.cursor() >= ch.request.Animation.TotalDuration()
}

func (ch *channel) finished() bool {
	return ch.request.Animation.Finished(ch.cursor())
}

// advance moves the channel forward by delta and updates its weight.
func (ch *channel) advance(delta time.Duration) {
	ch.elapsed += delta

	switch ch.state {
	case stateEaseIn:
		if ch.tween == nil {
			ch.settle()
			return
		}
		weight, done := ch.tween.Update(seconds(delta))
		ch.weight = weight
		if done {
			ch.settle()
		}
	case stateStay:
		if ch.request.EaseOutEnabled && ch.finished() {
			ch.state = stateEaseOut
			ch.tween = newWeightTween(ch.request.Weight, 0, ch.request.EaseOut)
			ch.easeOut(ch.elapsed - ch.playbackEnd())
		}
	case stateEaseOut:
		ch.easeOut(delta)
	}
}

func (ch *channel) settle() {
	ch.weight = ch.request.Weight
	ch.state = stateStay
	ch.tween = nil
}

func (ch *channel) easeOut(delta time.Duration) {
	if ch.tween == nil {
		ch.weight = 0
		ch.state = stateFinished
		return
	}
	weight, done := ch.tween.Update(seconds(delta))
	ch.weight = weight
	if done {
		ch.weight = 0
		ch.state = stateFinished
		ch.tween = nil
	}
}

// animate samples the animation at the current cursor and collects the events
// crossed since previousCursor.
func (ch *channel) animate(previousCursor time.Duration) (pose.Frame, animation.Events) {
	cursor := ch.cursor()

	var events animation.Events
	if !ch.ticked || cursor > previousCursor {
		events = ch.request.Animation.Triggered(previousCursor, cursor)
	}
	if ch.ticked && previousCursor == 0 {
		// entries at the start already fired on the first tick
		total := ch.request.Animation.TotalDuration()
		events.Sounds = afterStart(events.Sounds, total)
		events.Particles = afterStart(events.Particles, total)
		events.Callbacks = afterStart(events.Callbacks, total)
	}
	ch.ticked = true

	ch.lastFrame = ch.request.Animation.Interpolate(ch.previousFrame, cursor)
	return ch.lastFrame, events
}

func afterStart[E animation.Event](entries []E, total time.Duration) []E {
	var result []E
	for _, e := range entries {
		if animation.TriggerTime(e.TriggerFraction(), total) > 0 {
			result = append(result, e)
		}
	}
	return result
}

// retire reports whether the channel should be removed after this tick.
func (ch *channel) retire() bool {
	if ch.finished() && ch.state == stateFinished {
		if ch.request.OnFinish != nil && !ch.finishCalled {
			ch.finishCalled = true
			return !ch.request.OnFinish()
		}
		return true
	}

	if ch.stopped() && ch.request.OnFinish != nil && !ch.finishCalled {
		ch.finishCalled = true
		return !ch.request.OnFinish()
	}
	return false
}
