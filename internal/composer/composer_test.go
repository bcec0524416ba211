package composer

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/decker502/animcore/internal/animation"
	"github.com/decker502/animcore/internal/metrics"
	"github.com/decker502/animcore/internal/pose"
)

func torso(v float32) pose.PlayerPose {
	p := pose.EmptyPlayerPose()
	p.UpperTorso = &pose.Element{RotationX: pose.Float(v)}
	return p
}

// ramp moves the upper torso from 0 to 10 over one second.
func ramp(opts ...animation.Option) *animation.Animation {
	return animation.MustNew([]animation.PlayerKeyFrame{
		animation.NewPlayerKeyFrame(torso(0), 0),
		animation.NewPlayerKeyFrame(torso(10), time.Second),
	}, opts...)
}

// still holds the upper torso at v.
func still(v float32) *animation.Animation {
	return animation.MustNew([]animation.PlayerKeyFrame{animation.NewPlayerKeyFrame(torso(v), 0)}, animation.WithHold(true))
}

func torsoOf(f pose.Frame) float32 {
	return *f.Player.UpperTorso.RotationX
}

type recordingSinks struct {
	sounds    []string
	particles []string
	callbacks []string
}

func (r *recordingSinks) PlaySound(category string, s animation.SoundFrame) {
	r.sounds = append(r.sounds, category+"/"+s.Codes[0])
}

func (r *recordingSinks) SpawnParticles(category string, p animation.ParticlesFrame) {
	r.particles = append(r.particles, category+"/"+p.Code)
}

func (r *recordingSinks) HandleCallback(category, code string) {
	r.callbacks = append(r.callbacks, category+"/"+code)
}

func TestComposerIdle(t *testing.T) {
	Convey("An idle composer returns the empty frame", t, func() {
		c := New()
		frame, events := c.Compose(16 * time.Millisecond)
		So(c.Active(), ShouldBeFalse)
		So(events.Empty(), ShouldBeTrue)
		So(frame.Player.UpperTorso, ShouldBeNil)
		So(frame.Player.FovMultiplier, ShouldEqual, float32(1))
	})

	Convey("A request without animation is rejected", t, func() {
		c := New()
		h := c.Play(Request{Category: "main"})
		So(h.Valid(), ShouldBeFalse)
		So(c.Playing(h), ShouldBeFalse)
	})
}

func TestComposerPlayback(t *testing.T) {
	Convey("Given a ramp playing in one category", t, func() {
		c := New()
		h := c.Play(Request{Animation: ramp(), Category: "main", Weight: 1})
		So(c.Playing(h), ShouldBeTrue)

		Convey("The frame follows the animation cursor", func() {
			frame, _ := c.Compose(500 * time.Millisecond)
			So(torsoOf(frame), ShouldAlmostEqual, 5, 0.0001)
			So(c.Categories(), ShouldResemble, []string{"main"})
		})

		Convey("A finished animation without ease-out keeps its last frame", func() {
			c.Compose(2 * time.Second)
			frame, _ := c.Compose(time.Second)
			So(torsoOf(frame), ShouldAlmostEqual, 10, 0.0001)
			So(c.Active(), ShouldBeTrue)
		})

		Convey("Stop removes the category", func() {
			c.Compose(0)
			c.Stop("main")
			So(c.Active(), ShouldBeFalse)
			So(c.Playing(h), ShouldBeFalse)
		})
	})

	Convey("Speed scales the cursor", t, func() {
		c := New()
		c.Play(Request{Animation: ramp(), Category: "main", Weight: 1, Speed: 2})
		frame, _ := c.Compose(250 * time.Millisecond)
		So(torsoOf(frame), ShouldAlmostEqual, 5, 0.0001)
	})

	Convey("A speed modifier rescales delta until it removes itself", t, func() {
		c := New()
		c.Play(Request{Animation: ramp(), Category: "main", Weight: 1})
		c.SetSpeedModifier(func(elapsed, delta time.Duration) (time.Duration, bool) {
			return delta / 2, elapsed < 400*time.Millisecond
		})

		frame, _ := c.Compose(400 * time.Millisecond)
		So(torsoOf(frame), ShouldAlmostEqual, 2, 0.0001)
		So(c.SpeedModifierActive(), ShouldBeFalse)

		frame, _ = c.Compose(400 * time.Millisecond)
		So(torsoOf(frame), ShouldAlmostEqual, 6, 0.0001)
	})
}

func TestComposerWeights(t *testing.T) {
	Convey("Weight eases in over EaseIn", t, func() {
		c := New()
		c.Play(Request{Animation: ramp(), Category: "main", Weight: 1, EaseIn: 200 * time.Millisecond})

		c.Compose(100 * time.Millisecond)
		w, _ := c.Weight("main")
		So(w, ShouldAlmostEqual, 0.5, 0.0001)

		c.Compose(100 * time.Millisecond)
		w, _ = c.Weight("main")
		So(w, ShouldEqual, float32(1))
		So(c.channels["main"].state.String(), ShouldEqual, "stay")
	})

	Convey("Weight eases out after the animation ends and the category is removed", t, func() {
		c := New()
		finished := 0
		c.Play(Request{
			Animation:      ramp(),
			Category:       "main",
			Weight:         1,
			EaseOut:        100 * time.Millisecond,
			EaseOutEnabled: true,
			OnFinish:       func() bool { finished++; return true },
		})

		c.Compose(time.Second)
		w, _ := c.Weight("main")
		So(w, ShouldEqual, float32(1))
		So(finished, ShouldEqual, 1)

		c.Compose(50 * time.Millisecond)
		w, _ = c.Weight("main")
		So(w, ShouldAlmostEqual, 0.5, 0.0001)

		frame, _ := c.Compose(50 * time.Millisecond)
		So(c.Active(), ShouldBeFalse)
		So(frame.Player.UpperTorso, ShouldBeNil)
		So(finished, ShouldEqual, 1)
	})

	Convey("OnFinish returning false stops the category at the end", t, func() {
		c := New()
		c.Play(Request{Animation: ramp(), Category: "main", Weight: 1, OnFinish: func() bool { return false }})
		c.Compose(time.Second)
		So(c.Active(), ShouldBeFalse)
	})

	Convey("Categories blend by weight", t, func() {
		c := New()
		c.Play(Request{Animation: still(0), Category: "base", Weight: 1})
		c.Play(Request{Animation: still(10), Category: "overlay", Weight: 3})

		frame, _ := c.Compose(16 * time.Millisecond)
		So(torsoOf(frame), ShouldAlmostEqual, 7.5, 0.0001)
	})

	Convey("A held animation never eases out", t, func() {
		c := New()
		c.Play(Request{Animation: still(4), Category: "main", Weight: 1, EaseOutEnabled: true})
		c.Compose(time.Second)
		c.Compose(time.Second)
		So(c.Active(), ShouldBeTrue)
	})
}

func TestComposerReplacement(t *testing.T) {
	Convey("A replacing request blends from the previous frame", t, func() {
		c := New()
		first := c.Play(Request{Animation: still(10), Category: "main", Weight: 1})
		c.Compose(16 * time.Millisecond)

		next := animation.MustNew([]animation.PlayerKeyFrame{animation.NewPlayerKeyFrame(torso(20), time.Second)})
		second := c.Play(Request{Animation: next, Category: "main", Weight: 1})

		frame, _ := c.Compose(500 * time.Millisecond)
		So(torsoOf(frame), ShouldAlmostEqual, 15, 0.0001)
		So(c.Playing(first), ShouldBeFalse)
		So(c.Playing(second), ShouldBeTrue)
	})
}

func TestComposerEvents(t *testing.T) {
	Convey("Given an animation with events", t, func() {
		sinks := &recordingSinks{}
		recorder := metrics.New()
		c := New(WithSoundPlayer(sinks), WithParticleSpawner(sinks), WithCallbackHandler(sinks), WithMetrics(recorder))

		var own []string
		a := ramp(
			animation.WithSounds(animation.NewSoundFrame(0, "start")),
			animation.WithParticles(animation.ParticlesFrame{Code: "dust", Fraction: 0.25}),
			animation.WithCallbacks(animation.CallbackFrame{Code: "hit", Fraction: 0.5}),
		)
		c.Play(Request{Animation: a, Category: "main", Weight: 1, OnCallback: func(code string) { own = append(own, code) }})

		Convey("Events fire once as the cursor crosses them", func() {
			_, events := c.Compose(100 * time.Millisecond)
			So(sinks.sounds, ShouldResemble, []string{"main/start"})
			So(events.Sounds, ShouldHaveLength, 1)

			c.Compose(200 * time.Millisecond)
			So(sinks.particles, ShouldResemble, []string{"main/dust"})
			So(sinks.callbacks, ShouldBeEmpty)

			_, events = c.Compose(200 * time.Millisecond)
			So(sinks.callbacks, ShouldResemble, []string{"main/hit"})
			So(own, ShouldResemble, []string{"hit"})
			So(events.Callbacks, ShouldHaveLength, 1)

			c.Compose(time.Second)
			So(sinks.sounds, ShouldHaveLength, 1)
			So(sinks.callbacks, ShouldHaveLength, 1)
		})

		Convey("A zero delta tick does not repeat events", func() {
			c.Compose(0)
			c.Compose(0)
			So(sinks.sounds, ShouldResemble, []string{"main/start"})
		})

		Convey("A zero delta first tick followed by a real tick fires start events once", func() {
			_, events := c.Compose(0)
			So(events.Sounds, ShouldHaveLength, 1)

			_, events = c.Compose(16 * time.Millisecond)
			So(events.Sounds, ShouldBeEmpty)
			So(sinks.sounds, ShouldResemble, []string{"main/start"})

			c.Compose(300 * time.Millisecond)
			So(sinks.particles, ShouldResemble, []string{"main/dust"})
		})
	})
}
