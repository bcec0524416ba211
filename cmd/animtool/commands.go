package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/decker502/animcore/internal/animation"
	"github.com/decker502/animcore/internal/composer"
	"github.com/decker502/animcore/internal/content"
	"github.com/decker502/animcore/internal/pose"
	"github.com/decker502/animcore/internal/shape"
)

func runValidate(env *toolEnv, args []string) error {
	m, err := env.loadContent(args...)
	if err != nil {
		return err
	}

	for _, code := range m.Codes() {
		a, _ := m.Get(code)
		source, _ := m.Source(code)
		fmt.Printf("✓ %-32s %v  (%s)\n", code, a, source)
	}

	failures := m.Failures()
	for _, f := range failures {
		fmt.Printf("✗ %-32s %v  (%s)\n", f.Code, f.Err, f.Source)
	}

	fmt.Printf("\n%d loaded, %d skipped\n", len(m.Codes()), len(failures))
	if len(failures) > 0 {
		return fmt.Errorf("%d records failed to load", len(failures))
	}
	return nil
}

func runSample(env *toolEnv, args []string) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	code := fs.String("code", "", "animation code")
	at := fs.Duration("at", 0, "time from the start of the animation")
	joint := fs.String("joint", "", "print only this joint")
	_ = fs.Parse(args)

	if *code == "" {
		return errors.New("-code is required")
	}
	m, err := env.loadContent()
	if err != nil {
		return err
	}
	a, err := m.Get(*code)
	if err != nil {
		return err
	}

	frame := a.Interpolate(pose.EmptyFrame(), *at)
	fmt.Printf("%s @ %v (total %v)\n", *code, *at, a.TotalDuration())
	fmt.Printf("  pitchFollow=%.2f fov=%.2f bobbing=%.2f detachedAnchor=%t switchArms=%t\n",
		frame.Player.PitchFollow, frame.Player.FovMultiplier, frame.Player.BobbingAmplitude,
		frame.Player.DetachedAnchor, frame.Player.SwitchArms)

	joints := frameJoints(frame)
	if *joint != "" {
		joints = []string{*joint}
	}
	for _, name := range joints {
		p, ok := frame.Apply(name)
		if !ok {
			fmt.Printf("  %-16s (absent)\n", name)
			continue
		}
		fmt.Printf("  %-16s translate(%.3f, %.3f, %.3f) rotate(%.2f, %.2f, %.2f)\n",
			name, p.TranslateX, p.TranslateY, p.TranslateZ, p.DegX, p.DegY, p.DegZ)
	}
	return nil
}

// frameJoints lists the joints present in f: player joints first, then item joints.
func frameJoints(f pose.Frame) []string {
	var joints []string
	if f.Player.RightHand != nil {
		joints = append(joints, pose.RightHandJoints...)
	}
	if f.Player.LeftHand != nil {
		joints = append(joints, pose.LeftHandJoints...)
	}
	if f.Player.OtherParts != nil {
		joints = append(joints, pose.OtherPartsJoints...)
	}
	if f.Player.UpperTorso != nil {
		joints = append(joints, pose.JointUpperTorso)
	}
	if f.Player.LowerTorso != nil {
		joints = append(joints, pose.JointLowerTorso)
	}
	if f.Player.DetachedAnchorFrame != nil {
		joints = append(joints, pose.JointDetachedAnchor)
	}
	return append(joints, f.ItemOrEmpty().Joints()...)
}

// eventPrinter prints every event the composer dispatches.
type eventPrinter struct {
	now time.Duration
}

func (p *eventPrinter) PlaySound(category string, s animation.SoundFrame) {
	fmt.Printf("%8v  [%s] sound %s volume=%.2f range=%.0f\n", p.now, category, strings.Join(s.Codes, "|"), s.Volume, s.Range)
}

func (p *eventPrinter) SpawnParticles(category string, e animation.ParticlesFrame) {
	fmt.Printf("%8v  [%s] particles %s at %v\n", p.now, category, e.Code, e.Position)
}

func (p *eventPrinter) HandleCallback(category, code string) {
	fmt.Printf("%8v  [%s] callback %s\n", p.now, category, code)
}

func runPlay(env *toolEnv, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	codes := fs.String("code", "", "comma separated animation codes, each played in its own category")
	duration := fs.Duration("duration", 0, "time to run (defaults to the longest animation)")
	easeIn := fs.Duration("ease-in", 0, "weight ease-in duration")
	easeOut := fs.Duration("ease-out", 0, "weight ease-out duration; enables ease-out when positive")
	speed := fs.Float64("speed", 1, "playback speed")
	_ = fs.Parse(args)

	if *codes == "" {
		return errors.New("-code is required")
	}
	if *speed <= 0 {
		return fmt.Errorf("-speed must be positive, got %v", *speed)
	}
	m, err := env.loadContent()
	if err != nil {
		return err
	}

	printer := &eventPrinter{}
	c := composer.New(
		composer.WithSoundPlayer(printer),
		composer.WithParticleSpawner(printer),
		composer.WithCallbackHandler(printer),
		composer.WithMetrics(env.metrics),
	)

	var longest time.Duration
	for _, code := range strings.Split(*codes, ",") {
		a, err := m.Get(code)
		if err != nil {
			return err
		}
		longest = max(longest, a.TotalDuration())
		c.Play(composer.Request{
			Animation:      a,
			Category:       code,
			Speed:          float32(*speed),
			Weight:         1,
			EaseIn:         *easeIn,
			EaseOut:        *easeOut,
			EaseOutEnabled: *easeOut > 0,
		})
	}

	run := *duration
	if run <= 0 {
		run = time.Duration(float64(longest)/(*speed)) + *easeOut
	}

	tick := env.cfg.TickInterval()
	frames := 0
	for printer.now = 0; printer.now <= run; printer.now += tick {
		delta := tick
		if printer.now == 0 {
			delta = 0
		}
		c.Compose(delta)
		frames++
		if !c.Active() {
			break
		}
	}

	fmt.Printf("%d frames composed, %d categories still active\n", frames, len(c.Categories()))
	return nil
}

func runExport(env *toolEnv, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "", "yaml or json (defaults to export_format)")
	out := fs.String("o", "", "output file (defaults to stdout)")
	_ = fs.Parse(args)

	f := env.cfg.Format()
	if *format != "" {
		parsed, err := content.ParseFormat(*format)
		if err != nil {
			return err
		}
		f = parsed
	}

	m, err := env.loadContent()
	if err != nil {
		return err
	}
	records, err := m.Export(fs.Args()...)
	if err != nil {
		return err
	}
	data, err := content.Marshal(records, f)
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Printf("exported %d animations to %s\n", len(records), *out)
	return nil
}

func runResample(env *toolEnv, args []string) error {
	fs := flag.NewFlagSet("resample", flag.ExitOnError)
	path := fs.String("shape", "", "shape file (defaults to the configured shape files)")
	code := fs.String("code", "", "legacy animation code")
	_ = fs.Parse(args)

	if *code == "" {
		return errors.New("-code is required")
	}

	var source animation.LegacySource
	if *path != "" {
		s, err := shape.ParseShapeFile(*path)
		if err != nil {
			return err
		}
		source = s
	} else {
		s, err := legacyShapes(env.cfg.ShapeFiles)
		if err != nil {
			return err
		}
		source = s
	}

	start := time.Now()
	frames, err := animation.FromLegacy(source, *code)
	if err != nil {
		return err
	}
	env.metrics.ObserveResample(time.Since(start), len(frames))

	for _, kf := range frames {
		fmt.Printf("fraction %.3f\n", kf.Fraction)
		for _, joint := range kf.Pose.Joints() {
			p := kf.Pose.Elements[joint].Apply()
			fmt.Printf("  %-16s translate(%.3f, %.3f, %.3f) rotate(%.2f, %.2f, %.2f)\n",
				joint, p.TranslateX, p.TranslateY, p.TranslateZ, p.DegX, p.DegY, p.DegZ)
		}
	}
	return nil
}

func runStore(env *toolEnv, args []string) error {
	m, err := env.loadContent()
	if err != nil {
		return err
	}
	store := env.openLibrary()

	if len(args) == 0 {
		saved, err := store.Import(m)
		if err != nil {
			return err
		}
		fmt.Printf("stored %d animations\n", saved)
		return nil
	}

	for _, code := range args {
		a, err := m.Get(code)
		if err != nil {
			return err
		}
		if err := store.Save(code, a); err != nil {
			return err
		}
	}
	fmt.Printf("stored %d animations\n", len(args))
	return nil
}

func runList(env *toolEnv, _ []string) error {
	store := env.openLibrary()
	for _, code := range store.Codes() {
		a, err := store.Load(code)
		if err != nil {
			fmt.Printf("✗ %-32s %v\n", code, err)
			continue
		}
		fmt.Printf("  %-32s %v\n", code, a)
	}
	return nil
}
