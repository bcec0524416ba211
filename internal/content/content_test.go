package content

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/decker502/animcore/internal/animation"
	"github.com/decker502/animcore/internal/easing"
	"github.com/decker502/animcore/internal/pose"
	"github.com/decker502/animcore/internal/shape"
)

func near(got *float32, expected float32) bool {
	return got != nil && math.Abs(float64(*got-expected)) < 0.0001
}

func loadSwing(t *testing.T) *animation.Animation {
	t.Helper()
	m := NewManager()
	if _, err := m.LoadFile("testdata/weapons.json"); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	a, err := m.Get("swing")
	if err != nil {
		t.Fatalf("swing not loaded: %v", err)
	}
	return a
}

func TestLoadFileSkipsBadRecords(t *testing.T) {
	m := NewManager()

	loaded, err := m.LoadFile("testdata/weapons.json")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded != 1 {
		t.Errorf("loaded %d records, expected 1", loaded)
	}
	if codes := m.Codes(); len(codes) != 1 || codes[0] != "swing" {
		t.Errorf("Codes() = %v, expected [swing]", codes)
	}

	failures := map[string]error{}
	for _, f := range m.Failures() {
		failures[f.Code] = f.Err
	}
	if len(failures) != 3 {
		t.Fatalf("expected 3 skipped records, got %v", failures)
	}
	if !errors.Is(failures["broken-easing"], easing.ErrUnknownEasing) {
		t.Errorf("broken-easing: %v", failures["broken-easing"])
	}
	if !errors.Is(failures["no-frames"], animation.ErrNoPlayerKeyFrames) {
		t.Errorf("no-frames: %v", failures["no-frames"])
	}
	if !errors.Is(failures["bad-slots"], ErrInvalidRecord) {
		t.Errorf("bad-slots: %v", failures["bad-slots"])
	}
}

func TestLoadedAnimationContent(t *testing.T) {
	a := loadSwing(t)

	if a.TotalDuration() != time.Second {
		t.Errorf("TotalDuration() = %v, expected 1s", a.TotalDuration())
	}

	player := a.PlayerKeyFrames()
	last := player[1]
	if last.Easing != easing.Quadratic {
		t.Errorf("easing = %v, expected Quadratic", last.Easing)
	}
	if last.Pose.PitchFollow != pose.PitchFollowPerfect {
		t.Errorf("pitchFollow flag should map to %v, got %v", pose.PitchFollowPerfect, last.Pose.PitchFollow)
	}
	if last.Pose.FovMultiplier != 0.8 || last.Pose.BobbingAmplitude != 1 {
		t.Errorf("modifiers = %v / %v", last.Pose.FovMultiplier, last.Pose.BobbingAmplitude)
	}
	if player[0].Pose.PitchFollow != pose.PitchFollowDefault {
		t.Errorf("unflagged pitch follow should be the default, got %v", player[0].Pose.PitchFollow)
	}

	right := last.Pose.RightHand
	if right == nil {
		t.Fatal("ItemAnchor should create the right hand group")
	}
	if !near(right.ItemAnchor.RotationZ, 90) || !near(right.UpperArmR.OffsetX, 0) {
		t.Errorf("unexpected right hand %+v", right)
	}
	if last.Pose.LeftHand != nil || last.Pose.OtherParts != nil {
		t.Error("groups without authored joints must be absent")
	}
	if last.Pose.UpperTorso == nil || last.Pose.UpperTorso.RotationY != nil {
		t.Error("null slots must stay absent")
	}

	sounds := a.Sounds()
	if len(sounds) != 1 || sounds[0].Codes[0] != "sounds/swing" || sounds[0].Range != 32 || !sounds[0].Synchronize {
		t.Errorf("unexpected sound track %+v", sounds)
	}
}

func TestLoadedAnimationSamples(t *testing.T) {
	a := loadSwing(t)

	frame := a.Interpolate(pose.EmptyFrame(), 500*time.Millisecond)
	if !near(frame.Player.RightHand.ItemAnchor.OffsetX, 2) {
		t.Errorf("ItemAnchor.OffsetX = %v, expected 2", *frame.Player.RightHand.ItemAnchor.OffsetX)
	}
	if !near(frame.Item.Elements["Blade"].RotationZ, 11.25) {
		t.Errorf("Blade.RotationZ = %v, expected 11.25", *frame.Item.Elements["Blade"].RotationZ)
	}

	if got := a.TriggeredCallbacks(500*time.Millisecond, 700*time.Millisecond); len(got) != 1 {
		t.Errorf("hit callback should fire in (0.5s, 0.7s], got %v", got)
	}
}

func TestLoadDir(t *testing.T) {
	legacy := shape.New(shape.Animation{
		Code: "hit",
		KeyFrames: []shape.KeyFrame{
			{Frame: 0, Elements: map[string]shape.JointKey{"Blade": {}}},
			{Frame: 10, Elements: map[string]shape.JointKey{"Blade": {}}},
		},
	})

	m := NewManager(WithDomain("weapons"), WithLegacySource(legacy))
	if err := m.Load("testdata/pack"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	codes := m.Codes()
	if !reflect.DeepEqual(codes, []string{"weapons:guard", "weapons:slash"}) {
		t.Fatalf("Codes() = %v", codes)
	}

	guard, _ := m.Get("weapons:guard")
	if !guard.Hold() || guard.Finished(time.Hour) {
		t.Error("guard holds its last pose")
	}
	p := guard.PlayerKeyFrames()[0].Pose
	if !p.DetachedAnchor || p.DetachedAnchorFollow != 0 || p.DetachedAnchorFrame == nil {
		t.Errorf("detached anchor not mapped: %+v", p)
	}
	if p.LeftHand == nil || !near(p.LeftHand.LowerArmL.RotationX, -30) || !near(p.LeftHand.ItemAnchorL.OffsetX, 0) {
		t.Errorf("left hand not mapped: %+v", p.LeftHand)
	}
	sounds := guard.Sounds()
	if len(sounds[0].Codes) != 2 || sounds[0].Volume != 0.5 || sounds[0].Synchronize {
		t.Errorf("sound frame not mapped: %+v", sounds[0])
	}
	if particles := guard.Particles(); particles[0].Position[1] != 1.5 || particles[0].Intensity != 3 {
		t.Errorf("particle frame not mapped: %+v", particles[0])
	}

	slash, _ := m.Get("weapons:slash")
	if items := slash.ItemKeyFrames(); len(items) != 2 || items[1].Fraction != 1 {
		t.Errorf("legacy item animation not resampled: %+v", items)
	}

	if source, ok := m.Source("weapons:guard"); !ok || source == "" {
		t.Error("source file should be recorded")
	}
}

func TestLegacyWithoutSource(t *testing.T) {
	m := NewManager()
	if err := m.LoadDir("testdata/pack"); err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if _, err := m.Get("slash"); !errors.Is(err, ErrAnimationNotLoaded) {
		t.Errorf("slash needs a legacy source and should be skipped, got %v", err)
	}
	if _, err := m.Get("guard"); err != nil {
		t.Errorf("guard should load: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	a := loadSwing(t)
	original := FromAnimation(a)

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(map[string]Record{"swing": original}, format)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			records, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal failed: %v\n%s", err, data)
			}

			rebuilt, err := records["swing"].ToAnimation()
			if err != nil {
				t.Fatalf("ToAnimation failed: %v", err)
			}

			if again := FromAnimation(rebuilt); !reflect.DeepEqual(again, original) {
				t.Errorf("round trip changed the record\noriginal: %+v\nrebuilt:  %+v", original, again)
			}
		})
	}
}

func TestSplitRejectsNonMapRoot(t *testing.T) {
	if _, err := Split([]byte("- a\n- b\n")); err == nil {
		t.Error("a sequence root must be rejected")
	}
	if records, err := Split(nil); err != nil || len(records) != 0 {
		t.Errorf("empty content yields no records, got %v, %v", records, err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		ok       bool
	}{
		{".json", FormatJSON, true},
		{"YAML", FormatYAML, true},
		{".yml", FormatYAML, true},
		{".txt", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.expected {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
