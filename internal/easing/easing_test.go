package easing

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 0.0001

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < tolerance
}

// TestBuiltinCurves checks each curve at a few reference points
func TestBuiltinCurves(t *testing.T) {
	tests := []struct {
		name     string
		curve    Type
		input    float32
		expected float32
	}{
		{"linear mid", Linear, 0.5, 0.5},
		{"quadratic mid", Quadratic, 0.5, 0.25},
		{"cubic mid", Cubic, 0.5, 0.125},
		{"quintic mid", Quintic, 0.5, 0.03125},
		{"sqrt quarter", Sqrt, 0.25, 0.5},
		{"sqrtsqrt sixteenth", SqrtSqrt, 0.0625, 0.5},
		{"sin mid", Sin, 0.5, float32(math.Sin(math.Pi / 4))},
		{"sin quadratic mid", SinQuadratic, 0.5, float32(math.Sin(0.25 / 2 * math.Pi))},
		{"sin quartic mid", SinQuartic, 0.5, float32(math.Sin(0.0625 / 2 * math.Pi))},
		{"cos shifted mid", CosShifted, 0.5, 0.5},
		{"bounce mid", Bounce, 0.5, 0.85},
		{"ease in sine mid", EaseInSine, 0.5, float32(1 - math.Cos(math.Pi/4))},
		{"ease out quad mid", EaseOutQuad, 0.5, 0.75},
		{"ease in out cubic quarter", EaseInOutCubic, 0.25, 0.0625},
		{"ease out quart mid", EaseOutQuart, 0.5, 0.9375},
		{"ease in expo mid", EaseInExpo, 0.5, 0.03125},
		{"ease out expo mid", EaseOutExpo, 0.5, 0.96875},
		{"ease in out expo quarter", EaseInOutExpo, 0.25, 0.015625},
		{"ease out circ mid", EaseOutCirc, 0.5, float32(math.Sqrt(0.75))},
		{"ease in back mid", EaseInBack, 0.5, -0.0876975},
		{"ease out elastic mid", EaseOutElastic, 0.5, 1.015625},
		{"ease in out elastic quarter", EaseInOutElastic, 0.25, 0.011969},
		{"ease out bounce mid", EaseOutBounce, 0.5, 0.765625},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Get(tt.curve)(tt.input)
			if !near(result, tt.expected) {
				t.Errorf("%s(%v) = %v, expected %v", tt.curve, tt.input, result, tt.expected)
			}
		})
	}
}

// TestEndpoints verifies every built-in curve maps 0→0 and 1→1
func TestEndpoints(t *testing.T) {
	for _, id := range Builtins() {
		fn := Get(id)
		if got := fn(0); !near(got, 0) {
			t.Errorf("%s(0) = %v, expected 0", id, got)
		}
		if got := fn(1); !near(got, 1) {
			t.Errorf("%s(1) = %v, expected 1", id, got)
		}
	}
}

func TestStandardCurveIDs(t *testing.T) {
	if got := len(Builtins()); got != 41 {
		t.Fatalf("expected 41 built-in curves, got %d", got)
	}

	tests := []struct {
		name string
		id   Type
	}{
		{"EaseInSine", 11},
		{"EaseInOutQuint", 25},
		{"EaseOutBounce", 39},
		{"EaseInOutBounce", 40},
	}
	for _, tt := range tests {
		id, err := Parse(tt.name)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.name, err)
		}
		if id != tt.id {
			t.Errorf("Parse(%q) = %d, expected %d", tt.name, id, tt.id)
		}
	}
}

func TestParseAndString(t *testing.T) {
	for _, id := range Builtins() {
		parsed, err := Parse(id.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", id.String(), err)
		}
		if parsed != id {
			t.Errorf("Parse(%q) = %d, expected %d", id.String(), parsed, id)
		}
	}

	if _, err := Parse("NoSuchCurve"); !errors.Is(err, ErrUnknownEasing) {
		t.Errorf("expected ErrUnknownEasing, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	half := func(p float32) float32 { return p / 2 }

	id, ok := Register("HalfSpeed", half)
	if !ok {
		t.Fatal("Register returned false for a new name")
	}
	if id != Checksum("halfspeed") {
		t.Errorf("custom id should be derived from the lower-cased name")
	}
	if got := Get(id)(0.5); !near(got, 0.25) {
		t.Errorf("custom curve(0.5) = %v, expected 0.25", got)
	}
	if id.String() != "HalfSpeed" {
		t.Errorf("String() = %q, expected HalfSpeed", id.String())
	}

	parsed, err := Parse("HalfSpeed")
	if err != nil || parsed != id {
		t.Errorf("Parse(HalfSpeed) = %d, %v", parsed, err)
	}

	if _, ok := Register("HalfSpeed", half); ok {
		t.Error("duplicate registration should be rejected")
	}
	if _, ok := Register("Linear", half); ok {
		t.Error("registering a built-in name should be rejected")
	}
}

func TestApplyClampsProgress(t *testing.T) {
	if got := Apply(Quadratic, 2); !near(got, 1) {
		t.Errorf("Apply(Quadratic, 2) = %v, expected 1", got)
	}
	if got := Apply(Quadratic, -1); !near(got, 0) {
		t.Errorf("Apply(Quadratic, -1) = %v, expected 0", got)
	}
	nan := float32(math.NaN())
	if got := Apply(Linear, nan); got != 0 {
		t.Errorf("Apply(Linear, NaN) = %v, expected 0", got)
	}
}

func TestUnknownIDFallsBackToLinear(t *testing.T) {
	if _, ok := Lookup(Type(999999)); ok {
		t.Fatal("Lookup should report unknown id")
	}
	if got := Get(Type(999999))(0.3); !near(got, 0.3) {
		t.Errorf("unknown id should behave linearly, got %v", got)
	}
}
