package pose

import (
	"math"
	"testing"
)

const tolerance = 0.0001

func approx(t *testing.T, label string, got *float32, expected float32) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: expected %v, component is absent", label, expected)
		return
	}
	if math.Abs(float64(*got-expected)) > tolerance {
		t.Errorf("%s = %v, expected %v", label, *got, expected)
	}
}

func partial(x, rz *float32) Element {
	return Element{OffsetX: x, RotationZ: rz}
}

func TestInterpolateElement(t *testing.T) {
	from := NewElement(0, 0, 0, 0, 0, 0)
	to := Element{OffsetX: Float(10), OffsetY: Float(-4), RotationZ: Float(90)}

	result := InterpolateElement(from, to, 0.25)

	approx(t, "OffsetX", result.OffsetX, 2.5)
	approx(t, "OffsetY", result.OffsetY, -1)
	approx(t, "RotationZ", result.RotationZ, 22.5)
	if result.OffsetZ != nil || result.RotationX != nil || result.RotationY != nil {
		t.Error("components absent on one side must be absent in the result")
	}
}

func TestInterpolateElementDoesNotAliasInputs(t *testing.T) {
	from := NewElement(1, 1, 1, 1, 1, 1)
	to := NewElement(1, 1, 1, 1, 1, 1)
	result := InterpolateElement(from, to, 1)
	*result.OffsetX = 99
	if *to.OffsetX != 1 || *from.OffsetX != 1 {
		t.Error("result shares storage with inputs")
	}
}

func TestComposeElement(t *testing.T) {
	tests := []struct {
		name     string
		inputs   []Weighted[Element]
		expected float32
	}{
		{
			name:     "empty input yields zero",
			inputs:   nil,
			expected: 0,
		},
		{
			name: "weighted average",
			inputs: []Weighted[Element]{
				{Value: partial(Float(10), nil), Weight: 1},
				{Value: partial(Float(20), nil), Weight: 3},
			},
			expected: 17.5,
		},
		{
			name: "absent value counts in denominator",
			inputs: []Weighted[Element]{
				{Value: partial(Float(10), nil), Weight: 1},
				{Value: partial(nil, nil), Weight: 1},
			},
			expected: 5,
		},
		{
			name: "additive group is summed unscaled",
			inputs: []Weighted[Element]{
				{Value: partial(Float(10), nil), Weight: 2},
				{Value: partial(Float(3), nil), Weight: 0},
				{Value: partial(Float(-1), nil), Weight: -5},
			},
			expected: 12,
		},
		{
			name: "only additive inputs",
			inputs: []Weighted[Element]{
				{Value: partial(Float(4), nil), Weight: 0},
				{Value: partial(Float(6), nil), Weight: 0},
			},
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComposeElement(tt.inputs)
			for i, v := range result.Slots() {
				if v == nil {
					t.Fatalf("slot %d absent, composition output must be fully present", i)
				}
			}
			approx(t, "OffsetX", result.OffsetX, tt.expected)
		})
	}
}

func TestComposeElementCommutative(t *testing.T) {
	a := Weighted[Element]{Value: NewElement(1, 2, 3, 4, 5, 6), Weight: 0.3}
	b := Weighted[Element]{Value: partial(Float(-7), Float(12)), Weight: 0.7}
	c := Weighted[Element]{Value: partial(Float(2), nil), Weight: 0}

	first := ComposeElement([]Weighted[Element]{a, b, c})
	second := ComposeElement([]Weighted[Element]{c, b, a})

	fs, ss := first.Slots(), second.Slots()
	for i := range fs {
		if math.Abs(float64(*fs[i]-*ss[i])) > tolerance {
			t.Errorf("slot %d differs by input order: %v vs %v", i, *fs[i], *ss[i])
		}
	}
}

func TestSlotsRoundTrip(t *testing.T) {
	e := Element{OffsetY: Float(3), RotationX: Float(-1)}
	back := ElementFromSlots(e.Slots())
	if !back.Equal(e) {
		t.Errorf("slot round trip changed the element: %+v", back)
	}
	if e.IsEmpty() || !(Element{}).IsEmpty() {
		t.Error("IsEmpty mismatch")
	}
}

func TestApplyScalesOffsets(t *testing.T) {
	e := Element{OffsetX: Float(16), OffsetZ: Float(-8), RotationY: Float(45)}
	got := e.Apply()
	expected := JointPose{TranslateX: 1, TranslateZ: -0.5, DegY: 45}
	if got != expected {
		t.Errorf("Apply() = %+v, expected %+v", got, expected)
	}
}
