package shape

import (
	"errors"
	"testing"
)

// TestParseShapeFile_Success tests parsing of the sword fixture
func TestParseShapeFile_Success(t *testing.T) {
	s, err := ParseShapeFile("testdata/sword.json")
	if err != nil {
		t.Fatalf("Failed to parse sword.json: %v", err)
	}

	if len(s.Animations) != 2 {
		t.Fatalf("Expected 2 animations, got %d", len(s.Animations))
	}

	hit := s.Animations[0]
	if hit.Code != "hit" || hit.QuantityFrames != 30 {
		t.Errorf("Unexpected animation header: %+v", hit)
	}

	// Keyframes must be ordered by frame index after parsing
	for i := 1; i < len(hit.KeyFrames); i++ {
		if hit.KeyFrames[i-1].Frame > hit.KeyFrames[i].Frame {
			t.Errorf("Keyframes not sorted: %d before %d", hit.KeyFrames[i-1].Frame, hit.KeyFrames[i].Frame)
		}
	}

	first := hit.KeyFrames[0].Elements["Blade"]
	if first.OffsetX == nil || *first.OffsetX != 0 {
		t.Errorf("Expected Blade.offsetX=0 at frame 0, got %v", first.OffsetX)
	}
	if first.OffsetY != nil {
		t.Errorf("Expected Blade.offsetY to be unset")
	}
}

func TestParseShapeFile_Missing(t *testing.T) {
	if _, err := ParseShapeFile("testdata/missing.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestAnimationByCode(t *testing.T) {
	s, err := ParseShapeFile("testdata/sword.json")
	if err != nil {
		t.Fatalf("Failed to parse sword.json: %v", err)
	}

	tests := []struct {
		name   string
		code   string
		frames int
		err    error
	}{
		{"exact code", "hit", 3, nil},
		{"case-insensitive", "HIT", 3, nil},
		{"mixed-case stored code", "idle", 1, nil},
		{"unknown code", "swing", 0, ErrAnimationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := s.AnimationByCode(tt.code)
			if !errors.Is(err, tt.err) {
				t.Fatalf("AnimationByCode(%q) error = %v, expected %v", tt.code, err, tt.err)
			}
			if len(frames) != tt.frames {
				t.Errorf("AnimationByCode(%q) returned %d frames, expected %d", tt.code, len(frames), tt.frames)
			}
		})
	}
}

func TestChecksumIsNonNegative(t *testing.T) {
	for _, code := range []string{"hit", "Idle", "a-very-long-animation-code-with-many-characters"} {
		if Checksum(code) > 0x7fffffff {
			t.Errorf("Checksum(%q) exceeds 31 bits", code)
		}
		if Checksum(code) != Checksum(code+"") {
			t.Errorf("Checksum(%q) is not stable", code)
		}
	}
	if Checksum("Hit") != Checksum("hit") {
		t.Error("Checksum must ignore case")
	}
}

func TestUntab(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tab indent", "a:\n\tb: 1", "a:\n  b: 1"},
		{"mixed indent", "a:\n \tb: 1", "a:\n   b: 1"},
		{"tab inside value kept", "a: \"x\ty\"", "a: \"x\ty\""},
		{"no tabs", "a:\n  b: 1", "a:\n  b: 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Untab([]byte(tt.input))); got != tt.expected {
				t.Errorf("Untab(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
