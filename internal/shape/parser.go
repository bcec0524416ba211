package shape

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrAnimationNotFound is returned when no animation matches a code.
var ErrAnimationNotFound = errors.New("legacy animation not found")

// ParseShapeFile parses a shape file and returns its animations.
// Shape files are JSON; they are decoded with the YAML decoder, which accepts
// JSON documents and tolerates the unquoted keys common in hand-edited files.
//
// Example:
//
//	s, err := shape.ParseShapeFile("assets/shapes/item/sword.json")
//	if err != nil {
//	    log.Fatalf("Failed to parse shape: %v", err)
//	}
//	frames, err := s.AnimationByCode("hit")
func ParseShapeFile(path string) (*Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shape file '%s': %w", path, err)
	}

	s, err := ParseShape(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shape file '%s': %w", path, err)
	}
	return s, nil
}

// ParseShape parses shape file content.
// Keyframes of each animation are sorted by frame index.
func ParseShape(data []byte) (*Shape, error) {
	var s Shape
	if err := yaml.Unmarshal(Untab(data), &s); err != nil {
		return nil, err
	}

	s.index()
	return &s, nil
}

// New builds a shape from already decoded animations.
func New(animations ...Animation) *Shape {
	s := &Shape{Animations: animations}
	s.index()
	return s
}

func (s *Shape) index() {
	s.byCode = make(map[uint32]int, len(s.Animations))
	for i := range s.Animations {
		anim := &s.Animations[i]
		sort.SliceStable(anim.KeyFrames, func(a, b int) bool {
			return anim.KeyFrames[a].Frame < anim.KeyFrames[b].Frame
		})

		key := Checksum(anim.Code)
		if _, taken := s.byCode[key]; !taken {
			s.byCode[key] = i
		}
	}
}

// AnimationByCode returns the coarse keyframes of the animation with the given
// code. Codes are matched case-insensitively through Checksum.
func (s *Shape) AnimationByCode(code string) ([]KeyFrame, error) {
	if s.byCode == nil {
		s.index()
	}

	i, ok := s.byCode[Checksum(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAnimationNotFound, code)
	}
	return s.Animations[i].KeyFrames, nil
}

// Codes returns the codes of all animations in file order.
func (s *Shape) Codes() []string {
	codes := make([]string, 0, len(s.Animations))
	for _, anim := range s.Animations {
		codes = append(codes, anim.Code)
	}
	return codes
}

// Untab replaces tab indentation with spaces. JSON exporters commonly indent
// with tabs, which YAML rejects.
func Untab(data []byte) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		n := 0
		for n < len(line) && (line[n] == '\t' || line[n] == ' ') {
			n++
		}
		if bytes.IndexByte(line[:n], '\t') >= 0 {
			lines[i] = append(bytes.ReplaceAll(line[:n], []byte("\t"), []byte("  ")), line[n:]...)
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

// Checksum is the lookup key for animation codes: CRC32 of the lower-cased
// code, masked to a non-negative 32-bit integer.
func Checksum(code string) uint32 {
	return crc32.ChecksumIEEE([]byte(strings.ToLower(code))) & math.MaxInt32
}
