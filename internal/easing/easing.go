// Package easing provides the progress remapping curves used between two keyframes.
//
// Every curve maps a segment progress p ∈ [0, 1] to an eased progress. Curves are
// selected by data (the easing function name in authored content), so the set is a
// closed table keyed by Type. Custom curves may be registered at start-up and are
// keyed by the CRC32 of their lower-cased name.
//
// Reference curves (progress → eased):
//
//	Linear        p
//	Quadratic     p²
//	Cubic         p³
//	Quintic       p⁵
//	Sqrt          √p
//	SqrtSqrt      √√p
//	Sin           sin(p·π/2)
//	SinQuadratic  sin(p²·π/2)
//	SinQuartic    sin(p⁴·π/2)
//	CosShifted    0.5 − cos(p·π)/2
//	Bounce        0.5 − cos(p·π)/2 + 0.35·sin²(p·π)
//
// The EaseIn*/EaseOut*/EaseInOut* curves are the standard set from easings.net.
package easing

import (
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"strings"
	"sync"

	"github.com/tanema/gween/ease"
)

// ErrUnknownEasing is returned when an easing function name cannot be resolved.
var ErrUnknownEasing = errors.New("unknown easing function")

// Type identifies an easing curve.
type Type uint32

// Built-in curves. The numeric values are stable and match the authored content ids.
const (
	Linear Type = iota
	Quadratic
	Cubic
	Quintic
	Sqrt
	SqrtSqrt
	Sin
	SinQuadratic
	SinQuartic
	CosShifted
	Bounce

	EaseInSine
	EaseOutSine
	EaseInOutSine
	EaseInQuad
	EaseOutQuad
	EaseInOutQuad
	EaseInCubic
	EaseOutCubic
	EaseInOutCubic
	EaseInQuart
	EaseOutQuart
	EaseInOutQuart
	EaseInQuint
	EaseOutQuint
	EaseInOutQuint
	EaseInExpo
	EaseOutExpo
	EaseInOutExpo
	EaseInCirc
	EaseOutCirc
	EaseInOutCirc
	EaseInBack
	EaseOutBack
	EaseInOutBack
	EaseInElastic
	EaseOutElastic
	EaseInOutElastic
	EaseInBounce
	EaseOutBounce
	EaseInOutBounce
)

// Func remaps segment progress.
type Func func(progress float32) float32

var builtinNames = [...]string{
	Linear:           "Linear",
	Quadratic:        "Quadratic",
	Cubic:            "Cubic",
	Quintic:          "Quintic",
	Sqrt:             "Sqrt",
	SqrtSqrt:         "SqrtSqrt",
	Sin:              "Sin",
	SinQuadratic:     "SinQuadratic",
	SinQuartic:       "SinQuartic",
	CosShifted:       "CosShifted",
	Bounce:           "Bounce",
	EaseInSine:       "EaseInSine",
	EaseOutSine:      "EaseOutSine",
	EaseInOutSine:    "EaseInOutSine",
	EaseInQuad:       "EaseInQuad",
	EaseOutQuad:      "EaseOutQuad",
	EaseInOutQuad:    "EaseInOutQuad",
	EaseInCubic:      "EaseInCubic",
	EaseOutCubic:     "EaseOutCubic",
	EaseInOutCubic:   "EaseInOutCubic",
	EaseInQuart:      "EaseInQuart",
	EaseOutQuart:     "EaseOutQuart",
	EaseInOutQuart:   "EaseInOutQuart",
	EaseInQuint:      "EaseInQuint",
	EaseOutQuint:     "EaseOutQuint",
	EaseInOutQuint:   "EaseInOutQuint",
	EaseInExpo:       "EaseInExpo",
	EaseOutExpo:      "EaseOutExpo",
	EaseInOutExpo:    "EaseInOutExpo",
	EaseInCirc:       "EaseInCirc",
	EaseOutCirc:      "EaseOutCirc",
	EaseInOutCirc:    "EaseInOutCirc",
	EaseInBack:       "EaseInBack",
	EaseOutBack:      "EaseOutBack",
	EaseInOutBack:    "EaseInOutBack",
	EaseInElastic:    "EaseInElastic",
	EaseOutElastic:   "EaseOutElastic",
	EaseInOutElastic: "EaseInOutElastic",
	EaseInBounce:     "EaseInBounce",
	EaseOutBounce:    "EaseOutBounce",
	EaseInOutBounce:  "EaseInOutBounce",
}

var (
	mu      sync.RWMutex
	curves  = builtinCurves()
	names   = builtinNameTable()
	byName  = builtinLookup()
	linearF = curves[Linear]
)

// fromTween adapts a gween tween function to a normalized curve (begin 0, change 1, duration 1).
func fromTween(fn ease.TweenFunc) Func {
	return func(p float32) float32 {
		return fn(p, 0, 1, 1)
	}
}

func sin32(v float32) float32 { return float32(math.Sin(float64(v))) }
func cos32(v float32) float32 { return float32(math.Cos(float64(v))) }
func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}

func builtinCurves() map[Type]Func {
	return map[Type]Func{
		Linear:    fromTween(ease.Linear),
		Quadratic: fromTween(ease.InQuad),
		Cubic:     fromTween(ease.InCubic),
		Quintic:   fromTween(ease.InQuint),
		Sqrt:      sqrt32,
		SqrtSqrt:  func(p float32) float32 { return sqrt32(sqrt32(p)) },
		Sin:       fromTween(ease.OutSine),
		SinQuadratic: func(p float32) float32 {
			return sin32(p * p / 2 * math.Pi)
		},
		SinQuartic: func(p float32) float32 {
			return sin32(p * p * p * p / 2 * math.Pi)
		},
		CosShifted: fromTween(ease.InOutSine),
		Bounce: func(p float32) float32 {
			s := sin32(p * math.Pi)
			return 0.5 - cos32(p*math.Pi)/2 + s*s*0.35
		},

		EaseInSine:       fromTween(ease.InSine),
		EaseOutSine:      fromTween(ease.OutSine),
		EaseInOutSine:    fromTween(ease.InOutSine),
		EaseInQuad:       fromTween(ease.InQuad),
		EaseOutQuad:      fromTween(ease.OutQuad),
		EaseInOutQuad:    fromTween(ease.InOutQuad),
		EaseInCubic:      fromTween(ease.InCubic),
		EaseOutCubic:     fromTween(ease.OutCubic),
		EaseInOutCubic:   fromTween(ease.InOutCubic),
		EaseInQuart:      fromTween(ease.InQuart),
		EaseOutQuart:     fromTween(ease.OutQuart),
		EaseInOutQuart:   fromTween(ease.InOutQuart),
		EaseInQuint:      fromTween(ease.InQuint),
		EaseOutQuint:     fromTween(ease.OutQuint),
		EaseInOutQuint:   fromTween(ease.InOutQuint),
		EaseInExpo:       inExpo,
		EaseOutExpo:      outExpo,
		EaseInOutExpo:    inOutExpo,
		EaseInCirc:       fromTween(ease.InCirc),
		EaseOutCirc:      fromTween(ease.OutCirc),
		EaseInOutCirc:    fromTween(ease.InOutCirc),
		EaseInBack:       fromTween(ease.InBack),
		EaseOutBack:      fromTween(ease.OutBack),
		EaseInOutBack:    fromTween(ease.InOutBack),
		EaseInElastic:    fromTween(ease.InElastic),
		EaseOutElastic:   fromTween(ease.OutElastic),
		EaseInOutElastic: inOutElastic,
		EaseInBounce:     fromTween(ease.InBounce),
		EaseOutBounce:    fromTween(ease.OutBounce),
		EaseInOutBounce:  fromTween(ease.InOutBounce),
	}
}

func pow32(x, y float32) float32 { return float32(math.Pow(float64(x), float64(y))) }

// gween offsets its expo curves by 0.001 and uses another in-out elastic
// period, so those four follow easings.net directly.

func inExpo(p float32) float32 {
	if p == 0 {
		return 0
	}
	return pow32(2, 10*p-10)
}

func outExpo(p float32) float32 {
	if p == 1 {
		return 1
	}
	return 1 - pow32(2, -10*p)
}

func inOutExpo(p float32) float32 {
	switch {
	case p == 0:
		return 0
	case p == 1:
		return 1
	case p < 0.5:
		return pow32(2, 20*p-10) / 2
	default:
		return (2 - pow32(2, -20*p+10)) / 2
	}
}

func inOutElastic(p float32) float32 {
	const period = 2 * math.Pi / 4.5
	switch {
	case p == 0:
		return 0
	case p == 1:
		return 1
	case p < 0.5:
		return -(pow32(2, 20*p-10) * sin32((20*p-11.125)*period)) / 2
	default:
		return pow32(2, -20*p+10)*sin32((20*p-11.125)*period)/2 + 1
	}
}

func builtinNameTable() map[Type]string {
	table := make(map[Type]string, len(builtinNames))
	for id, name := range builtinNames {
		table[Type(id)] = name
	}
	return table
}

func builtinLookup() map[string]Type {
	table := make(map[string]Type, len(builtinNames))
	for id, name := range builtinNames {
		table[name] = Type(id)
	}
	return table
}

// Get returns the curve for id. Unknown ids fall back to Linear so that sampling
// stays total; ids coming from content are validated by Parse beforehand.
func Get(id Type) Func {
	mu.RLock()
	defer mu.RUnlock()

	if fn, ok := curves[id]; ok {
		return fn
	}
	return linearF
}

// Lookup returns the curve for id and whether it is known.
func Lookup(id Type) (Func, bool) {
	mu.RLock()
	defer mu.RUnlock()

	fn, ok := curves[id]
	return fn, ok
}

// Apply clamps progress to [0, 1] and evaluates the curve for id.
func Apply(id Type, progress float32) float32 {
	return Get(id)(Clamp01(progress))
}

// Parse resolves an authored easing function name. Built-in names are matched
// exactly; custom curves are matched by their registered name.
func Parse(name string) (Type, error) {
	mu.RLock()
	defer mu.RUnlock()

	if id, ok := byName[name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEasing, name)
}

// String returns the authored name of the curve.
func (t Type) String() string {
	mu.RLock()
	defer mu.RUnlock()

	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint32(t))
}

// Register adds a custom curve under name and returns its id.
// It returns false if the name (or its checksum) is already taken.
func Register(name string, fn Func) (Type, bool) {
	if name == "" || fn == nil {
		return 0, false
	}

	id := Checksum(name)

	mu.Lock()
	defer mu.Unlock()

	if _, taken := curves[id]; taken {
		return 0, false
	}
	if _, taken := byName[name]; taken {
		return 0, false
	}

	curves[id] = fn
	names[id] = name
	byName[name] = id
	return id, true
}

// Checksum is the id derivation for custom curves: CRC32 of the lower-cased name,
// masked to a non-negative 32-bit integer.
func Checksum(name string) Type {
	return Type(crc32.ChecksumIEEE([]byte(strings.ToLower(name))) & math.MaxInt32)
}

// Builtins lists the built-in curves in id order.
func Builtins() []Type {
	result := make([]Type, len(builtinNames))
	for i := range builtinNames {
		result[i] = Type(i)
	}
	return result
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp interpolates between a and b; t=0 returns a, t=1 returns b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
