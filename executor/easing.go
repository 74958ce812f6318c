package executor

import "math"

// EasingMode selects the easing curve of a color transition. The numbering
// is part of the bytecode wire format.
type EasingMode uint8

const (
	EasingLinear EasingMode = iota
	EasingInSine
	EasingOutSine
	EasingInOutSine
	EasingInQuad
	EasingOutQuad
	EasingInOutQuad
	EasingInCubic
	EasingOutCubic
	EasingInOutCubic
	EasingInQuart
	EasingOutQuart
	EasingInOutQuart
	EasingInQuint
	EasingOutQuint
	EasingInOutQuint
	EasingInExpo
	EasingOutExpo
	EasingInOutExpo
	EasingInCirc
	EasingOutCirc
	EasingInOutCirc
	EasingInBack
	EasingOutBack
	EasingInOutBack
	EasingInElastic
	EasingOutElastic
	EasingInOutElastic
	EasingInBounce
	EasingOutBounce
	EasingInOutBounce

	NumEasingModes
)

// Valid returns whether the mode maps to a known easing function.
func (m EasingMode) Valid() bool {
	return m < NumEasingModes
}

// Ease applies the easing function of the mode to a progress value in
// [0, 1]. The back, elastic and bounce families legitimately return values
// outside [0, 1] mid-transition; callers must not clamp the result, as the
// overshoot is an intended visual effect.
func (m EasingMode) Ease(t float64) float64 {
	if !m.Valid() {
		return t
	}
	return easingFunctions[m](t)
}

// Penner easing equations; see easings.net for the canonical formulas.
// Scripts are authored and previewed against this exact table, so the
// formulas must not be "improved".
const (
	backC1 = 1.70158
	backC2 = backC1 * 1.525
	backC3 = backC1 + 1

	elasticC4 = 2 * math.Pi / 3
	elasticC5 = 2 * math.Pi / 4.5
)

var easingFunctions = [NumEasingModes]func(float64) float64{
	EasingLinear: func(t float64) float64 { return t },

	EasingInSine: func(t float64) float64 {
		return 1 - math.Cos(t*math.Pi/2)
	},
	EasingOutSine: func(t float64) float64 {
		return math.Sin(t * math.Pi / 2)
	},
	EasingInOutSine: func(t float64) float64 {
		return -(math.Cos(math.Pi*t) - 1) / 2
	},

	EasingInQuad: func(t float64) float64 {
		return t * t
	},
	EasingOutQuad: func(t float64) float64 {
		return 1 - (1-t)*(1-t)
	},
	EasingInOutQuad: func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return 1 - math.Pow(-2*t+2, 2)/2
	},

	EasingInCubic: func(t float64) float64 {
		return t * t * t
	},
	EasingOutCubic: func(t float64) float64 {
		return 1 - math.Pow(1-t, 3)
	},
	EasingInOutCubic: func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	},

	EasingInQuart: func(t float64) float64 {
		return t * t * t * t
	},
	EasingOutQuart: func(t float64) float64 {
		return 1 - math.Pow(1-t, 4)
	},
	EasingInOutQuart: func(t float64) float64 {
		if t < 0.5 {
			return 8 * t * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 4)/2
	},

	EasingInQuint: func(t float64) float64 {
		return t * t * t * t * t
	},
	EasingOutQuint: func(t float64) float64 {
		return 1 - math.Pow(1-t, 5)
	},
	EasingInOutQuint: func(t float64) float64 {
		if t < 0.5 {
			return 16 * t * t * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 5)/2
	},

	EasingInExpo: func(t float64) float64 {
		if t == 0 {
			return 0
		}
		return math.Pow(2, 10*t-10)
	},
	EasingOutExpo: func(t float64) float64 {
		if t == 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*t)
	},
	EasingInOutExpo: func(t float64) float64 {
		switch {
		case t == 0:
			return 0
		case t == 1:
			return 1
		case t < 0.5:
			return math.Pow(2, 20*t-10) / 2
		default:
			return (2 - math.Pow(2, -20*t+10)) / 2
		}
	},

	EasingInCirc: func(t float64) float64 {
		return 1 - math.Sqrt(1-t*t)
	},
	EasingOutCirc: func(t float64) float64 {
		return math.Sqrt(1 - (t-1)*(t-1))
	},
	EasingInOutCirc: func(t float64) float64 {
		if t < 0.5 {
			return (1 - math.Sqrt(1-math.Pow(2*t, 2))) / 2
		}
		return (math.Sqrt(1-math.Pow(-2*t+2, 2)) + 1) / 2
	},

	EasingInBack: func(t float64) float64 {
		return backC3*t*t*t - backC1*t*t
	},
	EasingOutBack: func(t float64) float64 {
		return 1 + backC3*math.Pow(t-1, 3) + backC1*math.Pow(t-1, 2)
	},
	EasingInOutBack: func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2*t, 2) * ((backC2+1)*2*t - backC2) / 2
		}
		return (math.Pow(2*t-2, 2)*((backC2+1)*(2*t-2)+backC2) + 2) / 2
	},

	EasingInElastic: func(t float64) float64 {
		switch t {
		case 0:
			return 0
		case 1:
			return 1
		}
		return -math.Pow(2, 10*t-10) * math.Sin((10*t-10.75)*elasticC4)
	},
	EasingOutElastic: func(t float64) float64 {
		switch t {
		case 0:
			return 0
		case 1:
			return 1
		}
		return math.Pow(2, -10*t)*math.Sin((10*t-0.75)*elasticC4) + 1
	},
	EasingInOutElastic: func(t float64) float64 {
		switch {
		case t == 0:
			return 0
		case t == 1:
			return 1
		case t < 0.5:
			return -math.Pow(2, 20*t-10) * math.Sin((20*t-11.125)*elasticC5) / 2
		default:
			return math.Pow(2, -20*t+10)*math.Sin((20*t-11.125)*elasticC5)/2 + 1
		}
	},

	EasingInBounce: func(t float64) float64 {
		return 1 - bounceOut(1-t)
	},
	EasingOutBounce: bounceOut,
	EasingInOutBounce: func(t float64) float64 {
		if t < 0.5 {
			return (1 - bounceOut(1-2*t)) / 2
		}
		return (1 + bounceOut(2*t-1)) / 2
	},
}

func bounceOut(t float64) float64 {
	const n1 = 7.5625
	const d1 = 2.75

	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}
