package tween

import "math"

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(k float64) float64

func Linear(k float64) float64 {
	return k
}

func QuadIn(k float64) float64 {
	return k * k
}

func QuadOut(k float64) float64 {
	return k * (2 - k)
}

func BounceOut(k float64) float64 {
	switch {
	case k < 1/2.75:
		return 7.5625 * k * k
	case k < 2/2.75:
		k -= 1.5 / 2.75
		return 7.5625*k*k + 0.75
	case k < 2.5/2.75:
		k -= 2.25 / 2.75
		return 7.5625*k*k + 0.9375
	default:
		k -= 2.625 / 2.75
		return 7.5625*k*k + 0.984375
	}
}

func clamp01(k float64) float64 {
	return math.Max(0, math.Min(1, k))
}
