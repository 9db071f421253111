package common

import "math"

const (
	Degree30     = math.Pi / 6
	Degree45     = math.Pi / 4
	Degree45Half = math.Pi / 8
	Degree60     = math.Pi / 3
	Degree75     = 5 * math.Pi / 12
	Degree360    = 2 * math.Pi
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Range360 normalizes an angle in radians into [0, 2π).
func Range360(angle float64) float64 {
	angle = math.Mod(angle, Degree360)
	if angle < 0 {
		angle += Degree360
	}
	return angle
}
