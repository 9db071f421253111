package interact

import (
	"math"
	"slices"

	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/tween"
)

const (
	DustCount  = 7
	DustRadius = 18.0
	DustTime   = 400.0
)

// Particle is one puff of a dust burst.
type Particle struct {
	X, Y float64
}

type burst struct {
	particles []*Particle
}

// Dust spreads puffs on a fan from an origin. It is the Effects the tile
// events and drops use.
type Dust struct {
	clock  *tween.Scheduler
	bursts []*burst
}

func NewDust(clock *tween.Scheduler) *Dust {
	return &Dust{clock: clock}
}

// Dust starts a burst at (x, y). The fan opens downward, from 30 degrees
// above one side to 30 degrees above the other.
func (d *Dust) Dust(x, y float64) *tween.Future {
	b := &burst{}
	futures := make([]*tween.Future, 0, DustCount)
	for i := 0; i < DustCount; i++ {
		angle := (math.Pi+common.Degree60)*float64(i)/(DustCount-1) - common.Degree30
		p := &Particle{X: x, Y: y}
		b.particles = append(b.particles, p)
		futures = append(futures, d.clock.To(DustTime, tween.Linear,
			tween.Track{Get: func() float64 { return p.X }, Set: func(v float64) { p.X = v }, To: []float64{x + DustRadius*math.Cos(angle)}},
			tween.Track{Get: func() float64 { return p.Y }, Set: func(v float64) { p.Y = v }, To: []float64{y + DustRadius*math.Sin(angle)}},
		).Start().Future())
	}
	d.bursts = append(d.bursts, b)

	done := tween.NewFuture()
	tween.All(futures...).Then(func() {
		d.bursts = slices.DeleteFunc(d.bursts, func(other *burst) bool { return other == b })
		done.Resolve()
	})
	return done
}

// Particles returns the puffs of every running burst.
func (d *Dust) Particles() []Particle {
	var out []Particle
	for _, b := range d.bursts {
		for _, p := range b.particles {
			out = append(out, *p)
		}
	}
	return out
}
