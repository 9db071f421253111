package char

import (
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/tween"
)

const (
	DefaultFacePeriod = 40.0

	DefaultJumpDuration = 65.0
	DefaultJumpHeight   = 12.0
	DefaultJumpSFX      = "actions/jump"

	DefaultShakeRepeats  = 7
	DefaultShakePeriod   = 40.0
	DefaultShakeMaxScale = 1.15
)

type faceTask struct {
	target common.Direction
	period float64
	timer  *tween.Timer
	done   *tween.Future
}

// FaceDirection turns the character one step every period milliseconds
// until it faces target. The first step happens immediately. Calling it
// again mid-turn retargets the running turn and returns the same future;
// the next step still waits for the pending one.
func (c *Controllable) FaceDirection(target common.Direction, period float64) *tween.Future {
	if period <= 0 {
		period = DefaultFacePeriod
	}
	if c.face != nil {
		c.face.target = target
		c.face.period = period
		return c.face.done
	}
	c.face = &faceTask{target: target, period: period, done: tween.NewFuture()}
	done := c.face.done
	c.faceStep()
	return done
}

func (c *Controllable) faceStep() {
	task := c.face
	next := common.TransitionStep(c.currentDirection, task.target)
	c.SetDirection(next, true, true)
	if next != task.target {
		task.timer = c.clock.Once(task.period, c.faceStep)
		return
	}
	c.face = nil
	task.done.Resolve()
}

// JumpDest is the landing tile of a displacement jump; Distance is the
// signed pixel offset along the movement axis.
type JumpDest struct {
	TileX, TileY int
	Distance     float64
}

// JumpOptions tune a jump. A nil Direction uses the current direction for
// the jump animation.
type JumpOptions struct {
	Duration     float64
	Height       float64
	Dest         *JumpDest
	Direction    *common.Direction
	SFX          string
	Bounce       bool
	TimeOnFinish float64
}

// Jump runs an in-place hop, or with a destination, a displacement jump that
// holds the physics world paused until the character has landed. A jump
// requested while one is running returns the running jump's future.
func (c *Controllable) Jump(opts JumpOptions) *tween.Future {
	if c.jump != nil && !c.jump.IsResolved() {
		return c.jump
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultJumpDuration
	}
	if opts.Height == 0 {
		opts.Height = DefaultJumpHeight
	}
	if opts.SFX == "" {
		opts.SFX = DefaultJumpSFX
	}
	if c.sfx != nil {
		c.sfx.Play(opts.SFX)
	}

	landed := tween.NewFuture()
	if opts.Dest != nil && opts.Dest.Distance != 0 {
		c.displacementJump(opts, landed)
	} else {
		c.inPlaceJump(opts, landed)
	}

	done := landed
	if opts.TimeOnFinish > 0 {
		done = tween.NewFuture()
		landed.Then(func() {
			c.clock.Once(opts.TimeOnFinish, done.Resolve)
		})
	}
	c.jump = done
	return done
}

func (c *Controllable) bodyTrack(axis byte, to ...float64) tween.Track {
	return tween.Track{
		Get: func() float64 {
			x, y := c.body.Position()
			if axis == 'x' {
				return x
			}
			return y
		},
		Set: func(v float64) {
			x, y := c.body.Position()
			if axis == 'x' {
				c.body.SetPosition(v, y)
			} else {
				c.body.SetPosition(x, v)
			}
		},
		To: to,
	}
}

func (c *Controllable) displacementJump(opts JumpOptions, landed *tween.Future) {
	dest := opts.Dest
	tw, th := c.field.TileSize()
	heroX := tw * (float64(dest.TileX) + 0.5)
	heroY := th * (float64(dest.TileY) + 0.5)
	half := float64(int(opts.Height) >> 1)
	dir := c.currentDirection
	if opts.Direction != nil && opts.Direction.Valid() {
		dir = *opts.Direction
	}
	key := dir.String()

	bx, by := c.body.Position()
	var tracks []tween.Track
	if dest.TileX == c.tileX {
		tracks = []tween.Track{
			c.bodyTrack('y', by+dest.Distance),
			c.bodyTrack('x', heroX),
		}
	} else {
		tracks = []tween.Track{
			c.bodyTrack('x', bx+dest.Distance),
			c.bodyTrack('y', heroY-half, heroY-opts.Height, heroY-half, heroY),
		}
	}

	paused := c.world != nil && c.world.Pause()
	c.Jumping = true
	if c.shadow != nil {
		c.shadow.SetVisible(false)
	}
	hasJump := c.sprite.HasAction(string(Jump))

	finish := func() {
		if paused {
			c.world.Resume()
		}
		c.Jumping = false
		landed.Resolve()
	}
	fly := func() {
		c.clock.To(opts.Duration, tween.Linear, tracks...).OnComplete(func() {
			if c.shadow != nil {
				c.shadow.SetPosition(heroX, heroY)
				c.shadow.SetVisible(true)
			}
			if hasJump {
				c.Play(Jump, key, true, 0).Reverse().OnComplete(finish)
				return
			}
			finish()
		}).Start()
	}
	if hasJump {
		c.Play(Jump, key, true, 0).OnComplete(fly)
		return
	}
	fly()
}

func (c *Controllable) inPlaceJump(opts JumpOptions, landed *tween.Future) {
	previous := c.shadowFollowing
	c.shadowFollowing = false
	_, py := c.body.Position()

	done := func() {
		c.shadowFollowing = previous
		landed.Resolve()
	}
	up := c.clock.To(opts.Duration, tween.QuadOut, c.bodyTrack('y', py-opts.Height)).Yoyo(!opts.Bounce)
	if opts.Bounce {
		down := c.clock.To(opts.Duration*2, tween.BounceOut, c.bodyTrack('y', py))
		down.OnComplete(done)
		up.Chain(down)
	} else {
		up.OnComplete(done)
	}
	up.Start()
}

type ShakeOptions struct {
	Repeats  int
	Period   float64
	Side     bool
	MaxScale float64
}

// Shake cycles the sprite scale through max, halfway and rest Repeats times.
// Side shakes scale x, otherwise y. A shake requested while one is running
// returns the running shake's future.
func (c *Controllable) Shake(opts ShakeOptions) *tween.Future {
	if c.shake != nil && !c.shake.IsResolved() {
		return c.shake
	}
	if opts.Repeats <= 0 {
		opts.Repeats = DefaultShakeRepeats
	}
	if opts.Period <= 0 {
		opts.Period = DefaultShakePeriod
	}
	if opts.MaxScale == 0 {
		opts.MaxScale = DefaultShakeMaxScale
	}
	scales := []float64{opts.MaxScale, (opts.MaxScale + 1) / 2, 1}
	total := len(scales) * opts.Repeats
	done := tween.NewFuture()
	counter := 0
	c.clock.Repeat(opts.Period, total, func() {
		sx, sy := c.sprite.Scale()
		if opts.Side {
			sx = scales[counter%len(scales)]
		} else {
			sy = scales[counter%len(scales)]
		}
		c.sprite.SetScale(sx, sy)
		counter++
		if counter == total {
			done.Resolve()
		}
	})
	c.shake = done
	return done
}
