package anim

// Playback is the handle for one started animation. OnComplete callbacks
// fire once, when a non-looping animation reaches its last frame.
type Playback struct {
	def        Def
	frame      int
	step       int
	timer      float64
	fps        float64
	playing    bool
	done       bool
	onComplete []func()
}

func (p *Playback) Def() Def { return p.def }

func (p *Playback) Frame() int { return p.frame }

func (p *Playback) Playing() bool { return p.playing }

func (p *Playback) FPS() float64 { return p.fps }

// OnComplete registers fn to run when playback finishes. If it already
// finished, fn runs immediately.
func (p *Playback) OnComplete(fn func()) {
	if fn == nil {
		return
	}
	if p.done {
		fn()
		return
	}
	p.onComplete = append(p.onComplete, fn)
}

// Reverse plays the animation backwards from its last frame.
func (p *Playback) Reverse() *Playback {
	p.step = -1
	p.frame = p.def.FrameCount - 1
	p.timer = 0
	return p
}

// Stop halts playback; reset rewinds to the first frame.
func (p *Playback) Stop(reset bool) {
	p.playing = false
	if reset {
		p.frame = 0
	}
}

func (p *Playback) advance(dt float64) {
	if !p.playing || p.fps <= 0 {
		return
	}
	p.timer += dt
	perFrame := 1000 / p.fps
	for p.playing && p.timer >= perFrame {
		p.timer -= perFrame
		next := p.frame + p.step
		if next >= 0 && next < p.def.FrameCount {
			p.frame = next
			continue
		}
		if p.def.Loop {
			if p.step > 0 {
				p.frame = 0
			} else {
				p.frame = p.def.FrameCount - 1
			}
			continue
		}
		p.playing = false
		p.finish()
	}
}

func (p *Playback) finish() {
	if p.done {
		return
	}
	p.done = true
	callbacks := p.onComplete
	p.onComplete = nil
	for _, fn := range callbacks {
		fn()
	}
}

// Sprite plays animations from a library and carries the display state the
// movement core touches: scale and visibility.
type Sprite struct {
	lib     *Library
	current *Playback
	scaleX  float64
	scaleY  float64
	visible bool
}

func NewSprite(lib *Library) *Sprite {
	return &Sprite{lib: lib, scaleX: 1, scaleY: 1, visible: true}
}

func (s *Sprite) Library() *Library { return s.lib }

func (s *Sprite) HasAction(action string) bool {
	return s.lib.HasAction(action)
}

func (s *Sprite) FrameRate(action, key string) float64 {
	return s.lib.FrameRate(action, key)
}

// Validate reports every action/key pair the library is missing.
func (s *Sprite) Validate(actions []string, keys []string) error {
	return s.lib.Validate(actions, keys)
}

func (s *Sprite) ValidateOneShot(action string, keys []string) error {
	return s.lib.ValidateOneShot(action, keys)
}

// Play starts (or, with start false, loads stopped) the animation of action
// seen from key. frameRate overrides the authored rate when positive. An
// unknown action or key is a configuration error and panics.
func (s *Sprite) Play(action, key string, start bool, frameRate float64) *Playback {
	def, err := s.lib.Def(action, key)
	if err != nil {
		panic(err)
	}
	fps := def.FPS
	if frameRate > 0 {
		fps = frameRate
	}
	if cur := s.current; cur != nil && start && cur.playing && cur.def == def && cur.step > 0 && cur.fps == fps {
		return cur
	}
	if s.current != nil && !s.current.done && s.current.def != def {
		s.current.playing = false
	}
	p := &Playback{def: def, step: 1, fps: fps, playing: start}
	s.current = p
	return p
}

// Current returns the active playback, nil before the first Play.
func (s *Sprite) Current() *Playback { return s.current }

// Advance moves the current animation forward by dt milliseconds.
func (s *Sprite) Advance(dt float64) {
	if s.current != nil {
		s.current.advance(dt)
	}
}

func (s *Sprite) Scale() (x, y float64) { return s.scaleX, s.scaleY }

func (s *Sprite) SetScale(x, y float64) {
	s.scaleX = x
	s.scaleY = y
}

func (s *Sprite) Visible() bool { return s.visible }

func (s *Sprite) SetVisible(v bool) { s.visible = v }
