package tween

import (
	"math"
	"sort"

	"github.com/milk9111/overworld/common"
)

// Scheduler drives timers and tweens from the simulation tick. Time is in
// milliseconds and only moves when Advance is called, so every callback runs
// on the simulation goroutine.
type Scheduler struct {
	now     float64
	elapsed float64
	seq     uint64
	firing  bool

	timers []*Timer
	tweens []*Tween
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the scheduler clock in milliseconds.
func (s *Scheduler) Now() float64 {
	return s.now
}

// Elapsed returns the length of the last Advance step in milliseconds.
func (s *Scheduler) Elapsed() float64 {
	return s.elapsed
}

// Pending reports how many timers and tweens are still live.
func (s *Scheduler) Pending() int {
	return len(s.timers) + len(s.tweens)
}

// Advance moves the clock forward, firing due timers in due-time order and
// then stepping running tweens in start order.
func (s *Scheduler) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	s.elapsed = dt
	s.now += dt
	s.fireTimers()
	s.stepTweens(dt)
}

// Once calls fn after delay milliseconds.
func (s *Scheduler) Once(delay float64, fn func()) *Timer {
	return s.Repeat(delay, 1, fn)
}

// Repeat calls fn count times, period milliseconds apart, the first call one
// period from now.
func (s *Scheduler) Repeat(period float64, count int, fn func()) *Timer {
	if count < 1 {
		count = 1
	}
	s.seq++
	t := &Timer{
		dueAt:     s.now + math.Max(period, 0),
		period:    math.Max(period, 1),
		remaining: count,
		fn:        fn,
		seq:       s.seq,
	}
	s.timers = append(s.timers, t)
	return t
}

func (s *Scheduler) fireTimers() {
	s.firing = true
	defer func() { s.firing = false }()
	for {
		next := s.nextDue()
		if next == nil {
			break
		}
		next.remaining--
		if next.remaining <= 0 {
			next.expired = true
		} else {
			next.dueAt += next.period
		}
		if next.fn != nil {
			next.fn()
		}
	}
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.expired {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live
}

func (s *Scheduler) nextDue() *Timer {
	var due []*Timer
	for _, t := range s.timers {
		if !t.expired && t.dueAt <= s.now {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].dueAt != due[j].dueAt {
			return due[i].dueAt < due[j].dueAt
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}

func (s *Scheduler) stepTweens(dt float64) {
	running := append([]*Tween(nil), s.tweens...)
	for _, tw := range running {
		if tw.state != tweenRunning {
			continue
		}
		if tw.fresh {
			tw.fresh = false
			continue
		}
		tw.elapsed += dt
		tw.apply()
		if tw.elapsed >= tw.duration {
			tw.phaseDone()
		}
	}
	live := s.tweens[:0]
	for _, tw := range s.tweens {
		if tw.state == tweenRunning {
			live = append(live, tw)
		}
	}
	for i := len(live); i < len(s.tweens); i++ {
		s.tweens[i] = nil
	}
	s.tweens = live
}

// Timer is a scheduled one-shot or repeating callback.
type Timer struct {
	dueAt     float64
	period    float64
	remaining int
	fn        func()
	seq       uint64
	expired   bool
}

// Expired reports whether the timer has fired its last call or was
// cancelled.
func (t *Timer) Expired() bool {
	return t == nil || t.expired
}

func (t *Timer) Cancel() {
	if t != nil {
		t.expired = true
	}
}

// Track animates one property through waypoints. The start value is read
// with Get when the tween starts; To holds the remaining waypoints, the last
// being the final value.
type Track struct {
	Get func() float64
	Set func(float64)
	To  []float64

	from float64
}

func (tr *Track) value(k float64) float64 {
	if len(tr.To) == 0 {
		return tr.from
	}
	n := len(tr.To)
	f := k * float64(n)
	i := int(math.Floor(f))
	if i >= n {
		return tr.To[n-1]
	}
	if i < 0 {
		return tr.from
	}
	a := tr.from
	if i > 0 {
		a = tr.To[i-1]
	}
	return common.Lerp(a, tr.To[i], f-float64(i))
}

type tweenState int

const (
	tweenIdle tweenState = iota
	tweenRunning
	tweenDone
)

// Tween interpolates one or more tracks over a duration.
type Tween struct {
	s        *Scheduler
	tracks   []Track
	duration float64
	easing   Easing

	yoyo      bool
	reversing bool

	state   tweenState
	elapsed float64
	// fresh tweens were started by a timer during the current Advance and
	// sit out its step.
	fresh bool

	next       *Tween
	onComplete []func()
	onUpdate   []func(k float64)
	future     *Future
}

// To builds a stopped tween; call Start to run it.
func (s *Scheduler) To(duration float64, easing Easing, tracks ...Track) *Tween {
	if easing == nil {
		easing = Linear
	}
	return &Tween{
		s:        s,
		tracks:   tracks,
		duration: math.Max(duration, 0),
		easing:   easing,
		future:   NewFuture(),
	}
}

// Yoyo plays the tween back to its start once it reaches the end.
func (t *Tween) Yoyo(on bool) *Tween {
	t.yoyo = on
	return t
}

// Chain starts next when this tween completes.
func (t *Tween) Chain(next *Tween) *Tween {
	t.next = next
	return t
}

func (t *Tween) OnComplete(fn func()) *Tween {
	t.onComplete = append(t.onComplete, fn)
	return t
}

func (t *Tween) OnUpdate(fn func(k float64)) *Tween {
	t.onUpdate = append(t.onUpdate, fn)
	return t
}

// Future resolves when this tween (not its chain) completes.
func (t *Tween) Future() *Future {
	return t.future
}

func (t *Tween) Running() bool {
	return t.state == tweenRunning
}

// Start captures start values and schedules the tween.
func (t *Tween) Start() *Tween {
	if t.state == tweenRunning {
		return t
	}
	for i := range t.tracks {
		if t.tracks[i].Get != nil {
			t.tracks[i].from = t.tracks[i].Get()
		}
	}
	t.state = tweenRunning
	t.elapsed = 0
	t.reversing = false
	t.fresh = t.s.firing
	t.s.tweens = append(t.s.tweens, t)
	return t
}

// Stop halts the tween without running completion callbacks.
func (t *Tween) Stop() {
	t.state = tweenDone
}

func (t *Tween) progress() float64 {
	if t.duration <= 0 {
		return 1
	}
	return clamp01(t.elapsed / t.duration)
}

func (t *Tween) apply() {
	k := t.easing(t.progress())
	if t.reversing {
		k = 1 - k
	}
	for i := range t.tracks {
		if t.tracks[i].Set != nil {
			t.tracks[i].Set(t.tracks[i].value(k))
		}
	}
	for _, fn := range t.onUpdate {
		fn(k)
	}
}

func (t *Tween) phaseDone() {
	if t.yoyo && !t.reversing {
		t.reversing = true
		t.elapsed = 0
		return
	}
	t.state = tweenDone
	for _, fn := range t.onComplete {
		fn()
	}
	t.future.Resolve()
	if t.next != nil {
		t.next.Start()
	}
}
