package playback

import "math"

// Default speed table: rates in ticks per second with 50 as 1x
const (
	DefaultBaseRate   = 50
	DefaultSpeedIndex = 5
)

var DefaultSpeeds = []int{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

// speedControl holds the steppable rate table and a per-frame override
type speedControl struct {
	baseRate     int
	rates        []int
	defaultIndex int
	index        int
	// 0 means no override
	custom float32
}

func newSpeedControl(baseRate int, rates []int, defaultIndex int) speedControl {
	if baseRate <= 0 {
		baseRate = DefaultBaseRate
	}
	if len(rates) == 0 {
		rates = DefaultSpeeds
	}
	defaultIndex = min(max(defaultIndex, 0), len(rates)-1)
	return speedControl{
		baseRate:     baseRate,
		rates:        append([]int(nil), rates...),
		defaultIndex: defaultIndex,
		index:        defaultIndex,
	}
}

// multiplier returns the effective speed relative to the base rate
func (s *speedControl) multiplier() float32 {
	if s.custom > 0 {
		return s.custom
	}
	return float32(s.rates[s.index]) / float32(s.baseRate)
}

// targetRate converts the multiplier into ticks per second, at least 1
func (s *speedControl) targetRate() int {
	rate := int(math.Round(float64(s.baseRate) * float64(s.multiplier())))
	return max(rate, 1)
}

func (s *speedControl) step(delta int) {
	s.index = min(max(s.index+delta, 0), len(s.rates)-1)
	s.custom = 0
}

func (s *speedControl) override(m float32) {
	s.custom = m
}

// clearOverride drops a per-frame override and reports whether one was set
func (s *speedControl) clearOverride() bool {
	had := s.custom > 0
	s.custom = 0
	return had
}

func (s *speedControl) restoreDefault() {
	s.index = s.defaultIndex
	s.custom = 0
}

func (e *Engine) applyRate() {
	e.host.SetTargetRate(e.speed.targetRate())
}

// IncreaseSpeed steps one notch up the speed table
func (e *Engine) IncreaseSpeed() {
	e.speed.step(1)
	e.applyRate()
}

// DecreaseSpeed steps one notch down the speed table
func (e *Engine) DecreaseSpeed() {
	e.speed.step(-1)
	e.applyRate()
}

// TargetRate returns the simulation rate the host was last asked for
func (e *Engine) TargetRate() int {
	return e.speed.targetRate()
}

// SpeedMultiplier returns the current speed relative to 1x
func (e *Engine) SpeedMultiplier() float32 {
	return e.speed.multiplier()
}
