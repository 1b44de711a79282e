package optimize

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrBadParams is returned by Run when the parameter set is unusable.
var ErrBadParams = errors.New("optimize: invalid parameters")

// Params configures a single annealing run. Zero values for TimeBudget
// and Patience disable those termination conditions.
type Params struct {
	// Iterations is the iteration budget.
	Iterations int `json:"iterations"`
	// TimeBudget bounds the wall-clock duration of the run.
	TimeBudget time.Duration `json:"time_budget,omitempty"`
	// Patience ends the run after this many consecutive iterations
	// without a new best fraction.
	Patience int `json:"patience,omitempty"`
	// MaxConsecutiveRejects ends the run as diverged after an unbroken
	// run of rejections this long.
	MaxConsecutiveRejects int `json:"max_consecutive_rejects"`

	// TStart and TFinal bound the geometric temperature schedule.
	TStart float64 `json:"t_start"`
	TFinal float64 `json:"t_final"`

	// StepTranslate is the translation step in fractional cell units,
	// StepRotate the rotation step in radians, StepCell the relative
	// step for cell lengths and the absolute step for gamma.
	StepTranslate float64 `json:"step_translate"`
	StepRotate    float64 `json:"step_rotate"`
	StepCell      float64 `json:"step_cell"`

	// AdaptWindow is the number of iterations between step-scale
	// adjustments. Zero disables adaptation.
	AdaptWindow int `json:"adapt_window,omitempty"`

	// ShellRadius overrides the adaptive neighbor-shell radius when
	// positive.
	ShellRadius int `json:"shell_radius,omitempty"`

	// Seed drives all randomness in the run.
	Seed uint64 `json:"seed"`
}

// DefaultParams returns a parameter set suitable for small shapes.
func DefaultParams() Params {
	return Params{
		Iterations:            1000,
		MaxConsecutiveRejects: 500,
		TStart:                0.1,
		TFinal:                0.001,
		StepTranslate:         0.1,
		StepRotate:            math.Pi / 4,
		StepCell:              0.1,
		AdaptWindow:           50,
	}
}

func (p Params) validate() error {
	switch {
	case p.Iterations < 1:
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrBadParams, p.Iterations)
	case p.TStart <= 0 || p.TFinal <= 0:
		return fmt.Errorf("%w: temperatures must be positive, got start=%v final=%v", ErrBadParams, p.TStart, p.TFinal)
	case p.TFinal > p.TStart:
		return fmt.Errorf("%w: final temperature %v above start %v", ErrBadParams, p.TFinal, p.TStart)
	case p.StepTranslate <= 0 || p.StepRotate <= 0 || p.StepCell <= 0:
		return fmt.Errorf("%w: step sizes must be positive", ErrBadParams)
	case p.TimeBudget < 0 || p.Patience < 0 || p.MaxConsecutiveRejects < 0 || p.AdaptWindow < 0 || p.ShellRadius < 0:
		return fmt.Errorf("%w: negative limit", ErrBadParams)
	}
	return nil
}

// coolingRatio is the per-iteration geometric decay factor taking the
// temperature from TStart to TFinal over the iteration budget.
func (p Params) coolingRatio() float64 {
	return math.Pow(p.TFinal/p.TStart, 1/float64(p.Iterations))
}
