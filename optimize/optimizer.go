// Package optimize searches for dense packings by basin-hopping Monte
// Carlo: random single-coordinate perturbations, a Metropolis criterion
// that tolerates occasional density losses, and a geometrically cooled
// temperature that freezes the search into a basin.
package optimize

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"crystalpack/packing"
)

// ErrNumericalFault is returned when the working state picks up a
// non-finite coordinate. The Result still carries the best checkpoint
// reached before the fault.
var ErrNumericalFault = errors.New("optimize: non-finite state encountered")

// Stats summarizes a completed run.
type Stats struct {
	Iterations      int           `json:"iterations"`
	Accepted        int           `json:"accepted"`
	Rejected        int           `json:"rejected"`
	Improvements    int           `json:"improvements"`
	AcceptanceRatio float64       `json:"acceptance_ratio"`
	Diverged        bool          `json:"diverged"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Result is the outcome of a run: the densest checkpoint and how the
// search behaved getting there.
type Result struct {
	ID           string         `json:"id"`
	Best         *packing.State `json:"-"`
	BestFraction float64        `json:"best_fraction"`
	Stats        Stats          `json:"stats"`
}

// step-scale clamp bounds.
const (
	minScale = 0.01
	maxScale = 10.0
)

// move is one degree of freedom of the search space.
type move struct {
	kind     moveKind
	instance int
}

type moveKind int

const (
	moveTranslate moveKind = iota
	moveRotate
	moveCellA
	moveCellB
	moveCellGamma
)

// availableMoves enumerates the perturbable coordinates: translation and
// rotation per instance plus each cell parameter the family leaves free.
func availableMoves(st *packing.State) []move {
	moves := make([]move, 0, 2*st.NumInstances()+3)
	for i := 0; i < st.NumInstances(); i++ {
		moves = append(moves, move{kind: moveTranslate, instance: i})
		moves = append(moves, move{kind: moveRotate, instance: i})
	}
	aFree, bFree, gammaFree := st.Cell().DegreesOfFreedom()
	if aFree {
		moves = append(moves, move{kind: moveCellA})
	}
	if bFree {
		moves = append(moves, move{kind: moveCellB})
	}
	if gammaFree {
		moves = append(moves, move{kind: moveCellGamma})
	}
	return moves
}

// Run anneals the state toward a denser packing. The input state is not
// modified; the best configuration found is returned as a deep copy.
//
// The starting configuration must be valid; an overlapping start returns
// packing.ErrInitialOverlap and no result. A non-finite working state
// aborts with ErrNumericalFault alongside the best checkpoint so far.
func Run(start *packing.State, params Params) (Result, error) {
	if err := params.validate(); err != nil {
		return Result{}, err
	}
	if err := start.Validate(); err != nil {
		return Result{}, err
	}

	current := start.Clone()
	if params.ShellRadius > 0 {
		current.SetShell(params.ShellRadius)
	}

	rng := rand.New(rand.NewSource(params.Seed))
	symmetric := distuv.Uniform{Min: -1, Max: 1, Src: rng}
	unit := distuv.Uniform{Min: 0, Max: 1, Src: rng}

	moves := availableMoves(current)

	res := Result{
		ID:           uuid.New().String(),
		Best:         current.Clone(),
		BestFraction: current.PackingFraction(),
	}

	temperature := params.TStart
	ratio := params.coolingRatio()
	scale := 1.0
	currentFraction := res.BestFraction

	var window []float64
	consecutiveRejects := 0
	sinceImprovement := 0
	began := time.Now()

	for iter := 0; iter < params.Iterations; iter++ {
		if params.TimeBudget > 0 && time.Since(began) >= params.TimeBudget {
			break
		}
		if params.Patience > 0 && sinceImprovement >= params.Patience {
			break
		}
		if params.MaxConsecutiveRejects > 0 && consecutiveRejects >= params.MaxConsecutiveRejects {
			res.Stats.Diverged = true
			break
		}
		res.Stats.Iterations++

		trial := current.Clone()
		ok := applyMove(trial, moves[rng.Intn(len(moves))], params, scale, &symmetric)
		if ok && !trial.IsFinite() {
			res.Stats.Elapsed = time.Since(began)
			finalizeStats(&res.Stats)
			return res, ErrNumericalFault
		}

		accepted := false
		if ok && trial.IsValid() {
			fraction := trial.PackingFraction()
			if fraction >= currentFraction {
				accepted = true
			} else {
				loss := currentFraction - fraction
				accepted = unit.Rand() < math.Exp(-loss/temperature)
			}
			if accepted {
				current = trial
				currentFraction = fraction
				if fraction > res.BestFraction {
					res.Best = trial.Clone()
					res.BestFraction = fraction
					res.Stats.Improvements++
					sinceImprovement = -1
				}
			}
		}

		if accepted {
			res.Stats.Accepted++
			consecutiveRejects = 0
			window = append(window, 1)
		} else {
			res.Stats.Rejected++
			consecutiveRejects++
			window = append(window, 0)
		}
		sinceImprovement++

		if params.AdaptWindow > 0 && len(window) == params.AdaptWindow {
			scale = adaptScale(scale, stat.Mean(window, nil))
			window = window[:0]
		}

		temperature *= ratio
	}

	res.Stats.Elapsed = time.Since(began)
	finalizeStats(&res.Stats)
	return res, nil
}

// adaptScale steers the acceptance ratio toward the 30-50% band: a hot
// run with near-universal acceptance wastes iterations on tiny moves, a
// frozen run with near-universal rejection needs finer ones.
func adaptScale(scale, acceptance float64) float64 {
	switch {
	case acceptance > 0.5:
		scale *= 0.9
	case acceptance < 0.3:
		scale *= 1.1
	}
	return math.Min(math.Max(scale, minScale), maxScale)
}

func finalizeStats(s *Stats) {
	if s.Iterations > 0 {
		s.AcceptanceRatio = float64(s.Accepted) / float64(s.Iterations)
	}
}

// applyMove perturbs one coordinate of the trial state. A false return
// means the proposal was structurally impossible (a degenerate cell) and
// counts as a rejection.
func applyMove(trial *packing.State, mv move, params Params, scale float64, u *distuv.Uniform) bool {
	switch mv.kind {
	case moveTranslate:
		dx := u.Rand() * params.StepTranslate * scale
		dy := u.Rand() * params.StepTranslate * scale
		trial.MoveInstance(mv.instance, dx, dy)
		return true
	case moveRotate:
		trial.RotateInstance(mv.instance, u.Rand()*params.StepRotate*scale)
		return true
	case moveCellA:
		cell := trial.Cell()
		if err := cell.SetA(cell.A() * (1 + u.Rand()*params.StepCell*scale)); err != nil {
			return false
		}
		return trial.SetCell(cell) == nil
	case moveCellB:
		cell := trial.Cell()
		if err := cell.SetB(cell.B() * (1 + u.Rand()*params.StepCell*scale)); err != nil {
			return false
		}
		return trial.SetCell(cell) == nil
	case moveCellGamma:
		cell := trial.Cell()
		if err := cell.SetGamma(cell.Gamma() + u.Rand()*params.StepCell*scale); err != nil {
			return false
		}
		return trial.SetCell(cell) == nil
	}
	return false
}
