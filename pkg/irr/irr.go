// Package irr finds the internal rate of return of a periodic cashflow
// sequence and annualizes it.
//
// The root search widens a window around the initial guess until the net
// present value changes sign inside it, then refines every bracket with a
// safeguarded Newton iteration that falls back to bisection whenever the
// Newton step would leave the bracket. When several roots share the first
// window, the one closest to the guess is returned.
package irr

import (
	"errors"
	"fmt"
	"math"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
)

var (
	// ErrNoSignChange is returned when the cashflows are all inflows or all
	// outflows; no rate can zero their present value.
	ErrNoSignChange = errors.New("no sign change")

	// ErrNoConvergence is returned when no root is bracketed or a bracket
	// could not be refined within the iteration cap.
	ErrNoConvergence = errors.New("IRR did not converge")

	// ErrInvalidFrequency is returned for a non-positive periods-per-year value.
	ErrInvalidFrequency = errors.New("frequency per year must be positive")
)

// Result holds a solved rate per period and its annual equivalent.
type Result struct {
	PeriodRate float64
	AnnualRate float64
	Iterations int
}

// Solver carries the root-finding parameters. The zero value is not usable;
// start from DefaultSolver.
type Solver struct {
	Guess         float64
	LowerBound    float64
	UpperBound    float64
	HalfWidth     float64
	Segments      int
	MaxIterations int
	Tolerance     float64
}

// DefaultSolver returns a Solver configured with the package defaults.
func DefaultSolver() Solver {
	return Solver{
		Guess:         constants.IRRInitialGuess,
		LowerBound:    constants.IRRLowerBound,
		UpperBound:    constants.IRRUpperBound,
		HalfWidth:     constants.IRRInitialHalfWidth,
		Segments:      constants.IRRScanSegments,
		MaxIterations: constants.IRRMaxIterations,
		Tolerance:     constants.IRRTolerance,
	}
}

// Solve finds the periodic IRR with the default solver and annualizes it.
func Solve(cashflows []float64, frequencyPerYear int) (Result, error) {
	return DefaultSolver().Solve(cashflows, frequencyPerYear)
}

// Solve finds the periodic IRR of cashflows and annualizes it over
// frequencyPerYear periods.
func (s Solver) Solve(cashflows []float64, frequencyPerYear int) (Result, error) {
	if frequencyPerYear <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidFrequency, frequencyPerYear)
	}
	rate, iterations, err := s.PeriodRate(cashflows)
	if err != nil {
		return Result{}, err
	}
	return Result{
		PeriodRate: rate,
		AnnualRate: Annualize(rate, frequencyPerYear),
		Iterations: iterations,
	}, nil
}

// PeriodRate returns the per-period rate r with NPV(r, cashflows) == 0 and
// the number of refinement iterations spent.
func (s Solver) PeriodRate(cashflows []float64) (float64, int, error) {
	if !HasSignChange(cashflows) {
		return 0, 0, ErrNoSignChange
	}
	if s.Segments <= 0 || s.HalfWidth <= 0 || s.MaxIterations <= 0 {
		return 0, 0, fmt.Errorf("irr: invalid solver parameters %+v", s)
	}

	totalIterations := 0
	for half := s.HalfWidth; ; half *= 2 {
		lo := math.Max(s.Guess-half, s.LowerBound)
		hi := math.Min(s.Guess+half, s.UpperBound)

		roots, iterations, err := s.scanWindow(cashflows, lo, hi)
		totalIterations += iterations
		if err != nil {
			return 0, totalIterations, err
		}
		if len(roots) > 0 {
			return s.closest(roots), totalIterations, nil
		}
		if lo <= s.LowerBound && hi >= s.UpperBound {
			return 0, totalIterations, ErrNoConvergence
		}
	}
}

// scanWindow walks [lo, hi] on a uniform grid and refines every sign change.
func (s Solver) scanWindow(cashflows []float64, lo, hi float64) ([]float64, int, error) {
	var roots []float64
	iterations := 0
	step := (hi - lo) / float64(s.Segments)

	prevX := lo
	prevF := NPV(lo, cashflows)
	if prevF == 0 {
		roots = append(roots, lo)
	}
	for k := 1; k <= s.Segments; k++ {
		x := lo + float64(k)*step
		if k == s.Segments {
			x = hi
		}
		f := NPV(x, cashflows)
		if !isFinite(f) || !isFinite(prevF) {
			prevX, prevF = x, f
			continue
		}
		switch {
		case f == 0:
			roots = append(roots, x)
		case prevF != 0 && (prevF < 0) != (f < 0):
			root, n, err := s.refine(cashflows, prevX, x, prevF)
			iterations += n
			if err != nil {
				return nil, iterations, err
			}
			roots = append(roots, root)
		}
		prevX, prevF = x, f
	}
	return roots, iterations, nil
}

// refine converges on the single root inside a bracket [a, b] whose
// endpoints have opposite NPV signs.
func (s Solver) refine(cashflows []float64, a, b, fa float64) (float64, int, error) {
	// neg holds the endpoint with negative NPV, pos the positive one.
	neg, pos := a, b
	if fa > 0 {
		neg, pos = b, a
	}

	x := 0.5 * (a + b)
	for iter := 1; iter <= s.MaxIterations; iter++ {
		f, df := npvAndDerivative(x, cashflows)
		if f == 0 {
			return x, iter, nil
		}
		if f < 0 {
			neg = x
		} else {
			pos = x
		}

		next := x - f/df
		if df == 0 || !isFinite(next) || (next-neg)*(next-pos) >= 0 {
			next = 0.5 * (neg + pos)
		}
		if math.Abs(next-x) <= s.Tolerance*(1+math.Abs(x)) || math.Abs(pos-neg) <= s.Tolerance {
			return next, iter, nil
		}
		x = next
	}
	return 0, s.MaxIterations, ErrNoConvergence
}

// closest picks the root nearest the guess, preferring the smaller magnitude
// on a tie.
func (s Solver) closest(roots []float64) float64 {
	best := roots[0]
	for _, r := range roots[1:] {
		d, bd := math.Abs(r-s.Guess), math.Abs(best-s.Guess)
		if d < bd || (d == bd && math.Abs(r) < math.Abs(best)) {
			best = r
		}
	}
	return best
}

// Annualize compounds a periodic rate over frequencyPerYear periods.
func Annualize(periodRate float64, frequencyPerYear int) float64 {
	return math.Pow(1+periodRate, float64(frequencyPerYear)) - 1
}

// NPV discounts cashflows at rate, with cashflows[0] at t=0.
func NPV(rate float64, cashflows []float64) float64 {
	npv, _ := npvAndDerivative(rate, cashflows)
	return npv
}

// npvAndDerivative returns (NPV, dNPV/dr).
//
//	NPV    = Σ cf_t / (1+r)^t
//	dNPV/dr = Σ −t · cf_t / (1+r)^(t+1)
func npvAndDerivative(rate float64, cashflows []float64) (float64, float64) {
	base := 1 + rate
	var npv, deriv float64
	discount := 1.0
	for t, cf := range cashflows {
		npv += cf / discount
		deriv += -float64(t) * cf / (discount * base)
		discount *= base
	}
	return npv, deriv
}

// HasSignChange reports whether cashflows hold both an inflow and an outflow.
func HasSignChange(cashflows []float64) bool {
	hasPositive, hasNegative := false, false
	for _, cf := range cashflows {
		if cf > 0 {
			hasPositive = true
		} else if cf < 0 {
			hasNegative = true
		}
	}
	return hasPositive && hasNegative
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
