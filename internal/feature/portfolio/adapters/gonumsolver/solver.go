// Package gonumsolver implements the portfolio Solver interface on top of
// gonum's unconstrained optimizers. The weight-sum and target-return
// constraints are handled with quadratic penalties and the per-asset bounds
// with projection, following the standard penalty-method formulation.
package gonumsolver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

const (
	penaltyWeight = 1000.0
	sumTolerance  = 1e-12
)

// Solver adapts one gonum optimization method to usecase.Solver.
type Solver struct {
	name   string
	method func() optimize.Method
}

var _ usecase.Solver = (*Solver)(nil)

// NewBFGS returns a BFGS-based solver. First in the default priority order:
// fast and reliable on well-conditioned covariance matrices.
func NewBFGS() *Solver {
	return &Solver{name: "bfgs", method: func() optimize.Method { return &optimize.BFGS{} }}
}

// NewLBFGS returns an L-BFGS-based solver, a lower-memory second attempt.
func NewLBFGS() *Solver {
	return &Solver{name: "lbfgs", method: func() optimize.Method { return &optimize.LBFGS{} }}
}

// NewNelderMead returns a derivative-free solver. Last in the default order:
// slowest, but tolerant of the gradient pathologies that break quasi-Newton
// methods on nearly singular problems.
func NewNelderMead() *Solver {
	return &Solver{name: "neldermead", method: func() optimize.Method { return &optimize.NelderMead{} }}
}

// Defaults returns the solver chain in priority order.
func Defaults() []usecase.Solver {
	return []usecase.Solver{NewBFGS(), NewLBFGS(), NewNelderMead()}
}

// Name returns the solver identifier used in OptimizationResult.SolverUsed.
func (s *Solver) Name() string { return s.name }

// Solve minimizes the penalized objective for the requested problem and
// returns a bound-feasible, sum-to-one weight vector. Any construction or
// solve failure, including panics inside the optimizer, is returned as an
// error so the orchestrator can move on to the next solver.
func (s *Solver) Solve(p usecase.SolverProblem) (sol usecase.SolverSolution, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("solver %s panicked: %v", s.name, r)
		}
	}()

	n := len(p.Mu)
	if n == 0 || len(p.Sigma) != n {
		return usecase.SolverSolution{}, fmt.Errorf("dimension mismatch: %d returns, %d covariance rows", n, len(p.Sigma))
	}
	for i := range p.Sigma {
		if len(p.Sigma[i]) != n {
			return usecase.SolverSolution{}, fmt.Errorf("covariance row %d has %d columns, want %d", i, len(p.Sigma[i]), n)
		}
	}

	problem, err := s.buildProblem(p)
	if err != nil {
		return usecase.SolverSolution{}, err
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, s.method())
	if err != nil {
		return usecase.SolverSolution{}, fmt.Errorf("%s minimize: %w", s.name, err)
	}
	switch result.Status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence, optimize.FunctionThreshold:
	default:
		return usecase.SolverSolution{}, fmt.Errorf("%s did not converge: status=%v", s.name, result.Status)
	}

	w := projectFeasible(result.X, p.LowerBound, p.UpperBound)
	return usecase.SolverSolution{Weights: w}, nil
}

// buildProblem constructs the penalized objective and its gradient for the
// requested optimization target.
func (s *Solver) buildProblem(p usecase.SolverProblem) (optimize.Problem, error) {
	n := len(p.Mu)

	moments := func(x []float64) (ret, variance float64, xp []float64) {
		xp = projectBounds(x, p.LowerBound, p.UpperBound)
		for i := 0; i < n; i++ {
			ret += p.Mu[i] * xp[i]
			for j := 0; j < n; j++ {
				variance += xp[i] * xp[j] * p.Sigma[i][j]
			}
		}
		return ret, variance, xp
	}
	sumPenalty := func(xp []float64) float64 {
		sum := 0.0
		for _, v := range xp {
			sum += v
		}
		return penaltyWeight * (sum - 1) * (sum - 1)
	}
	addSumPenaltyGrad := func(grad, xp []float64) {
		sum := 0.0
		for _, v := range xp {
			sum += v
		}
		for i := range grad {
			grad[i] += 2 * penaltyWeight * (sum - 1)
		}
	}

	switch p.Objective {
	case entity.ObjectiveMaxSharpe:
		return optimize.Problem{
			Func: func(x []float64) float64 {
				ret, variance, xp := moments(x)
				sd := math.Sqrt(math.Max(variance, 1e-10))
				return -(ret-p.RiskFreeRate)/sd + sumPenalty(xp)
			},
			Grad: func(grad, x []float64) {
				ret, variance, xp := moments(x)
				sd := math.Sqrt(math.Max(variance, 1e-10))
				for i := 0; i < n; i++ {
					var dVar float64
					for j := 0; j < n; j++ {
						dVar += 2 * p.Sigma[i][j] * xp[j]
					}
					grad[i] = -p.Mu[i]/sd + (ret-p.RiskFreeRate)*dVar/(2*sd*sd*sd)
				}
				addSumPenaltyGrad(grad, xp)
			},
		}, nil

	case entity.ObjectiveMinVolatility:
		return optimize.Problem{
			Func: func(x []float64) float64 {
				_, variance, xp := moments(x)
				return variance + sumPenalty(xp)
			},
			Grad: func(grad, x []float64) {
				_, _, xp := moments(x)
				for i := 0; i < n; i++ {
					grad[i] = 0
					for j := 0; j < n; j++ {
						grad[i] += 2 * p.Sigma[i][j] * xp[j]
					}
				}
				addSumPenaltyGrad(grad, xp)
			},
		}, nil

	case entity.ObjectiveEfficientReturn:
		target := p.TargetReturn
		return optimize.Problem{
			Func: func(x []float64) float64 {
				ret, variance, xp := moments(x)
				obj := variance + sumPenalty(xp)
				obj += penaltyWeight * (ret - target) * (ret - target)
				return obj
			},
			Grad: func(grad, x []float64) {
				ret, _, xp := moments(x)
				for i := 0; i < n; i++ {
					grad[i] = 0
					for j := 0; j < n; j++ {
						grad[i] += 2 * p.Sigma[i][j] * xp[j]
					}
					grad[i] += 2 * penaltyWeight * (ret - target) * p.Mu[i]
				}
				addSumPenaltyGrad(grad, xp)
			},
		}, nil
	}
	return optimize.Problem{}, fmt.Errorf("unknown objective: %s", p.Objective)
}

// projectBounds clips every coordinate to [lo, hi].
func projectBounds(x []float64, lo, hi float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Max(lo, math.Min(hi, v))
	}
	return out
}

// projectFeasible clips to bounds and then redistributes the sum deficit
// proportionally to the remaining slack, so the result satisfies both the
// bounds and the sum-to-one constraint whenever the constraint set is
// non-empty (n*hi >= 1 >= n*lo).
func projectFeasible(x []float64, lo, hi float64) []float64 {
	w := projectBounds(x, lo, hi)
	for iter := 0; iter < 50; iter++ {
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		diff := 1 - sum
		if math.Abs(diff) <= sumTolerance {
			break
		}
		var totalSlack float64
		slack := make([]float64, len(w))
		for i, v := range w {
			if diff > 0 {
				slack[i] = hi - v
			} else {
				slack[i] = v - lo
			}
			totalSlack += slack[i]
		}
		if totalSlack <= 0 {
			break // infeasible bounds, validator will reject
		}
		scale := math.Max(-1, math.Min(1, diff/totalSlack))
		for i := range w {
			w[i] += scale * slack[i]
		}
	}
	return w
}
