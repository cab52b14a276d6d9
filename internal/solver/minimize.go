package solver

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Minimum is the outcome of a one-dimensional minimisation.
type Minimum struct {
	X           float64
	F           float64
	Evaluations int
	Iterations  int
	Status      optimize.Status
}

// Minimize1D minimises f from x0 with Nelder-Mead. The search stops when f
// improves by less than tol over several iterations or after maxIter major
// iterations. An error is returned only if no evaluation took place; the
// caller judges convergence from F.
func Minimize1D(f func(float64) float64, x0, tol float64, maxIter int) (Minimum, error) {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return f(x[0])
		},
	}
	settings := &optimize.Settings{
		MajorIterations: maxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   tol,
			Iterations: 10,
		},
	}

	res, err := optimize.Minimize(problem, []float64{x0}, settings, &optimize.NelderMead{})
	if res == nil || len(res.X) == 0 {
		if err == nil {
			err = ErrMaxIterations
		}
		return Minimum{X: x0, F: math.Inf(1)}, err
	}
	return Minimum{
		X:           res.X[0],
		F:           res.F,
		Evaluations: res.FuncEvaluations,
		Iterations:  res.MajorIterations,
		Status:      res.Status,
	}, nil
}
