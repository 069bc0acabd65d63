package solver

import "math"

// Bisection halves the payment bracket [0, loan] until the end balance at the
// midpoint is within epsilon of zero or the bracket is no wider than epsilon.
// It aborts once the iteration count passes l.BisectionIterations.
//
// Precondition: EndBalance must be decreasing in payment over [0, loan],
// which holds for rate > -100 and n >= 1. The bracket update relies on the
// sign of the balance and silently drifts to an endpoint when the exact
// payment lies outside [0, loan]; see RootInRange.
//
// When the loop never runs (loan <= epsilon) the payment is 0 and the one
// simulation that reports its balance counts as an iteration.
func (l Limits) Bisection(loan, rate float64, n int, epsilon float64) Result {
	if n == 0 {
		return Result{Payment: 0, Status: StatusConverged, Balance: loan}
	}

	iterations := 0
	low, high := 0.0, loan
	mid, balance := 0.0, 0.0

	for high-low > epsilon {
		mid = (low + high) / 2
		balance = EndBalance(loan, rate, n, mid)
		iterations++

		if math.Abs(balance) < epsilon {
			break
		}
		if iterations > l.BisectionIterations {
			return Result{
				Payment:    mid,
				Iterations: iterations,
				Status:     StatusAborted,
				Balance:    balance,
				Reason:     ErrIterationLimit,
			}
		}

		if balance > 0 {
			low = mid
		} else {
			high = mid
		}
	}

	if iterations == 0 {
		balance = EndBalance(loan, rate, n, mid)
		iterations++
	}
	return Result{
		Payment:    mid,
		Iterations: iterations,
		Status:     StatusConverged,
		Balance:    balance,
	}
}
