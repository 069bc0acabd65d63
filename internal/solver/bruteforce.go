package solver

// BruteForce scans payments upward from zero in steps of epsilon and accepts
// the first candidate whose end balance drops below epsilon. The scan gives
// up once the candidate exceeds the loan amount or the iteration count
// passes l.BruteForceIterations; the last candidate is returned either way.
//
// The step size and the tolerance are the same value, so halving epsilon
// roughly doubles the iteration count.
//
// A converged result is the first grid point past the root, not necessarily
// one inside |balance| < epsilon. One step moves the end balance by epsilon
// times the sum of the n growth factors, so |Balance| stays below that
// amount (n*epsilon at a zero rate, somewhat more as the rate rises).
func (l Limits) BruteForce(loan, rate float64, n int, epsilon float64) Result {
	if n == 0 {
		return Result{Payment: 0, Status: StatusConverged, Balance: loan}
	}

	iterations := 0
	payment := 0.0
	maxPayment := loan

	for {
		balance := EndBalance(loan, rate, n, payment)
		iterations++

		// Balance decreases with payment, so the first grid point below
		// epsilon is the first one inside (or just past) the band.
		if balance < epsilon {
			return Result{
				Payment:    payment,
				Iterations: iterations,
				Status:     StatusConverged,
				Balance:    balance,
			}
		}

		var reason error
		switch {
		case payment > maxPayment:
			reason = ErrPaymentCap
		case iterations > l.BruteForceIterations:
			reason = ErrIterationLimit
		}
		if reason != nil {
			return Result{
				Payment:    payment,
				Iterations: iterations,
				Status:     StatusAborted,
				Balance:    balance,
				Reason:     reason,
			}
		}

		payment = float64(iterations) * epsilon
	}
}
