package solver

import "errors"

// DefaultEpsilon is the tolerance used when the caller does not pick one.
const DefaultEpsilon = 0.001

// Abort reasons reported in Result.Reason.
var (
	ErrPaymentCap     = errors.New("solver: candidate payment exceeded the loan amount")
	ErrIterationLimit = errors.New("solver: iteration limit exceeded")
)

// Status is the terminal state of a solve.
type Status int

const (
	StatusConverged Status = iota + 1
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result is what a single solver invocation produces.
type Result struct {
	// Payment is the periodical payment found, or the best candidate
	// reached when the solve was aborted.
	Payment float64
	// Iterations counts the balance simulations run by this call.
	Iterations int
	Status     Status
	// Balance is the end balance at Payment.
	Balance float64
	// Reason is ErrPaymentCap or ErrIterationLimit when Status is
	// StatusAborted, nil otherwise.
	Reason error
}

// Converged reports whether the solve reached its tolerance.
func (r Result) Converged() bool {
	return r.Status == StatusConverged
}

// Err returns the abort reason, or nil for a converged result.
func (r Result) Err() error {
	return r.Reason
}

// Limits holds the iteration ceilings that stop a solve from running forever.
type Limits struct {
	BruteForceIterations int
	BisectionIterations  int
}

// DefaultLimits are the ceilings used by the package-level solvers.
var DefaultLimits = Limits{
	BruteForceIterations: 1_000_000,
	BisectionIterations:  1000,
}

// BruteForce runs Limits.BruteForce with DefaultLimits.
func BruteForce(loan, rate float64, n int, epsilon float64) Result {
	return DefaultLimits.BruteForce(loan, rate, n, epsilon)
}

// Bisection runs Limits.Bisection with DefaultLimits.
func Bisection(loan, rate float64, n int, epsilon float64) Result {
	return DefaultLimits.Bisection(loan, rate, n, epsilon)
}
