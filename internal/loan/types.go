package loan

import (
	"errors"
	"fmt"
	"math"

	"loancalc/internal/solver"
)

// MaxPeriods bounds the per-simulation cost of a request.
const MaxPeriods = 1200

var (
	ErrInvalidParams = errors.New("invalid loan parameters")
	ErrUnknownMethod = errors.New("unknown solver method")
)

// Method names a root-finding strategy.
type Method string

const (
	MethodBruteForce Method = "brute_force"
	MethodBisection  Method = "bisection"
)

// Params is the JSON body for the solve endpoints.
type Params struct {
	Loan    float64 `json:"loan"`
	Rate    float64 `json:"rate"`    // percent per period, e.g. 1.5
	Periods int     `json:"periods"` // number of payments
	Epsilon float64 `json:"epsilon,omitempty"`
}

func (p Params) withDefaults(epsilon float64) Params {
	if p.Epsilon == 0 {
		p.Epsilon = epsilon
	}
	return p
}

// Validate checks the preconditions the solvers assume.
func (p Params) Validate() error {
	if !isFinite(p.Loan) || !isFinite(p.Rate) || !isFinite(p.Epsilon) {
		return fmt.Errorf("%w: loan=%g rate=%g epsilon=%g", ErrInvalidParams, p.Loan, p.Rate, p.Epsilon)
	}
	if p.Loan < 0 {
		return fmt.Errorf("%w: loan must not be negative, got %g", ErrInvalidParams, p.Loan)
	}
	if p.Rate <= -100 {
		return fmt.Errorf("%w: rate must be above -100%%, got %g", ErrInvalidParams, p.Rate)
	}
	if p.Periods < 0 || p.Periods > MaxPeriods {
		return fmt.Errorf("%w: periods must be between 0 and %d, got %d", ErrInvalidParams, MaxPeriods, p.Periods)
	}
	if p.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive, got %g", ErrInvalidParams, p.Epsilon)
	}
	// The end balance is linear in the payment, so finite values at both ends
	// of [0, loan] keep every balance a solver can visit finite.
	if !isFinite(solver.EndBalance(p.Loan, p.Rate, p.Periods, 0)) ||
		!isFinite(solver.EndBalance(p.Loan, p.Rate, p.Periods, p.Loan)) {
		return fmt.Errorf("%w: balance overflows for rate=%g over %d periods", ErrInvalidParams, p.Rate, p.Periods)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SolveResult is one solver's answer as returned to clients and cached.
type SolveResult struct {
	Method     Method  `json:"method"`
	Payment    float64 `json:"payment"`
	Iterations int     `json:"iterations"`
	Status     string  `json:"status"`
	Balance    float64 `json:"balance"`
	Reason     string  `json:"reason,omitempty"`
	Cached     bool    `json:"cached"`
}

func newSolveResult(method Method, r solver.Result) SolveResult {
	out := SolveResult{
		Method:     method,
		Payment:    r.Payment,
		Iterations: r.Iterations,
		Status:     r.Status.String(),
		Balance:    r.Balance,
	}
	if err := r.Err(); err != nil {
		out.Reason = err.Error()
	}
	return out
}

// Converged reports whether the solver reached its tolerance.
func (r SolveResult) Converged() bool {
	return r.Status == solver.StatusConverged.String()
}

// SolveResponse is the JSON response for POST /loan/brute-force and
// POST /loan/bisection.
type SolveResponse struct {
	Params
	Result SolveResult `json:"result"`
}

// PaymentResponse is the JSON response for POST /loan/payment.
type PaymentResponse struct {
	Params
	BruteForce SolveResult `json:"brute_force"`
	Bisection  SolveResult `json:"bisection"`
	// Annuity is the closed-form payment, for comparison.
	Annuity float64 `json:"annuity"`
	// RootInRange is false when the exact payment exceeds the loan amount,
	// i.e. lies outside the range both solvers search.
	RootInRange bool `json:"root_in_range"`
}

// BalanceRequest is the JSON body for POST /loan/balance.
type BalanceRequest struct {
	Loan    float64 `json:"loan"`
	Rate    float64 `json:"rate"`
	Periods int     `json:"periods"`
	Payment float64 `json:"payment"`
}

// BalanceResponse is the JSON response for POST /loan/balance.
type BalanceResponse struct {
	BalanceRequest
	Balance float64 `json:"balance"`
}
