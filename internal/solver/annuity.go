package solver

import "math"

// AnnuityPayment is the closed-form payment for the same recurrence EndBalance
// simulates:
//
//	P = loan * r / (1 - (1+r)^-n), r = rate/100
//
// With a zero rate there is no compounding and the payment is loan/n.
func AnnuityPayment(loan, rate float64, n int) float64 {
	if n == 0 {
		return 0
	}
	if rate == 0 {
		return loan / float64(n)
	}
	r := rate / 100
	return loan * r / (1 - math.Pow(1+r, -float64(n)))
}

// RootInRange reports whether the payment that clears the loan lies in
// [0, loan], the domain both solvers search. High rates over few periods can
// require a payment larger than the loan itself.
func RootInRange(loan, rate float64, n int) bool {
	if n == 0 {
		return true
	}
	return EndBalance(loan, rate, n, 0) >= 0 && EndBalance(loan, rate, n, loan) <= 0
}
