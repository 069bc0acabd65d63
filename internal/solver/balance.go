package solver

// EndBalance simulates n periods of compounding at rate percent followed by
// a fixed payment, starting from loan, and returns what is still owed.
// A positive result means the payment is too low; a negative one means the
// loan was overpaid.
func EndBalance(loan, rate float64, n int, payment float64) float64 {
	balance := loan
	growth := 1 + rate/100
	for i := 0; i < n; i++ {
		balance = balance*growth - payment
	}
	return balance
}
