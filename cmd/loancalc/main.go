// Command loancalc prints the periodical payment that pays off a loan,
// found once by brute-force search and once by bisection.
//
//	loancalc [--epsilon 0.001] LOAN RATE PERIODS
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"loancalc/internal/observability"
	"loancalc/internal/solver"
)

func main() {
	if err := observability.InitCLILogger(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer observability.SyncLogger()

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "loancalc:", err)
		observability.SyncLogger()
		os.Exit(1)
	}
}

func newApp(stdout io.Writer) *cli.App {
	epsilonFlag := cli.Float64Flag{Name: "epsilon", Value: solver.DefaultEpsilon, Usage: "approximation accuracy, also the brute-force step"}
	bruteForceFlag := cli.IntFlag{Name: "max-brute-force-iterations", Value: solver.DefaultLimits.BruteForceIterations, Usage: "iteration ceiling for brute-force search"}
	bisectionFlag := cli.IntFlag{Name: "max-bisection-iterations", Value: solver.DefaultLimits.BisectionIterations, Usage: "iteration ceiling for bisection search"}

	app := cli.NewApp()
	app.Name = "loancalc"
	app.Usage = "compute the periodical payment of a loan"
	app.ArgsUsage = "LOAN RATE PERIODS"
	app.HideVersion = true
	app.Writer = stdout
	app.Flags = []cli.Flag{
		epsilonFlag,
		bruteForceFlag,
		bisectionFlag,
	}
	app.Action = func(cctx *cli.Context) error {
		loan, rate, n, err := parseArgs(cctx.Args())
		if err != nil {
			return err
		}
		epsilon := cctx.Float64(epsilonFlag.Name)
		if !(epsilon > 0) {
			return fmt.Errorf("--epsilon must be positive, got %g", epsilon)
		}
		limits := solver.Limits{
			BruteForceIterations: cctx.Int(bruteForceFlag.Name),
			BisectionIterations:  cctx.Int(bisectionFlag.Name),
		}
		return run(stdout, limits, loan, rate, n, epsilon)
	}
	return app
}

func parseArgs(args cli.Args) (float64, float64, int, error) {
	if len(args) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 arguments LOAN RATE PERIODS, got %d", len(args))
	}
	loan, err := strconv.ParseFloat(args.Get(0), 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("loan: %w", err)
	}
	rate, err := strconv.ParseFloat(args.Get(1), 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("rate: %w", err)
	}
	n, err := strconv.Atoi(args.Get(2))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("periods: %w", err)
	}
	if math.IsNaN(loan) || math.IsInf(loan, 0) || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, 0, 0, fmt.Errorf("loan and rate must be finite numbers, got %s and %s", args.Get(0), args.Get(1))
	}
	if loan < 0 || n < 0 {
		return 0, 0, 0, fmt.Errorf("loan and periods must not be negative")
	}
	return loan, rate, n, nil
}

func run(w io.Writer, limits solver.Limits, loan, rate float64, n int, epsilon float64) error {
	fmt.Fprintf(w, "Loan = %s, interest rate = %s%%, periods = %d\n", formatAmount(loan), formatAmount(rate), n)

	bf := limits.BruteForce(loan, rate, n, epsilon)
	if !bf.Converged() {
		observability.Logger.Warn("brute force solver exceeded max payment or iterations",
			zap.Float64("payment", bf.Payment),
			zap.Int("iterations", bf.Iterations),
			zap.Error(bf.Err()),
		)
	}
	fmt.Fprintf(w, "\nPeriodical payment, using brute force: %d\n", int(bf.Payment))
	fmt.Fprintf(w, "number of iterations: %s\n", humanize.Comma(int64(bf.Iterations)))

	bs := limits.Bisection(loan, rate, n, epsilon)
	if !bs.Converged() {
		observability.Logger.Warn("bisection solver exceeded max iterations",
			zap.Float64("payment", bs.Payment),
			zap.Int("iterations", bs.Iterations),
			zap.Error(bs.Err()),
		)
	}
	fmt.Fprintf(w, "\nPeriodical payment, using bi-section search: %d\n", int(bs.Payment))
	fmt.Fprintf(w, "number of iterations: %s\n", humanize.Comma(int64(bs.Iterations)))

	if !solver.RootInRange(loan, rate, n) {
		observability.Logger.Warn("the exact payment exceeds the loan amount; both searches stop at the loan",
			zap.Float64("annuity", solver.AnnuityPayment(loan, rate, n)),
		)
	}
	return nil
}

// formatAmount prints v in the shortest form that round-trips, always with a
// fractional digit: "1000.0", "1.5". Magnitudes below 1e-3 or from 1e7 up
// switch to scientific form, "1.0E7" or "5.0E-4".
func formatAmount(v float64) string {
	if abs := math.Abs(v); abs != 0 && (abs < 1e-3 || abs >= 1e7) {
		mant, exp, _ := strings.Cut(strconv.FormatFloat(v, 'E', -1, 64), "E")
		if !strings.Contains(mant, ".") {
			mant += ".0"
		}
		e, _ := strconv.Atoi(exp)
		return mant + "E" + strconv.Itoa(e)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
