package loan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"loancalc/internal/cache"
	"loancalc/internal/observability"
	"loancalc/internal/solver"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the loan domain's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("loan")

// Service runs the solvers behind a result cache and records telemetry for
// every solve.
type Service struct {
	cache   cache.Cache
	limits  solver.Limits
	epsilon float64
	ttl     time.Duration
}

// NewService builds a Service. epsilon is applied to requests that omit
// their own tolerance; ttl is how long solved payments stay cached.
func NewService(c cache.Cache, limits solver.Limits, epsilon float64, ttl time.Duration) *Service {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &Service{cache: c, limits: limits, epsilon: epsilon, ttl: ttl}
}

func (s *Service) solverFor(method Method) (func(float64, float64, int, float64) solver.Result, error) {
	switch method {
	case MethodBruteForce:
		return s.limits.BruteForce, nil
	case MethodBisection:
		return s.limits.Bisection, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

func (s *Service) cacheKey(method Method, p Params) string {
	limit := s.limits.BisectionIterations
	if method == MethodBruteForce {
		limit = s.limits.BruteForceIterations
	}
	return fmt.Sprintf("solve:%s:%g:%g:%d:%g:%d", method, p.Loan, p.Rate, p.Periods, p.Epsilon, limit)
}

// Solve runs one solver for p. An aborted solve is not an error: the
// result carries status "aborted" and the best payment reached.
func (s *Service) Solve(ctx context.Context, method Method, p Params) (SolveResult, error) {
	p = p.withDefaults(s.epsilon)
	if err := p.Validate(); err != nil {
		return SolveResult{}, err
	}
	solve, err := s.solverFor(method)
	if err != nil {
		return SolveResult{}, err
	}

	ctx, span := tracer.Start(ctx, fmt.Sprintf("loan.solve.%s", method),
		trace.WithAttributes(
			attribute.String("loan.method", string(method)),
			attribute.Float64("loan.amount", p.Loan),
			attribute.Float64("loan.rate", p.Rate),
			attribute.Int("loan.periods", p.Periods),
			attribute.Float64("loan.epsilon", p.Epsilon),
		),
	)
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	key := s.cacheKey(method, p)
	if out, ok := s.lookup(ctx, logger, key); ok {
		span.SetAttributes(attribute.Bool("loan.cache_hit", true))
		s.recordSolve(ctx, out, 0)
		return out, nil
	}
	span.SetAttributes(attribute.Bool("loan.cache_hit", false))

	start := time.Now()
	res := solve(p.Loan, p.Rate, p.Periods, p.Epsilon)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	out := newSolveResult(method, res)
	s.recordSolve(ctx, out, elapsed)

	span.AddEvent("solve.complete", trace.WithAttributes(
		attribute.Float64("payment", out.Payment),
		attribute.Int("iterations", out.Iterations),
		attribute.String("status", out.Status),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(
		attribute.Float64("loan.payment", out.Payment),
		attribute.Int("loan.iterations", out.Iterations),
		attribute.String("loan.status", out.Status),
	)
	span.SetStatus(codes.Ok, "")

	fields := []zap.Field{
		zap.String("method", string(method)),
		zap.Float64("loan", p.Loan),
		zap.Float64("rate", p.Rate),
		zap.Int("periods", p.Periods),
		zap.Float64("epsilon", p.Epsilon),
		zap.Float64("payment", out.Payment),
		zap.Int("iterations", out.Iterations),
		zap.Float64("balance", out.Balance),
		zap.Float64("duration_ms", elapsed),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	}
	if res.Converged() {
		logger.Info("solve converged", fields...)
	} else {
		logger.Warn("solve aborted", append(fields, zap.Error(res.Err()))...)
	}

	s.store(ctx, logger, key, out)
	return out, nil
}

// Compare runs both solvers concurrently and adds the closed-form payment.
func (s *Service) Compare(ctx context.Context, p Params) (PaymentResponse, error) {
	p = p.withDefaults(s.epsilon)
	if err := p.Validate(); err != nil {
		return PaymentResponse{}, err
	}

	ctx, span := tracer.Start(ctx, "loan.compare")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	methods := []Method{MethodBruteForce, MethodBisection}
	results := make([]SolveResult, len(methods))
	errs := make([]error, len(methods))

	var wg sync.WaitGroup
	for i, m := range methods {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.Solve(ctx, m, p)
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "solve failed")
		return PaymentResponse{}, err
	}

	resp := PaymentResponse{
		Params:      p,
		BruteForce:  results[0],
		Bisection:   results[1],
		Annuity:     solver.AnnuityPayment(p.Loan, p.Rate, p.Periods),
		RootInRange: solver.RootInRange(p.Loan, p.Rate, p.Periods),
	}

	span.SetAttributes(
		attribute.Float64("loan.annuity", resp.Annuity),
		attribute.Bool("loan.root_in_range", resp.RootInRange),
	)
	if !resp.RootInRange {
		logger.Warn("payment lies outside the searched range",
			zap.Float64("loan", p.Loan),
			zap.Float64("rate", p.Rate),
			zap.Int("periods", p.Periods),
			zap.Float64("annuity", resp.Annuity),
		)
	}
	span.SetStatus(codes.Ok, "")

	return resp, nil
}

// Balance runs a single balance simulation.
func (s *Service) Balance(ctx context.Context, req BalanceRequest) (BalanceResponse, error) {
	p := Params{Loan: req.Loan, Rate: req.Rate, Periods: req.Periods, Epsilon: s.epsilon}
	if err := p.Validate(); err != nil {
		return BalanceResponse{}, err
	}
	if !isFinite(req.Payment) || req.Payment < 0 {
		return BalanceResponse{}, fmt.Errorf("%w: payment must be a non-negative number, got %g", ErrInvalidParams, req.Payment)
	}

	_, span := tracer.Start(ctx, "loan.balance")
	defer span.End()

	balance := solver.EndBalance(req.Loan, req.Rate, req.Periods, req.Payment)
	if !isFinite(balance) {
		err := fmt.Errorf("%w: balance overflows for payment=%g", ErrInvalidParams, req.Payment)
		span.RecordError(err)
		span.SetStatus(codes.Error, "balance overflow")
		return BalanceResponse{}, err
	}
	span.SetAttributes(attribute.Float64("loan.balance", balance))
	span.SetStatus(codes.Ok, "")

	return BalanceResponse{BalanceRequest: req, Balance: balance}, nil
}

func (s *Service) recordSolve(ctx context.Context, out SolveResult, elapsed float64) {
	attrs := metric.WithAttributes(
		attribute.String("method", string(out.Method)),
		attribute.String("status", out.Status),
		attribute.Bool("cached", out.Cached),
	)
	solvesCounter.Add(ctx, 1, attrs)
	if out.Cached {
		return
	}
	iterationsHistogram.Record(ctx, int64(out.Iterations), attrs)
	durationHistogram.Record(ctx, elapsed, attrs)
	paymentGauge.Record(ctx, out.Payment, metric.WithAttributes(attribute.String("method", string(out.Method))))
}

func (s *Service) lookup(ctx context.Context, logger *zap.Logger, key string) (SolveResult, bool) {
	raw, ok := s.cache.Get(ctx, key)
	cacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", ok)))
	if !ok {
		return SolveResult{}, false
	}

	var out SolveResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logger.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return SolveResult{}, false
	}
	out.Cached = true
	return out, true
}

// store never fails the request; a cache outage only costs a recompute.
func (s *Service) store(ctx context.Context, logger *zap.Logger, key string, out SolveResult) {
	raw, err := json.Marshal(out)
	if err != nil {
		logger.Warn("encoding cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
