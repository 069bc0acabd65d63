package loan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"loancalc/internal/handlers"
	"loancalc/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handler exposes a Service over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// BruteForce handles POST /loan/brute-force
func (h *Handler) BruteForce(w http.ResponseWriter, r *http.Request) {
	h.handleSolve(w, r, MethodBruteForce)
}

// Bisection handles POST /loan/bisection
func (h *Handler) Bisection(w http.ResponseWriter, r *http.Request) {
	h.handleSolve(w, r, MethodBisection)
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request, method Method) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	opName := string(method)

	ctx, span := tracer.Start(ctx, "loan.handle."+opName,
		trace.WithAttributes(
			attribute.String("loan.operation", opName),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	var req Params
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	res, err := h.svc.Solve(ctx, method, req)
	if err != nil {
		h.fail(ctx, span, logger, opName, err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, SolveResponse{
		Params: req.withDefaults(h.svc.epsilon),
		Result: res,
	})
}

// Payment handles POST /loan/payment: both solvers side by side with the
// closed-form payment.
func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "loan.handle.payment",
		trace.WithAttributes(
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	var req Params
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "payment", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	resp, err := h.svc.Compare(ctx, req)
	if err != nil {
		h.fail(ctx, span, logger, "payment", err, w)
		return
	}

	logger.Info("payment comparison completed",
		zap.Float64("brute_force", resp.BruteForce.Payment),
		zap.Float64("bisection", resp.Bisection.Payment),
		zap.Float64("annuity", resp.Annuity),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// Balance handles POST /loan/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "loan.handle.balance")
	defer span.End()

	var req BalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "balance", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	resp, err := h.svc.Balance(ctx, req)
	if err != nil {
		h.fail(ctx, span, logger, "balance", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) fail(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	switch {
	case errors.Is(err, ErrInvalidParams), errors.Is(err, ErrUnknownMethod):
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusBadRequest, w)
	default:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "internal error", err, http.StatusInternalServerError, w)
	}
}
