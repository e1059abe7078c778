package calculator

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// ---------------------------------------------------------------------------
// Handler: single operation
// ---------------------------------------------------------------------------

// ApplyHandler handles POST /calculator/apply: one binary operation, formatted
// the way the display would show it.
func ApplyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.apply",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req ApplyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "apply", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	op, err := ParseOperator(req.Op)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "apply", "invalid operator", err, http.StatusBadRequest, w)
		return
	}
	opName := op.Name()

	if !IsFinite(req.A) || !IsFinite(req.B) {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid numeric input", fmt.Errorf("a=%g b=%g", req.A, req.B), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.operation", opName),
		attribute.Float64("calculator.operand.a", req.A),
		attribute.Float64("calculator.operand.b", req.B),
	)

	start := time.Now()
	result := Apply(req.A, req.B, op)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if !IsFinite(result) {
		err := fmt.Errorf("%g %s %g is not finite", req.A, op, req.B)
		observability.RecordError(ctx, span, logger, errorCounter, opName, "result is not finite", err, http.StatusUnprocessableEntity, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	formatted := FormatResult(result)
	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.String("result", formatted),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Float64("a", req.A),
		zap.Float64("b", req.B),
		zap.String("result", formatted),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, ApplyResponse{
		Operation: opName,
		A:         req.A,
		B:         req.B,
		Result:    formatted,
	})
}

// ---------------------------------------------------------------------------
// Handler: key script
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate. It runs a key script through a
// fresh calculator, creating a child span for every key, and returns the final
// snapshot. Arithmetic failures are part of the snapshot, not HTTP errors.
func Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvaluateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	keys, err := ParseKeys(req.Keys)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid key script", err, http.StatusBadRequest, w)
		return
	}
	if len(keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "no keys provided", errors.New("key script is empty"), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("evaluate.keys_count", len(keys)))
	start := time.Now()

	state, panel := New(), PanelNone
	for i, key := range keys {
		_, keySpan := tracer.Start(ctx, fmt.Sprintf("calculator.evaluate.key.%d", i),
			trace.WithAttributes(
				attribute.Int("evaluate.key.index", i),
				attribute.String("evaluate.key", key),
				attribute.String("evaluate.display.before", state.Display),
			),
		)

		action := MapKey(key, panel)
		if action.ClosePanel {
			panel = PanelNone
		}
		if action.Event != nil {
			state = Reduce(state, action.Event)
			opsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", action.Event.Name())))
			keySpan.SetAttributes(attribute.String("evaluate.event", action.Event.Name()))
		}

		keySpan.SetAttributes(attribute.String("evaluate.display.after", state.Display))
		keySpan.SetStatus(codes.Ok, "")
		keySpan.End()
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	opsHistogram.Record(ctx, elapsed, metric.WithAttributes(attribute.String("operation", "evaluate")))

	if state.IsError() {
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "evaluate")))
		span.AddEvent("evaluate.error_state")
	} else if v := ParseOperand(state.Display); !math.IsNaN(v) {
		resultGauge.Record(ctx, v, metric.WithAttributes(attribute.String("operation", "evaluate")))
	}

	span.SetAttributes(attribute.String("evaluate.display", state.Display))
	span.SetStatus(codes.Ok, "")

	logger.Info("key script evaluated",
		zap.Int("keys", len(keys)),
		zap.String("display", state.Display),
		zap.Int("history", len(state.History)),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, NewSnapshot(state, panel))
}
