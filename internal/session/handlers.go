package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

// tracer is the session's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("session")

// Handler serves the session HTTP API.
type Handler struct {
	manager *Manager
}

func NewHandler(m *Manager) *Handler {
	return &Handler{manager: m}
}

// requestError is a client mistake with its HTTP status.
type requestError struct {
	status int
	msg    string
	err    error
}

func (e *requestError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &requestError{status: http.StatusBadRequest, msg: msg, err: err}
}

// statusFor maps an operation error to its HTTP status.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyPrompt), errors.Is(err, ErrHistoryIndex):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoSolver):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrClosed):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the client-facing text for err.
func errorMessage(err error) string {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.msg
	}
	return err.Error()
}

// action performs one operation on a session and reports the success status.
type action func(ctx context.Context, sess *Session, r *http.Request) (calculator.Snapshot, int, error)

// serve is the shared implementation for every per-session endpoint: it opens
// the span, resolves the session, runs act and writes the snapshot or error.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, opName string, act action) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "session."+opName,
		trace.WithAttributes(
			attribute.String("session.operation", opName),
			attribute.String("session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	sess, err := h.manager.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
		return
	}

	snap, status, err := act(ctx, sess, r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, errorMessage(err), err, statusFor(err), w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.display", snap.Display),
		attribute.Bool("calculator.ai_processing", snap.AIProcessing),
		attribute.Int("calculator.history_len", len(snap.History)),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("session operation completed",
		zap.String("operation", opName),
		zap.String("session_id", id),
		zap.String("display", snap.Display),
		zap.Bool("ai_processing", snap.AIProcessing),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, status, snap)
}

// dispatch returns an action applying a fixed event.
func dispatch(e calculator.Event) action {
	return func(ctx context.Context, sess *Session, _ *http.Request) (calculator.Snapshot, int, error) {
		snap, err := sess.Dispatch(ctx, e)
		return snap, http.StatusOK, err
	}
}

// Create handles POST /sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "session.create")
	defer span.End()

	sess := h.manager.Create()
	span.SetAttributes(attribute.String("session.id", sess.ID()))

	snap, err := sess.Snapshot(ctx)
	if err != nil {
		observability.RecordError(ctx, span, observability.LoggerWithTrace(ctx), errorCounter, "create", errorMessage(err), err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	w.Header().Set("Location", "/sessions/"+sess.ID())
	handlers.WriteJSON(w, http.StatusCreated, snap)
}

// Get handles GET /sessions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "get", func(ctx context.Context, sess *Session, _ *http.Request) (calculator.Snapshot, int, error) {
		snap, err := sess.Snapshot(ctx)
		return snap, http.StatusOK, err
	})
}

// Delete handles DELETE /sessions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "session.delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	if err := h.manager.Delete(id); err != nil {
		observability.RecordError(ctx, span, observability.LoggerWithTrace(ctx), errorCounter, "delete", "session not found", err, http.StatusNotFound, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// Keys handles POST /sessions/{id}/keys.
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "keys", func(ctx context.Context, sess *Session, r *http.Request) (calculator.Snapshot, int, error) {
		var req KeysRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return calculator.Snapshot{}, 0, badRequest("invalid request body", err)
		}
		keys, err := calculator.ParseKeys(req.Keys)
		if err != nil {
			return calculator.Snapshot{}, 0, badRequest("invalid key script", err)
		}
		if len(keys) == 0 {
			return calculator.Snapshot{}, 0, badRequest("no keys provided", nil)
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("session.keys_count", len(keys)))

		snap, err := sess.Press(ctx, keys...)
		return snap, http.StatusOK, err
	})
}

// Digit handles POST /sessions/{id}/digit.
func (h *Handler) Digit(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "digit", func(ctx context.Context, sess *Session, r *http.Request) (calculator.Snapshot, int, error) {
		var req DigitRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return calculator.Snapshot{}, 0, badRequest("invalid request body", err)
		}
		if len(req.Digit) != 1 || req.Digit[0] < '0' || req.Digit[0] > '9' {
			return calculator.Snapshot{}, 0, badRequest("digit must be a single character 0-9", nil)
		}

		snap, err := sess.Dispatch(ctx, calculator.DigitEvent{Digit: req.Digit[0]})
		return snap, http.StatusOK, err
	})
}

// Decimal handles POST /sessions/{id}/decimal.
func (h *Handler) Decimal(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "decimal", dispatch(calculator.DecimalEvent{}))
}

// Operator handles POST /sessions/{id}/operator.
func (h *Handler) Operator(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "operator", func(ctx context.Context, sess *Session, r *http.Request) (calculator.Snapshot, int, error) {
		var req OperatorRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return calculator.Snapshot{}, 0, badRequest("invalid request body", err)
		}
		op, err := calculator.ParseOperator(req.Op)
		if err != nil {
			return calculator.Snapshot{}, 0, badRequest("invalid operator", err)
		}

		snap, err := sess.Dispatch(ctx, calculator.OperatorEvent{Op: op})
		return snap, http.StatusOK, err
	})
}

// Equals handles POST /sessions/{id}/equals.
func (h *Handler) Equals(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "equals", dispatch(calculator.EqualsEvent{}))
}

// Clear handles POST /sessions/{id}/clear.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "clear", dispatch(calculator.ClearEvent{}))
}

// Solve handles POST /sessions/{id}/solve. It answers 202 with the busy
// snapshot, or 200 with the resolved snapshot when ?wait=true.
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "solve", func(ctx context.Context, sess *Session, r *http.Request) (calculator.Snapshot, int, error) {
		var req SolveRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return calculator.Snapshot{}, 0, badRequest("invalid request body", err)
		}

		wait := false
		if v := r.URL.Query().Get("wait"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return calculator.Snapshot{}, 0, badRequest("invalid wait parameter", err)
			}
			wait = b
		}

		snap, err := sess.Solve(ctx, req.Prompt)
		if err != nil {
			return snap, 0, err
		}
		if !wait {
			return snap, http.StatusAccepted, nil
		}

		snap, err = sess.WaitIdle(ctx)
		return snap, http.StatusOK, err
	})
}

// SelectHistory handles POST /sessions/{id}/history/select.
func (h *Handler) SelectHistory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "select_history", func(ctx context.Context, sess *Session, r *http.Request) (calculator.Snapshot, int, error) {
		var req SelectHistoryRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return calculator.Snapshot{}, 0, badRequest("invalid request body", err)
		}

		switch {
		case req.Index != nil:
			snap, err := sess.SelectHistory(ctx, *req.Index)
			return snap, http.StatusOK, err
		case req.Entry != "":
			snap, err := sess.Dispatch(ctx, calculator.SelectHistoryEvent{Entry: req.Entry})
			return snap, http.StatusOK, err
		default:
			return calculator.Snapshot{}, 0, badRequest("index or entry is required", nil)
		}
	})
}

// Panel handles POST /sessions/{id}/panel.
func (h *Handler) Panel(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "panel", func(ctx context.Context, sess *Session, r *http.Request) (calculator.Snapshot, int, error) {
		var req PanelRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			return calculator.Snapshot{}, 0, badRequest("invalid request body", err)
		}
		panel, err := calculator.ParsePanel(req.Panel)
		if err != nil {
			return calculator.Snapshot{}, 0, badRequest("invalid panel", err)
		}

		snap, err := sess.SetPanel(ctx, panel)
		return snap, http.StatusOK, err
	})
}
