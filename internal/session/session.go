// Package session serves calculator sessions. Each Session owns one
// calculator.State and a single goroutine that is its only writer: key
// presses, panel changes and AI outcomes all travel through the same mailbox
// and are applied one at a time.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/solver"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrClosed       = errors.New("session closed")
	ErrBusy         = errors.New("an AI request is already in progress")
	ErrEmptyPrompt  = errors.New("prompt must not be empty")
	ErrNoSolver     = errors.New("AI solver is not configured")
	ErrHistoryIndex = errors.New("history index out of range")
)

// machine is the state owned by the session goroutine.
type machine struct {
	state calculator.State
	panel calculator.Panel
	idle  []chan struct{}
}

func (m *machine) apply(e calculator.Event) {
	m.state = calculator.Reduce(m.state, e)
	if _, ok := e.(calculator.SelectHistoryEvent); ok && m.panel == calculator.PanelHistory {
		m.panel = calculator.PanelNone
	}
}

type request struct {
	fn    func(m *machine) error
	reply chan response
}

type response struct {
	snap calculator.Snapshot
	err  error
}

// Session is one calculator with a serialized input pipeline.
type Session struct {
	id           string
	solver       solver.Solver
	solveTimeout time.Duration
	logger       *zap.Logger

	mailbox chan request
	done    chan struct{}

	// solveCtx is cancelled on Close so outstanding AI calls resolve promptly.
	solveCtx    context.Context
	cancelSolve context.CancelFunc

	closeOnce  sync.Once
	lastActive atomic.Int64
}

func newSession(id string, s solver.Solver, solveTimeout time.Duration, logger *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		id:           id,
		solver:       s,
		solveTimeout: solveTimeout,
		logger:       logger.With(zap.String("session_id", id)),
		mailbox:      make(chan request),
		done:         make(chan struct{}),
		solveCtx:     ctx,
		cancelSolve:  cancel,
	}
	sess.touch()
	go sess.run()
	return sess
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) run() {
	m := &machine{state: calculator.New(), panel: calculator.PanelNone}
	for {
		select {
		case req := <-s.mailbox:
			err := req.fn(m)
			if !m.state.AIProcessing && len(m.idle) > 0 {
				for _, ch := range m.idle {
					close(ch)
				}
				m.idle = nil
			}
			if req.reply != nil {
				snap := calculator.NewSnapshot(m.state, m.panel)
				snap.ID = s.id
				req.reply <- response{snap: snap, err: err}
			}
		case <-s.done:
			return
		}
	}
}

// do runs fn on the session goroutine and returns the resulting snapshot.
func (s *Session) do(ctx context.Context, fn func(m *machine) error) (calculator.Snapshot, error) {
	s.touch()
	req := request{fn: fn, reply: make(chan response, 1)}

	select {
	case s.mailbox <- req:
	case <-s.done:
		return calculator.Snapshot{}, ErrClosed
	case <-ctx.Done():
		return calculator.Snapshot{}, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp.snap, resp.err
	case <-s.done:
		return calculator.Snapshot{}, ErrClosed
	case <-ctx.Done():
		return calculator.Snapshot{}, ctx.Err()
	}
}

// post enqueues fn without waiting for its result. It gives up once the
// session is closed.
func (s *Session) post(fn func(m *machine) error) {
	select {
	case s.mailbox <- request{fn: fn}:
	case <-s.done:
	}
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive is the time of the most recent interaction.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Snapshot returns the current state.
func (s *Session) Snapshot(ctx context.Context) (calculator.Snapshot, error) {
	return s.do(ctx, func(*machine) error { return nil })
}

// Dispatch applies one event.
func (s *Session) Dispatch(ctx context.Context, e calculator.Event) (calculator.Snapshot, error) {
	return s.do(ctx, func(m *machine) error {
		m.apply(e)
		recordEvent(e.Name())
		return nil
	})
}

// Press applies key presses in order as one step, resolving each against the
// panel open at that moment.
func (s *Session) Press(ctx context.Context, keys ...string) (calculator.Snapshot, error) {
	return s.do(ctx, func(m *machine) error {
		for _, key := range keys {
			action := calculator.MapKey(key, m.panel)
			if action.ClosePanel {
				m.panel = calculator.PanelNone
			}
			if action.Event != nil {
				m.apply(action.Event)
				recordEvent(action.Event.Name())
			}
		}
		return nil
	})
}

// SetPanel opens or closes an overlay.
func (s *Session) SetPanel(ctx context.Context, p calculator.Panel) (calculator.Snapshot, error) {
	return s.do(ctx, func(m *machine) error {
		m.panel = p
		return nil
	})
}

// SelectHistory loads the history entry at index (0 is the newest).
func (s *Session) SelectHistory(ctx context.Context, index int) (calculator.Snapshot, error) {
	return s.do(ctx, func(m *machine) error {
		if index < 0 || index >= len(m.state.History) {
			return ErrHistoryIndex
		}
		e := calculator.SelectHistoryEvent{Entry: m.state.History[index]}
		m.apply(e)
		recordEvent(e.Name())
		return nil
	})
}

// Solve starts an AI request for prompt and returns the busy snapshot without
// waiting for the answer. The outcome re-enters the mailbox as an AI result or
// failure event. Use WaitIdle to block until it lands.
func (s *Session) Solve(ctx context.Context, prompt string) (calculator.Snapshot, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return calculator.Snapshot{}, ErrEmptyPrompt
	}
	if s.solver == nil {
		return calculator.Snapshot{}, ErrNoSolver
	}

	return s.do(ctx, func(m *machine) error {
		if m.state.AIProcessing {
			return ErrBusy
		}
		e := calculator.BeginAIEvent{}
		m.apply(e)
		recordEvent(e.Name())
		if m.panel == calculator.PanelAIPrompt {
			m.panel = calculator.PanelNone
		}
		go s.resolve(prompt)
		return nil
	})
}

func (s *Session) resolve(prompt string) {
	ctx := s.solveCtx
	if s.solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.solveTimeout)
		defer cancel()
	}

	start := time.Now()
	sol, err := s.solver.Solve(ctx, prompt)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	outcome := "success"
	var e calculator.Event = calculator.AIResultEvent{
		Prompt:      prompt,
		Result:      sol.Result,
		Explanation: sol.Explanation,
	}
	if err != nil {
		outcome = "failure"
		e = calculator.AIFailureEvent{Err: err}
		solveFailures.Add(context.Background(), 1)
		s.logger.Warn("AI request failed", zap.Error(err), zap.Float64("duration_ms", elapsed))
	} else {
		s.logger.Info("AI request resolved",
			zap.String("result", sol.Result),
			zap.Float64("duration_ms", elapsed),
		)
	}
	solveHistogram.Record(context.Background(), elapsed,
		metric.WithAttributes(attribute.String("outcome", outcome)))

	s.post(func(m *machine) error {
		m.apply(e)
		recordEvent(e.Name())
		return nil
	})
	s.touch()
}

// WaitIdle blocks until no AI request is outstanding and returns the snapshot
// at that point.
func (s *Session) WaitIdle(ctx context.Context) (calculator.Snapshot, error) {
	wait := make(chan struct{})
	snap, err := s.do(ctx, func(m *machine) error {
		if m.state.AIProcessing {
			m.idle = append(m.idle, wait)
		}
		return nil
	})
	if err != nil || !snap.AIProcessing {
		return snap, err
	}

	select {
	case <-wait:
	case <-s.done:
		return snap, ErrClosed
	case <-ctx.Done():
		return snap, ctx.Err()
	}
	return s.Snapshot(ctx)
}

// Close stops the session goroutine and cancels any outstanding AI request.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancelSolve()
		close(s.done)
	})
}
