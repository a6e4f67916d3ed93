package calculator

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"calc-service/internal/engine"
	"calc-service/internal/handlers"
	"calc-service/internal/keypad"
	"calc-service/internal/observability"
	"calc-service/internal/session"
	"calc-service/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handlers serves the calculator endpoints. Every route requires a valid
// session token; the session middleware is mounted in RegisterRoutes.
type Handlers struct {
	history *store.HistoryStore
}

func NewHandlers(history *store.HistoryStore) *Handlers {
	return &Handlers{history: history}
}

// stateResponse projects a keypad state onto the wire shape.
func stateResponse(s keypad.State, errMsg string) StateResponse {
	return StateResponse{
		Display:     s.Display,
		Preview:     keypad.Preview(s),
		FinalAnswer: s.FinalAnswer,
		Error:       errMsg,
	}
}

// Press handles POST /calculator/press: one button event against the
// session's calculator. Calculation failures (division by zero, bad
// factorial arguments, ...) are not HTTP errors — the state resets and the
// message rides back in the response body.
func (h *Handlers) Press(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	sess, _ := session.FromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.press",
		trace.WithAttributes(
			attribute.String("calculator.username", sess.Username()),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req PressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	span.SetAttributes(attribute.String("calculator.button", req.Button))

	ev, err := keypad.ParseButton(req.Button)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", fmt.Sprintf("unknown button %q", req.Button), err, http.StatusBadRequest, w)
		return
	}

	start := time.Now()
	state, effect := sess.Press(ev)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	attrs := metric.WithAttributes(attribute.String("operation", "press"))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)

	if effect.Error != "" {
		// Recoverable: the session has already reset itself.
		errorCounter.Add(ctx, 1, attrs)
		span.AddEvent("press.failed", trace.WithAttributes(
			attribute.String("error", effect.Error),
		))
		span.SetStatus(codes.Ok, "")

		logger.Warn("calculator press failed",
			zap.String("button", req.Button),
			zap.String("error", effect.Error),
			zap.String("request_id", requestID),
		)

		handlers.WriteJSON(w, http.StatusOK, stateResponse(state, effect.Error))
		return
	}

	span.SetAttributes(attribute.String("calculator.display", state.Display))
	if effect.Record != nil {
		resultGauge.Record(ctx, effect.Record.Result, attrs)
		span.AddEvent("computation.complete", trace.WithAttributes(
			attribute.Float64("result", effect.Record.Result),
			attribute.Float64("duration_ms", elapsed),
		))
	}
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator press completed",
		zap.String("button", req.Button),
		zap.String("display", state.Display),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, stateResponse(state, ""))
}

// State handles GET /calculator/state.
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	handlers.WriteJSON(w, http.StatusOK, stateResponse(sess.Snapshot(), ""))
}

// History handles GET /calculator/history — the session user's completed
// calculations, most recent first.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.history",
		trace.WithAttributes(
			attribute.String("calculator.username", sess.Username()),
		),
	)
	defer span.End()

	records := h.history.History(sess.Username())

	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, HistoryEntry{
			Operand1:   rec.Operand1,
			Operator:   rec.Operator,
			Operand2:   rec.Operand2,
			Result:     rec.Result,
			Timestamp:  rec.Timestamp,
			Expression: rec.Expression(),
		})
	}

	span.SetAttributes(attribute.Int("calculator.history.count", len(entries)))
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{
		Username: sess.Username(),
		Records:  entries,
	})
}

// Evaluate handles POST /calculator/evaluate: a stateless one-shot
// computation over the full operator set. Nothing is recorded to history.
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
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
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	op, err := engine.ParseOp(req.Op)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	var b float64
	if op.Binary() {
		if req.B == nil {
			observability.RecordError(ctx, span, logger, errorCounter, string(op), "missing operand b", fmt.Errorf("operator %s requires two operands", op), http.StatusBadRequest, w)
			return
		}
		b = *req.B
	}

	if !isFinite(req.A) || (req.B != nil && !isFinite(*req.B)) {
		observability.RecordError(ctx, span, logger, errorCounter, string(op), "invalid numeric input", fmt.Errorf("a=%g b=%v", req.A, req.B), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.operation", string(op)),
		attribute.Float64("calculator.operand.a", req.A),
	)

	start := time.Now()
	result, err := engine.Calculate(req.A, op, b)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, string(op), err.Error(), err, http.StatusBadRequest, w)
		return
	}
	if !isFinite(result) {
		// Power may produce ±Inf (e.g. 0^-1); it cannot be represented in
		// the JSON response.
		err := fmt.Errorf("%s(%g, %g) is not a finite number", op, req.A, b)
		observability.RecordError(ctx, span, logger, errorCounter, string(op), "result is not a finite number", err, http.StatusBadRequest, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", string(op)))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator evaluation completed",
		zap.String("operation", string(op)),
		zap.Float64("a", req.A),
		zap.Float64("result", result),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Operation: string(op),
		A:         req.A,
		B:         req.B,
		Result:    result,
	})
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
