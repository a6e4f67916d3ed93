package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"calc-service/internal/handlers"
	"calc-service/internal/observability"
	"calc-service/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the auth domain's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("auth")

// Handlers serves registration, login, and logout. Passwords are never
// logged or attached to spans.
type Handlers struct {
	manager  *Manager
	sessions *session.Manager
}

func NewHandlers(manager *Manager, sessions *session.Manager) *Handlers {
	return &Handlers{manager: manager, sessions: sessions}
}

// Register handles POST /auth/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "auth.register",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "register", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	attemptCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "register")))

	if err := h.manager.Register(req.Username, req.Password); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUsernameTaken) {
			status = http.StatusConflict
		}
		observability.RecordError(ctx, span, logger, errorCounter, "register", err.Error(), err, status, w)
		return
	}

	span.SetAttributes(attribute.String("auth.username", req.Username))
	span.SetStatus(codes.Ok, "")

	logger.Info("user registered",
		zap.String("username", req.Username),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Message: fmt.Sprintf("account created successfully for %s", req.Username),
	})
}

// Login handles POST /auth/login. Success opens a fresh calculator session
// and returns its bearer token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "auth.login",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "login", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	attemptCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "login")))

	if err := h.manager.Authenticate(req.Username, req.Password); err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, ErrEmptyUsername) || errors.Is(err, ErrEmptyPassword) {
			status = http.StatusBadRequest
		}
		observability.RecordError(ctx, span, logger, errorCounter, "login", err.Error(), err, status, w)
		return
	}

	token := h.sessions.Open(req.Username)

	span.SetAttributes(attribute.String("auth.username", req.Username))
	span.SetStatus(codes.Ok, "")

	logger.Info("user logged in",
		zap.String("username", req.Username),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:   token,
		Message: fmt.Sprintf("welcome back, %s", req.Username),
	})
}

// Logout handles POST /auth/logout. The session middleware has already
// validated the token; logout discards the session and its calculator
// state.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	sess, _ := session.FromContext(ctx)

	h.sessions.End(session.BearerToken(r))

	logger.Info("user logged out",
		zap.String("username", sess.Username()),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.WriteHeader(http.StatusNoContent)
}
