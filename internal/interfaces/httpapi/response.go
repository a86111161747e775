package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/riskibarqy/football-brain/internal/platform/logging"
	"github.com/riskibarqy/football-brain/internal/usecase"
)

// infraErrPatterns catches connectivity-class failures that reach mapError
// unwrapped (a repository returned a raw driver/network error instead of
// tagging it usecase.ErrInfra). Matched case-insensitively against the full
// error chain's message.
var infraErrPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"i/o timeout",
	"context deadline exceeded",
	"too many connections",
	"ssl",
	"tls",
	"password authentication failed",
	"authentication failed",
	"does not exist", // covers "relation ... does not exist" / "column ... does not exist"
}

// looksLikeInfraErr reports whether err's message matches a known
// connectivity-failure pattern, for errors that weren't explicitly tagged
// usecase.ErrInfra at the point of failure.
func looksLikeInfraErr(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range infraErrPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// errorEnvelope is the flat error shape returned on every failure response.
type errorEnvelope struct {
	Error string `json:"error"`
}

type mappedError struct {
	HTTPStatus    int
	Reason        string
	PublicMessage string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

// writeSuccess merges data into a flat {"ok": true, ...} envelope: data's
// keys surface directly alongside ok rather than nesting under a data key.
func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data map[string]any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	if data == nil {
		data = map[string]any{}
	}
	data["ok"] = true
	writeJSON(ctx, w, status, data)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	internalMessage := err.Error()
	if internalMessage == "" {
		internalMessage = http.StatusText(mapped.HTTPStatus)
	}

	logging.Default().ErrorContext(ctx, "api error response",
		"event", "api_error",
		"error_code", mapped.Reason,
		"http_status", mapped.HTTPStatus,
		"public_message", mapped.PublicMessage,
		"internal_message", internalMessage,
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, mapped.Reason)
	span.SetAttributes(
		attribute.Int("error.http_status", mapped.HTTPStatus),
		attribute.String("error.reason", mapped.Reason),
		attribute.String("error.public_message", mapped.PublicMessage),
	)

	writeJSON(ctx, w, mapped.HTTPStatus, errorEnvelope{Error: mapped.PublicMessage})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorEnvelope{Error: "internal server error"})
}

// mapError classifies a usecase-layer error into an HTTP status and public
// message: infrastructure failures stay generic to callers (full detail is
// logged server-side above), while validation and conflict messages are
// explicit and instructive since they describe caller-fixable mistakes.
func mapError(ctx context.Context, err error) mappedError {
	ctx, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	switch {
	case errors.Is(err, usecase.ErrValidation):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "validation", PublicMessage: err.Error()}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", PublicMessage: err.Error()}
	case errors.Is(err, usecase.ErrForbidden):
		return mappedError{HTTPStatus: http.StatusForbidden, Reason: "forbidden", PublicMessage: err.Error()}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", PublicMessage: err.Error()}
	case errors.Is(err, usecase.ErrConflict):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "conflict", PublicMessage: err.Error()}
	case errors.Is(err, usecase.ErrInfra):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", PublicMessage: "dependency unavailable"}
	case looksLikeInfraErr(err):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", PublicMessage: "dependency unavailable"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", PublicMessage: "internal server error"}
	}
}
