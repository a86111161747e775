package httpapi

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/football-brain/internal/platform/logging"
	"github.com/riskibarqy/football-brain/internal/usecase"
)

// RequireUserJWT accepts a bearer JWT signed with the shared HMAC secret,
// carrying the caller's user id in the sub or user_id claim.
func RequireUserJWT(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequireUserJWT")
		defer span.End()

		if secret == "" {
			writeError(ctx, w, fmt.Errorf("%w: auth is not configured", usecase.ErrInfra))
			return
		}

		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			writeError(ctx, w, fmt.Errorf("%w: missing Authorization header", usecase.ErrUnauthorized))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			writeError(ctx, w, fmt.Errorf("%w: invalid Authorization header format", usecase.ErrUnauthorized))
			return
		}

		userID, err := verifyUserJWT(strings.TrimSpace(parts[1]), secret)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrUnauthorized, err))
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, Principal{UserID: userID})))
	})
}

func verifyUserJWT(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}
	return "", fmt.Errorf("token missing sub/user_id claim")
}

// RequireServerHMAC verifies the X-Brain-Timestamp and X-Brain-Signature
// headers over `timestamp + "." + raw_body`. The body is trusted to carry
// its own user_id field once the signature checks out.
func RequireServerHMAC(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequireServerHMAC")
		defer span.End()

		if secret == "" {
			writeError(ctx, w, fmt.Errorf("%w: server auth is not configured", usecase.ErrInfra))
			return
		}

		timestampHeader := strings.TrimSpace(r.Header.Get("X-Brain-Timestamp"))
		signatureHeader := strings.TrimSpace(r.Header.Get("X-Brain-Signature"))
		if timestampHeader == "" || signatureHeader == "" {
			writeError(ctx, w, fmt.Errorf("%w: missing signature headers", usecase.ErrUnauthorized))
			return
		}

		timestampMS, err := strconv.ParseInt(timestampHeader, 10, 64)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid timestamp header", usecase.ErrUnauthorized))
			return
		}
		age := time.Since(time.UnixMilli(timestampMS))
		if age < 0 {
			age = -age
		}
		if age > 5*time.Minute {
			writeError(ctx, w, fmt.Errorf("%w: request timestamp is stale", usecase.ErrUnauthorized))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: cannot read request body", usecase.ErrValidation))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		expected := signBody(secret, timestampHeader, body)
		if !hmac.Equal([]byte(expected), []byte(signatureHeader)) {
			writeError(ctx, w, fmt.Errorf("%w: signature mismatch", usecase.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func signBody(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// RequireCronSecret does a constant-time bearer compare against the
// cron-only shared secret.
func RequireCronSecret(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequireCronSecret")
		defer span.End()

		if secret == "" {
			writeError(ctx, w, fmt.Errorf("%w: cron auth is not configured", usecase.ErrInfra))
			return
		}

		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(ctx, w, fmt.Errorf("%w: missing bearer token", usecase.ErrUnauthorized))
			return
		}
		token := strings.TrimSpace(parts[1])
		if !hmac.Equal([]byte(token), []byte(secret)) {
			writeError(ctx, w, fmt.Errorf("%w: invalid cron token", usecase.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestLogging(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequestLogging")
		defer span.End()

		started := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))

		spanContext := trace.SpanContextFromContext(ctx)
		traceID, spanID := "", ""
		if spanContext.IsValid() {
			traceID = spanContext.TraceID().String()
			spanID = spanContext.SpanID().String()
		}

		logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(started).Milliseconds(),
			"trace_id", traceID,
			"span_id", spanID,
		)
	})
}

func RequestTracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "football-brain-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// CORS applies an allow-list: an empty list means same-origin only (no CORS
// headers emitted), a "*" entry allows any origin.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			continue
		}
		allowed[o] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; allowAll || ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Brain-Timestamp, X-Brain-Signature")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestBodyTracing optionally records a truncated request body on the
// active span, for local debugging; off by default in production configs.
func RequestBodyTracing(enabled bool, maxBytes int, next http.Handler) http.Handler {
	if !enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequestBodyTracing")
		defer span.End()

		if r.Body != nil && r.ContentLength > 0 {
			limited := io.LimitReader(r.Body, int64(maxBytes))
			captured, _ := io.ReadAll(limited)
			rest, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(captured), bytes.NewReader(rest)))
			span.SetAttributes(attribute.String("http.request.body_preview", string(captured)))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoverPanic turns a panicking handler into a 500 response instead of a
// crashed connection, logging the panic value and a stack trace.
func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.ErrorContext(ctx, "panic recovered",
					"event", "http_panic",
					"panic", fmt.Sprintf("%v", recovered),
					"stack", string(debug.Stack()),
				)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
