package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/slrhq/hireops/internal/capability"
	"github.com/slrhq/hireops/pkg/models"
)

type ctxKey string

const (
	CtxPersonID ctxKey = "person_id"
	CtxIdentity ctxKey = "identity_signals"
)

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
		)
		next.ServeHTTP(w, r)
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// JWTAuthMiddlewareWithSecret validates the bearer token and stashes the
// caller's person id and raw role signals in the request context. The
// signals are resolved into capabilities per request, at the moment each
// handler runs its gate.
func JWTAuthMiddlewareWithSecret(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
				return
			}

			var tokenString string
			if _, err := fmt.Sscanf(authHeader, "Bearer %s", &tokenString); err != nil {
				// If scanning fails, log and treat as invalid header
				logger.Error("failed to parse Authorization header", slog.Any("err", err))
			}

			if tokenString == "" {
				http.Error(w, "Invalid Authorization header", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}

				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				ctx := r.Context()
				if v, found := claims["person_id"]; found {
					switch id := v.(type) {
					case float64:
						ctx = context.WithValue(ctx, CtxPersonID, int64(id))
					case int64:
						ctx = context.WithValue(ctx, CtxPersonID, id)
					case int:
						ctx = context.WithValue(ctx, CtxPersonID, int64(id))
					}
				}
				ctx = context.WithValue(ctx, CtxIdentity, signalsFromClaims(claims))
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// signalsFromClaims rebuilds IdentitySignals from whatever shapes the JWT
// library hands back. Anything unparseable is dropped; missing signals
// resolve to no capability downstream.
func signalsFromClaims(claims jwt.MapClaims) models.IdentitySignals {
	var sig models.IdentitySignals
	if raw, found := claims["signals"]; found {
		if b, err := json.Marshal(raw); err == nil {
			_ = json.Unmarshal(b, &sig)
		}
	}
	return sig
}

func identityFrom(r *http.Request) models.IdentitySignals {
	if v := r.Context().Value(CtxIdentity); v != nil {
		if sig, ok := v.(models.IdentitySignals); ok {
			return sig
		}
	}
	return models.IdentitySignals{}
}

func capsFrom(r *http.Request) capability.Set {
	return capability.Resolve(identityFrom(r))
}

func personIDFrom(r *http.Request) int64 {
	if v := r.Context().Value(CtxPersonID); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
