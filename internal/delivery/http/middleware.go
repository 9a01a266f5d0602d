package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type ctxKey int

const identityKey ctxKey = iota

// authenticate resolves the bearer credential to an Identity before anything
// else runs. A missing or invalid token is an authentication failure,
// distinct from the authorization failures raised further down.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			h.writeError(w, domain.ErrUnauthenticated)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			h.writeError(w, domain.ErrUnauthenticated)
			return
		}

		claims, err := h.tokens.Parse(parts[1])
		if err != nil {
			h.writeError(w, domain.ErrUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, claims.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) domain.Identity {
	ident, _ := ctx.Value(identityKey).(domain.Identity)
	return ident
}

// requireCapability rejects before the usecase runs, keeping unauthorized
// callers off the claim path entirely. The usecases re-check on their own
// inputs as well.
func (h *Handler) requireCapability(cap domain.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !identityFrom(r.Context()).Capabilities.Has(cap) {
				h.writeError(w, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)))
		})
	}
}
