// Package middleware holds the HTTP middleware shared by every route group:
// request logging, panic recovery, Prometheus metrics and per-client rate limiting.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/httpjson"
	"github.com/user/cookbook-go/logging"
)

// RequestLogger stores logger in the request context and logs one line per request
// once the handler has finished.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(logging.NewContext(r.Context(), logger))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			}
			switch {
			case status >= http.StatusInternalServerError:
				logger.Error(r.Context(), "request completed", fields...)
			case status >= http.StatusBadRequest:
				logger.Warn(r.Context(), "request completed", fields...)
			default:
				logger.Info(r.Context(), "request completed", fields...)
			}
		})
	}
}

// Recoverer turns a panic into a 500 JSON response and logs the stack.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			logging.FromContext(r.Context()).Error(r.Context(), "panic recovered",
				zap.Any("panic", rvr),
				zap.ByteString("stack", debug.Stack()),
			)
			httpjson.WriteJSON(w, http.StatusInternalServerError,
				apperror.NewInternalError("internal server error", fmt.Errorf("panic: %v", rvr)).ToResponse())
		}()
		next.ServeHTTP(w, r)
	})
}
