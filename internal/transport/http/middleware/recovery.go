package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/pkg/httputils"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a plain-text 500.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.Error("panic while serving request",
				zap.String("panic", fmt.Sprint(rec)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			)
			httputils.WriteInternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}

// Chain wraps h with the given middlewares, first one outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
