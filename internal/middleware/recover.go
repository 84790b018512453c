package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/adearn/adearn-api/internal/pkg/logger"
	"github.com/adearn/adearn-api/internal/pkg/response"
)

// Recover turns a handler panic into a 500 and logs the stack with the
// request logger. http.ErrAbortHandler is re-raised for net/http.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("Panic recovered")

			response.InternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}
