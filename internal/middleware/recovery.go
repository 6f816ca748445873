package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/tauhid97k/voters-info-api/internal/telemetry/metrics"
)

type errorResponder interface {
	Respond(w http.ResponseWriter, r *http.Request, err error)
}

// PanicRecovery turns a panicking handler into an unexpected error answered
// by responder. http.ErrAbortHandler keeps its meaning and is re-raised.
func PanicRecovery(responder errorResponder, metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				log.WithFields(log.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
				}).Errorf("http: panic: %v\n%s", r, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}

				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}
				responder.Respond(respWriter, req, fmt.Errorf("panic serving %s %s: %w", req.Method, req.URL.Path, err))
			}()

			next.ServeHTTP(respWriter, req)
		})
	}
}
