package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"example.com/exercisetracker/internal/observability"
)

// RequestLogger logs every request once and records HTTP metrics labeled by
// the matched route template.
func RequestLogger(logger logrus.FieldLogger, router *mux.Router) negroni.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		start := time.Now()
		next(w, r)
		elapsed := time.Since(start)

		status := http.StatusOK
		if rw, ok := w.(negroni.ResponseWriter); ok && rw.Status() != 0 {
			status = rw.Status()
		}

		route := routeTemplate(router, r)
		observability.RecordHTTPRequest(route, r.Method, status, elapsed)
		logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"route":      route,
			"status":     status,
			"latency_ms": float64(elapsed.Microseconds()) / 1000.0,
		}).Info("request")
	}
}

// CORS sets permissive cross-origin headers and answers preflight requests.
func CORS(origin string) negroni.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func routeTemplate(router *mux.Router, r *http.Request) string {
	if router == nil {
		return ""
	}
	var match mux.RouteMatch
	if !router.Match(r, &match) || match.Route == nil {
		return ""
	}
	tmpl, err := match.Route.GetPathTemplate()
	if err != nil {
		return ""
	}
	return tmpl
}
