package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/urfave/negroni"
)

func TestCORSPreflight(t *testing.T) {
	called := false
	n := negroni.New(CORS("https://example.org"))
	n.UseHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	n.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/exercise/add", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	require.False(t, called)
}

func TestRequestLoggerRecordsRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/exercise/log", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	n := negroni.New(RequestLogger(logger, router))
	n.UseHandler(router)

	rec := httptest.NewRecorder()
	n.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exercise/log?userId=x", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Contains(t, buf.String(), `"route":"/api/exercise/log"`)
	require.Contains(t, buf.String(), `"status":418`)
}

func TestRouteTemplateUnmatched(t *testing.T) {
	router := mux.NewRouter()
	require.Empty(t, routeTemplate(router, httptest.NewRequest(http.MethodGet, "/missing", nil)))
	require.Empty(t, routeTemplate(nil, httptest.NewRequest(http.MethodGet, "/", nil)))
}
