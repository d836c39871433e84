package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	m := New("users")

	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/users/{id}", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusNotFound)
	})
	router.Handle("/metrics", m.Handler())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/12", nil))

	body := scrape(t, router)
	assert.Contains(t, body, `clinicstack_http_requests_total{code="404",method="GET",route="/users/{id}",service="users"} 1`)
}

func TestObserveUpstream(t *testing.T) {
	m := New("aggregator")

	m.ObserveUpstream("prod1", "users", nil)
	m.ObserveUpstream("prod1", "users", nil)
	m.ObserveUpstream("prod2", "exams", errors.New("timeout"))

	router := mux.NewRouter()
	router.Handle("/metrics", m.Handler())

	body := scrape(t, router)
	assert.Contains(t, body, `clinicstack_upstream_requests_total{environment="prod1",outcome="success",service="aggregator",upstream="users"} 2`)
	assert.Contains(t, body, `clinicstack_upstream_requests_total{environment="prod2",outcome="failure",service="aggregator",upstream="exams"} 1`)
}

func scrape(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.Nil(t, err)
	return string(body)
}
