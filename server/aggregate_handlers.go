package server

import (
	"errors"
	"net/http"

	"github.com/Daskott/clinicstack/server/aggregator"
	"github.com/Daskott/clinicstack/server/metrics"
	"github.com/gorilla/mux"
)

type AggregatorIndexPayload struct {
	Status        string   `json:"status"`
	Docs          string   `json:"docs"`
	AvailableEnvs []string `json:"available_envs"`
}

// NewAggregatorRouter serves agg. m should be the metrics agg reports its
// downstream calls to.
func NewAggregatorRouter(agg *aggregator.Aggregator, m *metrics.Metrics) *mux.Router {
	router := newRouter(m)

	router.HandleFunc("/", func(rw http.ResponseWriter, r *http.Request) {
		writeResponse(rw, AggregatorIndexPayload{
			Status:        "ok",
			Docs:          "/routes",
			AvailableEnvs: agg.Environments(),
		}, http.StatusOK)
	}).Methods(http.MethodGet)

	router.HandleFunc("/aggregate", aggregate(agg)).Methods(http.MethodGet)
	router.HandleFunc("/compare", compare(agg)).Methods(http.MethodGet)

	return router
}

func aggregate(agg *aggregator.Aggregator) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		env := r.URL.Query().Get("env")
		if env == "" {
			env = agg.DefaultEnvironment()
		}

		summary, err := agg.Aggregate(r.Context(), env)

		var invalidEnv *aggregator.InvalidEnvironmentError
		if errors.As(err, &invalidEnv) {
			writeError(rw, err.Error(), http.StatusBadRequest)
			return
		}

		if err != nil {
			writeError(rw, err.Error(), http.StatusInternalServerError)
			return
		}

		writeResponse(rw, summary, http.StatusOK)
	}
}

func compare(agg *aggregator.Aggregator) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		writeResponse(rw, agg.Compare(r.Context()), http.StatusOK)
	}
}
