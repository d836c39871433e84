package server

import (
	"net/http"

	"github.com/Daskott/clinicstack/server/metrics"
	"github.com/gorilla/mux"
)

type SpecialtyCount struct {
	Specialty string `json:"specialty"`
	Count     int    `json:"count"`
}

type ViewSample struct {
	View string `json:"view"`
	Rows int    `json:"rows"`
}

// Canned figures until the analytics service reads from a warehouse.
var (
	examsBySpecialty = []SpecialtyCount{
		{Specialty: "spec0", Count: 120},
		{Specialty: "spec1", Count: 98},
		{Specialty: "spec2", Count: 140},
	}
	viewSample = ViewSample{View: "sample", Rows: 10}
)

func NewAnalyticsRouter(m *metrics.Metrics) *mux.Router {
	router := newRouter(m)

	router.HandleFunc("/", func(rw http.ResponseWriter, r *http.Request) {
		writeResponse(rw, map[string]string{"status": "ok", "service": "analytics", "docs": "/routes"}, http.StatusOK)
	}).Methods(http.MethodGet)

	router.HandleFunc("/analytics/exams_by_specialty", func(rw http.ResponseWriter, r *http.Request) {
		writeResponse(rw, examsBySpecialty, http.StatusOK)
	}).Methods(http.MethodGet)

	router.HandleFunc("/analytics/viewsample", func(rw http.ResponseWriter, r *http.Request) {
		writeResponse(rw, viewSample, http.StatusOK)
	}).Methods(http.MethodGet)

	return router
}
