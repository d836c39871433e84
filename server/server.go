package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/clinicstack/server/logger"
	"github.com/Daskott/clinicstack/server/metrics"
	"github.com/gorilla/mux"
)

var logg = logger.NewLogger()

// Start serves handler on port until the process receives SIGINT or SIGTERM,
// then drains in-flight requests before returning.
func Start(name string, port int, handler http.Handler) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%v", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go serve(server, name)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cleanup(server, name)
}

// newRouter returns a router with the middleware chain and the routes shared
// by every clinicstack server.
func newRouter(m *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	router.Use(loggingMiddleware)
	router.Use(initialContextMiddleware)
	router.Use(m.Middleware)

	router.HandleFunc("/routes", routesHandler(router)).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return router
}

func routesHandler(router *mux.Router) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		routes := []RoutePayload{}

		err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
			path, err := route.GetPathTemplate()
			if err != nil {
				return nil
			}

			methods, _ := route.GetMethods()
			routes = append(routes, RoutePayload{Path: path, Methods: methods})
			return nil
		})
		if err != nil {
			writeError(rw, err.Error(), http.StatusInternalServerError)
			return
		}

		writeResponse(rw, routes, http.StatusOK)
	}
}
