package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Daskott/clinicstack/colors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type RequestContextKey string

const (
	requestIDKey = RequestContextKey("requestID")
	storageKey   = RequestContextKey("storage")
)

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         200,
		}

		defer func() {
			responseStatus := colors.Green(responseWriter.Status)
			if responseWriter.Status >= 400 {
				responseStatus = colors.Red(responseWriter.Status)
			}

			logg.Infof("%v %v %v %v %v",
				r.Method,
				r.RequestURI,
				responseStatus,
				colors.Yellow(fmt.Sprintf("[%v]", time.Since(start))),
				colors.Blue(responseWriter.Header().Get("X-Request-ID")))
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

func initialContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// storageScopeMiddleware pins one pooled connection to the request. The
// connection goes back to the pool when the handler returns, on error too.
func storageScopeMiddleware(db *gorm.DB) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := db.WithContext(r.Context()).Connection(func(conn *gorm.DB) error {
				scoped := conn.Session(&gorm.Session{NewDB: true})
				ctx := context.WithValue(r.Context(), storageKey, scoped)

				next.ServeHTTP(w, r.WithContext(ctx))
				return nil
			})
			if err != nil {
				writeError(w, err.Error(), http.StatusInternalServerError)
			}
		})
	}
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func connFrom(r *http.Request) *gorm.DB {
	return r.Context().Value(storageKey).(*gorm.DB)
}
