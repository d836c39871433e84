package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Daskott/clinicstack/server/models"
	"github.com/gorilla/mux"
)

type ErrorPayload struct {
	Error string `json:"error"`
}

type DeletedPayload struct {
	Status string `json:"status"`
	ID     uint   `json:"id"`
}

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payload interface{}, statusCode int) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payload)
}

func writeError(rw http.ResponseWriter, msg string, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(msg)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(msg)
	}

	writeResponse(rw, ErrorPayload{Error: msg}, statusCode)
}

// decodeFields reads a JSON object body. An absent body decodes to no fields.
func decodeFields(r *http.Request) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}

	err := json.NewDecoder(r.Body).Decode(&fields)
	if errors.Is(err, io.EOF) {
		return fields, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid JSON body: %v", err)
	}

	return fields, nil
}

func removeFields(fields map[string]json.RawMessage, names ...string) {
	for _, name := range names {
		delete(fields, name)
	}
}

// bindFields copies the decoded fields onto dst through its json tags.
func bindFields(fields map[string]json.RawMessage, dst interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %v", err)
	}

	return nil
}

func idVar(r *http.Request) uint {
	// the route only matches digits
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return uint(id)
}

func pageFrom(r *http.Request, defaultLimit int) (models.Page, error) {
	page := models.Page{Limit: defaultLimit}
	query := r.URL.Query()

	var err error
	if page.Limit, err = nonNegativeInt(query.Get("limit"), defaultLimit); err != nil {
		return page, fmt.Errorf("limit %v", err)
	}

	if page.Offset, err = nonNegativeInt(query.Get("offset"), 0); err != nil {
		return page, fmt.Errorf("offset %v", err)
	}

	return page, nil
}

func nonNegativeInt(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, errors.New("must be a non-negative integer")
	}

	return n, nil
}

func notFoundHandler(rw http.ResponseWriter, r *http.Request) {
	writeError(rw, "not found", http.StatusNotFound)
}

func methodNotAllowedHandler(rw http.ResponseWriter, r *http.Request) {
	writeError(rw, "method not allowed", http.StatusMethodNotAllowed)
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server, name string) {
	logg.Infof("%s server is listening on port%v", name, server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(server *http.Server, name string) {
	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("%s server shutdown failed:%+s", name, err)
	}

	logg.Infof("%s server stopped properly", name)
}
