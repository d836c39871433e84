package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Daskott/clinicstack/server/metrics"
	"github.com/Daskott/clinicstack/server/models"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type IndexPayload struct {
	Status   string   `json:"status"`
	Service  string   `json:"service"`
	Docs     string   `json:"docs"`
	Tables   []string `json:"tables"`
	Relation string   `json:"relation"`
}

type RoutePayload struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods,omitempty"`
}

// entityHandlers serves the parent and child tables of one store.
type entityHandlers[P models.Model, C models.ChildModel] struct {
	store  *models.Store[P, C]
	schema models.Schema
}

// NewEntityRouter builds the full route table of an entity service on top of
// store. Every storage route runs on a connection scoped to its request.
func NewEntityRouter[P models.Model, C models.ChildModel](db *gorm.DB, store *models.Store[P, C]) *mux.Router {
	h := &entityHandlers[P, C]{store: store, schema: store.Schema()}
	router := newRouter(metrics.New(h.schema.Service))
	scoped := storageScopeMiddleware(db)

	handle := func(path, method string, fn http.HandlerFunc) {
		router.Handle(path, scoped(fn)).Methods(method)
	}

	router.HandleFunc("/", h.index).Methods(http.MethodGet)

	parents := "/" + h.schema.ParentTable
	handle(parents, http.MethodGet, h.listParents)
	handle(parents, http.MethodPost, h.createParent)
	handle(parents+"/{id:[0-9]+}", http.MethodGet, h.findParent)
	handle(parents+"/{id:[0-9]+}", http.MethodPut, h.updateParent)
	handle(parents+"/{id:[0-9]+}", http.MethodDelete, h.deleteParent)

	children := "/" + h.schema.ChildTable
	handle(children, http.MethodGet, h.listChildren)
	handle(children, http.MethodPost, h.createChild)
	handle(children+"/{id:[0-9]+}", http.MethodGet, h.findChild)
	handle(children+"/{id:[0-9]+}", http.MethodPut, h.updateChild)
	handle(children+"/{id:[0-9]+}", http.MethodDelete, h.deleteChild)

	return router
}

func (h *entityHandlers[P, C]) index(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, IndexPayload{
		Status:   "ok",
		Service:  h.schema.Service,
		Docs:     "/routes",
		Tables:   []string{h.schema.ParentTable, h.schema.ChildTable},
		Relation: h.schema.Relation(),
	}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Parents
// --------------------------------------------------------------------------------//

func (h *entityHandlers[P, C]) listParents(rw http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r, h.schema.ParentLimit)
	if err != nil {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.store.ListParents(connFrom(r), page)
	if err != nil {
		h.writeStoreError(rw, err, h.schema.ParentNotFound())
		return
	}

	writeResponse(rw, records, http.StatusOK)
}

func (h *entityHandlers[P, C]) findParent(rw http.ResponseWriter, r *http.Request) {
	record, err := h.store.FindParent(connFrom(r), idVar(r))
	if err != nil {
		h.writeStoreError(rw, err, h.schema.ParentNotFound())
		return
	}

	writeResponse(rw, record, http.StatusOK)
}

func (h *entityHandlers[P, C]) createParent(rw http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	// ids are always assigned by the store
	removeFields(fields, "id")

	parent := new(P)
	if err := bindFields(fields, parent); err != nil {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.CreateParent(connFrom(r), parent); err != nil {
		h.writeStoreError(rw, err, h.schema.ParentNotFound())
		return
	}

	writeResponse(rw, parent, http.StatusCreated)
}

func (h *entityHandlers[P, C]) updateParent(rw http.ResponseWriter, r *http.Request) {
	parent, ok := bindUpdate(rw, r, new(P))
	if !ok {
		return
	}

	updated, err := h.store.UpdateParent(connFrom(r), idVar(r), parent)
	if err != nil {
		h.writeStoreError(rw, err, h.schema.ParentNotFound())
		return
	}

	writeResponse(rw, updated, http.StatusOK)
}

func (h *entityHandlers[P, C]) deleteParent(rw http.ResponseWriter, r *http.Request) {
	id := idVar(r)

	removed, err := h.store.DeleteParent(connFrom(r), id)
	if err != nil {
		h.writeStoreError(rw, err, h.schema.ParentNotFound())
		return
	}

	logg.Debugf("deleted %s %v and %v %s", h.schema.ParentName, id, removed, h.schema.ChildTable)
	writeResponse(rw, DeletedPayload{Status: "deleted", ID: id}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Children
// --------------------------------------------------------------------------------//

func (h *entityHandlers[P, C]) listChildren(rw http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r, h.schema.ChildLimit)
	if err != nil {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	var parentID uint64
	if value := r.URL.Query().Get(h.schema.ForeignKey); value != "" {
		parentID, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			writeError(rw, h.schema.ForeignKey+" must be a non-negative integer", http.StatusBadRequest)
			return
		}
	}

	children, err := h.store.ListChildren(connFrom(r), uint(parentID), page)
	if err != nil {
		h.writeStoreError(rw, err, h.schema.ChildNotFound())
		return
	}

	writeResponse(rw, children, http.StatusOK)
}

func (h *entityHandlers[P, C]) findChild(rw http.ResponseWriter, r *http.Request) {
	child, err := h.store.FindChild(connFrom(r), idVar(r))
	if err != nil {
		h.writeStoreError(rw, err, h.schema.ChildNotFound())
		return
	}

	writeResponse(rw, child, http.StatusOK)
}

func (h *entityHandlers[P, C]) createChild(rw http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	removeFields(fields, "id")

	child := new(C)
	if err := bindFields(fields, child); err != nil {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.CreateChild(connFrom(r), child); err != nil {
		h.writeStoreError(rw, err, h.schema.ChildNotFound())
		return
	}

	writeResponse(rw, child, http.StatusCreated)
}

func (h *entityHandlers[P, C]) updateChild(rw http.ResponseWriter, r *http.Request) {
	child, ok := bindUpdate(rw, r, new(C))
	if !ok {
		return
	}

	updated, err := h.store.UpdateChild(connFrom(r), idVar(r), child)
	if err != nil {
		h.writeStoreError(rw, err, h.schema.ChildNotFound())
		return
	}

	writeResponse(rw, updated, http.StatusOK)
}

func (h *entityHandlers[P, C]) deleteChild(rw http.ResponseWriter, r *http.Request) {
	id := idVar(r)

	if err := h.store.DeleteChild(connFrom(r), id); err != nil {
		h.writeStoreError(rw, err, h.schema.ChildNotFound())
		return
	}

	writeResponse(rw, DeletedPayload{Status: "deleted", ID: id}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// bindUpdate decodes a full-replace body onto dst. An empty body is rejected,
// since it would null every column.
func bindUpdate[T any](rw http.ResponseWriter, r *http.Request, dst *T) (*T, bool) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	removeFields(fields, "id")
	if len(fields) == 0 {
		writeError(rw, "body required", http.StatusBadRequest)
		return nil, false
	}

	if err := bindFields(fields, dst); err != nil {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	return dst, true
}

func (h *entityHandlers[P, C]) writeStoreError(rw http.ResponseWriter, err error, notFoundMsg string) {
	var validationErr *models.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeError(rw, validationErr.Message, http.StatusBadRequest)
	case errors.Is(err, models.ErrMissingParent):
		writeError(rw, h.schema.ParentNotFound(), http.StatusBadRequest)
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeError(rw, notFoundMsg, http.StatusNotFound)
	default:
		// storage errors are passed through as is
		writeError(rw, err.Error(), http.StatusInternalServerError)
	}
}
