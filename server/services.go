package server

import (
	"fmt"
	"sort"

	"github.com/Daskott/clinicstack/server/models"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// EntityService is one store bound to its router, without type parameters,
// so commands can pick a service by name.
type EntityService struct {
	Schema      models.Schema
	AutoMigrate func(db *gorm.DB) error
	NewRouter   func(db *gorm.DB) *mux.Router
}

var entityServices = map[string]EntityService{}

func init() {
	registerEntityService(models.Users)
	registerEntityService(models.Patients)
	registerEntityService(models.Exams)
}

func registerEntityService[P models.Model, C models.ChildModel](store *models.Store[P, C]) {
	entityServices[store.Schema().Service] = EntityService{
		Schema:      store.Schema(),
		AutoMigrate: store.AutoMigrate,
		NewRouter: func(db *gorm.DB) *mux.Router {
			return NewEntityRouter(db, store)
		},
	}
}

func LookupEntityService(name string) (EntityService, error) {
	service, ok := entityServices[name]
	if !ok {
		return EntityService{}, fmt.Errorf("unknown service %q, expected one of %v", name, EntityServiceNames())
	}

	return service, nil
}

func EntityServiceNames() []string {
	names := make([]string, 0, len(entityServices))
	for name := range entityServices {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
