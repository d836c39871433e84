package cmd

import (
	"fmt"

	"github.com/Daskott/clinicstack/server"
	"github.com/Daskott/clinicstack/server/models"
	"github.com/Daskott/clinicstack/shared"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Defaults and environment variables of each entity service. Every service
// also reads PORT and STORAGE_DRIVER.
var (
	serviceDefaults = map[string]map[string]interface{}{
		"users": {
			"listener.port":  5001,
			"storage.driver": "mysql",
			"storage.host":   "localhost",
			"storage.user":   "root",
			"storage.name":   "db_usuarios",
			"storage.port":   3306,
		},
		"patients": {
			"listener.port":    5002,
			"storage.driver":   "postgres",
			"storage.host":     "localhost",
			"storage.user":     "postgres",
			"storage.password": "postgres",
			"storage.name":     "medical_db",
			"storage.port":     5432,
		},
		"exams": {
			"listener.port":  5003,
			"storage.driver": "sqlite",
			"storage.path":   "data/exams.db",
		},
	}

	serviceEnvs = map[string]map[string][]string{
		"users": {
			"storage.driver":   {"STORAGE_DRIVER"},
			"storage.host":     {"MYSQL_HOST"},
			"storage.user":     {"MYSQL_USER"},
			"storage.password": {"MYSQL_PASS"},
			"storage.name":     {"MYSQL_DB"},
			"storage.port":     {"MYSQL_PORT"},
		},
		"patients": {
			"storage.driver":   {"STORAGE_DRIVER"},
			"storage.host":     {"PG_HOST"},
			"storage.user":     {"PG_USER"},
			"storage.password": {"PG_PASS"},
			"storage.name":     {"PG_DB"},
			"storage.port":     {"PG_PORT"},
		},
		"exams": {
			"storage.driver":   {"EXAMS_DB_DRIVER", "STORAGE_DRIVER"},
			"storage.path":     {"EXAMS_DB_PATH"},
			"storage.host":     {"EXAMS_DB_HOST"},
			"storage.user":     {"EXAMS_DB_USER"},
			"storage.password": {"EXAMS_DB_PASS"},
			"storage.name":     {"EXAMS_DB_NAME"},
			"storage.port":     {"EXAMS_DB_PORT"},
		},
	}
)

func createServiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "service [users|patients|exams]",
		Short:     "Start an entity service",
		Long:      `Start the CRUD service of one parent/child table pair: users/addresses, patients/appointments or exams/students.`,
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: server.EntityServiceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := server.LookupEntityService(args[0])
			if err != nil {
				return err
			}

			config, err := serviceConfig(service.Schema.Service)
			if err != nil {
				return err
			}

			db, err := models.OpenDB(config.Storage)
			if err != nil {
				return err
			}

			if config.Storage.AutoMigrate {
				if err := service.AutoMigrate(db); err != nil {
					return fmt.Errorf("auto migrate %s: %v", service.Schema.Service, err)
				}
			}

			server.Start(service.Schema.Service, config.Listener.Port, service.NewRouter(db))
			return nil
		},
	}
}

func serviceConfig(name string) (shared.ServiceConfig, error) {
	config, err := newConfig(name)
	if err != nil {
		return shared.ServiceConfig{}, err
	}

	return resolveServiceConfig(config, name)
}

func resolveServiceConfig(config *viper.Viper, name string) (shared.ServiceConfig, error) {
	for key, value := range serviceDefaults[name] {
		config.SetDefault(key, value)
	}
	config.SetDefault("storage.autoMigrate", true)

	config.BindEnv("listener.port", "PORT")
	config.BindEnv("storage.autoMigrate", "AUTO_MIGRATE")
	bindEnvs(config, serviceEnvs[name])

	serviceConfig := shared.ServiceConfig{}
	if err := unmarshalConfig(config, &serviceConfig); err != nil {
		return shared.ServiceConfig{}, err
	}

	return serviceConfig, nil
}
