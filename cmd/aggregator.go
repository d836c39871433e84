package cmd

import (
	"net/http"
	"strings"

	"github.com/Daskott/clinicstack/server"
	"github.com/Daskott/clinicstack/server/aggregator"
	"github.com/Daskott/clinicstack/server/metrics"
	"github.com/Daskott/clinicstack/shared"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func createAggregatorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aggregator",
		Short: "Start the aggregator",
		Long: `The aggregator samples the users, patients and exams services of one
environment (/aggregate?env=) and compares record counts across all
configured environments (/compare).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := newConfig("aggregator")
			if err != nil {
				return err
			}

			aggConfig, port, err := resolveAggregatorConfig(config)
			if err != nil {
				return err
			}

			m := metrics.New("aggregator")
			agg := aggregator.New(aggConfig, &http.Client{}, m)

			server.Start("aggregator", port, server.NewAggregatorRouter(agg, m))
			return nil
		},
	}
}

// resolveAggregatorConfig builds the immutable environment table. The base
// address of each (environment, service) pair can be replaced through
// MS1_<ENV> (users), MS2_<ENV> (patients) and MS3_<ENV> (exams).
func resolveAggregatorConfig(config *viper.Viper) (aggregator.Config, int, error) {
	defaults := aggregator.DefaultConfig()

	environments := make([]map[string]interface{}, 0, len(defaults.Environments))
	for _, env := range defaults.Environments {
		environments = append(environments, map[string]interface{}{
			"name":     env.Name,
			"users":    env.Users,
			"patients": env.Patients,
			"exams":    env.Exams,
		})
	}

	config.SetDefault("listener.port", 5004)
	config.SetDefault("timeout", defaults.Timeout.String())
	config.SetDefault("environments", environments)
	config.BindEnv("listener.port", "PORT")
	config.BindEnv("timeout", "AGGREGATOR_TIMEOUT")

	aggConfig := shared.AggregatorConfig{}
	if err := config.Unmarshal(&aggConfig); err != nil {
		return aggregator.Config{}, 0, formattedError("invalid config: %v", err)
	}

	for i, env := range aggConfig.Environments {
		suffix := strings.ToUpper(env.Name)
		aggConfig.Environments[i].Users = overrideString(config, "MS1_"+suffix, env.Users)
		aggConfig.Environments[i].Patients = overrideString(config, "MS2_"+suffix, env.Patients)
		aggConfig.Environments[i].Exams = overrideString(config, "MS3_"+suffix, env.Exams)
	}

	if err := validate.Struct(aggConfig); err != nil {
		return aggregator.Config{}, 0, formattedError("invalid config: %v", err)
	}

	result := aggregator.Config{Timeout: aggConfig.Timeout}
	for _, env := range aggConfig.Environments {
		result.Environments = append(result.Environments, aggregator.Environment{
			Name:     env.Name,
			Users:    env.Users,
			Patients: env.Patients,
			Exams:    env.Exams,
		})
	}

	return result, aggConfig.Listener.Port, nil
}

func overrideString(config *viper.Viper, key, fallback string) string {
	if value := config.GetString(key); value != "" {
		return value
	}

	return fallback
}
