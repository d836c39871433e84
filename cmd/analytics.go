package cmd

import (
	"github.com/Daskott/clinicstack/server"
	"github.com/Daskott/clinicstack/server/metrics"
	"github.com/Daskott/clinicstack/shared"
	"github.com/spf13/cobra"
)

func createAnalyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Start the analytics service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := newConfig("analytics")
			if err != nil {
				return err
			}

			config.SetDefault("listener.port", 5005)
			config.BindEnv("listener.port", "PORT")

			analyticsConfig := shared.AnalyticsConfig{}
			if err := unmarshalConfig(config, &analyticsConfig); err != nil {
				return err
			}

			server.Start("analytics", analyticsConfig.Listener.Port, server.NewAnalyticsRouter(metrics.New("analytics")))
			return nil
		},
	}
}
