package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Daskott/clinicstack/server/cron"
	"github.com/Daskott/clinicstack/server/ingest"
	"github.com/Daskott/clinicstack/server/s3store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func createIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Export a list endpoint to CSV",
		Long: `Fetch the JSON array served at --api and write it to --out as CSV.
The file can be uploaded to Google Cloud Storage (gs://bucket/prefix) or
S3 (s3://bucket/prefix) with --upload, and the export repeated on a cron
schedule with --schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := newConfig("ingest")
			if err != nil {
				return err
			}

			resolveIngestConfig(config)
			if err := config.BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			return runIngest(cmd, config)
		},
	}

	cmd.Flags().String("api", "", "list endpoint to export (env API)")
	cmd.Flags().String("out", "", "CSV file to write (env OUT)")
	cmd.Flags().String("upload", "", "upload target, gs://bucket/prefix or s3://bucket/prefix (env UPLOAD)")
	cmd.Flags().String("schedule", "", "cron expression to repeat the export on (env SCHEDULE)")

	return cmd
}

func resolveIngestConfig(config *viper.Viper) {
	config.SetDefault("api", "http://localhost:5001/users")
	config.SetDefault("out", "out.csv")
	config.SetDefault("timeZone", "UTC")
	config.SetDefault("timeout", "30s")

	bindEnvs(config, map[string][]string{
		"api":                {"API"},
		"out":                {"OUT"},
		"upload":             {"UPLOAD"},
		"schedule":           {"SCHEDULE"},
		"timeZone":           {"INGEST_TIMEZONE"},
		"google.credentials": {"GOOGLE_APPLICATION_CREDENTIALS"},
		"s3.region":          {"AWS_REGION"},
		"s3.endpoint":        {"S3_ENDPOINT"},
		"s3.pathStyle":       {"S3_PATH_STYLE"},
		"s3.accessKeyID":     {"AWS_ACCESS_KEY_ID"},
		"s3.secretAccessKey": {"AWS_SECRET_ACCESS_KEY"},
	})
}

func runIngest(cmd *cobra.Command, config *viper.Viper) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	uploader, err := ingest.NewUploader(ctx, config.GetString("upload"), ingest.UploadConfig{
		GoogleCredentials: config.GetString("google.credentials"),
		S3: s3store.Config{
			Region:          config.GetString("s3.region"),
			Endpoint:        config.GetString("s3.endpoint"),
			PathStyle:       config.GetBool("s3.pathStyle"),
			AccessKeyID:     config.GetString("s3.accessKeyID"),
			SecretAccessKey: config.GetString("s3.secretAccessKey"),
		},
	})
	if err != nil {
		return err
	}

	opts := ingest.Options{
		API:      config.GetString("api"),
		Out:      config.GetString("out"),
		Client:   &http.Client{Timeout: config.GetDuration("timeout")},
		Uploader: uploader,
		Stdout:   cmd.OutOrStdout(),
	}

	schedule := config.GetString("schedule")
	if schedule == "" {
		return ingest.Run(ctx, opts)
	}

	scheduler := cron.NewCronScheduler(config.GetString("timeZone"))
	err = cron.Schedule(scheduler, schedule, "ingest", func() {
		if err := ingest.Run(ctx, opts); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), red("ingest failed:"), err)
		}
	})
	if err != nil {
		return err
	}

	scheduler.StartAsync()
	fmt.Fprintf(cmd.OutOrStdout(), "exporting %s on %q\n", opts.API, schedule)

	// Wait for interrupt signal before stopping the scheduler
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	scheduler.Stop()
	return nil
}
