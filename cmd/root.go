/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	devconfig "github.com/Daskott/clinicstack/dev/config"
	"github.com/Daskott/clinicstack/version"
	"github.com/fatih/color"
	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	isDevEnv bool

	yellow       = color.New(color.FgYellow).SprintFunc()
	red          = color.New(color.FgRed).SprintFunc()
	warningLabel = yellow("Warning:")

	validate = validator.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = createRootCmd()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(loadDotEnv)
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "clinicstack",
		Short: `clinicstack runs the services of a small clinical records platform.

Three entity services (users, patients, exams) store parent/child records,
the aggregator samples and compares them across environments, analytics
serves reporting views and ingest exports any list endpoint to CSV.`,
		Version:       fmt.Sprintf("v%s", version.Version),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file for the command")
	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	cmd.AddCommand(
		createServiceCmd(),
		createAggregatorCmd(),
		createAnalyticsCmd(),
		createIngestCmd(),
	)

	return cmd
}

// loadDotEnv reads a .env file from the working directory, if there is one.
// Variables already set in the environment win.
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, warningLabel, "could not read .env:", err)
	}
}

// newConfig returns the viper instance of one command. In dev mode it starts
// from the embedded dev YAML of that command, otherwise from --config if set.
// Environment variables override both.
func newConfig(command string) (*viper.Viper, error) {
	config := viper.New()
	config.SetConfigType("yaml")

	switch {
	case isDevEnv:
		if err := config.ReadConfig(strings.NewReader(devconfig.For(command))); err != nil {
			return nil, formattedError("error reading dev config: %v", err)
		}
	case cfgFile != "":
		config.SetConfigFile(cfgFile)
		if err := config.ReadInConfig(); err != nil {
			return nil, formattedError("error reading config file: %v", err)
		}
		fmt.Fprintln(os.Stderr, "Using config file:", config.ConfigFileUsed())
	}

	config.AutomaticEnv() // read in environment variables that match

	return config, nil
}

// unmarshalConfig decodes config into out and checks its validate tags.
func unmarshalConfig(config *viper.Viper, out interface{}) error {
	if err := config.Unmarshal(out); err != nil {
		return formattedError("invalid config: %v", err)
	}

	if err := validate.Struct(out); err != nil {
		return formattedError("invalid config: %v", err)
	}

	return nil
}

func bindEnvs(config *viper.Viper, envs map[string][]string) {
	for key, names := range envs {
		config.BindEnv(append([]string{key}, names...)...)
	}
}

func formattedError(format string, a ...interface{}) error {
	return fmt.Errorf(red(format), a...)
}
