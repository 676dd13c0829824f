/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	analyzeCmd "github.com/mpapenbr/race-engineer-go/pkg/cmd/analyze"
	liveCmd "github.com/mpapenbr/race-engineer-go/pkg/cmd/live"
	migrateCmd "github.com/mpapenbr/race-engineer-go/pkg/cmd/migrate"
	"github.com/mpapenbr/race-engineer-go/pkg/config"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/engineer"
	natspub "github.com/mpapenbr/race-engineer-go/pkg/publish/nats"
	"github.com/mpapenbr/race-engineer-go/version"
)

const envPrefix = "RE"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "re",
	Short: "Race engineer for simulator telemetry",
	Long: `Aggregates recorded telemetry into per lap analytics, critiques
completed laps and gives live recommendations while driving.`,
	Version: version.FullVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.re.yml)")

	pf.StringVar(&config.DB, "db",
		"",
		"Connection string for the database (laps are stored if set)")
	pf.StringVar(&config.NatsURL, "nats-url",
		"",
		"URL of the NATS server (results are published if set)")
	pf.StringVar(&config.NatsPrefix, "nats-prefix",
		natspub.DefaultPrefix,
		"subject prefix for published messages")
	pf.StringVar(&config.WaitForServices,
		"wait-for-services",
		"15s",
		"Duration to wait for other services to be ready")
	pf.StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	pf.StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"info",
		"controls the log level for sql methods")
	pf.StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format (json, text)")
	pf.StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules, e.g. \"debug:engineer.* info:*\"")
	pf.BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	pf.StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data (stdout prints to console)")
	pf.StringVar(&config.Car, "car", "",
		"car name, overrides the recording")
	pf.StringVar(&config.Track, "track", "",
		"track name, overrides the recording")
	pf.IntVar(&config.HistorySize,
		"history-size",
		engineer.DefaultHistorySize,
		"frames per analysis window of the live engineer")
	pf.StringVar(&config.HoldDuration,
		"hold-duration",
		engineer.DefaultHoldDuration.String(),
		"how long a recommendation is kept after its condition cleared")
	pf.StringVar(&config.CompoundsFile,
		"compounds-file",
		"",
		"YAML file with tyre compound definitions")
	pf.StringVar(&config.SampleInterval,
		"sample-interval",
		"3ms",
		"physics tick interval used for suspension velocities")

	// add commands here
	rootCmd.AddCommand(analyzeCmd.NewAnalyzeCmd())
	rootCmd.AddCommand(liveCmd.NewLiveCmd())
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".re" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".re")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	bindPersistentFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	bindFlagSet(cmd.Flags(), v)
}

func bindPersistentFlags(cmd *cobra.Command, v *viper.Viper) {
	bindFlagSet(cmd.PersistentFlags(), v)
}

func bindFlagSet(flags *pflag.FlagSet, v *viper.Viper) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --favorite-color to RE_FAVORITE_COLOR
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := flags.Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
