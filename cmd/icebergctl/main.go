// Command icebergctl is a small inspection binary for table-metadata
// documents. It is operator tooling around this module's API, not a
// substitute for it.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func setupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(os.Stdout).With().
		Timestamp().
		Str("component", "icebergctl").
		Logger()
}

func main() {
	logger := setupLogger()

	rootCmd := &cobra.Command{
		Use:   "icebergctl",
		Short: "Inspect Iceberg table-metadata documents",
		Long: `icebergctl is a small operator utility around the icebergcore
metadata engine.

Examples:
  icebergctl inspect metadata.json
  icebergctl bucket 16 "user-1234"`,
		Version: "0.1.0",
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newInspectCommand(logger),
		newBucketCommand(logger),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
