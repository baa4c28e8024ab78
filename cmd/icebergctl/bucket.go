package main

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gear6io/icebergcore/iceberg"
)

// newBucketCommand builds the "bucket" subcommand: a quick way to check
// which bucket[N] a value lands in without writing a program against the
// iceberg package directly.
func newBucketCommand(logger zerolog.Logger) *cobra.Command {
	var asInt bool

	cmd := &cobra.Command{
		Use:   "bucket <N> <value>",
		Short: "Compute bucket[N](value) for an ad-hoc value",
		Long: `Compute the Iceberg bucket-transform partition value for a single
string or integer input.

Examples:
  icebergctl bucket 16 "user-1234"
  icebergctl bucket 16 1234 --int`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid bucket count %q: must be a positive integer", args[0])
			}

			var canonical []byte
			if asInt {
				v, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid integer value %q: %w", args[1], err)
				}
				canonical = iceberg.CanonicalInt64(v)
			} else {
				canonical = iceberg.CanonicalString(args[1])
			}

			result := iceberg.Bucket(canonical, n)
			logger.Debug().Int("n", n).Str("value", args[1]).Int32("bucket", result).Msg("computed bucket")
			fmt.Println(result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asInt, "int", false, "treat value as a 64-bit integer instead of a string")
	return cmd
}
