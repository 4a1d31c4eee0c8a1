package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the specdiff release, overridden at link time.
var Version = "0.1.0-dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	LogFormat string // "auto" | "text" | "json"

	// CoreThreads caps the cores used for comparison. Zero means all cores.
	CoreThreads uint16

	// MetricsFile, when set, receives the run's metrics in the Prometheus
	// text format once the run ends.
	MetricsFile string
}

// EnvPrefix prefixes the environment variables that stand in for flags,
// e.g. SPECDIFF_LOG_FORMAT for --log-format.
const EnvPrefix = "SPECDIFF"

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidLogFormats defines the allowed diagnostic log formats.
var ValidLogFormats = []string{"auto", "text", "json"}

// NewRootCommand creates the root command for the specdiff CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "specdiff <spec-file>",
		Short: "Optic diff engine: compare recorded API traffic against a specification",
		Long: `Compare recorded HTTP interactions against an API specification.

Reads one [interaction, tags] JSON record per line from standard input and
writes one [finding, tags, fingerprint] JSON record per line to standard
output for every discrepancy found. Diagnostics go to standard error.

The specification may be JSON (.json), CUE (.cue) or YAML (.yaml, .yml).

Every flag may also be set through the environment: SPECDIFF_LOG_FORMAT=json
has the same effect as --log-format json. Flags given on the command line win.

Exit codes:
  0 - All input processed
  1 - Pipeline fault (unreadable input, comparison failure, unwritable output)
  2 - Command error (specification missing, unparsable or invalid)

Example:
  specdiff ./api.json < interactions.jsonl > findings.jsonl`,
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveOptions(opts, cmd); err != nil {
				return exitErrorf(ExitCommandError, "invalid configuration: %w", err)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return exitErrorf(ExitCommandError, "invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !slices.Contains(ValidLogFormats, opts.LogFormat) {
				return exitErrorf(ExitCommandError, "invalid log format %q: must be one of %v", opts.LogFormat, ValidLogFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args[0], cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format for validate and test (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "auto", "diagnostic log format (auto|text|json)")

	cmd.Flags().Uint16Var(&opts.CoreThreads, "core-threads", 0, "number of cores to use for comparison (default: all)")
	_ = cmd.Flags().MarkHidden("core-threads")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write run metrics to this file in Prometheus text format")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolveOptions fills opts from flags, falling back to SPECDIFF_*
// environment variables for flags not given on the command line.
func resolveOptions(opts *RootOptions, cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	opts.Verbose = v.GetBool("verbose")
	opts.Format = v.GetString("format")
	opts.LogFormat = v.GetString("log-format")
	if cmd.Flags().Lookup("core-threads") != nil {
		n := v.GetUint("core-threads")
		if n > 1<<16-1 {
			return fmt.Errorf("core-threads %d out of range", n)
		}
		opts.CoreThreads = uint16(n)
	}
	if cmd.Flags().Lookup("metrics-file") != nil {
		opts.MetricsFile = v.GetString("metrics-file")
	}
	return nil
}
