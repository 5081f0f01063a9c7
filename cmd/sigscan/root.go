package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zhuweiyou/addressscanner/internal/logging"
)

var (
	logLevel string
	pretty   bool
	noColor  bool

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "sigscan",
	Short: "Locate addresses in program images by byte signature",
	Long: `sigscan searches a program image for byte signatures with wildcards
("48 8B 05 ?? ?? ?? ?? 48 8B D9") and turns matches into addresses.

Targets can be an executable on disk, the primary module of a running
process, or every readable region of a process.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewWithComponent(logging.Config{
			Level:   logLevel,
			Pretty:  pretty,
			NoColor: noColor,
			Output:  cmd.ErrOrStderr(),
		}, "sigscan")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Human-readable log output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(psCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
