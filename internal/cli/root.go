// ABOUTME: Root command and shared CLI state
// ABOUTME: Loads and validates configuration before any subcommand runs
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Resonate-Protocol/wavescrub/internal/config"
)

var (
	cfgFile string

	cfg *config.Config
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wavescrub",
		Short: "Play audio files with a scrubbable terminal waveform",
		Long: `wavescrub decodes an audio file, draws its waveform in the terminal and
plays it with a draggable playhead. Supported formats: MP3, FLAC, WAV and Ogg Opus.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/wavescrub/config.toml)")

	cmd.AddCommand(newPlayCmd())
	cmd.AddCommand(newSummaryCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}
