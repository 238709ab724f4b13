package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/signalstate/internal/config"
	"github.com/vango-dev/signalstate/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err, errorStyle)
		os.Exit(1)
	}
}

// Flags shared by every command.
var (
	configPath  string
	errorFormat string
	noColor     bool

	// errorStyle is errorFormat once validated.
	errorStyle = errors.StyleText
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "signalstate",
		Short: "Explore a fine-grained reactive state graph",
		Long: `signalstate drives the reactive state graph from the command line.

Cells are combined through memoized views, and every burst of writes
collapses into a single flush. Commands:

  • demo runs a scripted scenario and prints what subscribers saw
  • serve exposes a live graph through the inspector, with metrics
  • config writes and checks signalstate.json / signalstate.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			style, err := errors.ParseStyle(errorFormat)
			if err != nil {
				return err
			}
			errorStyle = style
			errors.SetColor(!noColor && isTerminal(os.Stderr))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to signalstate.json or signalstate.yaml")
	flags.StringVar(&errorFormat, "error-format", string(errors.StyleText), "Error output: text, compact or json")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		demoCmd(),
		serveCmd(),
		configCmd(),
		explainCmd(),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig loads --config, or the nearest config file above the working
// directory, and validates it.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mark colors a status glyph when colors are on.
func mark(code, glyph string) string {
	if !errors.ColorEnabled() {
		return glyph
	}
	return code + glyph + "\033[0m"
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", mark("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", mark("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}
