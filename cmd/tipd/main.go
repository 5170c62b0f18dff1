package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/tooltip/internal/config"
	errs "github.com/vango-dev/tooltip/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		errs.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "tipd",
		Short: "Tooltip placement server and tools",
		Long: `tipd runs adaptive tooltips for browser pages from the server.

Pages load a small client that reports anchors and events over a
WebSocket; tipd positions each tooltip next to its anchor, flipping
and shifting it to stay on screen, and sends back DOM patches.

It can also compute a single placement offline, which is handy for
checking how a tooltip will land for a given layout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default: nearest one above the working directory)")

	root.AddCommand(
		serveCmd(&configPath),
		placeCmd(&configPath),
		versionCmd(),
	)
	return root
}

// loadConfig loads path, or the nearest config above the working directory
// when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadFromWorkingDir()
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
