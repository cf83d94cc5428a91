// Command vrmaction serves VRM avatar actions to MCP clients.
//
// Usage:
//
//	vrmaction serve [--transport stdio|http] [--port 8080]
//	vrmaction actions
//	vrmaction generate ACTION [--intensity 0.5] [--duration 2] [--model avatar.vrm]
//	vrmaction inspect avatar.vrm
//
// Configuration is read from --config, VRMACTION_CONFIG, ./config.yaml or
// /etc/vrmaction/config.yaml, with VRMACTION_* environment overrides.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhuss/vrmaction/pkg/config"
	"github.com/rhuss/vrmaction/pkg/debug"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("vrmaction failed", "error", err)
		os.Exit(1)
	}
}

// rootOptions holds flags shared by all subcommands.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "vrmaction",
		Short: "MCP server generating expression and pose actions for VRM avatars",
		Long: `vrmaction turns action names like "wave_hello" or "happy_dance" into
facial expression weights and bone rotations for VRM avatars, restricted to
what a given model supports. It is usually run as an MCP server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")

	root.AddCommand(
		newServeCmd(opts),
		newActionsCmd(opts),
		newGenerateCmd(opts),
		newInspectCmd(),
	)
	return root
}

// loadConfig reads the configuration and installs the logger it selects.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
