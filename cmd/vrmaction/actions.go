package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/engine"
	"github.com/rhuss/vrmaction/pkg/vrmfile"
)

func newActionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the built-in action types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			eng := engine.New(nil, engineConfig(cfg.Engine))
			for _, name := range eng.ListActionTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		intensity float64
		duration  float64
		modelPath string
	)

	cmd := &cobra.Command{
		Use:   "generate ACTION",
		Short: "Generate one action and print it as JSON",
		Long: `Generate one action without starting a server. Unknown action names
containing wave/hello, dance/move or point/indicate get a synthesized pose;
other unknown names produce an action with no transforms. With --model the action is restricted to the
expressions and bones of that VRM file, otherwise the standard VRM set is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			caps := api.StandardCapabilities()
			if modelPath != "" {
				model, err := vrmfile.Open(modelPath)
				if err != nil {
					return err
				}
				caps = model.Capabilities()
			}

			req := engine.GenerateRequest{
				ActionType:   args[0],
				Capabilities: caps,
			}
			if cmd.Flags().Changed("intensity") {
				req.Intensity = &intensity
			}
			if cmd.Flags().Changed("duration") {
				req.Duration = &duration
			}

			eng := engine.New(nil, engineConfig(cfg.Engine))
			gen, err := eng.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), gen.Action)
		},
	}
	cmd.Flags().Float64VarP(&intensity, "intensity", "i", 0.5, "action intensity between 0 and 1")
	cmd.Flags().Float64VarP(&duration, "duration", "d", 2.0, "action duration in seconds")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "VRM file whose capabilities restrict the action")
	return cmd
}

// inspectOutput is what inspect prints for a model file.
type inspectOutput struct {
	File         string               `json:"file"`
	Model        *vrmfile.Model       `json:"model"`
	Capabilities api.CapabilitiesSpec `json:"capabilities"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the expressions and bones of a VRM file",
		Long: `Read a VRM 0.x or 1.0 file (or any glTF) and print the capability
descriptor to pass as model_capabilities.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := vrmfile.Open(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), inspectOutput{
				File:         args[0],
				Model:        model,
				Capabilities: model.Capabilities().Spec(),
			})
		},
	}
}
