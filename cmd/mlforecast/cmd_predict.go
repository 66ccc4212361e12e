package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahul/mlforecast/internal/forecast"
	"github.com/rahul/mlforecast/internal/observability"
)

func newPredictCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print one prediction immediately, skipping the processing steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.generator().Generate()
			a.logger.LogPrediction(res)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), observability.RenderResult(res))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the prediction as JSON")
	return cmd
}

func newNetworkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "network",
		Short: "Describe the neural network model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := forecast.Network
			out := cmd.OutOrStdout()

			layers := make([]string, len(n.Layers))
			for i, l := range n.Layers {
				layers[i] = fmt.Sprintf("%-8d %s", l, n.ActivationFunctions[i])
			}

			fmt.Fprintf(out, "Model: %s\n\n", n.Summary())
			fmt.Fprintf(out, "%-8s %s\n", "Nodes", "Activation")
			fmt.Fprintf(out, "%s\n", strings.Repeat("-", 24))
			fmt.Fprintln(out, strings.Join(layers, "\n"))
			fmt.Fprintf(out, "\nTraining epochs: %d\n", n.TrainingEpochs)
			fmt.Fprintf(out, "Accuracy:        %.1f%%\n", n.Accuracy*100)
			_, err := fmt.Fprintf(out, "Loss:            %.2f\n", n.Loss)
			return err
		},
	}
}
