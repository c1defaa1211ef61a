package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"fornix/internal/activation"
	"fornix/pkg/fornix"
)

func newBuildCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build a network and print its summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, net, err := opts.buildNetwork(cmd)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), fornix.Summarize(net))
			return nil
		},
	}
}

func newEvalCommand(opts *rootOptions) *cobra.Command {
	var (
		inputs []string
		trace  bool
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a freshly built network on input groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := parseGroups(inputs)
			if err != nil {
				return err
			}
			client, net, err := opts.buildNetwork(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if trace {
				layers, err := client.Trace(cmd.Context(), net, groups)
				if err != nil {
					return err
				}
				for i, values := range layers {
					fmt.Fprintf(out, "layer %d: %s\n", i, formatValues(values))
				}
				return nil
			}
			values, err := client.Evaluate(cmd.Context(), net, groups)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "output: %s\n", formatValues(values))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "comma separated input group (repeatable)")
	cmd.Flags().BoolVar(&trace, "trace", false, "print every layer's outputs")
	return cmd
}

func newWeightsCommand(opts *rootOptions) *cobra.Command {
	var layer int
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Print the weight matrix between a layer and the next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, net, err := opts.buildNetwork(cmd)
			if err != nil {
				return err
			}
			w, ok := net.WeightMatrix(layer)
			if !ok {
				return errors.Errorf("no weight matrix for layer %d of %d", layer, len(net.Layers))
			}
			rows, cols := w.Dims()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "layer %d -> %d (%dx%d)\n", layer, layer+1, rows, cols)
			fmt.Fprintf(out, "%v\n", mat.Formatted(w, mat.Squeeze()))
			return nil
		},
	}
	cmd.Flags().IntVar(&layer, "layer", 0, "source layer index")
	return cmd
}

func newActivationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "activations",
		Short: "List registered activation functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range activation.List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newPerturbCommand(opts *rootOptions) *cobra.Command {
	var (
		inputs      []string
		req         fornix.PerturbRequest
		probability float64
	)
	cmd := &cobra.Command{
		Use:   "perturb",
		Short: "Perturb a network's parameters and compare outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := parseGroups(inputs)
			if err != nil {
				return err
			}
			req.Probability = fornix.Float64(probability)
			client, net, err := opts.buildNetwork(cmd)
			if err != nil {
				return err
			}
			before, err := client.Evaluate(cmd.Context(), net, groups)
			if err != nil {
				return err
			}
			summary, err := client.Perturb(cmd.Context(), net, req)
			if err != nil {
				return err
			}
			after, err := client.Evaluate(cmd.Context(), net, groups)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "perturbed: %s of %s parameters\n",
				humanize.Comma(int64(summary.Written)), humanize.Comma(int64(len(summary.Before))))
			fmt.Fprintf(out, "before: %s\n", formatValues(before))
			fmt.Fprintf(out, "after: %s\n", formatValues(after))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "comma separated input group (repeatable)")
	cmd.Flags().Float64Var(&req.Spread, "spread", 0.1, "delta scale as a fraction of each parameter's half range")
	cmd.Flags().Float64Var(&probability, "probability", 1, "chance each parameter is perturbed")
	cmd.Flags().Int64Var(&req.Seed, "perturb-seed", 0, "perturbation seed (0 seeds from the OS)")
	return cmd
}

func printSummary(w io.Writer, s fornix.Summary) {
	sizes := make([]string, len(s.Sizes))
	for i, size := range s.Sizes {
		sizes[i] = humanize.Comma(int64(size))
	}
	fmt.Fprintf(w, "network: %s\n", s.ID)
	fmt.Fprintf(w, "layers: %s\n", strings.Join(sizes, " "))
	fmt.Fprintf(w, "inputs: %s\n", humanize.Comma(int64(s.Inputs)))
	fmt.Fprintf(w, "connections: %s\n", humanize.Comma(int64(s.Connections)))
	fmt.Fprintf(w, "parameters: %s\n", humanize.Comma(int64(s.Parameters)))
}

// parseGroups turns each "--input 1,2.5" value into one input group.
func parseGroups(raw []string) ([][]float64, error) {
	groups := make([][]float64, 0, len(raw))
	for i, item := range raw {
		var group []float64
		for _, field := range strings.Split(item, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "input group %d", i)
			}
			group = append(group, v)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func formatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return strings.Join(parts, " ")
}
