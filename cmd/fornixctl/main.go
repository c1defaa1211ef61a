package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"fornix/internal/diag"
	"fornix/pkg/fornix"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	inputs           int
	outputs          int
	hidden           []int
	model            string
	activation       string
	outputActivation string
	seed             int64
	weightMin        float64
	weightMax        float64

	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stderr: stderr}
	root := &cobra.Command{
		Use:           "fornixctl",
		Short:         "Build and evaluate layered feed-forward networks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "JSON topology config")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "auto", "log format: auto, text, json")
	flags.IntVar(&opts.inputs, "inputs", 0, "input unit count")
	flags.IntVar(&opts.outputs, "outputs", 0, "output unit count")
	flags.IntSliceVar(&opts.hidden, "hidden", nil, "hidden layer sizes, e.g. 3,2")
	flags.StringVar(&opts.model, "model", fornix.ModelTrivial, "neuron model for --hidden layers")
	flags.StringVar(&opts.activation, "activation", "", "activation for --hidden layers")
	flags.StringVar(&opts.outputActivation, "output-activation", "", "activation for the output layer")
	flags.Int64Var(&opts.seed, "seed", 0, "initialization seed (0 seeds from the OS)")
	flags.Float64Var(&opts.weightMin, "weight-min", 0, "lower bound for generated weights (default -1)")
	flags.Float64Var(&opts.weightMax, "weight-max", 0, "upper bound for generated weights (default 1)")

	root.AddCommand(
		newBuildCommand(opts),
		newEvalCommand(opts),
		newWeightsCommand(opts),
		newActivationsCommand(),
		newPerturbCommand(opts),
	)
	return root
}

func (o *rootOptions) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, errors.Wrapf(err, "invalid --log-level %q", o.logLevel)
	}

	var format diag.Format
	switch strings.ToLower(o.logFormat) {
	case "text":
		format = diag.FormatText
	case "json":
		format = diag.FormatJSON
	case "auto", "":
		format = diag.FormatJSON
		if f, ok := o.stderr.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = diag.FormatText
		}
	default:
		return nil, errors.Errorf("invalid --log-format %q", o.logFormat)
	}
	return diag.NewLogger(o.stderr, format, level), nil
}

// setup resolves the client and topology shared by every network command.
func (o *rootOptions) setup(cmd *cobra.Command) (*fornix.Client, fornix.Topology, error) {
	logger, err := o.logger()
	if err != nil {
		return nil, fornix.Topology{}, err
	}
	topo, err := loadOrDefaultTopology(o.configPath)
	if err != nil {
		return nil, fornix.Topology{}, err
	}
	if err := o.overrideFromFlags(cmd, &topo); err != nil {
		return nil, fornix.Topology{}, err
	}

	client, err := fornix.New(fornix.Options{Logger: logger})
	if err != nil {
		return nil, fornix.Topology{}, err
	}
	return client, topo, nil
}

// overrideFromFlags applies the flags the caller set on top of topo. --model
// and --activation apply to the --hidden layers, or to the configured hidden
// layers when --hidden is absent.
func (o *rootOptions) overrideFromFlags(cmd *cobra.Command, topo *fornix.Topology) error {
	flags := cmd.Flags()
	if flags.Changed("inputs") {
		topo.Inputs = o.inputs
	}
	if flags.Changed("outputs") {
		topo.Outputs = o.outputs
	}
	if flags.Changed("hidden") {
		topo.Hidden = nil
		for _, size := range o.hidden {
			topo.Hidden = append(topo.Hidden, fornix.LayerSpec{Size: size, Model: o.model, Activation: o.activation})
		}
	} else if flags.Changed("model") || flags.Changed("activation") {
		if len(topo.Hidden) == 0 {
			return errors.New("--model and --activation need hidden layers from --hidden or --config")
		}
		hidden := make([]fornix.LayerSpec, len(topo.Hidden))
		for i, spec := range topo.Hidden {
			if flags.Changed("model") {
				spec.Model = o.model
			}
			if flags.Changed("activation") {
				spec.Activation = o.activation
			}
			hidden[i] = spec
		}
		topo.Hidden = hidden
	}
	if flags.Changed("output-activation") {
		topo.OutputActivation = o.outputActivation
	}
	if flags.Changed("seed") {
		topo.Seed = o.seed
	}
	if flags.Changed("weight-min") {
		topo.WeightMin = fornix.Float64(o.weightMin)
	}
	if flags.Changed("weight-max") {
		topo.WeightMax = fornix.Float64(o.weightMax)
	}
	return nil
}

func (o *rootOptions) buildNetwork(cmd *cobra.Command) (*fornix.Client, *fornix.Network, error) {
	client, topo, err := o.setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	net, err := client.Build(cmd.Context(), topo)
	if err != nil {
		return nil, nil, errors.Wrap(err, "build network")
	}
	return client, net, nil
}
