package fornix

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"fornix/internal/activation"
	"fornix/internal/builder"
	"fornix/internal/diag"
	"fornix/internal/model"
	"fornix/internal/nn"
	"fornix/internal/random"
	"fornix/internal/tuning"
)

const (
	ModelTrivial = "trivial"
	ModelMemory  = "memory"
)

var (
	ErrInvalidTopology = errors.New("invalid topology")
	ErrEvaluation      = errors.New("network evaluation failed")
)

type (
	Network = nn.Network
	Address = nn.Address
)

type Options struct {
	Logger *slog.Logger
	// Source overrides the random source derived from Topology.Seed.
	Source random.Source
}

type Client struct {
	logger *slog.Logger
	source random.Source
}

// LayerSpec describes one hidden layer.
type LayerSpec struct {
	Size       int
	Model      string
	Activation string
}

type Topology struct {
	ID               string
	Inputs           int
	Outputs          int
	Hidden           []LayerSpec
	OutputActivation string

	// Seed drives parameter and weight initialization. Zero seeds from the
	// operating system.
	Seed int64

	// WeightMin and WeightMax bound the generated weights. A nil bound
	// falls back to the builder default for that side.
	WeightMin *float64
	WeightMax *float64
}

type Summary struct {
	ID          string
	Sizes       []int
	Connections int
	Parameters  int
	Inputs      int
}

type PerturbRequest struct {
	Spread float64
	Seed   int64

	// Probability is the chance a parameter is touched. nil means 1.
	Probability *float64
}

type PerturbSummary struct {
	Written int
	Before  []float64
	After   []float64
}

func New(opts Options) (*Client, error) {
	return &Client{
		logger: diag.OrDiscard(opts.Logger),
		source: opts.Source,
	}, nil
}

// Build validates t and assembles a densely wired network from it.
func (c *Client) Build(ctx context.Context, t Topology) (*nn.Network, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	src := c.source
	if src == nil {
		if t.Seed != 0 {
			src = random.New(t.Seed)
		} else {
			src = random.NewOS()
		}
	}

	weightMin, weightMax := t.WeightRange()
	opts := []builder.Option{
		builder.WithLogger(c.logger),
		builder.WithWeightRange(weightMin, weightMax),
	}
	if t.ID != "" {
		opts = append(opts, builder.WithID(t.ID))
	}

	b := builder.Start(t.Inputs, t.Outputs, opts...)
	for i, spec := range t.Hidden {
		fn, err := activation.Lookup(spec.Activation)
		if err != nil {
			return nil, errors.Wrapf(err, "hidden layer %d", i)
		}
		for j := 0; j < spec.Size; j++ {
			b = b.AddUnit(newModel(spec.Model, src))
		}
		b = b.Activate(fn).SealLayer()
	}
	net := b.FinishDirectional(src)

	if t.OutputActivation != "" && len(net.Layers) > 0 {
		fn, err := activation.Lookup(t.OutputActivation)
		if err != nil {
			return nil, errors.Wrap(err, "output layer")
		}
		net.Layers[len(net.Layers)-1].Activation = fn
	}

	c.logger.Debug("network built", diag.KeyNetwork, net.ID, diag.KeyCount, net.ConnectionCount())
	return net, nil
}

// Validate reports the first structural problem of t.
func (t Topology) Validate() error {
	if t.Inputs <= 0 {
		return errors.Wrapf(ErrInvalidTopology, "inputs must be > 0, got %d", t.Inputs)
	}
	if t.Outputs <= 0 {
		return errors.Wrapf(ErrInvalidTopology, "outputs must be > 0, got %d", t.Outputs)
	}
	if weightMin, weightMax := t.WeightRange(); weightMin > weightMax {
		return errors.Wrapf(ErrInvalidTopology, "weight range is inverted: [%g, %g]", weightMin, weightMax)
	}
	for i, spec := range t.Hidden {
		if spec.Size <= 0 {
			return errors.Wrapf(ErrInvalidTopology, "hidden layer %d: size must be > 0", i)
		}
		switch spec.Model {
		case "", ModelTrivial, ModelMemory:
		default:
			return errors.Wrapf(ErrInvalidTopology, "hidden layer %d: unknown model %q", i, spec.Model)
		}
		if _, err := activation.Lookup(spec.Activation); err != nil {
			return errors.Wrapf(ErrInvalidTopology, "hidden layer %d: %v", i, err)
		}
	}
	if _, err := activation.Lookup(t.OutputActivation); err != nil {
		return errors.Wrapf(ErrInvalidTopology, "output layer: %v", err)
	}
	return nil
}

// WeightRange resolves the weight bounds, filling an unset side from the
// builder defaults.
func (t Topology) WeightRange() (float64, float64) {
	weightMin, weightMax := builder.DefaultWeightMin, builder.DefaultWeightMax
	if t.WeightMin != nil {
		weightMin = *t.WeightMin
	}
	if t.WeightMax != nil {
		weightMax = *t.WeightMax
	}
	return weightMin, weightMax
}

// Float64 returns a pointer to v, for the optional Topology and
// PerturbRequest fields.
func Float64(v float64) *float64 {
	return &v
}

func newModel(kind string, src random.Source) model.NeuronModel {
	switch kind {
	case ModelMemory:
		return model.NewMemoryNeuron(src)
	default:
		return model.NewTrivialNeuron(src)
	}
}

// Evaluate runs groups against a clone of net.
func (c *Client) Evaluate(ctx context.Context, net *nn.Network, groups [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, ok := net.Execute(groups)
	if !ok {
		return nil, errors.Wrapf(ErrEvaluation, "network %s", net.ID)
	}
	return out, nil
}

// Trace is Evaluate returning every layer's outputs.
func (c *Client) Trace(ctx context.Context, net *nn.Network, groups [][]float64) (nn.Trace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trace, ok := net.ExecuteTrace(groups)
	if !ok {
		return nil, errors.Wrapf(ErrEvaluation, "network %s", net.ID)
	}
	return trace, nil
}

// Perturb moves the trainable parameters of net in place.
func (c *Client) Perturb(ctx context.Context, net *nn.Network, req PerturbRequest) (PerturbSummary, error) {
	if err := ctx.Err(); err != nil {
		return PerturbSummary{}, err
	}
	src := c.source
	switch {
	case req.Seed != 0:
		src = random.New(req.Seed)
	case src == nil:
		src = random.NewOS()
	}
	p := &tuning.Perturber{Source: src, Spread: req.Spread, Probability: req.Probability}

	before := tuning.Snapshot(net)
	written, err := p.Perturb(net)
	if err != nil {
		return PerturbSummary{}, errors.Wrap(err, "perturb")
	}
	return PerturbSummary{Written: written, Before: before, After: tuning.Snapshot(net)}, nil
}

func Summarize(net *nn.Network) Summary {
	return Summary{
		ID:          net.ID,
		Sizes:       net.Sizes(),
		Connections: net.ConnectionCount(),
		Parameters:  len(net.Parameters()),
		Inputs:      net.InputCount(),
	}
}
