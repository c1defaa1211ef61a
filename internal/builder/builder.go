// Package builder assembles networks layer by layer.
//
// Construction is a fluent pipeline: every step takes the state out of its
// receiver and returns a new *Builder, so a stale builder cannot be reused.
// Validation failures never stop the chain; they are logged and the state
// is left as it was.
//
//	net := builder.Start(3, 1).
//		AddUnit(model.NewTrivialNeuron(rng)).
//		AddUnit(model.NewTrivialNeuron(rng)).
//		SealLayer().
//		FinishDirectional(rng)
package builder

import (
	"log/slog"

	"github.com/google/uuid"

	"fornix/internal/activation"
	"fornix/internal/diag"
	"fornix/internal/model"
	"fornix/internal/nn"
	"fornix/internal/random"
)

const (
	DefaultWeightMin = -1.0
	DefaultWeightMax = 1.0
)

// Diagnostic messages emitted by the builder.
const (
	MsgEmptyLayer       = "tried to seal an empty layer"
	MsgConnectFailed    = "could not create a connection"
	MsgConsumed         = "builder was already consumed"
	MsgNilModel         = "tried to add a neuron without a model"
	MsgMissingRandom    = "no random source supplied, seeding from the OS"
	MsgBadWeightRange   = "weight range is inverted, swapping bounds"
	MsgNegativeCapacity = "negative unit count treated as zero"
)

type Option func(*config)

type config struct {
	id        string
	logger    *slog.Logger
	weightMin float64
	weightMax float64
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithWeightRange sets the range dense wiring draws weights from.
func WithWeightRange(min, max float64) Option {
	return func(c *config) {
		c.weightMin = min
		c.weightMax = max
	}
}

// WithID overrides the generated network ID.
func WithID(id string) Option {
	return func(c *config) { c.id = id }
}

type Builder struct {
	st     *state
	logger *slog.Logger
}

type state struct {
	layer     nn.Layer
	network   *nn.Network
	outputs   int
	weightMin float64
	weightMax float64
	logger    *slog.Logger
}

// Start opens a builder whose first layer holds inputCount input units
// (value 0). The first layer is sealed immediately and the next layer is
// opened. An inputCount of 0 yields a degenerate network.
func Start(inputCount, outputCount int, opts ...Option) *Builder {
	cfg := config{weightMin: DefaultWeightMin, weightMax: DefaultWeightMax}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	logger := diag.OrDiscard(cfg.logger).With(diag.KeyNetwork, cfg.id)

	if cfg.weightMax < cfg.weightMin {
		logger.Warn(MsgBadWeightRange, "min", cfg.weightMin, "max", cfg.weightMax)
		cfg.weightMin, cfg.weightMax = cfg.weightMax, cfg.weightMin
	}
	if inputCount < 0 || outputCount < 0 {
		logger.Warn(MsgNegativeCapacity, "inputs", inputCount, "outputs", outputCount)
	}

	st := &state{
		layer:     nn.NewLayer(),
		network:   nn.NewNetwork(nn.WithID(cfg.id), nn.WithLogger(cfg.logger)),
		outputs:   max(outputCount, 0),
		weightMin: cfg.weightMin,
		weightMax: cfg.weightMax,
		logger:    logger,
	}
	for i := 0; i < inputCount; i++ {
		st.add(model.NewInputNeuron())
	}
	st.seal()
	return &Builder{st: st, logger: logger}
}

func (b *Builder) take() *state {
	if b == nil || b.st == nil {
		logger := diag.Discard()
		if b != nil {
			logger = b.logger
		}
		logger.Error(MsgConsumed)
		return nil
	}
	st := b.st
	b.st = nil
	return st
}

func (b *Builder) next(st *state) *Builder {
	if st == nil {
		return b
	}
	return &Builder{st: st, logger: st.logger}
}

// AddUnit appends a neuron to the in-progress layer. Call order defines
// the neuron index.
func (b *Builder) AddUnit(m model.NeuronModel) *Builder {
	st := b.take()
	if st != nil {
		st.add(m)
	}
	return b.next(st)
}

// Activate sets the activation applied to the in-progress layer's outputs.
func (b *Builder) Activate(fn activation.LayerFunc) *Builder {
	st := b.take()
	if st != nil {
		st.layer.Activation = fn
	}
	return b.next(st)
}

// SealLayer commits the in-progress layer and opens a new one. Sealing an
// empty layer is logged and changes nothing.
func (b *Builder) SealLayer() *Builder {
	st := b.take()
	if st != nil {
		st.seal()
	}
	return b.next(st)
}

// Connect appends a connection to the committed neuron at from. The target
// is not checked, so edges into layers that are not sealed yet are legal.
func (b *Builder) Connect(from, to nn.Address, weight float64) *Builder {
	st := b.take()
	if st != nil {
		st.connect(from, to, weight)
	}
	return b.next(st)
}

// FinishDirectional seals the open layer, appends the output layer and
// connects every neuron of each layer to every neuron of the next one with
// a weight drawn from src. Layer order, then source order, then target
// order decides the connection order.
func (b *Builder) FinishDirectional(src random.Source) *nn.Network {
	st := b.take()
	if st == nil {
		return nil
	}
	if src == nil {
		st.logger.Warn(MsgMissingRandom)
		src = random.NewOS()
	}

	if len(st.layer.Neurons) > 0 {
		st.seal()
	}
	for i := 0; i < st.outputs; i++ {
		st.add(model.NewOutputNeuron())
	}
	st.seal()

	layers := st.network.Layers
	for i := 0; i+1 < len(layers); i++ {
		for j := range layers[i].Neurons {
			for k := range layers[i+1].Neurons {
				weight := src.GenerateNumber(st.weightMin, st.weightMax)
				st.connect(nn.Address{Layer: i, Neuron: j}, nn.Address{Layer: i + 1, Neuron: k}, weight)
			}
		}
	}
	return st.network
}

// FinishManual seals the open layer and returns the network without any
// generated wiring.
func (b *Builder) FinishManual() *nn.Network {
	st := b.take()
	if st == nil {
		return nil
	}
	if len(st.layer.Neurons) > 0 {
		st.seal()
	}
	return st.network
}

// Committed returns the number of sealed layers. It does not consume b.
func (b *Builder) Committed() int {
	if b == nil || b.st == nil {
		return 0
	}
	return len(b.st.network.Layers)
}

// Pending returns the neuron count of the in-progress layer. It does not
// consume b.
func (b *Builder) Pending() int {
	if b == nil || b.st == nil {
		return 0
	}
	return len(b.st.layer.Neurons)
}

func (s *state) add(m model.NeuronModel) {
	if m == nil {
		s.logger.Error(MsgNilModel, diag.KeyLayer, len(s.network.Layers))
		return
	}
	s.layer.Neurons = append(s.layer.Neurons, nn.NewNeuron(m))
}

func (s *state) seal() {
	if len(s.layer.Neurons) == 0 {
		s.logger.Warn(MsgEmptyLayer, diag.KeyLayer, len(s.network.Layers))
		return
	}
	s.network.Layers = append(s.network.Layers, s.layer)
	s.layer = nn.NewLayer()
}

func (s *state) connect(from, to nn.Address, weight float64) {
	neuron, ok := s.network.LocateMut(from)
	if !ok {
		s.logger.Error(MsgConnectFailed, "from", from.String(), "to", to.String())
		return
	}
	neuron.Connections = append(neuron.Connections, nn.NewConnection(weight, to))
}
