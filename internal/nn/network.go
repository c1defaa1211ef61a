package nn

import (
	"log/slog"

	"fornix/internal/diag"
	"fornix/internal/model"
)

// Diagnostic messages emitted by the network.
const (
	MsgLayerOutOfRange  = "tried to access a layer that is out of range"
	MsgNeuronOutOfRange = "tried to access a neuron that is out of range"
	MsgNoLayers         = "network has no layers"
	MsgTooManyInputs    = "invalid number of inputs for network"
	MsgDanglingTarget   = "connection target does not resolve"
	MsgNotForwarded     = "connection does not target the next layer"
	MsgActivationShape  = "activation changed layer width, using raw outputs"
	MsgNotTrainable     = "neuron model is not trainable"
	MsgUnknownParameter = "unknown parameter id"
	MsgNoWeightMatrix   = "no weight matrix between layers"
)

// Network is an ordered sequence of layers. Layer order defines the first
// Address coordinate and the evaluation order.
//
// A Network is not safe for concurrent mutation. Execute and ExecuteTrace
// work on a private clone and may run concurrently as long as nobody
// mutates the network.
type Network struct {
	ID     string
	Layers []Layer

	logger *slog.Logger
}

type Option func(*Network)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Network) { n.logger = logger }
}

func WithID(id string) Option {
	return func(n *Network) { n.ID = id }
}

func NewNetwork(opts ...Option) *Network {
	n := &Network{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetLogger replaces the diagnostics sink. A nil logger discards.
func (n *Network) SetLogger(logger *slog.Logger) {
	n.logger = logger
}

func (n *Network) log() *slog.Logger {
	return diag.OrDiscard(n.logger).With(diag.KeyNetwork, n.ID)
}

// Clone deep-copies every layer, neuron, connection and model.
func (n *Network) Clone() *Network {
	out := &Network{ID: n.ID, logger: n.logger}
	if n.Layers != nil {
		out.Layers = make([]Layer, len(n.Layers))
		for i, l := range n.Layers {
			out.Layers[i] = l.Clone()
		}
	}
	return out
}

func (n *Network) inRange(addr Address) (ok bool, layerOK bool) {
	if addr.Layer < 0 || addr.Layer >= len(n.Layers) {
		return false, false
	}
	if addr.Neuron < 0 || addr.Neuron >= len(n.Layers[addr.Layer].Neurons) {
		return false, true
	}
	return true, true
}

// LocateMut returns the neuron owned at addr. Both coordinates are checked
// independently; a miss is logged and reported through ok.
func (n *Network) LocateMut(addr Address) (*Neuron, bool) {
	ok, layerOK := n.inRange(addr)
	if !ok {
		msg := MsgNeuronOutOfRange
		if !layerOK {
			msg = MsgLayerOutOfRange
		}
		n.log().Error(msg, diag.KeyLayer, addr.Layer, diag.KeyNeuron, addr.Neuron)
		return nil, false
	}
	return &n.Layers[addr.Layer].Neurons[addr.Neuron], true
}

// Locate returns a detached deep copy of the neuron at addr.
func (n *Network) Locate(addr Address) (Neuron, bool) {
	neuron, ok := n.LocateMut(addr)
	if !ok {
		return Neuron{}, false
	}
	return neuron.Clone(), true
}

// Sizes returns the neuron count of every layer.
func (n *Network) Sizes() []int {
	sizes := make([]int, len(n.Layers))
	for i, l := range n.Layers {
		sizes[i] = len(l.Neurons)
	}
	return sizes
}

func (n *Network) ConnectionCount() int {
	count := 0
	for _, l := range n.Layers {
		for _, neuron := range l.Neurons {
			count += len(neuron.Connections)
		}
	}
	return count
}

// InputCount returns how many externally assignable units layer 0 holds.
func (n *Network) InputCount() int {
	return len(n.inputUnits())
}

func (n *Network) inputUnits() []model.ExternalInput {
	if len(n.Layers) == 0 {
		return nil
	}
	var units []model.ExternalInput
	for _, neuron := range n.Layers[0].Neurons {
		if ext, ok := neuron.Model.(model.ExternalInput); ok {
			units = append(units, ext)
		}
	}
	return units
}
