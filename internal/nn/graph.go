package nn

import (
	"fmt"

	"fornix/internal/activation"
	"fornix/internal/model"
)

// Address names a neuron by (layer index, neuron index). It is resolved by
// lookup every time it is used and never cached across structural changes.
type Address struct {
	Layer  int
	Neuron int
}

func (a Address) String() string {
	return fmt.Sprintf("(%d, %d)", a.Layer, a.Neuron)
}

// Connection is a weighted edge from its owning neuron to Target.
type Connection struct {
	Weight float64
	Target Address
}

func NewConnection(weight float64, target Address) Connection {
	return Connection{Weight: weight, Target: target}
}

// Neuron owns one model and its outgoing connections.
type Neuron struct {
	Model       model.NeuronModel
	Connections []Connection
}

func NewNeuron(m model.NeuronModel) Neuron {
	return Neuron{Model: m}
}

func (n Neuron) Clone() Neuron {
	out := Neuron{Connections: append([]Connection(nil), n.Connections...)}
	if n.Model != nil {
		out.Model = n.Model.Clone()
	}
	return out
}

// Layer is an ordered group of neurons evaluated in the same stage.
// Activation, when set, transforms the layer's aggregated output vector.
type Layer struct {
	Neurons    []Neuron
	Activation activation.LayerFunc
}

func NewLayer() Layer {
	return Layer{}
}

func (l Layer) Clone() Layer {
	out := Layer{Activation: l.Activation}
	if l.Neurons != nil {
		out.Neurons = make([]Neuron, len(l.Neurons))
		for i, n := range l.Neurons {
			out.Neurons[i] = n.Clone()
		}
	}
	return out
}
