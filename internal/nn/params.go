package nn

import (
	"gonum.org/v1/gonum/mat"

	"fornix/internal/diag"
	"fornix/internal/model"
)

// AddressedParameter is one entry of the network-wide parameter table.
type AddressedParameter struct {
	Address Address
	model.Parameter
}

// Parameters lists every trainable parameter in layer, neuron, id order.
// The order is stable while the topology is unchanged.
func (n *Network) Parameters() []AddressedParameter {
	var table []AddressedParameter
	for i, l := range n.Layers {
		for j, neuron := range l.Neurons {
			if neuron.Model == nil {
				continue
			}
			for _, p := range model.ParametersOf(neuron.Model) {
				table = append(table, AddressedParameter{Address: Address{Layer: i, Neuron: j}, Parameter: p})
			}
		}
	}
	return table
}

// SetParameter writes value to parameter id of the neuron at addr. The
// model clamps value into its bounds.
func (n *Network) SetParameter(addr Address, id int, value float64) bool {
	neuron, ok := n.LocateMut(addr)
	if !ok {
		return false
	}
	t, ok := neuron.Model.(model.Trainable)
	if !ok {
		n.log().Warn(MsgNotTrainable, diag.KeyLayer, addr.Layer, diag.KeyNeuron, addr.Neuron)
		return false
	}
	if !t.SetParameter(id, value) {
		n.log().Warn(MsgUnknownParameter, diag.KeyLayer, addr.Layer, diag.KeyNeuron, addr.Neuron, "id", id)
		return false
	}
	return true
}

// WeightMatrix returns the |layer| x |layer+1| weights of the edges that
// run from layer to the next one. Parallel edges are summed; missing edges
// are zero.
func (n *Network) WeightMatrix(layer int) (*mat.Dense, bool) {
	if layer < 0 || layer+1 >= len(n.Layers) {
		n.log().Error(MsgNoWeightMatrix, diag.KeyLayer, layer)
		return nil, false
	}
	rows, cols := len(n.Layers[layer].Neurons), len(n.Layers[layer+1].Neurons)
	if rows == 0 || cols == 0 {
		n.log().Warn(MsgNoWeightMatrix, diag.KeyLayer, layer)
		return nil, false
	}

	m := mat.NewDense(rows, cols, nil)
	for j, neuron := range n.Layers[layer].Neurons {
		for _, c := range neuron.Connections {
			if c.Target.Layer != layer+1 || c.Target.Neuron < 0 || c.Target.Neuron >= cols {
				continue
			}
			m.Set(j, c.Target.Neuron, m.At(j, c.Target.Neuron)+c.Weight)
		}
	}
	return m, true
}
