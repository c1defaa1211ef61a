package nn

import (
	"fornix/internal/diag"
	"fornix/internal/model"
)

// Trace holds the stored output vector of every layer after one evaluation.
type Trace [][]float64

// Output returns the final layer vector.
func (t Trace) Output() []float64 {
	if len(t) == 0 {
		return nil
	}
	return append([]float64(nil), t[len(t)-1]...)
}

// Execute evaluates a throwaway clone so the receiver stays unchanged.
func (n *Network) Execute(inputs [][]float64) ([]float64, bool) {
	return n.Clone().ExecuteMut(inputs)
}

// ExecuteTrace is Execute that also returns every intermediate layer.
func (n *Network) ExecuteTrace(inputs [][]float64) (Trace, bool) {
	return n.Clone().run(inputs)
}

// ExecuteMut assigns inputs to layer 0 and propagates layer by layer,
// letting stateful models commit their state. inputs is a list of groups;
// scalars are assigned group by group, in order, to the externally
// assignable units of layer 0. Supplying more scalars than there are such
// units fails without touching the network.
func (n *Network) ExecuteMut(inputs [][]float64) ([]float64, bool) {
	trace, ok := n.run(inputs)
	if !ok {
		return nil, false
	}
	return trace.Output(), true
}

// Peek evaluates the current input values with the pure Compute path. No
// model state changes.
func (n *Network) Peek() (Trace, bool) {
	if len(n.Layers) == 0 {
		n.log().Error(MsgNoLayers)
		return nil, false
	}
	return n.propagate(false), true
}

func (n *Network) run(inputs [][]float64) (Trace, bool) {
	if len(n.Layers) == 0 {
		n.log().Error(MsgNoLayers)
		return nil, false
	}
	if !n.assignInputs(inputs) {
		return nil, false
	}
	return n.propagate(true), true
}

func (n *Network) assignInputs(inputs [][]float64) bool {
	units := n.inputUnits()
	total := 0
	for _, group := range inputs {
		total += len(group)
	}
	if total > len(units) {
		n.log().Error(MsgTooManyInputs, diag.KeyCount, total, diag.KeyLimit, len(units))
		return false
	}

	next := 0
	for _, group := range inputs {
		for _, value := range group {
			units[next].SetExternalValue(value)
			next++
		}
	}
	return true
}

func (n *Network) propagate(live bool) Trace {
	n.audit()

	trace := make(Trace, len(n.Layers))
	for i := range n.Layers {
		layer := &n.Layers[i]
		var incoming [][]float64
		if i > 0 {
			incoming = n.gather(i, trace[i-1])
		}

		values := make([]float64, len(layer.Neurons))
		for j := range layer.Neurons {
			var in []float64
			if incoming != nil {
				in = incoming[j]
			}
			values[j] = compute(layer.Neurons[j].Model, in, live)
		}

		if layer.Activation != nil {
			activated := layer.Activation(values)
			if len(activated) == len(values) {
				values = activated
			} else {
				n.log().Warn(MsgActivationShape, diag.KeyLayer, i)
			}
		}
		trace[i] = values
	}
	return trace
}

func compute(m model.NeuronModel, inputs []float64, live bool) float64 {
	if m == nil {
		return 0
	}
	if live {
		return m.ComputeMut(inputs)
	}
	return m.Compute(inputs)
}

// gather pulls the weighted inputs of every neuron in layer i from the
// connections of layer i-1, in source order then connection order.
func (n *Network) gather(i int, prev []float64) [][]float64 {
	width := len(n.Layers[i].Neurons)
	incoming := make([][]float64, width)
	for j, src := range n.Layers[i-1].Neurons {
		for _, c := range src.Connections {
			if c.Target.Layer != i || c.Target.Neuron < 0 || c.Target.Neuron >= width {
				continue
			}
			incoming[c.Target.Neuron] = append(incoming[c.Target.Neuron], prev[j]*c.Weight)
		}
	}
	return incoming
}

// audit reports connections that cannot take part in evaluation.
func (n *Network) audit() {
	dangling, skipped := 0, 0
	for i, l := range n.Layers {
		for _, neuron := range l.Neurons {
			for _, c := range neuron.Connections {
				if ok, _ := n.inRange(c.Target); !ok {
					dangling++
					continue
				}
				if c.Target.Layer != i+1 {
					skipped++
				}
			}
		}
	}
	if dangling > 0 {
		n.log().Warn(MsgDanglingTarget, diag.KeyCount, dangling)
	}
	if skipped > 0 {
		n.log().Debug(MsgNotForwarded, diag.KeyCount, skipped)
	}
}
