// Package model defines the polymorphic computation units a network is made
// of. Every unit implements NeuronModel; the optional capabilities
// ExternalInput and Trainable are discovered with interface assertions so
// the evaluator never needs to know a concrete variant.
package model

// NeuronModel turns a sequence of (already weighted) inputs into one scalar.
type NeuronModel interface {
	// Compute is pure and must tolerate an empty inputs slice.
	Compute(inputs []float64) float64
	// ComputeMut evaluates live data and may update internal state.
	ComputeMut(inputs []float64) float64
	// Clone returns a deep copy sharing no mutable state.
	Clone() NeuronModel
}

// ExternalInput is implemented by units whose value is assigned from
// outside the network.
type ExternalInput interface {
	SetExternalValue(value float64)
	ExternalValue() float64
}

// Parameter is one adjustable scalar exposed for an external trainer.
type Parameter struct {
	ID    int
	Name  string
	Value float64
	Min   float64
	Max   float64
}

// Trainable exposes a model's adjustable parameters. The count and order of
// Parameters must stay stable for the lifetime of the model; trainers
// correlate entries by ID.
type Trainable interface {
	Parameters() []Parameter
	// SetParameter clamps value into the parameter bounds. It reports false
	// when id is unknown.
	SetParameter(id int, value float64) bool
}

// ParametersOf returns the parameter table of m, or an empty slice when m
// is not trainable.
func ParametersOf(m NeuronModel) []Parameter {
	t, ok := m.(Trainable)
	if !ok {
		return []Parameter{}
	}
	params := t.Parameters()
	if params == nil {
		return []Parameter{}
	}
	return params
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
