package model

import (
	"gonum.org/v1/gonum/floats"

	"fornix/internal/random"
)

const (
	BiasMin  = -1.0
	BiasMax  = 1.0
	DecayMin = 0.0
	DecayMax = 1.0
)

// InputNeuron holds one externally assigned value and ignores its inputs.
type InputNeuron struct {
	Value float64
}

func NewInputNeuron() *InputNeuron {
	return &InputNeuron{}
}

func (n *InputNeuron) Compute([]float64) float64    { return n.Value }
func (n *InputNeuron) ComputeMut([]float64) float64 { return n.Value }
func (n *InputNeuron) Clone() NeuronModel           { c := *n; return &c }

func (n *InputNeuron) SetExternalValue(value float64) { n.Value = value }
func (n *InputNeuron) ExternalValue() float64         { return n.Value }

func (n *InputNeuron) Parameters() []Parameter         { return []Parameter{} }
func (n *InputNeuron) SetParameter(int, float64) bool { return false }

// TrivialNeuron sums its inputs and adds a learnable bias.
type TrivialNeuron struct {
	Bias float64
}

// NewTrivialNeuron draws the initial bias from src in [-1, 1].
func NewTrivialNeuron(src random.Source) *TrivialNeuron {
	return &TrivialNeuron{Bias: src.GenerateNumber(BiasMin, BiasMax)}
}

func (n *TrivialNeuron) Compute(inputs []float64) float64 {
	return floats.Sum(inputs) + n.Bias
}

func (n *TrivialNeuron) ComputeMut(inputs []float64) float64 { return n.Compute(inputs) }
func (n *TrivialNeuron) Clone() NeuronModel                  { c := *n; return &c }

func (n *TrivialNeuron) Parameters() []Parameter {
	return []Parameter{{ID: 0, Name: "bias", Value: n.Bias, Min: BiasMin, Max: BiasMax}}
}

func (n *TrivialNeuron) SetParameter(id int, value float64) bool {
	if id != 0 {
		return false
	}
	n.Bias = clamp(value, BiasMin, BiasMax)
	return true
}

// OutputNeuron sums its inputs. It terminates forwarding.
type OutputNeuron struct{}

func NewOutputNeuron() *OutputNeuron {
	return &OutputNeuron{}
}

func (n *OutputNeuron) Compute(inputs []float64) float64    { return floats.Sum(inputs) }
func (n *OutputNeuron) ComputeMut(inputs []float64) float64 { return n.Compute(inputs) }
func (n *OutputNeuron) Clone() NeuronModel                  { return &OutputNeuron{} }

func (n *OutputNeuron) Parameters() []Parameter         { return []Parameter{} }
func (n *OutputNeuron) SetParameter(int, float64) bool { return false }

// MemoryNeuron carries its previous live output into the next evaluation:
// out = sum(inputs) + bias + decay*previous.
type MemoryNeuron struct {
	Bias     float64
	Decay    float64
	Previous float64
}

// NewMemoryNeuron draws bias in [-1, 1] and decay in [0, 1] from src.
func NewMemoryNeuron(src random.Source) *MemoryNeuron {
	return &MemoryNeuron{
		Bias:  src.GenerateNumber(BiasMin, BiasMax),
		Decay: src.GenerateNumber(DecayMin, DecayMax),
	}
}

func (n *MemoryNeuron) Compute(inputs []float64) float64 {
	return floats.Sum(inputs) + n.Bias + n.Decay*n.Previous
}

func (n *MemoryNeuron) ComputeMut(inputs []float64) float64 {
	out := n.Compute(inputs)
	n.Previous = out
	return out
}

func (n *MemoryNeuron) Clone() NeuronModel { c := *n; return &c }

// Reset forgets the carried output.
func (n *MemoryNeuron) Reset() { n.Previous = 0 }

func (n *MemoryNeuron) Parameters() []Parameter {
	return []Parameter{
		{ID: 0, Name: "bias", Value: n.Bias, Min: BiasMin, Max: BiasMax},
		{ID: 1, Name: "decay", Value: n.Decay, Min: DecayMin, Max: DecayMax},
	}
}

func (n *MemoryNeuron) SetParameter(id int, value float64) bool {
	switch id {
	case 0:
		n.Bias = clamp(value, BiasMin, BiasMax)
	case 1:
		n.Decay = clamp(value, DecayMin, DecayMax)
	default:
		return false
	}
	return true
}
