package tuning

import (
	"math"

	"github.com/pkg/errors"

	"fornix/internal/nn"
	"fornix/internal/random"
)

type Perturber struct {
	Source random.Source
	// Spread scales each delta as a fraction of the parameter's half range.
	// Zero means 1.
	Spread float64
	// Probability is the chance a parameter is touched. nil means 1.
	Probability *float64
	// AnnealingFactor shrinks the spread per step: Spread*AnnealingFactor^step.
	// Zero means 1.
	AnnealingFactor float64
}

// Perturb is PerturbStep at step 0.
func (p *Perturber) Perturb(net *nn.Network) (int, error) {
	return p.PerturbStep(net, 0)
}

// PerturbStep moves every selected parameter by a random delta and writes it
// back through the network, which clamps it into its bounds. It returns the
// number of parameters written.
func (p *Perturber) PerturbStep(net *nn.Network, step int) (int, error) {
	if p == nil || p.Source == nil {
		return 0, errors.New("random source is required")
	}
	if net == nil {
		return 0, errors.New("network is required")
	}
	if p.Spread < 0 {
		return 0, errors.New("spread must be >= 0")
	}
	probability := 1.0
	if p.Probability != nil {
		probability = *p.Probability
	}
	if probability < 0 || probability > 1 {
		return 0, errors.Errorf("probability must be in [0, 1]: %g", probability)
	}
	if p.AnnealingFactor < 0 {
		return 0, errors.New("annealing factor must be >= 0")
	}
	if step < 0 {
		step = 0
	}

	spread := p.Spread
	if spread == 0 {
		spread = 1.0
	}
	annealing := p.AnnealingFactor
	if annealing == 0 {
		annealing = 1.0
	}
	spread *= math.Pow(annealing, float64(step))

	written := 0
	for _, param := range net.Parameters() {
		if probability < 1 && p.Source.GenerateNumber(0, 1) >= probability {
			continue
		}
		halfRange := (param.Max - param.Min) / 2
		delta := p.Source.GenerateNumber(-1, 1) * spread * halfRange
		if net.SetParameter(param.Address, param.ID, param.Value+delta) {
			written++
		}
	}
	return written, nil
}

// Snapshot captures the parameter values in table order.
func Snapshot(net *nn.Network) []float64 {
	table := net.Parameters()
	values := make([]float64, len(table))
	for i, param := range table {
		values[i] = param.Value
	}
	return values
}

// Restore writes a Snapshot back. It fails when the table no longer has the
// same shape.
func Restore(net *nn.Network, snapshot []float64) error {
	table := net.Parameters()
	if len(table) != len(snapshot) {
		return errors.Errorf("snapshot size mismatch: got=%d want=%d", len(snapshot), len(table))
	}
	for i, param := range table {
		if !net.SetParameter(param.Address, param.ID, snapshot[i]) {
			return errors.Errorf("restore parameter %d of neuron %s", param.ID, param.Address)
		}
	}
	return nil
}
