package agent

import (
	"context"

	"github.com/pkg/errors"

	protoio "fornix/internal/io"
	"fornix/internal/nn"
)

var ErrEvaluation = errors.New("network evaluation failed")

// Cortex drives one network from sensors to actuators. It owns the network
// for the duration of every step.
type Cortex struct {
	id        string
	network   *nn.Network
	sensors   []protoio.Sensor
	actuators []protoio.Actuator
}

func NewCortex(id string, network *nn.Network, sensors []protoio.Sensor, actuators []protoio.Actuator) (*Cortex, error) {
	if id == "" {
		return nil, errors.New("agent id is required")
	}
	if network == nil {
		return nil, errors.New("network is required")
	}
	if len(sensors) > network.InputCount() {
		return nil, errors.Errorf("more sensors than network inputs: sensors=%d inputs=%d", len(sensors), network.InputCount())
	}

	return &Cortex{
		id:        id,
		network:   network,
		sensors:   append([]protoio.Sensor(nil), sensors...),
		actuators: append([]protoio.Actuator(nil), actuators...),
	}, nil
}

func (c *Cortex) ID() string {
	return c.id
}

func (c *Cortex) Network() *nn.Network {
	return c.network
}

// Tick reads one group per sensor and runs a step with them.
func (c *Cortex) Tick(ctx context.Context) ([]float64, error) {
	groups, err := protoio.ReadGroups(ctx, c.sensors)
	if err != nil {
		return nil, errors.Wrap(err, "read sensors")
	}
	return c.RunStep(ctx, groups)
}

// RunStep evaluates groups live and forwards the outputs to the actuators.
func (c *Cortex) RunStep(ctx context.Context, groups [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputs, ok := c.network.ExecuteMut(groups)
	if !ok {
		return nil, errors.Wrapf(ErrEvaluation, "agent %s", c.id)
	}

	if len(c.actuators) > 0 {
		chunks, err := splitOutputsForActuators(outputs, len(c.actuators))
		if err != nil {
			return nil, err
		}
		for i, actuator := range c.actuators {
			if err := actuator.Write(ctx, chunks[i]); err != nil {
				return nil, errors.Wrapf(err, "write actuator %s", actuator.Name())
			}
		}
	}

	return outputs, nil
}

func splitOutputsForActuators(outputs []float64, actuatorCount int) ([][]float64, error) {
	if actuatorCount <= 0 {
		return nil, errors.New("actuator count must be > 0")
	}
	// A single actuator receives the full output vector, while N actuators
	// receive equal contiguous slices.
	if actuatorCount == 1 {
		return [][]float64{append([]float64(nil), outputs...)}, nil
	}
	if len(outputs)%actuatorCount != 0 || len(outputs) == 0 {
		return nil, errors.Errorf("actuator/output shape mismatch: outputs=%d actuators=%d", len(outputs), actuatorCount)
	}
	chunkSize := len(outputs) / actuatorCount
	chunks := make([][]float64, 0, actuatorCount)
	for i := 0; i < actuatorCount; i++ {
		start := i * chunkSize
		chunks = append(chunks, append([]float64(nil), outputs[start:start+chunkSize]...))
	}
	return chunks, nil
}
