package agent

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fornix/internal/builder"
	protoio "fornix/internal/io"
	"fornix/internal/model"
	"fornix/internal/nn"
	"fornix/internal/random"
)

func xorShaped(outputs int) *nn.Network {
	return builder.Start(3, outputs).
		AddUnit(&model.TrivialNeuron{}).
		AddUnit(&model.TrivialNeuron{}).
		FinishDirectional(random.Fixed(1))
}

func TestCortexTickSensorToActuator(t *testing.T) {
	sensors := []protoio.Sensor{
		protoio.NewScalarSensor("s1", 0.5),
		protoio.NewVectorSensor("s2", []float64{0.25, 1}),
	}
	act := protoio.NewRecordingActuator("a1")

	c, err := NewCortex("agent-1", xorShaped(1), sensors, []protoio.Actuator{act})
	require.NoError(t, err)
	assert.Equal(t, "agent-1", c.ID())

	out, err := c.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5}, out)
	assert.Equal(t, []float64{3.5}, act.Last())
}

func TestCortexSplitsOutputsAcrossActuators(t *testing.T) {
	left := protoio.NewRecordingActuator("left")
	right := protoio.NewRecordingActuator("right")
	c, err := NewCortex("agent-2", xorShaped(2), nil, []protoio.Actuator{left, right})
	require.NoError(t, err)

	out, err := c.RunStep(context.Background(), [][]float64{{1, 1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 6}, out)
	assert.Equal(t, []float64{6}, left.Last())
	assert.Equal(t, []float64{6}, right.Last())
}

func TestCortexEvaluationFailure(t *testing.T) {
	c, err := NewCortex("agent-3", xorShaped(1), nil, nil)
	require.NoError(t, err)

	_, err = c.RunStep(context.Background(), [][]float64{{1, 2, 3, 4}})
	assert.Equal(t, ErrEvaluation, errors.Cause(err))
}

func TestCortexCanceledContext(t *testing.T) {
	c, err := NewCortex("agent-4", xorShaped(1), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.RunStep(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCortexStateCarriesAcrossSteps(t *testing.T) {
	net := builder.Start(1, 1).
		AddUnit(&model.MemoryNeuron{Decay: 1}).
		FinishDirectional(random.Fixed(1))
	sensor := protoio.NewScalarSensor("s", 1)
	c, err := NewCortex("agent-5", net, []protoio.Sensor{sensor}, nil)
	require.NoError(t, err)

	var outs []float64
	for i := 0; i < 3; i++ {
		out, err := c.Tick(context.Background())
		require.NoError(t, err)
		outs = append(outs, out[0])
	}
	assert.Equal(t, []float64{1, 2, 3}, outs)
	assert.Same(t, net, c.Network())
}

func TestNewCortexValidation(t *testing.T) {
	_, err := NewCortex("", xorShaped(1), nil, nil)
	assert.Error(t, err)
	_, err = NewCortex("a", nil, nil, nil)
	assert.Error(t, err)

	tooMany := make([]protoio.Sensor, 4)
	for i := range tooMany {
		tooMany[i] = protoio.NewScalarSensor("s", 0)
	}
	_, err = NewCortex("a", xorShaped(1), tooMany, nil)
	assert.Error(t, err)
}

func TestSplitOutputsForActuators(t *testing.T) {
	chunks, err := splitOutputsForActuators([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, chunks)

	_, err = splitOutputsForActuators([]float64{1, 2, 3}, 2)
	assert.Error(t, err)
	_, err = splitOutputsForActuators([]float64{1}, 0)
	assert.Error(t, err)
}
