package builder

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fornix/internal/activation"
	"fornix/internal/diag"
	"fornix/internal/model"
	"fornix/internal/nn"
	"fornix/internal/random"
)

func TestDirectionalLayerSizes(t *testing.T) {
	tests := []struct {
		name            string
		inputs, hidden  int
		outputs         int
		wantConnections int
	}{
		{name: "3-2-1", inputs: 3, hidden: 2, outputs: 1, wantConnections: 3*2 + 2*1},
		{name: "1-1-1", inputs: 1, hidden: 1, outputs: 1, wantConnections: 2},
		{name: "4-5-3", inputs: 4, hidden: 5, outputs: 3, wantConnections: 4*5 + 5*3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rng := random.New(1)
			b := Start(tc.inputs, tc.outputs)
			for i := 0; i < tc.hidden; i++ {
				b = b.AddUnit(model.NewTrivialNeuron(rng))
			}
			net := b.SealLayer().FinishDirectional(rng)
			require.NotNil(t, net)

			assert.Equal(t, []int{tc.inputs, tc.hidden, tc.outputs}, net.Sizes())
			assert.Equal(t, tc.wantConnections, net.ConnectionCount())
		})
	}
}

func TestDirectionalDenseWiring(t *testing.T) {
	rng := random.New(7)
	net := Start(3, 2, WithWeightRange(-0.5, 0.25)).
		AddUnit(model.NewTrivialNeuron(rng)).
		AddUnit(model.NewTrivialNeuron(rng)).
		AddUnit(model.NewTrivialNeuron(rng)).
		SealLayer().
		AddUnit(model.NewTrivialNeuron(rng)).
		AddUnit(model.NewTrivialNeuron(rng)).
		FinishDirectional(rng)
	require.NotNil(t, net)
	require.Equal(t, []int{3, 3, 2, 2}, net.Sizes())

	for i := 0; i+1 < len(net.Layers); i++ {
		q := len(net.Layers[i+1].Neurons)
		for j, neuron := range net.Layers[i].Neurons {
			require.Len(t, neuron.Connections, q, "layer %d neuron %d", i, j)
			for k, c := range neuron.Connections {
				assert.Equal(t, nn.Address{Layer: i + 1, Neuron: k}, c.Target)
				assert.GreaterOrEqual(t, c.Weight, -0.5)
				assert.LessOrEqual(t, c.Weight, 0.25)
			}
		}
	}
	for _, neuron := range net.Layers[len(net.Layers)-1].Neurons {
		assert.Empty(t, neuron.Connections)
	}
}

func TestDefaultCaseLayout(t *testing.T) {
	rng := random.New(3)
	net := Start(3, 1).
		AddUnit(model.NewTrivialNeuron(rng)).
		AddUnit(model.NewTrivialNeuron(rng)).
		AddUnit(model.NewTrivialNeuron(rng)).
		SealLayer().
		AddUnit(model.NewTrivialNeuron(rng)).
		AddUnit(model.NewTrivialNeuron(rng)).
		FinishDirectional(rng)

	require.Len(t, net.Layers, 4)
	assert.Len(t, net.Layers[0].Neurons, 3)
	assert.Len(t, net.Layers[1].Neurons, 3)
	assert.Len(t, net.Layers[2].Neurons, 2)
	assert.Len(t, net.Layers[3].Neurons, 1)

	for j := 0; j < 3; j++ {
		conns := net.Layers[0].Neurons[j].Connections
		require.Len(t, conns, 3)
		assert.Equal(t, nn.Address{Layer: 1, Neuron: 0}, conns[0].Target)
		assert.Equal(t, nn.Address{Layer: 1, Neuron: 2}, conns[2].Target)
	}
	for j := 0; j < 3; j++ {
		_, isInput := net.Layers[0].Neurons[j].Model.(model.ExternalInput)
		assert.True(t, isInput)
	}
	_, isOutput := net.Layers[3].Neurons[0].Model.(*model.OutputNeuron)
	assert.True(t, isOutput)
}

func TestSealEmptyLayerIsNoOp(t *testing.T) {
	rec := diag.NewRecorder()
	b := Start(2, 1, WithLogger(rec.Logger()))
	require.Equal(t, 1, b.Committed())

	for i := 0; i < 5; i++ {
		b = b.SealLayer()
		assert.Equal(t, 1, b.Committed())
		assert.Equal(t, 0, b.Pending())
	}
	assert.Equal(t, 5, rec.Count(slog.LevelWarn, MsgEmptyLayer))

	b = b.AddUnit(&model.TrivialNeuron{}).SealLayer()
	assert.Equal(t, 2, b.Committed())
}

func TestConnectOutOfRangeLeavesNetworkUnchanged(t *testing.T) {
	rec := diag.NewRecorder()
	b := Start(2, 1, WithLogger(rec.Logger())).
		AddUnit(&model.TrivialNeuron{}).
		SealLayer()

	b = b.Connect(nn.Address{Layer: 5, Neuron: 0}, nn.Address{Layer: 1, Neuron: 0}, 1).
		Connect(nn.Address{Layer: 0, Neuron: 9}, nn.Address{Layer: 1, Neuron: 0}, 1)
	net := b.FinishManual()

	assert.Equal(t, 0, net.ConnectionCount())
	assert.Equal(t, 2, rec.Count(slog.LevelError, MsgConnectFailed))
	assert.Equal(t, 1, rec.Count(slog.LevelError, nn.MsgLayerOutOfRange))
	assert.Equal(t, 1, rec.Count(slog.LevelError, nn.MsgNeuronOutOfRange))
}

func TestConnectToUnsealedLayer(t *testing.T) {
	net := Start(1, 1).
		Connect(nn.Address{Layer: 0, Neuron: 0}, nn.Address{Layer: 1, Neuron: 0}, 2).
		AddUnit(model.NewOutputNeuron()).
		FinishManual()

	require.Equal(t, []int{1, 1}, net.Sizes())
	require.Len(t, net.Layers[0].Neurons[0].Connections, 1)
	assert.Equal(t, nn.NewConnection(2, nn.Address{Layer: 1, Neuron: 0}), net.Layers[0].Neurons[0].Connections[0])

	out, ok := net.ExecuteMut([][]float64{{3}})
	require.True(t, ok)
	assert.Equal(t, []float64{6}, out)
}

func TestFinishManualSparseTopology(t *testing.T) {
	net := Start(2, 0).
		AddUnit(&model.TrivialNeuron{}).
		SealLayer().
		Connect(nn.Address{Layer: 0, Neuron: 1}, nn.Address{Layer: 1, Neuron: 0}, 0.5).
		FinishManual()

	require.Equal(t, []int{2, 1}, net.Sizes())
	assert.Empty(t, net.Layers[0].Neurons[0].Connections)
	assert.Len(t, net.Layers[0].Neurons[1].Connections, 1)

	out, ok := net.ExecuteMut([][]float64{{10, 4}})
	require.True(t, ok)
	assert.Equal(t, []float64{2}, out)
}

func TestEndToEndFixedWeights(t *testing.T) {
	net := Start(2, 1).
		AddUnit(&model.TrivialNeuron{}).
		AddUnit(&model.TrivialNeuron{}).
		FinishDirectional(random.Fixed(1.0))

	trace, ok := net.ExecuteTrace([][]float64{{2.0, 3.0}})
	require.True(t, ok)
	assert.Equal(t, []float64{5.0, 5.0}, trace[1])
	assert.Equal(t, []float64{10.0}, trace.Output())
}

func TestActivateInProgressLayer(t *testing.T) {
	net := Start(1, 1).
		AddUnit(&model.TrivialNeuron{}).
		Activate(activation.Elementwise(func(x float64) float64 { return -x })).
		FinishDirectional(random.Fixed(1))

	require.NotNil(t, net.Layers[1].Activation)
	assert.Nil(t, net.Layers[0].Activation)

	out, ok := net.ExecuteMut([][]float64{{3}})
	require.True(t, ok)
	assert.Equal(t, []float64{-3}, out)
}

func TestStaleBuilderIsInert(t *testing.T) {
	rec := diag.NewRecorder()
	first := Start(1, 1, WithLogger(rec.Logger()))
	second := first.AddUnit(&model.TrivialNeuron{})

	stale := first.AddUnit(&model.TrivialNeuron{})
	assert.Same(t, first, stale)
	assert.Nil(t, first.FinishManual())
	assert.Equal(t, 2, rec.Count(slog.LevelError, MsgConsumed))

	net := second.FinishDirectional(random.Fixed(0))
	require.NotNil(t, net)
	assert.Equal(t, []int{1, 1, 1}, net.Sizes())
	assert.Nil(t, second.FinishDirectional(random.Fixed(0)))
}

func TestNetworkID(t *testing.T) {
	net := Start(1, 1).FinishManual()
	_, err := uuid.Parse(net.ID)
	assert.NoError(t, err)

	named := Start(1, 1, WithID("xor")).FinishManual()
	assert.Equal(t, "xor", named.ID)
}

func TestZeroInputsIsDegenerate(t *testing.T) {
	rec := diag.NewRecorder()
	net := Start(0, 1, WithLogger(rec.Logger())).FinishDirectional(random.Fixed(0))

	assert.Equal(t, []int{1}, net.Sizes())
	assert.Equal(t, 0, net.ConnectionCount())
	assert.Equal(t, 1, rec.Count(slog.LevelWarn, MsgEmptyLayer))
}

func TestInvertedWeightRangeIsSwapped(t *testing.T) {
	rec := diag.NewRecorder()
	net := Start(2, 2, WithLogger(rec.Logger()), WithWeightRange(1, -1)).FinishDirectional(random.New(5))

	for _, c := range net.Layers[0].Neurons[0].Connections {
		assert.GreaterOrEqual(t, c.Weight, -1.0)
		assert.LessOrEqual(t, c.Weight, 1.0)
	}
	assert.Equal(t, 1, rec.Count(slog.LevelWarn, MsgBadWeightRange))
}

func TestNilModelAndNilSource(t *testing.T) {
	rec := diag.NewRecorder()
	net := Start(1, 1, WithLogger(rec.Logger())).
		AddUnit(nil).
		FinishDirectional(nil)

	assert.Equal(t, []int{1, 1}, net.Sizes())
	assert.Equal(t, 1, rec.Count(slog.LevelError, MsgNilModel))
	assert.Equal(t, 1, rec.Count(slog.LevelWarn, MsgMissingRandom))
}
