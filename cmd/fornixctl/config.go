package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"fornix/pkg/fornix"
)

func defaultTopology() fornix.Topology {
	return fornix.Topology{
		Inputs:  3,
		Outputs: 1,
		Hidden:  []fornix.LayerSpec{{Size: 3}, {Size: 2}},
	}
}

func loadOrDefaultTopology(configPath string) (fornix.Topology, error) {
	if configPath == "" {
		return defaultTopology(), nil
	}
	return loadTopologyFromConfig(configPath)
}

func loadTopologyFromConfig(path string) (fornix.Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fornix.Topology{}, errors.Wrap(err, "read config")
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fornix.Topology{}, errors.Wrapf(err, "decode config %s", path)
	}

	var topo fornix.Topology
	if v, ok := asString(raw["id"]); ok {
		topo.ID = v
	}
	if v, ok := asInt(raw["inputs"]); ok {
		topo.Inputs = v
	}
	if v, ok := asInt(raw["outputs"]); ok {
		topo.Outputs = v
	}
	if v, ok := asString(raw["output_activation"]); ok {
		topo.OutputActivation = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		topo.Seed = v
	}
	if v, ok := asFloat64(raw["weight_min"]); ok {
		topo.WeightMin = fornix.Float64(v)
	}
	if v, ok := asFloat64(raw["weight_max"]); ok {
		topo.WeightMax = fornix.Float64(v)
	}

	if rawHidden, ok := raw["hidden"]; ok {
		items, ok := rawHidden.([]any)
		if !ok {
			return fornix.Topology{}, errors.Errorf("config hidden must be a list, got %T", rawHidden)
		}
		for i, item := range items {
			spec, err := layerSpecFromConfig(item)
			if err != nil {
				return fornix.Topology{}, errors.Wrapf(err, "config hidden[%d]", i)
			}
			topo.Hidden = append(topo.Hidden, spec)
		}
	}
	return topo, nil
}

// layerSpecFromConfig accepts either a bare size or a {size, model,
// activation} object.
func layerSpecFromConfig(v any) (fornix.LayerSpec, error) {
	if size, ok := asInt(v); ok {
		return fornix.LayerSpec{Size: size}, nil
	}
	fields, ok := v.(map[string]any)
	if !ok {
		return fornix.LayerSpec{}, errors.Errorf("unsupported layer entry %T", v)
	}
	var spec fornix.LayerSpec
	size, ok := asInt(fields["size"])
	if !ok {
		return fornix.LayerSpec{}, errors.New("size is required")
	}
	spec.Size = size
	if v, ok := asString(fields["model"]); ok {
		spec.Model = v
	}
	if v, ok := asString(fields["activation"]); ok {
		spec.Activation = v
	}
	return spec, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
