package io

import "context"

// Sensor yields one input group per read.
type Sensor interface {
	Name() string
	Read(ctx context.Context) ([]float64, error)
}

// ScalarSensorSetter is an optional sensor capability for sensors driven by
// a single scalar.
type ScalarSensorSetter interface {
	Set(value float64)
}

// VectorSensorSetter is an optional sensor capability for sensors driven by
// a feature vector.
type VectorSensorSetter interface {
	Set(values []float64)
}

type Actuator interface {
	Name() string
	Write(ctx context.Context, values []float64) error
}

// SnapshotActuator is an optional actuator capability exposing the most
// recent write.
type SnapshotActuator interface {
	Last() []float64
}

// ReadGroups reads every sensor in order and returns one group per sensor.
func ReadGroups(ctx context.Context, sensors []Sensor) ([][]float64, error) {
	groups := make([][]float64, 0, len(sensors))
	for _, s := range sensors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, err := s.Read(ctx)
		if err != nil {
			return nil, err
		}
		groups = append(groups, values)
	}
	return groups, nil
}
