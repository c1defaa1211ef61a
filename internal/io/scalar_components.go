package io

import (
	"context"
	"sync"
)

type ScalarSensor struct {
	name  string
	mu    sync.RWMutex
	value float64
}

func NewScalarSensor(name string, initial float64) *ScalarSensor {
	return &ScalarSensor{name: name, value: initial}
}

func (s *ScalarSensor) Name() string {
	return s.name
}

func (s *ScalarSensor) Read(_ context.Context) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []float64{s.value}, nil
}

func (s *ScalarSensor) Set(value float64) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}

// VectorSensor yields a variable-width group.
type VectorSensor struct {
	name   string
	mu     sync.RWMutex
	values []float64
}

func NewVectorSensor(name string, initial []float64) *VectorSensor {
	return &VectorSensor{name: name, values: append([]float64(nil), initial...)}
}

func (s *VectorSensor) Name() string {
	return s.name
}

func (s *VectorSensor) Read(_ context.Context) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.values...), nil
}

func (s *VectorSensor) Set(values []float64) {
	s.mu.Lock()
	s.values = append([]float64(nil), values...)
	s.mu.Unlock()
}

// RecordingActuator keeps the last values written to it.
type RecordingActuator struct {
	name string
	mu   sync.RWMutex
	last []float64
}

func NewRecordingActuator(name string) *RecordingActuator {
	return &RecordingActuator{name: name}
}

func (a *RecordingActuator) Name() string {
	return a.name
}

func (a *RecordingActuator) Write(_ context.Context, values []float64) error {
	a.mu.Lock()
	a.last = append([]float64(nil), values...)
	a.mu.Unlock()
	return nil
}

func (a *RecordingActuator) Last() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.last...)
}
