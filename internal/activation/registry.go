package activation

import (
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrActivationExists   = errors.New("activation already registered")
	ErrActivationNotFound = errors.New("activation not found")
)

// Func transforms one scalar.
type Func func(x float64) float64

// LayerFunc transforms a whole layer output vector. Implementations must not
// retain values.
type LayerFunc func(values []float64) []float64

var registry = struct {
	mu sync.RWMutex
	m  map[string]Func
}{
	m: make(map[string]Func),
}

func init() {
	initializeBuiltIns()
}

func initializeBuiltIns() {
	MustRegister("identity", func(x float64) float64 { return x })
	MustRegister("relu", func(x float64) float64 {
		if x < 0 {
			return 0
		}
		return x
	})
	MustRegister("tanh", math.Tanh)
	MustRegister("sigmoid", func(x float64) float64 {
		return 1.0 / (1.0 + math.Exp(-x))
	})
	MustRegister("arctan", math.Atan)
	MustRegister("saturation", Saturation)
}

func Register(name string, fn Func) error {
	if name == "" {
		return errors.New("activation name is required")
	}
	if fn == nil {
		return errors.New("activation function is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[name]; exists {
		return errors.Wrap(ErrActivationExists, name)
	}
	registry.m[name] = fn
	return nil
}

func MustRegister(name string, fn Func) {
	if err := Register(name, fn); err != nil {
		panic(err)
	}
}

func Get(name string) (Func, error) {
	registry.mu.RLock()
	fn, ok := registry.m[name]
	registry.mu.RUnlock()
	if !ok {
		return nil, errors.Wrap(ErrActivationNotFound, name)
	}
	return fn, nil
}

// List returns the registered names in sorted order.
func List() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves name to an element-wise LayerFunc. The empty name and
// "identity" resolve to nil, which evaluation treats as a pass-through.
func Lookup(name string) (LayerFunc, error) {
	if name == "" || name == "identity" {
		return nil, nil
	}
	fn, err := Get(name)
	if err != nil {
		return nil, err
	}
	return Elementwise(fn), nil
}

// Elementwise lifts fn to a LayerFunc producing a fresh slice.
func Elementwise(fn Func) LayerFunc {
	return func(values []float64) []float64 {
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = fn(v)
		}
		return out
	}
}

func resetRegistryForTests() {
	registry.mu.Lock()
	registry.m = make(map[string]Func)
	registry.mu.Unlock()
	initializeBuiltIns()
}
