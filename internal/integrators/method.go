package integrators

import (
	"fmt"
	"strings"

	"github.com/san-kum/chainsim/internal/dynamo"
)

// Method selects how a universe advances its chain.
type Method uint8

const (
	MethodEuler Method = iota
	MethodRK4
	MethodHamiltonian
)

var methodNames = map[Method]string{
	MethodEuler:       "euler",
	MethodRK4:         "rk4",
	MethodHamiltonian: "hamiltonian",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("method(%d)", uint8(m))
}

func ParseMethod(name string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for m, n := range methodNames {
		if n == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownMethod, name)
}

// Methods lists every selectable method in declaration order.
func Methods() []Method {
	return []Method{MethodEuler, MethodRK4, MethodHamiltonian}
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Unimplemented stands in for a method that has no algorithm yet.
type Unimplemented struct {
	Method Method
}

func (u Unimplemented) Step(dynamo.System, dynamo.State, float64) (dynamo.State, error) {
	return nil, fmt.Errorf("%s: %w", u.Method, dynamo.ErrNotImplemented)
}

// ForMethod returns a fresh integrator for m.
func ForMethod(m Method) (dynamo.Integrator, error) {
	switch m {
	case MethodEuler:
		return NewSemiImplicitEuler(), nil
	case MethodRK4:
		return NewRK4(), nil
	case MethodHamiltonian:
		return Unimplemented{Method: m}, nil
	default:
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownMethod, m)
	}
}
