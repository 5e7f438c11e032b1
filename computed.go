package bind

import (
	"github.com/AnatoleLucet/bind/widget"
)

// NewComputedBinding writes the result of compute to the named property of target.
//
// compute runs at construction, on Update, and whenever one of the observables
// given with WithDependencies changes. The dependency set is fixed; a closed
// dependency is reported once and the remaining ones keep working.
func NewComputedBinding[T any](compute func() (T, error), target widget.Widget, property string, opts ...Option) (*Binding[T, T], error) {
	const op = "bind.NewComputedBinding"

	if compute == nil {
		return nil, invalidArgument(op, "nil compute function")
	}

	s := newSettings(opts)
	if s.direction == TwoWay {
		return nil, invalidArgument(op, "computed bindings cannot be two-way")
	}
	if s.convert != nil || s.reverse != nil {
		return nil, invalidArgument(op, "computed bindings take no converter")
	}
	for i, dep := range s.deps {
		if dep == nil {
			return nil, invalidArgument(op, "nil dependency at index %d", i)
		}
	}

	b, err := newBinding[T, T](op, s, target, property)
	if err != nil {
		return nil, err
	}
	b.compute = compute
	b.deps = s.deps

	b.setup(s)
	return b, nil
}
