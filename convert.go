package bind

import (
	"reflect"

	"github.com/AnatoleLucet/bind/value"
)

// convertValue is the default conversion: identity for identical types,
// otherwise the dynamic conversions of the value package.
func convertValue[From, To any](v From) (To, error) {
	if reflect.TypeFor[From]() == reflect.TypeFor[To]() {
		return as[To](any(v)), nil
	}
	if t, ok := any(v).(To); ok {
		return t, nil
	}

	return value.To[To](value.Of(v))
}
