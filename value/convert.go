package value

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"reflect"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cast"
)

// ErrNoConversion is returned when a value cannot be converted to the requested type.
var ErrNoConversion = errors.New("no conversion")

var errOutOfRange = errors.New("value out of range")

var (
	rgbaType  = reflect.TypeFor[color.RGBA]()
	colorType = reflect.TypeFor[color.Color]()
	valueType = reflect.TypeFor[Value]()
)

// To converts v to T: the boxed value is returned as-is when it already is a T,
// otherwise numeric widening/narrowing, string<->primitive and string<->color
// conversions are attempted.
func To[T any](v Value) (T, error) {
	var zero T

	if t, ok := v.v.(T); ok {
		return t, nil
	}

	out, err := convert(v, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}

	t, ok := out.(T)
	if !ok {
		return zero, noConversion(v, reflect.TypeFor[T]())
	}
	return t, nil
}

// Convert coerces v to the given kind. KindDynamic accepts any value unchanged.
func Convert(v Value, k Kind) (Value, error) {
	if v.kind == k || k == KindDynamic {
		return v, nil
	}

	switch k {
	case KindInt:
		n, err := To[int64](v)
		return Int(n), err
	case KindFloat:
		f, err := To[float64](v)
		return Float(f), err
	case KindBool:
		b, err := To[bool](v)
		return Bool(b), err
	case KindString:
		s, err := To[string](v)
		return String(s), err
	case KindColor:
		c, err := To[color.RGBA](v)
		return Color(c), err
	}

	// the remaining kinds only accept a dynamic value already holding the right type
	if v.kind == KindDynamic {
		if boxed := Of(v.v); boxed.kind == k {
			return boxed, nil
		}
	}

	return Value{}, fmt.Errorf("%w from %s to %s", ErrNoConversion, v.kind, k)
}

func convert(v Value, to reflect.Type) (any, error) {
	if !v.IsValid() {
		return nil, noConversion(v, to)
	}

	switch to {
	case valueType:
		return v, nil
	case rgbaType, colorType:
		return toColor(v)
	}

	var (
		out any
		err error
	)

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out, err = toInt64(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		out, err = toUint64(v)
	case reflect.Float32, reflect.Float64:
		out, err = cast.ToFloat64E(numeric(v))
	case reflect.Bool:
		out, err = cast.ToBoolE(v.v)
	case reflect.String:
		out, err = toString(v)
	default:
		return nil, noConversion(v, to)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", noConversion(v, to), err)
	}

	rv := reflect.ValueOf(out)
	if !rv.CanConvert(to) || overflows(rv, to) {
		return nil, noConversion(v, to)
	}
	return rv.Convert(to).Interface(), nil
}

// overflows reports whether rv does not fit in to. Only called with matching kinds.
func overflows(rv reflect.Value, to reflect.Type) bool {
	target := reflect.New(to).Elem()

	switch rv.Kind() {
	case reflect.Int64:
		return target.OverflowInt(rv.Int())
	case reflect.Uint64:
		return target.OverflowUint(rv.Uint())
	case reflect.Float64:
		return target.OverflowFloat(rv.Float())
	}
	return false
}

// toInt64 rejects values outside the int64 range instead of wrapping them.
func toInt64(v Value) (int64, error) {
	switch x := numeric(v).(type) {
	case uint:
		return toInt64(Dynamic(uint64(x)))
	case uint64:
		if x > math.MaxInt64 {
			return 0, errOutOfRange
		}
		return int64(x), nil
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case string:
		if n, err := cast.ToInt64E(x); err == nil {
			return n, nil
		}
		// accept "3.0" style numbers the way toolkit converters do
		f, err := cast.ToFloat64E(x)
		if err != nil {
			return 0, err
		}
		return floatToInt64(f)
	default:
		return cast.ToInt64E(x)
	}
}

func toUint64(v Value) (uint64, error) {
	switch x := numeric(v).(type) {
	case float32:
		return floatToUint64(float64(x))
	case float64:
		return floatToUint64(x)
	case string:
		if n, err := cast.ToUint64E(x); err == nil {
			return n, nil
		}
		f, err := cast.ToFloat64E(x)
		if err != nil {
			return 0, err
		}
		return floatToUint64(f)
	default:
		return cast.ToUint64E(x)
	}
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, errOutOfRange
	}
	return int64(f), nil
}

func floatToUint64(f float64) (uint64, error) {
	if math.IsNaN(f) || f < 0 || f >= 1<<64 {
		return 0, errOutOfRange
	}
	return uint64(f), nil
}

// numeric unwraps values cast would otherwise reject.
func numeric(v Value) any {
	if v.kind == KindString {
		return strings.TrimSpace(v.v.(string))
	}
	return v.v
}

func toString(v Value) (string, error) {
	switch x := v.v.(type) {
	case color.RGBA:
		c, _ := colorful.MakeColor(x)
		return c.Hex(), nil
	case Font:
		return x.String(), nil
	case Size:
		return x.String(), nil
	case image.Rectangle:
		return x.String(), nil
	case Icon:
		return x.Name, nil
	}

	return cast.ToStringE(v.v)
}

func toColor(v Value) (color.RGBA, error) {
	switch x := v.v.(type) {
	case color.RGBA:
		return x, nil
	case color.Color:
		return color.RGBAModel.Convert(x).(color.RGBA), nil
	case string:
		c, err := colorful.Hex(strings.TrimSpace(x))
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: %w", noConversion(v, rgbaType), err)
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
	}

	return color.RGBA{}, noConversion(v, rgbaType)
}

func noConversion(v Value, to reflect.Type) error {
	return fmt.Errorf("%w from %s to %s", ErrNoConversion, v.kind, to)
}
