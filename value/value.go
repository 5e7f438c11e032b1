// Package value defines the tagged value box that crosses the boundary between
// bindings and widget properties, along with its conversion rules.
package value

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/AnatoleLucet/bind/internal"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindColor
	KindFont
	KindSize
	KindRect
	KindIcon
	KindPixmap
	// KindDynamic carries an arbitrary toolkit-native value.
	KindDynamic
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindColor:
		return "color"
	case KindFont:
		return "font"
	case KindSize:
		return "size"
	case KindRect:
		return "rect"
	case KindIcon:
		return "icon"
	case KindPixmap:
		return "pixmap"
	case KindDynamic:
		return "dynamic"
	default:
		return "invalid"
	}
}

// Font describes a text font.
type Font struct {
	Family    string
	PointSize float64
	Bold      bool
	Italic    bool
}

func (f Font) String() string {
	s := fmt.Sprintf("%s %gpt", f.Family, f.PointSize)
	if f.Bold {
		s += " bold"
	}
	if f.Italic {
		s += " italic"
	}
	return s
}

// Size is a width and height in pixels.
type Size struct {
	W, H int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Icon is a named image.
type Icon struct {
	Name  string
	Image image.Image
}

// Value is a property value tagged with its Kind. The zero Value is invalid.
type Value struct {
	kind Kind
	v    any
}

func Int(n int64) Value              { return Value{KindInt, n} }
func Float(f float64) Value          { return Value{KindFloat, f} }
func Bool(b bool) Value              { return Value{KindBool, b} }
func String(s string) Value          { return Value{KindString, s} }
func FontOf(f Font) Value            { return Value{KindFont, f} }
func SizeOf(s Size) Value            { return Value{KindSize, s} }
func RectOf(r image.Rectangle) Value { return Value{KindRect, r} }
func IconOf(i Icon) Value            { return Value{KindIcon, i} }
func PixmapOf(img image.Image) Value { return Value{KindPixmap, img} }
func Dynamic(v any) Value            { return Value{KindDynamic, v} }

// Color boxes any color as 8-bit RGBA.
func Color(c color.Color) Value {
	return Value{KindColor, color.RGBAModel.Convert(c).(color.RGBA)}
}

// Of boxes v under the Kind matching its Go type. Unknown types become KindDynamic.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Of(uint64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		// keep values int64 cannot hold instead of wrapping them
		if x > math.MaxInt64 {
			return Dynamic(x)
		}
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case Font:
		return FontOf(x)
	case Size:
		return SizeOf(x)
	case image.Rectangle:
		return RectOf(x)
	case Icon:
		return IconOf(x)
	case color.Color:
		return Color(x)
	case image.Image:
		return PixmapOf(x)
	default:
		return Dynamic(v)
	}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

// Any returns the boxed Go value.
func (v Value) Any() any {
	return v.v
}

// Int returns the value as an integer, or 0 when it has no integer form.
func (v Value) Int() int64 {
	n, _ := To[int64](v)
	return n
}

// Float returns the value as a float, or 0 when it has no numeric form.
func (v Value) Float() float64 {
	f, _ := To[float64](v)
	return f
}

// Bool returns the value as a boolean, or false when it has no boolean form.
func (v Value) Bool() bool {
	b, _ := To[bool](v)
	return b
}

// String returns the textual form of the value.
func (v Value) String() string {
	if !v.IsValid() {
		return ""
	}
	if s, err := To[string](v); err == nil {
		return s
	}
	return fmt.Sprint(v.v)
}

// Equal reports whether both values have the same kind and payload.
// Payloads without equality are never equal.
func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && internal.IsEqual(v.v, other.v)
}
