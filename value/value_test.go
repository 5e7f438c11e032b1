package value

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	t.Run("tags go values by kind", func(t *testing.T) {
		cases := []struct {
			in   any
			kind Kind
		}{
			{42, KindInt},
			{uint8(7), KindInt},
			{3.5, KindFloat},
			{float32(1.5), KindFloat},
			{true, KindBool},
			{"text", KindString},
			{color.RGBA{R: 255, A: 255}, KindColor},
			{color.Gray{Y: 128}, KindColor},
			{Font{Family: "Sans", PointSize: 10}, KindFont},
			{Size{W: 10, H: 20}, KindSize},
			{image.Rect(0, 0, 4, 4), KindRect},
			{Icon{Name: "save"}, KindIcon},
			{image.NewRGBA(image.Rect(0, 0, 1, 1)), KindPixmap},
			{struct{ X int }{1}, KindDynamic},
			{nil, KindInvalid},
		}

		for _, c := range cases {
			assert.Equal(t, c.kind, Of(c.in).Kind(), "%T", c.in)
		}
	})

	t.Run("keeps unsigned values int64 cannot hold", func(t *testing.T) {
		v := Of(uint64(math.MaxUint64))
		assert.Equal(t, KindDynamic, v.Kind())
		assert.Equal(t, uint64(math.MaxUint64), v.Any())
		assert.Equal(t, int64(0), v.Int())

		assert.Equal(t, KindInt, Of(uint64(math.MaxInt64)).Kind())
	})

	t.Run("keeps an existing value", func(t *testing.T) {
		v := String("a")
		assert.Equal(t, v, Of(v))
	})
}

func TestTo(t *testing.T) {
	t.Run("returns the boxed value for the same type", func(t *testing.T) {
		s, err := To[string](String("hello"))
		require.NoError(t, err)
		assert.Equal(t, "hello", s)
	})

	t.Run("widens and narrows numbers", func(t *testing.T) {
		n, err := To[int](Int(42))
		require.NoError(t, err)
		assert.Equal(t, 42, n)

		f, err := To[float64](Int(42))
		require.NoError(t, err)
		assert.Equal(t, 42.0, f)

		n32, err := To[int32](Float(7.9))
		require.NoError(t, err)
		assert.Equal(t, int32(7), n32)

		n8, err := To[int8](Int(-128))
		require.NoError(t, err)
		assert.Equal(t, int8(-128), n8)

		u, err := To[uint64](Dynamic(uint64(math.MaxUint64)))
		require.NoError(t, err)
		assert.Equal(t, uint64(math.MaxUint64), u)
	})

	t.Run("rejects numbers out of range", func(t *testing.T) {
		cases := []struct {
			name string
			conv func() error
		}{
			{"int8 from 300", func() error { _, err := To[int8](Int(300)); return err }},
			{"uint8 from 256", func() error { _, err := To[uint8](Int(256)); return err }},
			{"uint from -1", func() error { _, err := To[uint](Int(-1)); return err }},
			{"int64 from MaxUint64", func() error { _, err := To[int64](Of(uint64(math.MaxUint64))); return err }},
			{"int from 1e30 string", func() error { _, err := To[int](String(" 1e30 ")); return err }},
			{"int from 1e30 float", func() error { _, err := To[int](Float(1e30)); return err }},
			{"int from NaN", func() error { _, err := To[int](Float(math.NaN())); return err }},
			{"uint32 from -0.5e10 float", func() error { _, err := To[uint32](Float(-0.5e10)); return err }},
			{"float32 from 1e300", func() error { _, err := To[float32](Float(1e300)); return err }},
		}

		for _, c := range cases {
			assert.ErrorIs(t, c.conv(), ErrNoConversion, c.name)
		}
	})

	t.Run("converts between strings and primitives", func(t *testing.T) {
		n, err := To[int](String(" 12 "))
		require.NoError(t, err)
		assert.Equal(t, 12, n)

		s, err := To[string](Int(100))
		require.NoError(t, err)
		assert.Equal(t, "100", s)

		b, err := To[bool](String("true"))
		require.NoError(t, err)
		assert.True(t, b)
	})

	t.Run("converts between strings and colors", func(t *testing.T) {
		c, err := To[color.RGBA](String("#ff0000"))
		require.NoError(t, err)
		assert.Equal(t, color.RGBA{R: 255, A: 255}, c)

		s, err := To[string](Color(color.RGBA{G: 255, A: 255}))
		require.NoError(t, err)
		assert.Equal(t, "#00ff00", s)
	})

	t.Run("converts named types", func(t *testing.T) {
		type percent int

		p, err := To[percent](String("50"))
		require.NoError(t, err)
		assert.Equal(t, percent(50), p)
	})

	t.Run("fails when nothing applies", func(t *testing.T) {
		n, err := To[int](String("abc"))
		assert.ErrorIs(t, err, ErrNoConversion)
		assert.Equal(t, 0, n)

		_, err = To[Size](String("10x10"))
		assert.ErrorIs(t, err, ErrNoConversion)

		_, err = To[int](Value{})
		assert.ErrorIs(t, err, ErrNoConversion)
	})
}

func TestConvert(t *testing.T) {
	t.Run("coerces to primitive kinds", func(t *testing.T) {
		v, err := Convert(String("3.25"), KindFloat)
		require.NoError(t, err)
		assert.Equal(t, Float(3.25), v)
	})

	t.Run("dynamic accepts anything", func(t *testing.T) {
		v, err := Convert(Int(1), KindDynamic)
		require.NoError(t, err)
		assert.Equal(t, Int(1), v)
	})

	t.Run("unwraps dynamic values of the right type", func(t *testing.T) {
		v, err := Convert(Dynamic(Size{W: 1, H: 2}), KindSize)
		require.NoError(t, err)
		assert.Equal(t, SizeOf(Size{W: 1, H: 2}), v)
	})

	t.Run("refuses unrelated kinds", func(t *testing.T) {
		_, err := Convert(Int(1), KindFont)
		assert.ErrorIs(t, err, ErrNoConversion)
	})
}

func TestValue(t *testing.T) {
	t.Run("accessors fall back to zero", func(t *testing.T) {
		v := String("nope")
		assert.Equal(t, int64(0), v.Int())
		assert.Equal(t, 0.0, v.Float())
		assert.False(t, v.Bool())
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "42", Int(42).String())
		assert.Equal(t, "Sans 10pt bold", FontOf(Font{Family: "Sans", PointSize: 10, Bold: true}).String())
		assert.Equal(t, "", Value{}.String())
	})

	t.Run("equality", func(t *testing.T) {
		assert.True(t, Int(1).Equal(Int(1)))
		assert.False(t, Int(1).Equal(Float(1)))
		assert.False(t, Dynamic([]int{1}).Equal(Dynamic([]int{1})))
	})
}
