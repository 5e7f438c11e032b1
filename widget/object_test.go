package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/bind/value"
)

func newLabel() *Object {
	return NewObject("Label",
		Prop("text", value.String("")),
		Prop("width", value.Int(0)).Silent(),
		Prop("kind", value.String("label")).Locked(),
	)
}

func TestObject(t *testing.T) {
	t.Run("lists properties in declaration order", func(t *testing.T) {
		props := newLabel().Properties()

		require.Len(t, props, 3)
		assert.Equal(t, PropertyInfo{Name: "text", Kind: value.KindString, Notify: true}, props[0])
		assert.Equal(t, PropertyInfo{Name: "width", Kind: value.KindInt}, props[1])
		assert.True(t, props[2].ReadOnly)
	})

	t.Run("coerces writes to the declared kind", func(t *testing.T) {
		l := newLabel()

		assert.True(t, l.SetProperty("width", value.String("120")))
		assert.Equal(t, value.Int(120), l.Get("width"))

		assert.False(t, l.SetProperty("width", value.String("wide")))
		assert.Equal(t, value.Int(120), l.Get("width"))
	})

	t.Run("refuses unknown and read-only properties", func(t *testing.T) {
		l := newLabel()

		assert.False(t, l.SetProperty("missing", value.Int(1)))
		assert.False(t, l.SetProperty("kind", value.String("button")))
	})

	t.Run("emits the notify signal only on change", func(t *testing.T) {
		l := newLabel()
		calls := 0

		sig, ok := l.NotifySignal("text")
		require.True(t, ok)
		disconnect := sig.Connect(func() { calls++ })

		l.SetProperty("text", value.String("a"))
		l.SetProperty("text", value.String("a"))
		disconnect()
		l.SetProperty("text", value.String("b"))

		assert.Equal(t, 1, calls)
	})

	t.Run("finds signals by name", func(t *testing.T) {
		l := newLabel()

		_, ok := l.Signal("textChanged")
		assert.True(t, ok)

		_, ok = l.Signal("widthChanged")
		assert.False(t, ok)
	})
}

func TestRef(t *testing.T) {
	t.Run("resolves until destroyed", func(t *testing.T) {
		l := newLabel()
		ref := l.Ref()

		w, ok := ref.Get()
		require.True(t, ok)
		assert.Same(t, l, w)
		assert.True(t, ref.Is(l))
		assert.False(t, ref.Is(newLabel()))

		l.Destroy()

		_, ok = ref.Get()
		assert.False(t, ok)
		assert.False(t, l.SetProperty("text", value.String("x")))
	})

	t.Run("runs destruction callbacks once", func(t *testing.T) {
		l := newLabel()
		calls := 0

		l.Ref().OnDestroyed(func() { calls++ })
		cancelled := l.Ref().OnDestroyed(func() { calls += 10 })
		cancelled()

		l.Destroy()
		l.Destroy()

		assert.Equal(t, 1, calls)
	})

	t.Run("late registrations run immediately", func(t *testing.T) {
		l := newLabel()
		l.Destroy()

		calls := 0
		l.Ref().OnDestroyed(func() { calls++ })

		assert.Equal(t, 1, calls)
	})
}
