package bind

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource(t *testing.T) {
	t.Run("get and set", func(t *testing.T) {
		count := NewSource(0)
		assert.Equal(t, 0, count.Get())

		count.Set(10)
		assert.Equal(t, 10, count.Get())

		count.Update(func(n int) int { return n + 1 })
		assert.Equal(t, 11, count.Get())
	})

	t.Run("zero values", func(t *testing.T) {
		err := NewSource[error](nil)
		assert.Nil(t, err.Get())

		err.Set(fmt.Errorf("oops"))
		assert.EqualError(t, err.Get(), "oops")

		err.Set(nil)
		assert.Nil(t, err.Get())
	})

	t.Run("notifies subscribers in subscription order", func(t *testing.T) {
		log := []string{}

		name := NewSource("a")
		name.Subscribe(func(v string) { log = append(log, "first "+v) })
		name.Subscribe(func(v string) { log = append(log, "second "+v) })

		name.Set("b")
		name.Set("c")

		assert.Equal(t, []string{"first b", "second b", "first c", "second c"}, log)
	})

	t.Run("skips writes of the current value", func(t *testing.T) {
		calls := 0

		name := NewSource("a")
		name.Subscribe(func(string) { calls++ })

		name.Set("a")
		assert.Equal(t, 0, calls)
	})

	t.Run("custom equality", func(t *testing.T) {
		calls := 0

		name := NewSource("a", WithEqual(strings.EqualFold))
		name.Subscribe(func(string) { calls++ })

		name.Set("A")
		name.Set("b")

		assert.Equal(t, 1, calls)
		assert.Equal(t, "b", name.Get())
	})

	t.Run("unsubscribe", func(t *testing.T) {
		calls := 0

		count := NewSource(0)
		sub := count.Subscribe(func(int) { calls++ })
		assert.Equal(t, 1, count.SubscriberCount())

		assert.True(t, count.Unsubscribe(sub))
		assert.False(t, count.Unsubscribe(sub))

		count.Set(1)
		assert.Equal(t, 0, calls)
		assert.Equal(t, 0, count.SubscriberCount())
	})

	t.Run("nested writes are delivered after the current round", func(t *testing.T) {
		log := []string{}

		count := NewSource(0)
		count.Subscribe(func(n int) {
			log = append(log, fmt.Sprintf("first %d", n))
			if n == 1 {
				count.Set(2)
			}
		})
		count.Subscribe(func(n int) { log = append(log, fmt.Sprintf("second %d", n)) })

		count.Set(1)

		assert.Equal(t, []string{"first 1", "second 1", "first 2", "second 2"}, log)
		assert.Equal(t, 2, count.Get())
	})

	t.Run("a panicking subscriber does not stop the others", func(t *testing.T) {
		calls := 0

		count := NewSource(0)
		count.Subscribe(func(int) { panic("boom") })
		count.Subscribe(func(int) { calls++ })

		assert.NotPanics(t, func() { count.Set(1) })
		assert.Equal(t, 1, calls)
	})

	t.Run("watch", func(t *testing.T) {
		calls := 0

		count := NewSource(0)
		cancel := count.Watch(func() { calls++ })

		count.Set(1)
		cancel()
		count.Set(2)

		assert.Equal(t, 1, calls)
	})

	t.Run("close severs subscriptions", func(t *testing.T) {
		calls := 0

		count := NewSource(0)
		count.Subscribe(func(int) { calls++ })
		count.Close()

		count.Set(1)
		count.Subscribe(func(int) { calls++ })
		count.Set(2)

		assert.True(t, count.Closed())
		assert.Equal(t, 0, calls)
		assert.Equal(t, 2, count.Get())
	})

	t.Run("string", func(t *testing.T) {
		assert.Regexp(t, `^Source\[int\]@0x[0-9a-f]+$`, NewSource(0).String())
	})
}
