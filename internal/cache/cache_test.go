package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	t.Run("SetAndGet", func(t *testing.T) {
		c := New()
		c.Set("key", "value", time.Minute)

		got, ok := c.Get("key")
		assert.True(t, ok)
		assert.Equal(t, "value", got)
	})

	t.Run("Expiry", func(t *testing.T) {
		c := New()
		now := time.Now()
		c.clock = func() time.Time { return now }
		c.Set("key", "value", time.Second)

		now = now.Add(2 * time.Second)
		_, ok := c.Get("key")
		assert.False(t, ok)
	})

	t.Run("Sweep", func(t *testing.T) {
		c := New()
		now := time.Now()
		c.clock = func() time.Time { return now }
		c.Set("stale", 1, time.Second)
		c.Set("fresh", 2, time.Hour)

		now = now.Add(time.Minute)
		assert.Equal(t, 1, c.Sweep())

		_, ok := c.Get("fresh")
		assert.True(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		c := New()
		c.Set("key", "value", time.Minute)
		c.Delete("key")

		_, ok := c.Get("key")
		assert.False(t, ok)
	})
}
