package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "book:42", Key("book", 42))
}

func TestNilClientIsEmptyCache(t *testing.T) {
	var c *Client
	ctx := context.Background()

	data, err := c.Get(ctx, "book:1")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Set(ctx, "book:1", []byte("{}"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "book:1", "book:2"))
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())

	var dest map[string]interface{}
	assert.False(t, c.GetJSON(ctx, "book:1", &dest))
	c.SetJSON(ctx, "book:1", map[string]int{"id": 1}, time.Minute)
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	// Nothing listens on port 1.
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.Get(ctx, "genre:1")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Set(ctx, "genre:1", []byte("x"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "genre:1"))
}
