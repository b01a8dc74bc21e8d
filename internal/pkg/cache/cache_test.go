package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopAlwaysMisses(t *testing.T) {
	var s Store = Noop{}
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "settings", map[string]int{"duration": 45}, time.Minute))

	var got map[string]int
	assert.ErrorIs(t, s.Get(ctx, "settings", &got), ErrMiss)
	assert.NoError(t, s.Delete(ctx, "settings"))
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	s := &RedisStore{prefix: "schooldesk:"}
	assert.Equal(t, "schooldesk:settings", s.key("settings"))
}
