package meetings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jatinupadhyay27/my-meet/internal/domain"
)

// Cache is a redis read-through cache for directory lookups on the join
// hot path. A nil *Cache is valid and disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: 24 * time.Hour}
}

func (c *Cache) key(code domain.RoomID) string {
	return fmt.Sprintf("meeting:%s", code)
}

func (c *Cache) getMeta(ctx context.Context, code domain.RoomID) (*cachedMeta, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "meetings.cache").Str("code", string(code)).Msg("cache read failed")
		return nil, false
	}
	var meta cachedMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, false
	}
	return &meta, true
}

func (c *Cache) setMeta(ctx context.Context, code domain.RoomID, meta cachedMeta) {
	if c == nil {
		return
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(code), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("module", "meetings.cache").Str("code", string(code)).Msg("cache write failed")
	}
}
