package dedup

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisKey = "molit:sent_links"
	redisTimeout    = 5 * time.Second
)

// RedisStore 用一个 list 按插入顺序保存已发送链接，适合多实例部署共享去重状态
type RedisStore struct {
	rdb      *redis.Client
	key      string
	MaxCache int
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key, MaxCache: MaxCache}
}

func (r *RedisStore) Load(ctx context.Context) *LinkSet {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	links, err := r.rdb.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		log.Printf("dedup: %v, starting with empty cache", &PersistenceError{Op: "load", Err: err})
		return NewLinkSet()
	}
	return NewLinkSet(links...)
}

func (r *RedisStore) Save(ctx context.Context, set *LinkSet) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	links := set.Newest(r.MaxCache)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(links) == 0 {
			return nil
		}
		vals := make([]any, len(links))
		for i, l := range links {
			vals[i] = l
		}
		pipe.RPush(ctx, r.key, vals...)
		return nil
	})
	if err != nil {
		log.Printf("dedup: %v", &PersistenceError{Op: "save", Err: err})
	}
}
