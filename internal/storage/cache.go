package storage

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"care-feedback-go/internal/logger"
	"care-feedback-go/internal/metrics"
)

const blobKeyPrefix = "care-feedback:blob:"

// CachedStore keeps raw analysis blobs in redis for a short TTL so repeated
// queries over the same months skip the bucket. Listings and misses are never
// cached; a month uploaded after a miss shows up on the next query.
type CachedStore struct {
	next  ObjectStore
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedStore(next ObjectStore, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedStore {
	return &CachedStore{next: next, redis: client, ttl: ttl, log: log.Component("storage.cache")}
}

func (s *CachedStore) Download(ctx context.Context, name string) ([]byte, error) {
	key := blobKeyPrefix + name
	data, err := s.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.BlobCache.WithLabelValues("hit").Inc()
		return data, nil
	case errors.Is(err, redis.Nil):
		metrics.BlobCache.WithLabelValues("miss").Inc()
	default:
		// cache trouble degrades to a direct read
		metrics.BlobCache.WithLabelValues("error").Inc()
		s.log.WithError(err).WithField("object", name).Warn("blob cache read failed")
	}

	data, err = s.next.Download(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.WithError(err).WithField("object", name).Warn("blob cache write failed")
	}
	return data, nil
}

func (s *CachedStore) List(ctx context.Context) ([]ObjectInfo, error) {
	return s.next.List(ctx)
}
