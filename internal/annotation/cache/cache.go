package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/directdebit/internal/annotation/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTTL = 10 * time.Minute

	// Version keys only need to outlive an in-flight List.
	versionTTL = 24 * time.Hour
)

var errStaleFill = errors.New("annotation list changed during read")

// Store caches account annotation lists in redis in front of another Store.
// Add writes through, bumps the account's version and drops the cached list.
// A List only fills the cache when the version it read before going to the
// next store is still current.
type Store struct {
	next  domain.Store
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func New(next domain.Store, client *redis.Client, ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		next:  next,
		redis: client,
		ttl:   ttl,
		log:   log.Named("annotation.cache"),
	}
}

func key(orgID snowflake.ID, accountID uuid.UUID) string {
	return fmt.Sprintf("annotations:%s:%s", orgID.String(), accountID.String())
}

func versionKey(orgID snowflake.ID, accountID uuid.UUID) string {
	return fmt.Sprintf("annotations:ver:%s:%s", orgID.String(), accountID.String())
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, g getter, k string) (int64, error) {
	v, err := g.Get(ctx, k).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (s *Store) List(ctx context.Context, orgID snowflake.ID, accountID uuid.UUID) ([]domain.Annotation, error) {
	k := key(orgID, accountID)

	raw, err := s.redis.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var items []domain.Annotation
		if jsonErr := json.Unmarshal(raw, &items); jsonErr == nil {
			return items, nil
		}
		s.log.Warn("discarding corrupt cache entry", zap.String("key", k))
	case errors.Is(err, redis.Nil):
	default:
		s.log.Warn("annotation cache read failed", zap.String("key", k), zap.Error(err))
	}

	vk := versionKey(orgID, accountID)
	version, versionErr := readVersion(ctx, s.redis, vk)

	items, err := s.next.List(ctx, orgID, accountID)
	if err != nil {
		return nil, err
	}
	if versionErr != nil {
		s.log.Warn("annotation cache version read failed", zap.String("key", vk), zap.Error(versionErr))
		return items, nil
	}

	if err := s.fill(ctx, k, vk, version, items); err != nil {
		if errors.Is(err, errStaleFill) || errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("skipping cache fill for changed list", zap.String("key", k))
		} else {
			s.log.Warn("annotation cache fill failed", zap.String("key", k), zap.Error(err))
		}
	}
	return items, nil
}

func (s *Store) fill(ctx context.Context, k, vk string, version int64, items []domain.Annotation) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, vk)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, s.ttl)
			return nil
		})
		return err
	}, vk)
}

func (s *Store) Add(ctx context.Context, annotation *domain.Annotation) error {
	if err := s.next.Add(ctx, annotation); err != nil {
		return err
	}
	vk := versionKey(annotation.OrgID, annotation.AccountID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, vk)
		pipe.Expire(ctx, vk, versionTTL)
		pipe.Del(ctx, key(annotation.OrgID, annotation.AccountID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate annotation cache: %w", err)
	}
	return nil
}
