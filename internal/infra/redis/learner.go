package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
	"github.com/aliskhannn/adaptive-quiz/internal/service"
)

const (
	maxTxAttempts = 8
	retryBackoff  = 5 * time.Millisecond
)

// Options contains redis connection parameters.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to redis and checks the connection.
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// LearnerStore keeps JSON encoded learners in redis. Keys expire after the TTL,
// which is refreshed on every access.
type LearnerStore struct {
	rdb        *goredis.Client
	prefix     string
	ttl        time.Duration
	newLearner entities.LearnerFactory
	now        func() time.Time
}

// NewLearnerStore creates a new LearnerStore.
func NewLearnerStore(rdb *goredis.Client, prefix string, ttl time.Duration, newLearner entities.LearnerFactory) *LearnerStore {
	return &LearnerStore{
		rdb:        rdb,
		prefix:     prefix,
		ttl:        ttl,
		newLearner: newLearner,
		now:        time.Now,
	}
}

// Update applies fn inside an optimistic WATCH/MULTI transaction, retrying when the key
// was modified concurrently.
func (s *LearnerStore) Update(ctx context.Context, sessionID string, fn func(l *entities.Learner) error) error {
	key := s.key(sessionID)

	txf := func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		l, err := s.decode(sessionID, raw, err)
		if err != nil {
			return err
		}

		if err := fn(l); err != nil {
			return err
		}

		data, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("encode learner: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, goredis.TxFailedErr) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(i)):
		}
	}

	return fmt.Errorf("%w: %s", service.ErrConcurrentUpdate, sessionID)
}

// backoff grows linearly with the attempt and adds up to one step of jitter.
func backoff(attempt int) time.Duration {
	return retryBackoff*time.Duration(attempt+1) + rand.N(retryBackoff)
}

// View loads the learner and refreshes its expiry. A missing learner is built fresh
// and not saved.
func (s *LearnerStore) View(ctx context.Context, sessionID string, fn func(l *entities.Learner) error) error {
	key := s.key(sessionID)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	l, err := s.decode(sessionID, raw, err)
	if err != nil {
		return err
	}

	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("refresh learner ttl: %w", err)
	}

	return fn(l)
}

// EvictExpired does nothing, redis expires keys itself.
func (s *LearnerStore) EvictExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

// Close closes the redis client.
func (s *LearnerStore) Close() error {
	return s.rdb.Close()
}

func (s *LearnerStore) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// decode turns a GET result into a learner, building a new one for a missing key.
func (s *LearnerStore) decode(sessionID string, raw []byte, getErr error) (*entities.Learner, error) {
	if errors.Is(getErr, goredis.Nil) {
		return s.newLearner(sessionID, s.now()), nil
	}
	if getErr != nil {
		return nil, fmt.Errorf("get learner: %w", getErr)
	}

	var l entities.Learner
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("decode learner: %w", err)
	}
	if l.SessionID == "" {
		l.SessionID = sessionID
	}

	return &l, nil
}
