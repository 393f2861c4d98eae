// Package redisstore implements livestore.Store on Redis. Values are kept
// under <prefix>:<path> and every change is announced on
// <prefix>:chan:<path> so subscribers on other instances see it.
//
// Each change takes the next value of the <prefix>#rev counter in the same
// transaction as the data write. Announcements carry that revision and a
// subscriber drops any announcement not newer than what it has already seen.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/okian/scorebook/internal/adapters/livestore"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
)

const (
	defaultPrefix = "scorebook"
	scanCount     = 256
)

// envelope is the pub/sub message format.
type envelope struct {
	Rev    uint64          `json:"rev"`
	Exists bool            `json:"exists"`
	Value  json.RawMessage `json:"value,omitempty"`
}

// Store is a Redis backed live store.
type Store struct {
	client *redis.Client
	prefix string
	log    logger.Logger

	mu   sync.Mutex
	subs map[*redis.PubSub]struct{}
}

// New wraps an existing client.
func New(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix, subs: make(map[*redis.PubSub]struct{})}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("redisstore")
	}
	return s
}

// Connect dials addr and checks the connection.
func Connect(ctx context.Context, addr string, opts ...Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, model.WrapError("redisstore.Connect", model.ErrPersistenceUnavailable, err)
	}
	return New(client, opts...), nil
}

func (s *Store) key(path string) string     { return s.prefix + ":" + path }
func (s *Store) channel(path string) string { return s.prefix + ":chan:" + path }

// revKey cannot collide with a path key, which always has a colon after the prefix.
func (s *Store) revKey() string { return s.prefix + "#rev" }

func (s *Store) Write(ctx context.Context, path string, value any) error {
	const op = "redisstore.Write"
	if err := livestore.ValidatePath(path); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return model.WrapError(op, model.ErrInvalidInput, err)
	}
	var rev *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rev = pipe.Incr(ctx, s.revKey())
		pipe.Set(ctx, s.key(path), data, 0)
		return nil
	})
	if err != nil {
		return model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	return s.announce(ctx, op, envelope{Rev: uint64(rev.Val()), Exists: true, Value: data}, path)
}

func (s *Store) Remove(ctx context.Context, path string) error {
	const op = "redisstore.Remove"
	if err := livestore.ValidatePath(path); err != nil {
		return err
	}
	keys := []string{s.key(path)}
	iter := s.client.Scan(ctx, 0, s.key(path)+"/*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	var rev *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rev = pipe.Incr(ctx, s.revKey())
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	paths := make([]string, len(keys))
	for i, k := range keys {
		paths[i] = k[len(s.prefix)+1:]
	}
	return s.announce(ctx, op, envelope{Rev: uint64(rev.Val())}, paths...)
}

// announce publishes env on the channel of every path.
func (s *Store) announce(ctx context.Context, op string, env envelope, paths ...string) error {
	msg, err := json.Marshal(env)
	if err != nil {
		return model.WrapError(op, model.ErrInvalidInput, err)
	}
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range paths {
			pipe.Publish(ctx, s.channel(p), msg)
		}
		return nil
	})
	if err != nil {
		return model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, path string) (livestore.Snapshot, error) {
	snap, _, err := s.read(ctx, path)
	return snap, err
}

// read returns the value at path with the revision counter read in the same
// round trip. Every change up to that revision is reflected in the value.
func (s *Store) read(ctx context.Context, path string) (livestore.Snapshot, uint64, error) {
	const op = "redisstore.Read"
	if err := livestore.ValidatePath(path); err != nil {
		return livestore.Snapshot{}, 0, err
	}
	vals, err := s.client.MGet(ctx, s.key(path), s.revKey()).Result()
	if err != nil {
		return livestore.Snapshot{}, 0, model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	var rev uint64
	if raw, ok := vals[1].(string); ok {
		if rev, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return livestore.Snapshot{}, 0, model.WrapError(op, model.ErrPersistenceUnavailable,
				fmt.Errorf("revision counter %q: %w", raw, err))
		}
	}
	data, ok := vals[0].(string)
	if !ok {
		return livestore.Snapshot{Path: path}, rev, nil
	}
	return livestore.Snapshot{Path: path, Value: json.RawMessage(data), Exists: true}, rev, nil
}

// Subscribe listens on the path channel before reading the current value so
// no change between the two is lost. Announcements already covered by that
// read, or older than one delivered since, are dropped.
func (s *Store) Subscribe(ctx context.Context, path string, fn func(livestore.Snapshot)) (livestore.Unsubscribe, error) {
	const op = "redisstore.Subscribe"
	if err := livestore.ValidatePath(path); err != nil {
		return nil, err
	}
	sub := s.client.Subscribe(ctx, s.channel(path))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	current, seen, err := s.read(ctx, path)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	ch := sub.Channel()
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			s.mu.Lock()
			delete(s.subs, sub)
			s.mu.Unlock()
			_ = sub.Close()
		})
	}

	go func() {
		fn(current)
		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case <-done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					s.log.Warn(ctx, "dropping malformed change message",
						logger.String("path", path), logger.Error(err))
					continue
				}
				if env.Rev <= seen {
					continue
				}
				seen = env.Rev
				select {
				case <-done:
					return
				default:
				}
				fn(livestore.Snapshot{Path: path, Value: env.Value, Exists: env.Exists})
			}
		}
	}()

	return stop, nil
}

// Close ends all subscriptions and closes the client.
func (s *Store) Close() error {
	s.mu.Lock()
	subs := make([]*redis.PubSub, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[*redis.PubSub]struct{})
	s.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Close()
	}
	return s.client.Close()
}

var _ livestore.Store = (*Store)(nil)
