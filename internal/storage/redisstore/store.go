// Package redisstore persists character records in Redis as JSON documents.
//
// Keys, each under the configured prefix:
//
//	character:<key>  JSON character record
//	owner:<uuid>     character name
//	characters       set of every character key
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// Store is a Redis-backed character store.
type Store struct {
	client redis.Cmdable
	prefix string
}

// New returns a Store that prefixes every key with prefix.
//
// Precondition: client must be non-nil.
func New(client redis.Cmdable, prefix string) *Store {
	if client == nil {
		panic("redisstore: New precondition violated: client must be non-nil")
	}
	return &Store{client: client, prefix: prefix}
}

// NewClient connects to the Redis server described by cfg.
//
// Postcondition: Returns a client that answered PING, or an error.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func (s *Store) characterKey(key string) string { return s.prefix + "character:" + key }
func (s *Store) ownerKey(owner string) string   { return s.prefix + "owner:" + owner }
func (s *Store) indexKey() string               { return s.prefix + "characters" }

// Character loads the record stored under key.
//
// Postcondition: Returns storage.ErrNotFound if the key is absent, or a decode
// error if the document is malformed.
func (s *Store) Character(ctx context.Context, key string) (*character.Record, error) {
	data, err := s.client.Get(ctx, s.characterKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("getting character %q: %w", key, err)
	}
	var r character.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding character %q: %w", key, err)
	}
	return &r, nil
}

// HasCharacter reports whether a record exists under key.
func (s *Store) HasCharacter(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.characterKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("checking character %q: %w", key, err)
	}
	return n > 0, nil
}

// PutCharacter writes r under key and adds key to the index.
func (s *Store) PutCharacter(ctx context.Context, key string, r *character.Record) error {
	if r == nil {
		return errors.New("redisstore: record cannot be nil")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding character %q: %w", key, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.characterKey(key), string(data), 0)
	pipe.SAdd(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving character %q: %w", key, err)
	}
	return nil
}

// DeleteCharacter removes the record under key and drops it from the index.
func (s *Store) DeleteCharacter(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.characterKey(key))
	pipe.SRem(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting character %q: %w", key, err)
	}
	return nil
}

// CharacterKeys returns every indexed key in sorted order.
func (s *Store) CharacterKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// OwnedCharacter returns the character name mapped to owner.
//
// Postcondition: Returns storage.ErrNotFound if owner has no mapping.
func (s *Store) OwnedCharacter(ctx context.Context, owner string) (string, error) {
	name, err := s.client.Get(ctx, s.ownerKey(owner)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("getting owner %s: %w", owner, err)
	}
	return name, nil
}

// PutOwner maps owner to the character name.
func (s *Store) PutOwner(ctx context.Context, owner, name string) error {
	if err := s.client.Set(ctx, s.ownerKey(owner), name, 0).Err(); err != nil {
		return fmt.Errorf("saving owner %s: %w", owner, err)
	}
	return nil
}

// DeleteOwner removes the mapping for owner.
func (s *Store) DeleteOwner(ctx context.Context, owner string) error {
	if err := s.client.Del(ctx, s.ownerKey(owner)).Err(); err != nil {
		return fmt.Errorf("deleting owner %s: %w", owner, err)
	}
	return nil
}
