// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mailcraft/internal/models"
)

// keyPrefix namespaces session keys in Valkey to avoid collisions.
const keyPrefix = "mailcraft:session:"

// Hash fields of a session key.
const (
	fieldSeq      = "seq"
	fieldUnlocked = "unlocked"
	fieldArtifact = "artifact"
)

// commitScript stores the artifact only if the sequence id still matches.
// KEYS[1] session key; ARGV[1] seq; ARGV[2] artifact JSON; ARGV[3] ttl ms.
var commitScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'seq')
if cur ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'artifact', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// ValkeyStore keeps sessions as Valkey hashes with a sliding TTL, so that
// state survives restarts and is shared between instances.
type ValkeyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyStore creates a session store backed by the given Valkey client.
func NewValkeyStore(client *redis.Client, ttl time.Duration) *ValkeyStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ValkeyStore{client: client, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (s *ValkeyStore) Begin(ctx context.Context, id string) (uint64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key(id), fieldSeq, 1)
		pipe.PExpire(ctx, key(id), s.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("session begin: %w", err)
	}
	return uint64(incr.Val()), nil
}

func (s *ValkeyStore) Commit(ctx context.Context, id string, seq uint64, artifact *models.GeneratedArtifact) (bool, error) {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return false, fmt.Errorf("session marshal: %w", err)
	}

	n, err := commitScript.Run(ctx, s.client, []string{key(id)},
		strconv.FormatUint(seq, 10), payload, s.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("session commit: %w", err)
	}
	return n == 1, nil
}

func (s *ValkeyStore) Unlock(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key(id), fieldUnlocked, "1")
		pipe.PExpire(ctx, key(id), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session unlock: %w", err)
	}
	return nil
}

func (s *ValkeyStore) State(ctx context.Context, id string) (*State, error) {
	fields, err := s.client.HGetAll(ctx, key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	st := &State{Unlocked: fields[fieldUnlocked] == "1"}
	if v := fields[fieldSeq]; v != "" {
		seq, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("session seq: %w", err)
		}
		st.Sequence = seq
	}
	if v := fields[fieldArtifact]; v != "" {
		var a models.GeneratedArtifact
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			return nil, fmt.Errorf("session unmarshal: %w", err)
		}
		st.Artifact = &a
	}
	return st, nil
}
