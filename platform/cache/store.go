package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gomodule/redigo/redis"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/store"
)

// Store keeps each game as a hash {version, state} at game:<id> and its
// log as a list at game:<id>:logs.
type Store struct {
	pool *redis.Pool
}

func NewStore(pool *redis.Pool) *Store {
	return &Store{pool: pool}
}

func gameKey(id string) string { return fmt.Sprintf("game:%s", id) }

func logKey(id string) string { return fmt.Sprintf("game:%s:logs", id) }

func (s *Store) Create(ctx context.Context, g models.GameState) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	key := gameKey(g.ID)
	if _, err := conn.Do("WATCH", key); err != nil {
		return err
	}
	exists, err := Exists(key, conn)
	if err != nil {
		return err
	}
	if exists {
		conn.Do("UNWATCH")
		return fmt.Errorf("%w: %s", store.ErrGameExists, g.ID)
	}
	conn.Send("MULTI")
	conn.Send("HSET", key, "version", g.Version, "state", data)
	if _, err := redis.Values(conn.Do("EXEC")); err != nil {
		if errors.Is(err, redis.ErrNil) {
			return fmt.Errorf("%w: %s", store.ErrGameExists, g.ID)
		}
		return err
	}
	return nil
}

func (s *Store) Load(ctx context.Context, gameID string) (models.GameState, error) {
	var g models.GameState
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return g, err
	}
	defer conn.Close()

	data, err := HGET(gameKey(gameID), "state", conn)
	if errors.Is(err, redis.ErrNil) {
		return g, fmt.Errorf("%w: %s", store.ErrGameNotFound, gameID)
	}
	if err != nil {
		return g, err
	}
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return g, fmt.Errorf("decode game %s: %w", gameID, err)
	}
	return g, nil
}

// Save watches the game key so a write landing between the version check
// and EXEC aborts the transaction.
func (s *Store) Save(ctx context.Context, next models.GameState, logs []models.LogEntry) error {
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	entries := make([]interface{}, 0, len(logs))
	for _, l := range logs {
		b, err := json.Marshal(l)
		if err != nil {
			return err
		}
		entries = append(entries, b)
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	key := gameKey(next.ID)
	if _, err := conn.Do("WATCH", key); err != nil {
		return err
	}
	version, err := HGETInt(key, "version", conn)
	if errors.Is(err, redis.ErrNil) {
		conn.Do("UNWATCH")
		return fmt.Errorf("%w: %s", store.ErrGameNotFound, next.ID)
	}
	if err != nil {
		conn.Do("UNWATCH")
		return err
	}
	if version != next.Version-1 {
		conn.Do("UNWATCH")
		return fmt.Errorf("%w: %s at version %d, have %d", store.ErrVersionConflict, next.ID, version, next.Version-1)
	}

	conn.Send("MULTI")
	conn.Send("HSET", key, "version", next.Version, "state", data)
	if len(entries) > 0 {
		conn.Send("RPUSH", redis.Args{}.Add(logKey(next.ID)).AddFlat(entries)...)
	}
	if _, err := redis.Values(conn.Do("EXEC")); err != nil {
		if errors.Is(err, redis.ErrNil) {
			return fmt.Errorf("%w: %s", store.ErrVersionConflict, next.ID)
		}
		return err
	}
	return nil
}

func (s *Store) Logs(ctx context.Context, gameID string) ([]models.LogEntry, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	raw, err := LGET(logKey(gameID), conn)
	if err != nil && !errors.Is(err, redis.ErrNil) {
		return nil, err
	}
	out := make([]models.LogEntry, 0, len(raw))
	for _, b := range raw {
		var l models.LogEntry
		if err := json.Unmarshal(b, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, gameID string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := Del(gameKey(gameID), conn); err != nil {
		return err
	}
	return Del(logKey(gameID), conn)
}

var _ store.Store = (*Store)(nil)
