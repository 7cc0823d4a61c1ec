package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/gomodule/redigo/redis"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/store"
)

// fakeRedis is an in-process redis.Conn covering the commands Store uses,
// including WATCH/MULTI/EXEC semantics.
type fakeRedis struct {
	mu      sync.Mutex
	hashes  map[string]map[string][]byte
	lists   map[string][][]byte
	watched map[string]bool
	dirty   bool
	multi   bool
	queue   [][]interface{}

	// beforeExec runs just before EXEC, standing in for another client.
	beforeExec func(f *fakeRedis)
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		hashes:  map[string]map[string][]byte{},
		lists:   map[string][][]byte{},
		watched: map[string]bool{},
	}
}

func (f *fakeRedis) Close() error { return nil }
func (f *fakeRedis) Err() error   { return nil }
func (f *fakeRedis) Flush() error { return nil }

func (f *fakeRedis) Receive() (interface{}, error) { return nil, nil }

func (f *fakeRedis) Send(cmd string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.multi && cmd != "EXEC" && cmd != "DISCARD" {
		f.queue = append(f.queue, append([]interface{}{cmd}, args...))
		return nil
	}
	_, err := f.run(cmd, args...)
	return err
}

func (f *fakeRedis) Do(cmd string, args ...interface{}) (interface{}, error) {
	if cmd == "EXEC" && f.beforeExec != nil {
		hook := f.beforeExec
		f.beforeExec = nil
		hook(f)
	}
	return f.do(cmd, args...)
}

func (f *fakeRedis) do(cmd string, args ...interface{}) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.run(cmd, args...)
}

// write applies a command as another client would.
func (f *fakeRedis) write(cmd string, args ...interface{}) {
	f.do(cmd, args...)
}

func bytesOf(v interface{}) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	}
	return []byte(fmt.Sprint(v))
}

func (f *fakeRedis) touch(key string) {
	if f.watched[key] {
		f.dirty = true
	}
}

func (f *fakeRedis) run(cmd string, args ...interface{}) (interface{}, error) {
	key := ""
	if len(args) > 0 {
		key = string(bytesOf(args[0]))
	}
	switch strings.ToUpper(cmd) {
	case "":
		return nil, nil
	case "WATCH":
		f.watched[key], f.dirty = true, false
		return "OK", nil
	case "UNWATCH":
		f.watched, f.dirty = map[string]bool{}, false
		return "OK", nil
	case "MULTI":
		f.multi, f.queue = true, nil
		return "OK", nil
	case "DISCARD":
		f.multi, f.queue = false, nil
		f.watched, f.dirty = map[string]bool{}, false
		return "OK", nil
	case "EXEC":
		queue, aborted := f.queue, f.dirty
		f.multi, f.queue = false, nil
		f.watched, f.dirty = map[string]bool{}, false
		if aborted {
			return nil, nil
		}
		replies := make([]interface{}, 0, len(queue))
		for _, q := range queue {
			r, err := f.run(q[0].(string), q[1:]...)
			if err != nil {
				return nil, err
			}
			replies = append(replies, r)
		}
		return replies, nil
	case "EXISTS":
		_, h := f.hashes[key]
		_, l := f.lists[key]
		if h || l {
			return int64(1), nil
		}
		return int64(0), nil
	case "HSET":
		h := f.hashes[key]
		if h == nil {
			h = map[string][]byte{}
			f.hashes[key] = h
		}
		for i := 1; i+1 < len(args); i += 2 {
			h[string(bytesOf(args[i]))] = bytesOf(args[i+1])
		}
		f.touch(key)
		return int64(len(args) / 2), nil
	case "HGET":
		v, ok := f.hashes[key][string(bytesOf(args[1]))]
		if !ok {
			return nil, nil
		}
		return v, nil
	case "RPUSH":
		for _, a := range args[1:] {
			f.lists[key] = append(f.lists[key], bytesOf(a))
		}
		f.touch(key)
		return int64(len(f.lists[key])), nil
	case "LRANGE":
		out := make([]interface{}, 0, len(f.lists[key]))
		for _, b := range f.lists[key] {
			out = append(out, b)
		}
		return out, nil
	case "DEL":
		delete(f.hashes, key)
		delete(f.lists, key)
		f.touch(key)
		return int64(1), nil
	}
	return nil, fmt.Errorf("fake redis: unsupported command %s", cmd)
}

func newTestStore(f *fakeRedis) *Store {
	return NewStore(&redis.Pool{Dial: func() (redis.Conn, error) { return f, nil }})
}

func snapshot(version int) models.GameState {
	return models.GameState{
		ID:      "g1",
		Status:  models.StatusRunning,
		Version: version,
		Players: []models.PlayerState{{ID: "p1", Name: "Ann", Cash: 1500}},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeRedis())

	if _, err := s.Load(ctx, "g1"); !errors.Is(err, store.ErrGameNotFound) {
		t.Fatalf("load before create: %v", err)
	}
	if err := s.Create(ctx, snapshot(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(ctx, snapshot(1)); !errors.Is(err, store.ErrGameExists) {
		t.Fatalf("second create: %v", err)
	}

	next := snapshot(2)
	next.Players[0].Position = 7
	logs := []models.LogEntry{{Type: "dice_rolled", ActorID: "p1"}, {Type: "turn_end", ActorID: "p1"}}
	if err := s.Save(ctx, next, logs); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 2 || got.Players[0].Position != 7 {
		t.Fatalf("loaded %+v", got)
	}
	stored, err := s.Logs(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || stored[1].Type != "turn_end" {
		t.Fatalf("logs = %+v", stored)
	}

	if err := s.Delete(ctx, "g1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "g1"); !errors.Is(err, store.ErrGameNotFound) {
		t.Fatalf("load after delete: %v", err)
	}
}

func TestStoreStaleVersion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeRedis())
	if err := s.Create(ctx, snapshot(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, snapshot(3), nil); !errors.Is(err, store.ErrVersionConflict) {
		t.Fatalf("skipped version: %v", err)
	}
}

func TestStoreConcurrentWriteAbortsExec(t *testing.T) {
	ctx := context.Background()
	f := newFakeRedis()
	s := newTestStore(f)
	if err := s.Create(ctx, snapshot(1)); err != nil {
		t.Fatal(err)
	}
	f.beforeExec = func(f *fakeRedis) {
		f.write("HSET", gameKey("g1"), "version", 2)
	}
	if err := s.Save(ctx, snapshot(2), nil); !errors.Is(err, store.ErrVersionConflict) {
		t.Fatalf("racing save: %v", err)
	}
}
