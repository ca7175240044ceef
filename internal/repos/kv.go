package repos

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// KV is the string key/value store that replaces browser local storage.
// A missing key is reported with ok == false, not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Event describes a write that went through a Hub.
type Event struct {
	Key     string
	Value   string
	Deleted bool
}

// Store is a KV whose writes can be observed.
type Store interface {
	KV
	Subscribe(prefix string, fn func(Event)) (cancel func())
}

type subscriber struct {
	prefix string
	fn     func(Event)
}

// Hub wraps a KV and notifies subscribers after every successful write.
// Subscribers run synchronously on the writer's goroutine.
type Hub struct {
	KV

	mu   sync.RWMutex
	next int
	subs map[int]subscriber
}

func NewHub(kv KV) *Hub {
	return &Hub{KV: kv, subs: map[int]subscriber{}}
}

func (h *Hub) Set(ctx context.Context, key, value string) error {
	if err := h.KV.Set(ctx, key, value); err != nil {
		return err
	}
	h.publish(Event{Key: key, Value: value})
	return nil
}

func (h *Hub) Delete(ctx context.Context, keys ...string) error {
	if err := h.KV.Delete(ctx, keys...); err != nil {
		return err
	}
	for _, k := range keys {
		h.publish(Event{Key: k, Deleted: true})
	}
	return nil
}

func (h *Hub) Subscribe(prefix string, fn func(Event)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = subscriber{prefix: prefix, fn: fn}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *Hub) publish(ev Event) {
	h.mu.RLock()
	var fns []func(Event)
	for _, s := range h.subs {
		if strings.HasPrefix(ev.Key, s.prefix) {
			fns = append(fns, s.fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// MemoryKV is a process-local KV.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{m: map[string]string{}} }

func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryKV) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.m, k)
	}
	s.mu.Unlock()
	return nil
}

// SessionKey namespaces a storage key by session id.
func SessionKey(sid, name string) string {
	return "session/" + sid + "/" + name
}

// SessionPrefix matches every key of one session, or of all sessions when sid is empty.
func SessionPrefix(sid string) string {
	if sid == "" {
		return "session/"
	}
	return "session/" + sid + "/"
}

// SessionOf extracts the session id from a key built by SessionKey.
func SessionOf(key string) string {
	rest, ok := strings.CutPrefix(key, "session/")
	if !ok {
		return ""
	}
	sid, _, _ := strings.Cut(rest, "/")
	return sid
}

func getJSON(ctx context.Context, kv KV, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

func setJSON(ctx context.Context, kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return kv.Set(ctx, key, string(b))
}
