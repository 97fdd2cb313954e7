package agent

import (
	"context"
)

// StateReadWriter provides read/write access to session state using context for routing.
type StateReadWriter interface {
	Read(ctx context.Context) (*State, bool, error)
	Write(ctx context.Context, state *State) error
	Remove(ctx context.Context) error
}

type stateKeyContext struct{}

const defaultStateKey = "default"

// WithStateKey sets the session key used to route state in the context.
func WithStateKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, stateKeyContext{}, key)
}

// StateKeyFromContext gets the session key from the context.
func StateKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(stateKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok
}

func stateKeyOrDefault(ctx context.Context) string {
	key, ok := StateKeyFromContext(ctx)
	if ok && key != "" {
		return key
	}
	return defaultStateKey
}

// CacheStateReadWriter keeps session state in a Cache, one entry per session key.
type CacheStateReadWriter struct {
	store Store[*State]
}

func NewCacheStateReadWriter(core Cache[*State]) *CacheStateReadWriter {
	return &CacheStateReadWriter{
		store: NewStore(core, "talentscout:state", func(ctx context.Context) (string, bool) {
			return stateKeyOrDefault(ctx), true
		}),
	}
}

// NewMemoryStateReadWriter is an in-memory implementation for tests and local usage.
func NewMemoryStateReadWriter() *CacheStateReadWriter {
	return NewCacheStateReadWriter(NewMemoryCache[*State]())
}

func (m *CacheStateReadWriter) Read(ctx context.Context) (*State, bool, error) {
	return m.store.Get(ctx)
}

func (m *CacheStateReadWriter) Write(ctx context.Context, state *State) error {
	return m.store.Set(ctx, state)
}

func (m *CacheStateReadWriter) Remove(ctx context.Context) error {
	return m.store.Del(ctx)
}
