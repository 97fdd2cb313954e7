package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// Sessions runs turns against stored state. Turns that share a session key
// are serialized; different keys never share state.
type Sessions struct {
	flow  *FormFlow
	store StateReadWriter
	locks sync.Map
}

func NewSessions(flow *FormFlow, store StateReadWriter) *Sessions {
	return &Sessions{flow: flow, store: store}
}

func (s *Sessions) lock(ctx context.Context) func() {
	v, _ := s.locks.LoadOrStore(stateKeyOrDefault(ctx), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// load returns the stored state, greeting and storing a new session on first contact.
func (s *Sessions) load(ctx context.Context) (*State, error) {
	state, ok, err := s.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	if ok && state != nil && state.Greeted {
		return state, nil
	}
	state = s.flow.Start()
	if err := s.store.Write(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to write state: %w", err)
	}
	return state, nil
}

// View returns the visible transcript of the session.
func (s *Sessions) View(ctx context.Context) ([]*schema.Message, error) {
	unlock := s.lock(ctx)
	defer unlock()
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return Visible(state.Transcript), nil
}

// State returns the stored state of the session, if any.
func (s *Sessions) State(ctx context.Context) (*State, bool, error) {
	unlock := s.lock(ctx)
	defer unlock()
	state, ok, err := s.store.Read(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	return state.Clone(), true, nil
}

// Submit runs one user turn. A withdrawal removes the stored state.
func (s *Sessions) Submit(ctx context.Context, input string) (*Response, error) {
	unlock := s.lock(ctx)
	defer unlock()
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.flow.Invoke(ctx, &Request{State: state, UserInput: input})
	if err != nil {
		return nil, err
	}
	if resp.Terminated {
		if err := s.store.Remove(ctx); err != nil {
			return nil, fmt.Errorf("failed to remove state: %w", err)
		}
		return resp, nil
	}
	if err := s.store.Write(ctx, resp.State); err != nil {
		return nil, fmt.Errorf("failed to write state: %w", err)
	}
	return resp, nil
}
