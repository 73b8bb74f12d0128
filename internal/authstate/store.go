// Package authstate holds the API token shared by every screen of a client.
//
// The token is hydrated from persistent storage once at startup, set on
// login and cleared on logout. Components receive the Store explicitly
// instead of reading a global.
package authstate

import (
	"context"
	"sync"
)

// Store is the session-context token holder.
type Store interface {
	// Token returns the current token, or "" when logged out.
	Token() string
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	// Hydrate loads the persisted token, if any.
	Hydrate(ctx context.Context) error
}

// Memory is a Store that forgets the token when the process exits.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// Compile-time check: Memory satisfies Store.
var _ Store = (*Memory)(nil)

// NewMemory returns a Memory store holding token.
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Memory) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	return m.SetToken(context.Background(), "")
}

func (m *Memory) Hydrate(_ context.Context) error { return nil }
