package memory

import (
	"context"
	"sync"

	"github.com/code-payments/solana-bridge/pkg/config"
)

// Config holds a config value in memory. Overrides and tests use it to pin
// values that would otherwise come from the environment.
type Config struct {
	mu     sync.RWMutex
	value  interface{}
	failed error
	closed bool
}

// NewConfig returns a Config holding value. A nil value leaves the config
// unset.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// NewOptional returns a Config holding v, or an unset Config when v is the
// zero value of T.
func NewOptional[T comparable](v T) *Config {
	var zero T
	if v == zero {
		return NewConfig(nil)
	}
	return NewConfig(v)
}

func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.closed:
		return nil, config.ErrShutdown
	case c.failed != nil:
		return nil, c.failed
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

func (c *Config) Shutdown() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Set replaces the held value. Setting nil unsets the config.
func (c *Config) Set(value interface{}) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// Fail makes subsequent Get calls return err until it is called with nil.
func (c *Config) Fail(err error) {
	c.mu.Lock()
	c.failed = err
	c.mu.Unlock()
}
