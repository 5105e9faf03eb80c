package batch

import (
	"sync"
	"time"

	"github.com/samijaber1/bloomwatch/internal/analysis"
)

// RunState is the cached outcome of one fixture's run
type RunState struct {
	Result    *analysis.Result
	Err       error
	Skipped   bool
	UpdatedAt time.Time
}

// RunCache is a thread-safe cache of run outcomes keyed by fixture name
type RunCache struct {
	mu     sync.RWMutex
	states map[string]*RunState
}

// NewRunCache creates a new run cache
func NewRunCache() *RunCache {
	return &RunCache{
		states: make(map[string]*RunState),
	}
}

// Get retrieves the cached state of a fixture
func (c *RunCache) Get(name string) (*RunState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	state, exists := c.states[name]
	return state, exists
}

// Set stores the state of a fixture
func (c *RunCache) Set(name string, state *RunState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.states[name] = state
}

// GetAll returns a snapshot of all cached states
func (c *RunCache) GetAll() map[string]*RunState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]*RunState, len(c.states))
	for k, v := range c.states {
		snapshot[k] = v
	}

	return snapshot
}

// Clear removes all cached states
func (c *RunCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.states = make(map[string]*RunState)
}

// Size returns the number of cached states
func (c *RunCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.states)
}
