package repository

// DefaultCapacity is the number of sessions kept when no capacity is set.
const DefaultCapacity = 10000

type storeConfig struct {
	capacity int
	newID    func() string
}

// Option applies a configuration option to a SessionStore.
type Option func(*storeConfig)

// WithCapacity bounds the number of live sessions. The oldest session is
// evicted when a new one would exceed it.
func WithCapacity(n int) Option {
	return func(c *storeConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *storeConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}
