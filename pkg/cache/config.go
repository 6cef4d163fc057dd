package cache

import "time"

// StoreOption configures a RedisStore.
type StoreOption func(*StoreConfig)

// StoreConfig holds connection and namespacing settings for the shared
// Redis store used by the rate limiter.
type StoreConfig struct {
	Addr     string
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int
	PoolTimeout  time.Duration
	PingTimeout  time.Duration

	// Prefix is joined to every key with a colon. Empty disables it.
	Prefix string
}

func defaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  30 * time.Second,
		PingTimeout:  5 * time.Second,
		Prefix:       "rentpredict",
	}
}

// WithAddr sets the host:port address.
func WithAddr(addr string) StoreOption {
	return func(c *StoreConfig) {
		if addr != "" {
			c.Addr = addr
		}
	}
}

// WithAuth sets the password and logical database.
func WithAuth(password string, db int) StoreOption {
	return func(c *StoreConfig) {
		c.Password = password
		c.DB = db
	}
}

// WithPool sets connection pool settings.
func WithPool(size, minIdle int, timeout time.Duration) StoreOption {
	return func(c *StoreConfig) {
		c.PoolSize = size
		c.MinIdleConns = minIdle
		c.PoolTimeout = timeout
	}
}

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) StoreOption {
	return func(c *StoreConfig) { c.Prefix = prefix }
}
