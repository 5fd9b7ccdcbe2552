package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Config struct {
	// URL takes precedence over the discrete fields when set,
	// e.g. redis://:password@host:6379/0 or rediss:// for TLS.
	URL      string
	Addr     string
	Password string
	DB       int
	PoolSize int
	// Timeout is the socket read/write timeout. Callers' context deadlines
	// are honoured too, so a shorter ctx wins.
	Timeout time.Duration
	// DialTimeout bounds connecting and the startup ping.
	DialTimeout time.Duration
}

// New opens a go-redis client and checks connectivity.
func New(cfg Config) (*goredis.Client, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), client.Options().DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func newClient(cfg Config) (*goredis.Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}

	var opts *goredis.Options
	if cfg.URL != "" {
		parsed, err := goredis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		if cfg.Addr == "" {
			cfg.Addr = "localhost:6379"
		}
		opts = &goredis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.Timeout
	opts.WriteTimeout = cfg.Timeout
	// without this go-redis ignores ctx deadlines on socket I/O and a stalled
	// server holds every redirect for the full read timeout.
	opts.ContextTimeoutEnabled = true

	return goredis.NewClient(opts), nil
}
